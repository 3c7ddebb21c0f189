package sound

import (
	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/core/event"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// Logic bundles the per-session sound state: volume model, hearing table
// and event router.
type Logic struct {
	Model   *Model
	Hearing *Hearing
	Router  *Router
}

func NewLogic(ws *world.State, cfg config.SoundConfig, subs Subtitles, bus *event.Bus, log *zap.Logger) *Logic {
	l := log.Named("sound")
	model := NewModel(ws, cfg, l)
	hearing := NewHearing(ws, cfg.MaxRegistrations, cfg.MaxListeners, cfg.DefaultSensitivity, l)
	return &Logic{
		Model:   model,
		Hearing: hearing,
		Router:  NewRouter(ws, model, hearing, subs, cfg.RecentPositions, bus, l),
	}
}

// Reset clears all three at a session boundary.
func (l *Logic) Reset() {
	l.Model.Reset()
	l.Hearing.Reset()
	l.Router.Reset()
}
