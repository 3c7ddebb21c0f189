package handler

import (
	"github.com/icbgo/icb/internal/audio"
	"github.com/icbgo/icb/internal/companion"
	"github.com/icbgo/icb/internal/data"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// gunshot envelope when the sfx table has no "gunshot" entry
var defaultGunshot = sound.Envelope{MinDist: 200, MaxDist: 2000}

var _ companion.Gunfire = (*Gunfire)(nil)

// Gunfire resolves shots: a gunshot event from the shooter and one hit on
// the target. Shared by the companion and fn_player_fire.
type Gunfire struct {
	world *world.State
	sound *sound.Logic
	audio *audio.Mixer
	sfx   *data.SfxEntry
	env   sound.Envelope
	log   *zap.Logger
}

func NewGunfire(ws *world.State, snd *sound.Logic, mixer *audio.Mixer, sfx *data.SfxTable, log *zap.Logger) *Gunfire {
	g := &Gunfire{world: ws, sound: snd, audio: mixer, env: defaultGunshot, log: log}
	if e := sfx.Get("gunshot"); e != nil {
		g.sfx = e
		g.env = e.Envelope()
	}
	return g
}

// Fire posts the shot and damages target. A target of world.NoObject
// is a shot at nothing.
func (g *Gunfire) Fire(shooter, target world.ObjectID) {
	s := g.world.Object(shooter)
	if s == nil {
		return
	}
	g.sound.Router.PostEvent(shooter, s.X, s.Y, s.Z, g.env, sound.Gunshot)
	if g.audio != nil && g.sfx != nil {
		g.audio.Play(g.world.PlayerID(), s.X, s.Y, s.Z, g.sfx)
	}

	t := g.world.Object(target)
	if t == nil || t.Dead {
		return
	}
	t.Hits--
	if t.Hits <= 0 {
		t.Hits = 0
		t.Dead = true
		g.log.Info("object killed",
			zap.String("shooter", s.Name),
			zap.String("target", t.Name))
	}
}
