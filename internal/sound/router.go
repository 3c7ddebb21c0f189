package sound

import (
	"math"
	"strings"

	"github.com/icbgo/icb/internal/core/event"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// NoPosition is returned by SoundX / SoundZ for a sound with no recent post.
const NoPosition = math.MaxInt32

const emptyAge = math.MaxUint32

// Envelope is a sound's audible range.
type Envelope struct {
	MinDist int
	MaxDist int
}

// RecentPosition remembers where a sound id was last posted.
type RecentPosition struct {
	Sound ID
	X, Z  int32
	Age   uint32
}

func (p RecentPosition) empty() bool { return p.Age == emptyAge }

// Subtitles resolves the caption for a sound.
type Subtitles interface {
	Lookup(id ID) (string, bool)
}

// Router posts sound events to listeners and keeps the recent-position
// table and the subtitle timer.
type Router struct {
	model   *Model
	hearing *Hearing
	world   *world.State
	subs    Subtitles
	bus     *event.Bus
	log     *zap.Logger

	recent []RecentPosition

	subtitle      string
	subtitleTicks int
}

func NewRouter(ws *world.State, model *Model, hearing *Hearing, subs Subtitles, recentSlots int, bus *event.Bus, log *zap.Logger) *Router {
	r := &Router{
		model:   model,
		hearing: hearing,
		world:   ws,
		subs:    subs,
		bus:     bus,
		log:     log,
		recent:  make([]RecentPosition, recentSlots),
	}
	r.Reset()
	return r
}

// PostEvent announces a sound emitted by emitter at (x,y,z). Every
// subscriber except the emitter whose event-routing volume is nonzero is
// notified.
func (r *Router) PostEvent(emitter world.ObjectID, x, y, z float64, env Envelope, id ID) {
	r.remember(id, x, z)

	notified := 0
	r.hearing.Each(func(s *Subscriber) {
		if s.Listener == emitter {
			return
		}
		vol := r.model.ComputeVolume(ForEventRouting, s.Listener, x, y, z, env.MinDist, env.MaxDist)
		if vol <= 0 {
			return
		}
		r.hearing.Notify(s.Listener, emitter, id, vol)
		notified++
	})

	event.Emit(r.bus, event.SoundPosted{
		Emitter: emitter, Sound: uint32(id),
		X: x, Y: y, Z: z, Listeners: notified,
	})
	r.log.Debug("sound posted",
		zap.Int32("emitter", int32(emitter)),
		zap.Uint32("sound", uint32(id)),
		zap.Int("listeners", notified))

	r.showSubtitle(id)
}

func (r *Router) showSubtitle(id ID) {
	if r.subs == nil || r.subtitleTicks > 0 {
		return
	}
	text, ok := r.subs.Lookup(id)
	if !ok {
		return
	}
	r.subtitle = text
	r.subtitleTicks = 12 + 2*len(strings.Fields(text))
	event.Emit(r.bus, event.SubtitleShown{Sound: uint32(id), Text: text, Ticks: r.subtitleTicks})
}

// remember overwrites the slot already holding id, else the oldest slot.
// Empty slots count as oldest.
func (r *Router) remember(id ID, x, z float64) {
	if len(r.recent) == 0 {
		return
	}
	slot := -1
	for i, p := range r.recent {
		if !p.empty() && p.Sound == id {
			slot = i
			break
		}
	}
	if slot < 0 {
		slot = 0
		for i, p := range r.recent {
			if p.Age > r.recent[slot].Age {
				slot = i
			}
		}
	}
	r.recent[slot] = RecentPosition{Sound: id, X: int32(x), Z: int32(z), Age: 0}
}

func (r *Router) find(id ID) (RecentPosition, bool) {
	for _, p := range r.recent {
		if !p.empty() && p.Sound == id {
			return p, true
		}
	}
	return RecentPosition{}, false
}

// SoundX returns the x of the last post of id, or NoPosition.
func (r *Router) SoundX(id ID) int32 {
	if p, ok := r.find(id); ok {
		return p.X
	}
	return NoPosition
}

// SoundZ returns the z of the last post of id, or NoPosition.
func (r *Router) SoundZ(id ID) int32 {
	if p, ok := r.find(id); ok {
		return p.Z
	}
	return NoPosition
}

// Subtitle returns the caption on screen and its remaining ticks.
func (r *Router) Subtitle() (string, int) {
	if r.subtitleTicks <= 0 {
		return "", 0
	}
	return r.subtitle, r.subtitleTicks
}

// Cycle runs once per tick: counts the subtitle down and ages the table.
func (r *Router) Cycle() {
	if r.subtitleTicks > 0 {
		r.subtitleTicks--
		if r.subtitleTicks == 0 {
			r.subtitle = ""
		}
	}
	for i := range r.recent {
		if !r.recent[i].empty() && r.recent[i].Age < emptyAge-1 {
			r.recent[i].Age++
		}
	}
}

// Recent returns a copy of the recent-position table.
func (r *Router) Recent() []RecentPosition {
	return append([]RecentPosition(nil), r.recent...)
}

// RestoreRecent replaces the table; extra saved slots are dropped.
func (r *Router) RestoreRecent(saved []RecentPosition) {
	r.Reset()
	copy(r.recent, saved)
}

func (r *Router) Reset() {
	for i := range r.recent {
		r.recent[i] = RecentPosition{Age: emptyAge}
	}
	r.subtitle = ""
	r.subtitleTicks = 0
}
