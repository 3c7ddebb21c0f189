package anim

import "github.com/icbgo/icb/internal/world"

// Kind is an animation the state machine can request.
type Kind int

const (
	Stand Kind = iota
	DrawWeapon
	Fire
	Disarm
)

func (k Kind) String() string {
	switch k {
	case Stand:
		return "stand"
	case DrawWeapon:
		return "draw_weapon"
	case Fire:
		return "fire"
	case Disarm:
		return "disarm"
	}
	return "unknown"
}

// DefaultFrames is the frame count per kind used when a level gives none.
var DefaultFrames = map[Kind]int{
	Stand:      2,
	DrawWeapon: 6,
	Fire:       4,
	Disarm:     6,
}

type track struct {
	kind  Kind
	frame int
	total int
}

// Player plays one animation per object, one frame per Step.
type Player struct {
	frames  map[Kind]int
	playing map[world.ObjectID]*track
}

func NewPlayer(frames map[Kind]int) *Player {
	if frames == nil {
		frames = DefaultFrames
	}
	return &Player{
		frames:  frames,
		playing: make(map[world.ObjectID]*track),
	}
}

// Start replaces whatever the object was playing.
func (p *Player) Start(id world.ObjectID, k Kind) {
	total := p.frames[k]
	if total < 1 {
		total = 1
	}
	p.playing[id] = &track{kind: k, total: total}
}

// Step plays one frame and reports whether the last frame has played.
// An object with nothing playing is done.
func (p *Player) Step(id world.ObjectID) bool {
	t := p.playing[id]
	if t == nil {
		return true
	}
	t.frame++
	if t.frame >= t.total {
		delete(p.playing, id)
		return true
	}
	return false
}

// Playing returns the object's current animation and frame.
func (p *Player) Playing(id world.ObjectID) (Kind, int, bool) {
	t := p.playing[id]
	if t == nil {
		return Stand, 0, false
	}
	return t.kind, t.frame, true
}

func (p *Player) Reset() {
	clear(p.playing)
}
