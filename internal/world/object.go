package world

import "math"

// ObjectID is an object's index in registration order.
type ObjectID int32

const (
	// NoObject marks an empty id slot.
	NoObject ObjectID = -1
	// SyntheticID is the emitter used for UI-originated sounds. Any listener
	// hears it at full volume.
	SyntheticID ObjectID = -2
)

// Kind separates skeletal characters from static props.
type Kind int

const (
	KindProp Kind = iota
	KindMega      // voxel-animated actor
)

func (k Kind) String() string {
	if k == KindMega {
		return "mega"
	}
	return "prop"
}

// Object holds in-memory data for one game object.
// Accessed only from the game loop goroutine, no locks needed.
type Object struct {
	ID   ObjectID
	Name string
	Kind Kind

	X, Y, Z float64
	Pan     float64 // heading, full turn = 1.0, normalised to (-0.5, 0.5]
	Floor   int     // owner floor rect, NoFloor when off the floor graph

	Hits      int
	Dead      bool
	Held      bool // restrained / in a cutscene, not a valid target
	Hostile   bool // flagged evil for companion targeting
	Armed     bool // has a weapon drawn (player) or carries one
	WeaponOut bool // currently in the weapon pose
}

func (o *Object) IsMega() bool { return o.Kind == KindMega }

// DistSqXZ is the squared horizontal distance between two objects.
func DistSqXZ(a, b *Object) float64 {
	return DistSq(a.X, a.Z, b.X, b.Z)
}

func DistSq(x0, z0, x1, z1 float64) float64 {
	dx := x1 - x0
	dz := z1 - z0
	return dx*dx + dz*dz
}

// NormalisePan folds a heading into (-0.5, 0.5].
func NormalisePan(p float64) float64 {
	p = math.Mod(p, 1)
	if p > 0.5 {
		p -= 1
	} else if p <= -0.5 {
		p += 1
	}
	return p
}

// PanDelta is the signed shortest turn from one heading to another, in
// (-0.5, 0.5].
func PanDelta(from, to float64) float64 {
	return NormalisePan(to - from)
}

// PanTo is the heading from (x0,z0) looking at (x1,z1). Pan 0 faces +Z.
func PanTo(x0, z0, x1, z1 float64) float64 {
	return NormalisePan(math.Atan2(x1-x0, z1-z0) / (2 * math.Pi))
}
