package nav

import "github.com/icbgo/icb/internal/world"

// Sight is the stand-in line-of-sight test: two objects see each other when
// they share a floor rect or a camera region and the target is alive.
type Sight struct {
	world *world.State
}

func NewSight(ws *world.State) *Sight {
	return &Sight{world: ws}
}

func (s *Sight) LineOfSight(from, to world.ObjectID) bool {
	a, b := s.world.Object(from), s.world.Object(to)
	if a == nil || b == nil || b.Dead {
		return false
	}
	if a.Floor == world.NoFloor || b.Floor == world.NoFloor {
		return false
	}
	return a.Floor == b.Floor || s.world.Floors().SameCamera(a.Floor, b.Floor)
}
