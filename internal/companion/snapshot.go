package companion

import (
	"fmt"

	"github.com/icbgo/icb/internal/world"
)

// Snapshot is the companion's part of a session save.
type Snapshot struct {
	Registered bool
	State      State
}

func (a *AI) Snapshot() Snapshot {
	return Snapshot{Registered: a.registered, State: a.st}
}

// Restore loads saved state. A save taken during an interact sub-script
// resumes in Thinking, since the sub-script itself isn't saved.
func (a *AI) Restore(s Snapshot) error {
	if !s.State.Do.Valid() {
		return fmt.Errorf("restore companion: bad do mode %d", int(s.State.Do))
	}
	if s.State.Think < ThinkNothing || s.State.Think > ThinkLost {
		return fmt.Errorf("restore companion: bad think mode %d", int(s.State.Think))
	}
	if s.Registered {
		o := a.deps.World.Object(s.State.ID)
		if o == nil {
			return fmt.Errorf("restore companion %d: %w", s.State.ID, world.ErrBadObject)
		}
		if !o.IsMega() {
			return fmt.Errorf("restore companion %q: %w", o.Name, ErrNotMega)
		}
	}
	a.registered = s.Registered
	a.st = s.State
	a.st.FollowCursor = world.WrapHistory(a.st.FollowCursor)
	a.gosub = nil
	a.heardMark = 0
	if a.st.Do == InteractFollow {
		a.st.Do = Thinking
	}
	return nil
}
