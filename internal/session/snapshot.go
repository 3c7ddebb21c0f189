package session

import (
	"fmt"

	"github.com/icbgo/icb/internal/savegame"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// Snapshot captures everything a save needs. Static layout comes from the
// level file, so only mutable object state is kept.
func (s *Session) Snapshot() *savegame.Snapshot {
	snap := &savegame.Snapshot{
		Level:          s.assets.Level.Name,
		Tick:           s.runner.Ticks(),
		Camera:         s.World.Camera(),
		InteractTarget: s.World.InteractTarget(),
		History:        s.World.History.Snapshot(),
		Companion:      s.Chi.Snapshot(),
		Subscribers:    s.Sound.Hearing.Snapshot(),
		FloorLinks:     s.Sound.Model.LinkNames(),
		Recent:         s.Sound.Router.Recent(),
	}
	s.World.Each(func(o *world.Object) bool {
		snap.Objects = append(snap.Objects, savegame.ObjectState{
			Name: o.Name,
			X:    o.X, Y: o.Y, Z: o.Z,
			Pan:       o.Pan,
			Hits:      o.Hits,
			Dead:      o.Dead,
			Held:      o.Held,
			Hostile:   o.Hostile,
			Armed:     o.Armed,
			WeaponOut: o.WeaponOut,
		})
		return true
	})
	return snap
}

// Restore loads a snapshot into the running session. The save must be of
// the same level. A running interact sub-script is dropped and routes
// in flight are cancelled.
func (s *Session) Restore(snap *savegame.Snapshot) error {
	if snap.Level != s.assets.Level.Name {
		return fmt.Errorf("restore: save is for level %q, session runs %q", snap.Level, s.assets.Level.Name)
	}
	for _, st := range snap.Objects {
		o := s.World.ByName(st.Name)
		if o == nil {
			return fmt.Errorf("restore: object %q: %w", st.Name, world.ErrBadObject)
		}
		o.Pan, o.Hits = st.Pan, st.Hits
		o.Dead, o.Held, o.Hostile = st.Dead, st.Held, st.Hostile
		o.Armed, o.WeaponOut = st.Armed, st.WeaponOut
		s.World.MoveObject(o.ID, st.X, st.Y, st.Z)
	}
	s.World.SetCamera(snap.Camera)
	s.World.SetInteractTarget(snap.InteractTarget)
	if err := s.World.History.Restore(snap.History); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	s.Sound.Model.Reset()
	for _, l := range snap.FloorLinks {
		if err := s.Sound.Model.LinkFloors(l[0], l[1]); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	if err := s.Sound.Hearing.Restore(snap.Subscribers); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	s.Sound.Router.RestoreRecent(snap.Recent)

	s.Walker.Reset()
	s.Anim.Reset()
	s.Engine.Reset()
	if err := s.Chi.Restore(snap.Companion); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	s.History.Sync()
	s.Bus.Reset()
	s.runner.SetTicks(snap.Tick)
	s.log.Info("session restored", zap.Uint32("tick", snap.Tick))
	return nil
}

func encode(snap *savegame.Snapshot) []byte { return savegame.Encode(snap) }

func decode(image []byte) (*savegame.Snapshot, error) { return savegame.Decode(image) }
