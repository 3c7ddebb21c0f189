package system

import (
	"time"

	coresys "github.com/icbgo/icb/internal/core/system"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// PlayerHistorySystem writes the player's floor changes and interactions
// into the history ring the companion follows. Phase 0 (PreUpdate), after
// event dispatch.
type PlayerHistorySystem struct {
	world     *world.State
	lastFloor int
	log       *zap.Logger
}

func NewPlayerHistorySystem(ws *world.State, log *zap.Logger) *PlayerHistorySystem {
	s := &PlayerHistorySystem{world: ws, log: log}
	s.Sync()
	return s
}

func (s *PlayerHistorySystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *PlayerHistorySystem) Update(_ time.Duration) {
	p := s.world.Player()
	if p == nil || p.Floor == s.lastFloor {
		return
	}
	s.lastFloor = p.Floor
	if p.Floor == world.NoFloor {
		return // between floors; wait until the player lands
	}
	s.world.History.Advance(world.HistoryEntry{
		TargetID: int32(p.Floor),
		FirstX:   p.X,
		FirstZ:   p.Z,
	})
	s.log.Debug("player changed floor",
		zap.String("floor", s.world.Floors().Name(p.Floor)),
		zap.Int("cursor", s.world.History.Cursor()))
}

// RecordInteraction writes an interaction entry for target, positioned at
// the target so the companion knows where to go to use it.
func (s *PlayerHistorySystem) RecordInteraction(target world.ObjectID) {
	e := world.HistoryEntry{Interaction: true, TargetID: int32(target)}
	if o := s.world.Object(target); o != nil {
		e.FirstX, e.FirstZ = o.X, o.Z
	}
	s.world.History.Advance(e)
	s.log.Debug("player interaction",
		zap.Int32("target", int32(target)),
		zap.Int("cursor", s.world.History.Cursor()))
}

// Prime makes the player's current floor the entry at the cursor. It
// reports false when the player isn't standing on a floor.
func (s *PlayerHistorySystem) Prime() bool {
	p := s.world.Player()
	if p == nil || p.Floor == world.NoFloor {
		return false
	}
	s.world.History.Prime(world.HistoryEntry{
		TargetID: int32(p.Floor),
		FirstX:   p.X,
		FirstZ:   p.Z,
	})
	s.lastFloor = p.Floor
	return true
}

// Sync takes the player's current floor as already recorded, after a level
// load or a restore.
func (s *PlayerHistorySystem) Sync() {
	s.lastFloor = world.NoFloor
	if p := s.world.Player(); p != nil {
		s.lastFloor = p.Floor
	}
}
