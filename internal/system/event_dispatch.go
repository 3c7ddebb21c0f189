package system

import (
	"time"

	"github.com/icbgo/icb/internal/core/event"
	coresys "github.com/icbgo/icb/internal/core/system"
)

// EventDispatchSystem swaps the bus and delivers last tick's events.
// First system of Phase 0 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
