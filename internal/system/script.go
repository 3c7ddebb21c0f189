package system

import (
	"time"

	coresys "github.com/icbgo/icb/internal/core/system"
	"github.com/icbgo/icb/internal/scripting"
)

// ScriptSystem runs the mission's tick hook. Phase 1 (Update), before the
// companion. A script error halts the session.
type ScriptSystem struct {
	engine *scripting.Engine
	ticks  func() uint32
	halt   func(error)
}

// NewScriptSystem calls tick(n) with n counting from 1. ticks reports
// completed ticks, so a restored session carries on its mission clock.
func NewScriptSystem(engine *scripting.Engine, ticks func() uint32, halt func(error)) *ScriptSystem {
	return &ScriptSystem{engine: engine, ticks: ticks, halt: halt}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(_ time.Duration) {
	if err := s.engine.Tick(int(s.ticks()) + 1); err != nil {
		s.halt(err)
	}
}
