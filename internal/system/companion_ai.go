package system

import (
	"time"

	"github.com/icbgo/icb/internal/companion"
	coresys "github.com/icbgo/icb/internal/core/system"
	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// Interactions runs the companion's interact sub-scripts.
type Interactions interface {
	StartGosub(id world.ObjectID, socket string) error
	StepGosub() (bool, error)
	GosubActive() bool
}

// CompanionAISystem drives the companion one game tick at a time. While an
// interact sub-script runs, it is stepped instead of the state machine.
// Phase 1 (Update), after ScriptSystem.
type CompanionAISystem struct {
	chi *companion.AI
	scr Interactions
	log *zap.Logger
}

func NewCompanionAISystem(chi *companion.AI, scr Interactions, log *zap.Logger) *CompanionAISystem {
	return &CompanionAISystem{chi: chi, scr: scr, log: log}
}

func (s *CompanionAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CompanionAISystem) Update(_ time.Duration) {
	if s.scr.GosubActive() {
		done, err := s.scr.StepGosub()
		if err != nil {
			s.log.Warn("interact script failed", zap.Error(err))
		}
		if !done {
			return
		}
		s.chi.ReturnFromInteract()
	}

	if s.chi.Process() != mcode.Gosub {
		return
	}
	g, ok := s.chi.TakeGosub()
	if !ok {
		return
	}
	if err := s.scr.StartGosub(g.Object, g.Socket); err != nil {
		s.log.Warn("interact script not started", zap.Error(err))
		s.chi.ReturnFromInteract()
	}
}
