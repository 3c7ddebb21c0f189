package system

import (
	"context"
	"time"

	coresys "github.com/icbgo/icb/internal/core/system"
	"go.uber.org/zap"
)

// Saver writes a session save.
type Saver interface {
	Save(ctx context.Context) error
}

// AutosaveSystem saves the session every interval ticks. Phase 4 (Persist).
type AutosaveSystem struct {
	saver     Saver
	interval  int
	tickCount int
	timeout   time.Duration
	log       *zap.Logger
}

func NewAutosaveSystem(saver Saver, intervalTicks int, log *zap.Logger) *AutosaveSystem {
	return &AutosaveSystem{saver: saver, interval: intervalTicks, timeout: 5 * time.Second, log: log}
}

func (s *AutosaveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *AutosaveSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.saver.Save(ctx); err != nil {
		s.log.Error("autosave failed", zap.Error(err))
		return
	}
	s.log.Debug("autosaved")
}
