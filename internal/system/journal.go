package system

import (
	"context"
	"fmt"
	"time"

	"github.com/icbgo/icb/internal/core/event"
	coresys "github.com/icbgo/icb/internal/core/system"
	"github.com/icbgo/icb/internal/persist"
	"go.uber.org/zap"
)

// JournalWriter stores a batch of journal entries atomically.
type JournalWriter interface {
	Write(ctx context.Context, slot string, entries []persist.JournalEntry) error
}

// JournalSystem records companion and subtitle events and flushes them in
// batches. Phase 4 (Persist).
type JournalSystem struct {
	writer   JournalWriter
	slot     string
	interval int
	ticks    func() uint32

	pending   []persist.JournalEntry
	tickCount int
	log       *zap.Logger
}

func NewJournalSystem(bus *event.Bus, writer JournalWriter, slot string, intervalTicks int, ticks func() uint32, log *zap.Logger) *JournalSystem {
	s := &JournalSystem{writer: writer, slot: slot, interval: intervalTicks, ticks: ticks, log: log}
	event.Subscribe(bus, func(ev event.CompanionModeChanged) {
		s.add("mode", "companion", ev.From+"->"+ev.To)
	})
	event.Subscribe(bus, func(ev event.CompanionLost) {
		s.add("lost", "companion", fmt.Sprintf("target %d cursor %d", ev.Target, ev.Cursor))
	})
	event.Subscribe(bus, func(ev event.SubtitleShown) {
		s.add("subtitle", "sound", ev.Text)
	})
	return s
}

func (s *JournalSystem) add(kind, subject, detail string) {
	s.pending = append(s.pending, persist.JournalEntry{
		Tick:    s.ticks(),
		Kind:    kind,
		Subject: subject,
		Detail:  detail,
	})
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes everything pending. On failure the batch is kept for the
// next attempt.
func (s *JournalSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.writer.Write(ctx, s.slot, s.pending); err != nil {
		s.log.Warn("journal flush failed", zap.Int("entries", len(s.pending)), zap.Error(err))
		return
	}
	s.pending = s.pending[:0]
}

// Pending is the number of unflushed entries.
func (s *JournalSystem) Pending() int { return len(s.pending) }
