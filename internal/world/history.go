package world

import "fmt"

// HistoryCapacity is how many player transitions are remembered. Older
// entries are overwritten, so the companion can only reconstruct a path
// within the last HistoryCapacity transitions.
const HistoryCapacity = 16

// HistoryEntry is one recorded player transition: either a floor change
// (TargetID is the new floor rect) or an interaction (TargetID is the object
// the player used, e.g. a lift or ladder).
type HistoryEntry struct {
	Interaction bool
	TargetID    int32
	FirstX      float64
	FirstZ      float64
}

// PlayerHistory is a fixed-size ring of the player's recent transitions.
// Written by the player movement system, read by the companion AI. Both run
// on the game loop goroutine, no locks.
type PlayerHistory struct {
	entries [HistoryCapacity]HistoryEntry
	cursor  int
}

// WrapHistory maps any index (including negative) into the ring.
func WrapHistory(i int) int {
	return ((i % HistoryCapacity) + HistoryCapacity) % HistoryCapacity
}

// Advance moves the cursor on and then writes the entry, so buffer[cursor]
// is always a complete entry.
func (h *PlayerHistory) Advance(e HistoryEntry) {
	h.cursor = WrapHistory(h.cursor + 1)
	h.entries[h.cursor] = e
}

// Prime writes e at the cursor without advancing. Missions call it once so
// the ring starts with the player's opening floor.
func (h *PlayerHistory) Prime(e HistoryEntry) {
	h.entries[h.cursor] = e
}

// Cursor returns the index of the most recent entry.
func (h *PlayerHistory) Cursor() int { return h.cursor }

// Get returns the entry at index. Callers wrap indices themselves; an
// out-of-range index is a programming error.
func (h *PlayerHistory) Get(index int) HistoryEntry {
	if index < 0 || index >= HistoryCapacity {
		panic(fmt.Sprintf("player history index %d out of range [0,%d)", index, HistoryCapacity))
	}
	return h.entries[index]
}

// Reset clears the ring for a new session.
func (h *PlayerHistory) Reset() {
	*h = PlayerHistory{}
}

// HistorySnapshot is the saved form of the ring.
type HistorySnapshot struct {
	Cursor  int
	Entries []HistoryEntry
}

func (h *PlayerHistory) Snapshot() HistorySnapshot {
	entries := make([]HistoryEntry, HistoryCapacity)
	copy(entries, h.entries[:])
	return HistorySnapshot{Cursor: h.cursor, Entries: entries}
}

func (h *PlayerHistory) Restore(s HistorySnapshot) error {
	if len(s.Entries) != HistoryCapacity {
		return fmt.Errorf("history snapshot has %d entries, want %d", len(s.Entries), HistoryCapacity)
	}
	if s.Cursor < 0 || s.Cursor >= HistoryCapacity {
		return fmt.Errorf("history snapshot cursor %d out of range", s.Cursor)
	}
	copy(h.entries[:], s.Entries)
	h.cursor = s.Cursor
	return nil
}
