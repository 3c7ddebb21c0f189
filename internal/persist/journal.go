package persist

import (
	"context"
	"fmt"
)

// JournalEntry is one recorded session event (mode change, companion lost,
// subtitle). Entries are buffered in memory and flushed in batches.
type JournalEntry struct {
	Tick    uint32
	Kind    string
	Subject string
	Detail  string
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Write inserts a batch in a single transaction. Either every entry lands or
// none does.
func (r *JournalRepo) Write(ctx context.Context, slot string, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_journal (slot, tick, kind, subject, detail)
			 VALUES ($1, $2, $3, $4, $5)`,
			slot, int64(e.Tick), e.Kind, e.Subject, e.Detail,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent returns up to limit entries for slot, oldest first.
func (r *JournalRepo) Recent(ctx context.Context, slot string, limit int) ([]JournalEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT tick, kind, subject, detail FROM (
		     SELECT id, tick, kind, subject, detail FROM session_journal
		     WHERE slot = $1 ORDER BY id DESC LIMIT $2
		 ) t ORDER BY id`, slot, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var tick int64
		if err := rows.Scan(&tick, &e.Kind, &e.Subject, &e.Detail); err != nil {
			return nil, err
		}
		e.Tick = uint32(tick)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Purge drops a slot's journal, used when the slot is overwritten by a new game.
func (r *JournalRepo) Purge(ctx context.Context, slot string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM session_journal WHERE slot = $1`, slot)
	return err
}
