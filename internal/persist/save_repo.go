package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNoSave is returned by Load when the slot is empty.
var ErrNoSave = errors.New("no save in slot")

type SaveRow struct {
	Slot      string
	Level     string
	Tick      uint32
	Version   int16
	Image     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveRepo stores encoded session images, one per slot.
type SaveRepo struct {
	db *DB
}

func NewSaveRepo(db *DB) *SaveRepo {
	return &SaveRepo{db: db}
}

// Save writes row into its slot, replacing what was there.
func (r *SaveRepo) Save(ctx context.Context, row *SaveRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO session_saves (slot, level, tick, version, image)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (slot) DO UPDATE SET
		     level = EXCLUDED.level,
		     tick = EXCLUDED.tick,
		     version = EXCLUDED.version,
		     image = EXCLUDED.image,
		     updated_at = NOW()`,
		row.Slot, row.Level, int64(row.Tick), row.Version, row.Image,
	)
	if err != nil {
		return fmt.Errorf("save slot %q: %w", row.Slot, err)
	}
	return nil
}

func (r *SaveRepo) Load(ctx context.Context, slot string) (*SaveRow, error) {
	row := &SaveRow{}
	var tick int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT slot, level, tick, version, image, created_at, updated_at
		 FROM session_saves WHERE slot = $1`, slot,
	).Scan(&row.Slot, &row.Level, &tick, &row.Version, &row.Image, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load slot %q: %w", slot, ErrNoSave)
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", slot, err)
	}
	row.Tick = uint32(tick)
	return row, nil
}

// List returns every slot without its image, newest first.
func (r *SaveRepo) List(ctx context.Context) ([]SaveRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT slot, level, tick, version, created_at, updated_at
		 FROM session_saves ORDER BY updated_at DESC, slot`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaveRow
	for rows.Next() {
		var s SaveRow
		var tick int64
		if err := rows.Scan(&s.Slot, &s.Level, &tick, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Tick = uint32(tick)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a slot. Deleting an empty slot is not an error.
func (r *SaveRepo) Delete(ctx context.Context, slot string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM session_saves WHERE slot = $1`, slot)
	return err
}
