package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/icbgo/icb/internal/persist"
	"github.com/icbgo/icb/internal/savegame"
)

// Store keeps encoded save images by slot.
type Store interface {
	Save(ctx context.Context, slot, level string, tick uint32, image []byte) error
	Load(ctx context.Context, slot string) ([]byte, error)
}

// DBStore keeps saves in PostgreSQL.
type DBStore struct {
	repo *persist.SaveRepo
}

func NewDBStore(repo *persist.SaveRepo) *DBStore {
	return &DBStore{repo: repo}
}

func (d *DBStore) Save(ctx context.Context, slot, level string, tick uint32, image []byte) error {
	return d.repo.Save(ctx, &persist.SaveRow{
		Slot:    slot,
		Level:   level,
		Tick:    tick,
		Version: int16(savegame.Version),
		Image:   image,
	})
}

func (d *DBStore) Load(ctx context.Context, slot string) ([]byte, error) {
	row, err := d.repo.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	return row.Image, nil
}

// FileStore keeps one file per slot under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(slot string) string {
	return filepath.Join(f.dir, slot+".sav")
}

// Save writes through a temp file so a crash never leaves half an image.
func (f *FileStore) Save(_ context.Context, slot, _ string, _ uint32, image []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("save dir: %w", err)
	}
	tmp := f.path(slot) + ".tmp"
	if err := os.WriteFile(tmp, image, 0o644); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := os.Rename(tmp, f.path(slot)); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, slot string) ([]byte, error) {
	image, err := os.ReadFile(f.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("slot %q: %w", slot, persist.ErrNoSave)
	}
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	return image, nil
}
