package data

import (
	"fmt"
	"os"
	"strings"

	"github.com/icbgo/icb/internal/sound"
	"gopkg.in/yaml.v3"
)

// SubtitleTable maps sound ids to caption text.
type SubtitleTable struct {
	text map[sound.ID]string
}

// LoadSubtitles loads subtitles.yaml: a map of sound name to caption.
func LoadSubtitles(path string) (*SubtitleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	var byName map[string]string
	if err := yaml.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("parse subtitles: %w", err)
	}
	t := &SubtitleTable{text: make(map[sound.ID]string, len(byName))}
	for name, text := range byName {
		t.text[sound.Hash(name)] = strings.TrimSpace(text)
	}
	return t, nil
}

// Lookup returns the caption for a sound. Missing captions are normal.
func (t *SubtitleTable) Lookup(id sound.ID) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t.text[id]
	return s, ok && s != ""
}

func (t *SubtitleTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.text)
}

// SfxEntry describes a sound effect's audible range and length.
type SfxEntry struct {
	Name       string `yaml:"name"`
	MinDist    int    `yaml:"min_dist"`
	MaxDist    int    `yaml:"max_dist"`
	DurationMs int    `yaml:"duration_ms"`
	ToneHz     int    `yaml:"tone_hz"` // 0 = mixer default
}

func (e *SfxEntry) ID() sound.ID { return sound.Hash(e.Name) }

func (e *SfxEntry) Envelope() sound.Envelope {
	return sound.Envelope{MinDist: e.MinDist, MaxDist: e.MaxDist}
}

// SfxTable provides lookup of sound effects by name.
type SfxTable struct {
	byName map[string]*SfxEntry
}

// LoadSfxTable loads sfx.yaml.
func LoadSfxTable(path string) (*SfxTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sfx list: %w", err)
	}
	return ParseSfxTable(raw)
}

func ParseSfxTable(raw []byte) (*SfxTable, error) {
	var entries []SfxEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse sfx list: %w", err)
	}
	t := &SfxTable{byName: make(map[string]*SfxEntry, len(entries))}
	for i := range entries {
		e := &entries[i]
		if e.MaxDist < e.MinDist {
			return nil, fmt.Errorf("sfx %q: max_dist %d < min_dist %d", e.Name, e.MaxDist, e.MinDist)
		}
		t.byName[e.Name] = e
	}
	return t, nil
}

// Get returns the named effect, or nil.
func (t *SfxTable) Get(name string) *SfxEntry {
	if t == nil {
		return nil
	}
	return t.byName[name]
}

func (t *SfxTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.byName)
}
