package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[session]
tick_rate = "0s"
max_ticks = 500

[companion]
catch_up_dist = 80
lost_dist = 320

[sound]
floor_attenuation = 8
`))
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), cfg.Session.TickRate)
	assert.Equal(t, 500, cfg.Session.MaxTicks)
	assert.Equal(t, 80, cfg.Companion.CatchUpDist)
	assert.Equal(t, 320, cfg.Companion.LostDist)
	assert.Equal(t, 8, cfg.Sound.FloorAttenuation)

	// untouched keys keep their defaults
	assert.Equal(t, Defaults().Companion.FightPauseMin, cfg.Companion.FightPauseMin)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte("[companion]\nlost_dist = 0\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("[sound]\ndefault_sensitivity = 11\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("[companion]\nfight_pause_min = 20\nfight_pause_max = 10\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icb.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
