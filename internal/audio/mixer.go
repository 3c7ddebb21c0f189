package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/data"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// Mixer turns played sound effects into gain-scaled tones mixed into one
// stream. The simulator has no speaker, so the stream is drained per tick.
type Mixer struct {
	model   *sound.Model
	mixer   *beep.Mixer
	rate    beep.SampleRate
	toneHz  float64
	enabled bool
	log     *zap.Logger

	buf    [][2]float64
	played int
}

func NewMixer(model *sound.Model, cfg config.AudioConfig, log *zap.Logger) *Mixer {
	return &Mixer{
		model:   model,
		mixer:   &beep.Mixer{},
		rate:    beep.SampleRate(cfg.SampleRate),
		toneHz:  cfg.ToneHz,
		enabled: cfg.Enabled,
		log:     log.Named("audio"),
	}
}

// Play queues sfx as heard by listener. Sounds the listener can't hear
// through floors are not queued. Returns the playback volume.
func (m *Mixer) Play(listener world.ObjectID, x, y, z float64, sfx *data.SfxEntry) int {
	if sfx == nil {
		return 0
	}
	vol := m.model.ComputeVolume(sound.ForPlayback, listener, x, y, z, sfx.MinDist, sfx.MaxDist)
	if vol == 0 || !m.enabled {
		return vol
	}
	hz := m.toneHz
	if sfx.ToneHz > 0 {
		hz = float64(sfx.ToneHz)
	}
	dur := time.Duration(sfx.DurationMs) * time.Millisecond
	if dur <= 0 {
		dur = 100 * time.Millisecond
	}
	tone := beep.Take(m.rate.N(dur), newTone(hz, m.rate))
	m.mixer.Add(newVolume(tone, float64(vol)/sound.MaxVolume))
	m.played++
	m.log.Debug("sfx queued", zap.String("sfx", sfx.Name), zap.Int("volume", vol))
	return vol
}

// Drain streams d worth of mixed audio and returns the peak amplitude.
func (m *Mixer) Drain(d time.Duration) float64 {
	if m.mixer.Len() == 0 {
		return 0
	}
	n := m.rate.N(d)
	if cap(m.buf) < n {
		m.buf = make([][2]float64, n)
	}
	buf := m.buf[:n]
	for i := range buf {
		buf[i] = [2]float64{}
	}
	got, _ := m.mixer.Stream(buf)
	peak := 0.0
	for _, s := range buf[:got] {
		peak = math.Max(peak, math.Max(math.Abs(s[0]), math.Abs(s[1])))
	}
	return peak
}

// Queued is the number of effects still playing.
func (m *Mixer) Queued() int { return m.mixer.Len() }

// Played counts every effect queued since the last Reset.
func (m *Mixer) Played() int { return m.played }

func (m *Mixer) Reset() {
	m.mixer.Clear()
	m.played = 0
}

// newVolume scales a stream by a linear gain. math.Log2(0) is -Inf, so a
// zero gain is silent instead.
func newVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// tone is an endless sine oscillator; callers bound it with beep.Take.
type tone struct {
	freq  float64
	phase float64
	rate  beep.SampleRate
}

func newTone(freq float64, rate beep.SampleRate) *tone {
	return &tone{freq: freq, rate: rate}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * t.phase)
		samples[i][0], samples[i][1] = v, v
		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
