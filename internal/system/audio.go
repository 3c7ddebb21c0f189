package system

import (
	"time"

	"github.com/icbgo/icb/internal/audio"
	coresys "github.com/icbgo/icb/internal/core/system"
)

// AudioSystem streams one tick of mixed audio into the headless sink.
// Phase 3 (Output).
type AudioSystem struct {
	mixer *audio.Mixer
	peak  float64
}

func NewAudioSystem(mixer *audio.Mixer) *AudioSystem {
	return &AudioSystem{mixer: mixer}
}

func (s *AudioSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *AudioSystem) Update(dt time.Duration) {
	s.peak = s.mixer.Drain(dt)
}

// Peak is the loudest sample of the last tick.
func (s *AudioSystem) Peak() float64 { return s.peak }
