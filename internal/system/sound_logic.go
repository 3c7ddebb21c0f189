package system

import (
	"time"

	coresys "github.com/icbgo/icb/internal/core/system"
	"github.com/icbgo/icb/internal/sound"
)

// SoundLogicSystem ages recent sound positions and the subtitle timer.
// Phase 2 (PostUpdate).
type SoundLogicSystem struct {
	router *sound.Router
}

func NewSoundLogicSystem(router *sound.Router) *SoundLogicSystem {
	return &SoundLogicSystem{router: router}
}

func (s *SoundLogicSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SoundLogicSystem) Update(_ time.Duration) {
	s.router.Cycle()
}
