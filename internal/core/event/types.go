package event

import "github.com/icbgo/icb/internal/world"

// CompanionModeChanged is emitted whenever the companion's activity state
// changes.
type CompanionModeChanged struct {
	Companion world.ObjectID
	Think     string
	From      string
	To        string
}

// CompanionLost is emitted when the companion can no longer replay the
// player's history (e.g. an interaction it has no socket for).
type CompanionLost struct {
	Companion world.ObjectID
	Cursor    int
	Target    world.ObjectID
}

// SoundPosted is emitted for every routed sound event.
type SoundPosted struct {
	Emitter   world.ObjectID
	Sound     uint32
	X, Y, Z   float64
	Listeners int // subscribers that received a non-zero volume
}

// SubtitleShown is emitted when a sound starts a subtitle countdown.
type SubtitleShown struct {
	Sound uint32
	Text  string
	Ticks int
}
