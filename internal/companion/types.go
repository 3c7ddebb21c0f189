// Package companion is the escort AI: a companion that follows the player's
// room history, idles near them, and backs them up in a fight.
package companion

import (
	"errors"
	"fmt"

	"github.com/icbgo/icb/internal/anim"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
)

var (
	// ErrCompanionRegistered: a second companion tried to register.
	ErrCompanionRegistered = errors.New("companion already registered")
	// ErrNotMega: a mega-only operation named a prop.
	ErrNotMega = errors.New("object is not a mega")
	// ErrNotRegistered: a companion operation ran before registration.
	ErrNotRegistered = errors.New("no companion registered")
)

// ThinkMode is the companion's top-level intent.
type ThinkMode int

const (
	ThinkNothing ThinkMode = iota
	ThinkFollowing
	ThinkLost
)

func (m ThinkMode) String() string {
	switch m {
	case ThinkNothing:
		return "Nothing"
	case ThinkFollowing:
		return "Following"
	case ThinkLost:
		return "Lost"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// DoMode is the companion's current activity.
type DoMode int

const (
	Thinking DoMode = iota
	Routing
	Chasing
	Bumbling
	AnimateToThink
	AnimateToFightHelp
	DisarmToThink
	GetWeaponOut
	TurnRandom
	TurnToFaceObject
	InteractFollow
	FightHelp
	GoCordGo
	Pausing
)

var doModeNames = [...]string{
	Thinking:           "Thinking",
	Routing:            "Routing",
	Chasing:            "Chasing",
	Bumbling:           "Bumbling",
	AnimateToThink:     "AnimateToThink",
	AnimateToFightHelp: "AnimateToFightHelp",
	DisarmToThink:      "DisarmToThink",
	GetWeaponOut:       "GetWeaponOut",
	TurnRandom:         "TurnRandom",
	TurnToFaceObject:   "TurnToFaceObject",
	InteractFollow:     "InteractFollow",
	FightHelp:          "FightHelp",
	GoCordGo:           "GoCordGo",
	Pausing:            "Pausing",
}

func (m DoMode) String() string {
	if m >= 0 && int(m) < len(doModeNames) {
		return doModeNames[m]
	}
	return fmt.Sprintf("Unknown(%d)", int(m))
}

// Valid reports whether m is a known activity.
func (m DoMode) Valid() bool { return m >= 0 && int(m) < len(doModeNames) }

// interactSockets are the socket names the companion can use to follow the
// player through an interaction, in preference order.
var interactSockets = [...]string{"chi", "interact"}

// ===== Black boxes =====

// Pathfinder plans and walks routes.
type Pathfinder interface {
	SetupRoute(id world.ObjectID, x, z float64, run, mask bool) bool
	Laser(id world.ObjectID, x, z float64, run bool)
	Process(id world.ObjectID) bool
	Cancel(id world.ObjectID)
}

type LineOfSight interface {
	LineOfSight(from, to world.ObjectID) bool
}

type Animator interface {
	Start(id world.ObjectID, k anim.Kind)
	Step(id world.ObjectID) bool
}

// Sockets answers whether an object's script defines a named socket.
type Sockets interface {
	HasSocket(id world.ObjectID, socket string) bool
}

// Gunfire resolves a shot from shooter at target.
type Gunfire interface {
	Fire(shooter, target world.ObjectID)
}

// Hearing is the part of the hearing table the companion polls. HeardSince
// never consumes the event, so the mission script can still claim it.
type Hearing interface {
	HeardSince(listener world.ObjectID, id sound.ID, mark uint32) (uint32, bool)
}

// Gosub names the interact sub-script the companion is waiting on.
type Gosub struct {
	Object world.ObjectID
	Socket string
}
