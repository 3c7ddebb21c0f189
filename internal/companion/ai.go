package companion

import (
	"fmt"
	"math/rand"

	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/core/event"
	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// Deps are the collaborators the state machine drives.
type Deps struct {
	World   *world.State
	Paths   Pathfinder
	Sight   LineOfSight
	Anim    Animator
	Sockets Sockets
	Gun     Gunfire
	Hearing Hearing // optional; nil disables gunshot polling
	Bus     *event.Bus
	Rand    *rand.Rand
	Log     *zap.Logger
}

// State is the companion's saved state.
type State struct {
	ID           world.ObjectID
	FollowCursor int
	Think        ThinkMode
	Do           DoMode

	NextMoveTimer int
	PauseTicks    int // arrival pause
	FightPause    int

	HasTarget        bool
	Target           world.ObjectID
	PermissionToFire bool

	CatchUpDistSq float64
	LostDistSq    float64

	TurnTarget      float64
	RouteStartFloor int
}

// AI is the single companion of a session.
type AI struct {
	cfg  config.CompanionConfig
	deps Deps
	log  *zap.Logger

	registered bool
	st         State
	gosub      *Gosub
	heardMark  uint32 // hearing mark of the last gunshot noticed
}

func New(cfg config.CompanionConfig, deps Deps) *AI {
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(1))
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	a := &AI{cfg: cfg, deps: deps, log: deps.Log.Named("companion")}
	a.Reset()
	return a
}

// Reset forgets the companion at a session boundary.
func (a *AI) Reset() {
	a.registered = false
	a.gosub = nil
	a.heardMark = 0
	cu, lost := float64(a.cfg.CatchUpDist), float64(a.cfg.LostDist)
	a.st = State{
		ID:              world.NoObject,
		Target:          world.NoObject,
		CatchUpDistSq:   cu * cu,
		LostDistSq:      lost * lost,
		RouteStartFloor: world.NoFloor,
	}
}

// ===== Registration & script-facing operations =====

// Register makes id the session's companion. There can only be one.
func (a *AI) Register(id world.ObjectID) error {
	if a.registered {
		return fmt.Errorf("register %d (have %d): %w", id, a.st.ID, ErrCompanionRegistered)
	}
	o := a.deps.World.Object(id)
	if o == nil {
		return fmt.Errorf("register %d: %w", id, world.ErrBadObject)
	}
	if !o.IsMega() {
		return fmt.Errorf("register %q: %w", o.Name, ErrNotMega)
	}
	a.registered = true
	a.st.ID = id
	a.st.FollowCursor = a.deps.World.History.Cursor()
	if a.deps.Hearing != nil {
		// shots heard before registration aren't ours to react to
		a.heardMark, _ = a.deps.Hearing.HeardSince(id, sound.Gunshot, 0)
	}
	a.log.Info("companion registered", zap.String("name", o.Name), zap.Int32("id", int32(id)))
	return nil
}

func (a *AI) Registered() bool   { return a.registered }
func (a *AI) ID() world.ObjectID { return a.st.ID }

// State returns a copy of the companion's state.
func (a *AI) State() State { return a.st }

// StartFollowing resyncs with the player's history and starts escorting.
// Nothing moves this tick.
func (a *AI) StartFollowing() {
	a.st.Think = ThinkFollowing
	a.st.FollowCursor = a.deps.World.History.Cursor()
	a.st.PermissionToFire = false
	a.st.NextMoveTimer = a.cfg.StartDelay
	a.setDo(Thinking)
}

// StopFollowing hands the companion back to its own script logic.
func (a *AI) StopFollowing() {
	a.st.Think = ThinkNothing
	a.deps.Paths.Cancel(a.st.ID)
	a.setDo(Thinking)
}

// NotifyHeardGunshot grants permission to fire only if the companion could
// have witnessed the shot: same room and sight of the player, or already
// fighting.
func (a *AI) NotifyHeardGunshot() {
	if a.st.Do == FightHelp {
		a.st.PermissionToFire = true
		return
	}
	if a.st.FollowCursor == a.deps.World.History.Cursor() &&
		a.deps.Sight.LineOfSight(a.st.ID, a.deps.World.PlayerID()) {
		a.st.PermissionToFire = true
	}
}

// GrantPermission is a direct order to open fire.
func (a *AI) GrantPermission() {
	a.st.PermissionToFire = true
}

// Calibrate sets the catch-up and lost distances.
func (a *AI) Calibrate(catchUp, lost int) {
	a.st.CatchUpDistSq = float64(catchUp) * float64(catchUp)
	a.st.LostDistSq = float64(lost) * float64(lost)
}

// WaitForPlayerToClear holds the companion until the player leaves a tight
// spot (a lift, a doorway).
func (a *AI) WaitForPlayerToClear() {
	a.deps.Paths.Cancel(a.st.ID)
	a.setDo(GoCordGo)
}

// TakeGosub returns the interact sub-script the companion wants run, once.
func (a *AI) TakeGosub() (Gosub, bool) {
	if a.gosub == nil {
		return Gosub{}, false
	}
	g := *a.gosub
	a.gosub = nil
	return g, true
}

// ReturnFromInteract resumes following after an interact sub-script. The
// interaction entry and the arrival it led to are both skipped, but never
// past the player's live cursor.
func (a *AI) ReturnFromInteract() {
	if a.st.Do != InteractFollow {
		return
	}
	live := a.deps.World.History.Cursor()
	next := world.WrapHistory(a.st.FollowCursor + 1)
	if next != live {
		next = world.WrapHistory(next + 1)
	}
	a.st.FollowCursor = next
	a.setDo(Thinking)
}

// CordDistSq is the squared XZ distance to the player.
func (a *AI) CordDistSq() float64 {
	me, p := a.me(), a.player()
	if me == nil || p == nil {
		return 0
	}
	return world.DistSqXZ(me, p)
}

// Arrived reports whether the companion is standing near the player.
func (a *AI) Arrived() bool {
	return a.st.Do == Thinking && a.CordDistSq() < a.st.CatchUpDistSq
}

// ===== Per-tick processing =====

// Process runs one game tick: notices a newly heard gunshot, then steps the state
// machine until a step reports the tick is done, bounded by MaxStepsPerTick.
func (a *AI) Process() mcode.Code {
	if !a.registered {
		return mcode.Repeat
	}
	if a.deps.Hearing != nil {
		var heard bool
		a.heardMark, heard = a.deps.Hearing.HeardSince(a.st.ID, sound.Gunshot, a.heardMark)
		if heard {
			a.NotifyHeardGunshot()
		}
	}
	steps := a.cfg.MaxStepsPerTick
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if a.Tick() {
			break
		}
	}
	if a.gosub != nil {
		return mcode.Gosub
	}
	return mcode.Repeat
}

// Tick is one state-machine step. It returns true when nothing more should
// happen this game tick.
func (a *AI) Tick() bool {
	me, p := a.me(), a.player()
	if me == nil || p == nil {
		return true
	}
	switch a.st.Think {
	case ThinkNothing:
		return true
	case ThinkLost:
		return a.lost(me, p)
	}

	switch a.st.Do {
	case Thinking:
		return a.thinking(me, p)
	case Routing:
		return a.routing(me, p)
	case Chasing:
		return a.chasing(me, p)
	case Bumbling:
		return a.bumbling(me, p)
	case Pausing:
		return a.pausing()
	case AnimateToThink:
		return a.animateTo(me, Thinking)
	case AnimateToFightHelp:
		return a.animateTo(me, FightHelp)
	case DisarmToThink:
		return a.disarmToThink(me)
	case GetWeaponOut:
		return a.getWeaponOut(me)
	case FightHelp:
		return a.fightHelp(me, p)
	case TurnToFaceObject:
		return a.turnToFaceObject(me)
	case TurnRandom:
		return a.turnRandom(me)
	case InteractFollow:
		return true
	case GoCordGo:
		return a.goCordGo(me, p)
	}
	a.log.Warn("unknown do mode, thinking", zap.Int("mode", int(a.st.Do)))
	a.setDo(Thinking)
	return true
}

// ===== Helpers =====

func (a *AI) me() *world.Object {
	if !a.registered {
		return nil
	}
	return a.deps.World.Object(a.st.ID)
}

func (a *AI) player() *world.Object { return a.deps.World.Player() }

func (a *AI) setDo(m DoMode) {
	if a.st.Do == m {
		return
	}
	from := a.st.Do
	a.st.Do = m
	a.log.Debug("do mode",
		zap.Stringer("from", from),
		zap.Stringer("to", m),
		zap.Stringer("think", a.st.Think))
	event.Emit(a.deps.Bus, event.CompanionModeChanged{
		Companion: a.st.ID,
		Think:     a.st.Think.String(),
		From:      from.String(),
		To:        m.String(),
	})
}

func (a *AI) randRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + a.deps.Rand.Intn(hi-lo+1)
}

func (a *AI) fightPause() int {
	return a.randRange(a.cfg.FightPauseMin, a.cfg.FightPauseMax)
}

// sameFloorY compares floor heights, not head heights.
func sameFloorY(a, b *world.Object) bool {
	d := a.Y - b.Y
	return d > -1 && d < 1
}

// turnToward turns o one step toward pan at speed and reports whether it
// got there.
func turnToward(o *world.Object, pan, speed float64) bool {
	d := world.PanDelta(o.Pan, pan)
	if d <= speed && d >= -speed {
		o.Pan = world.NormalisePan(pan)
		return true
	}
	if d > 0 {
		o.Pan = world.NormalisePan(o.Pan + speed)
	} else {
		o.Pan = world.NormalisePan(o.Pan - speed)
	}
	return false
}
