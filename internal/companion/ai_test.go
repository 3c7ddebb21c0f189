package companion

import (
	"math/rand"
	"testing"

	"github.com/icbgo/icb/internal/anim"
	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/core/event"
	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===== Fakes =====

type plannedRoute struct {
	x, z      float64
	run, mask bool
}

type fakePaths struct {
	fail    bool
	steps   int // Process calls before arrival
	setups  []plannedRoute
	lasers  []plannedRoute
	cancels int
	left    map[world.ObjectID]int
}

func newFakePaths() *fakePaths { return &fakePaths{left: map[world.ObjectID]int{}} }

func (f *fakePaths) SetupRoute(id world.ObjectID, x, z float64, run, mask bool) bool {
	f.setups = append(f.setups, plannedRoute{x, z, run, mask})
	if f.fail {
		return false
	}
	f.left[id] = f.steps
	return true
}

func (f *fakePaths) Laser(id world.ObjectID, x, z float64, run bool) {
	f.lasers = append(f.lasers, plannedRoute{x: x, z: z, run: run})
	f.left[id] = f.steps
}

func (f *fakePaths) Process(id world.ObjectID) bool {
	n := f.left[id]
	if n <= 0 {
		delete(f.left, id)
		return true
	}
	f.left[id] = n - 1
	return false
}

func (f *fakePaths) Cancel(id world.ObjectID) {
	f.cancels++
	delete(f.left, id)
}

type fakeSight map[world.ObjectID]bool

func (s fakeSight) LineOfSight(_, to world.ObjectID) bool { return s[to] }

type fakeAnim struct{ started []anim.Kind }

func (a *fakeAnim) Start(_ world.ObjectID, k anim.Kind) { a.started = append(a.started, k) }
func (a *fakeAnim) Step(world.ObjectID) bool            { return true }

type fakeSockets map[world.ObjectID][]string

func (s fakeSockets) HasSocket(id world.ObjectID, socket string) bool {
	for _, n := range s[id] {
		if n == socket {
			return true
		}
	}
	return false
}

type shot struct{ shooter, target world.ObjectID }

type fakeGun struct{ shots []shot }

func (g *fakeGun) Fire(shooter, target world.ObjectID) {
	g.shots = append(g.shots, shot{shooter, target})
}

type fakeHearing struct {
	seq  uint32
	last sound.ID
}

func (h *fakeHearing) hear(id sound.ID) {
	h.seq++
	h.last = id
}

func (h *fakeHearing) HeardSince(_ world.ObjectID, id sound.ID, mark uint32) (uint32, bool) {
	return h.seq, h.seq != mark && h.last == id
}

// ===== Fixture =====

type fixture struct {
	ws      *world.State
	ai      *AI
	paths   *fakePaths
	sight   fakeSight
	anim    *fakeAnim
	sockets fakeSockets
	gun     *fakeGun
	hearing *fakeHearing
	bus     *event.Bus

	cord, chi, guard, lift world.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ws := world.NewState(world.NewFloors([]world.FloorRect{
		{Name: "hall", Camera: "cam_hall", X0: 0, Z0: 0, X1: 1000, Z1: 1000, Y: 0, Height: 200},
		{Name: "lift", Camera: "cam_lift", X0: 2000, Z0: 0, X1: 2100, Z1: 100, Y: 0, Height: 200},
		{Name: "loft", Camera: "cam_loft", X0: 0, Z0: 0, X1: 1000, Z1: 1000, Y: 300, Height: 200},
	}))
	f := &fixture{
		ws:      ws,
		paths:   newFakePaths(),
		sight:   fakeSight{},
		anim:    &fakeAnim{},
		sockets: fakeSockets{},
		gun:     &fakeGun{},
		hearing: &fakeHearing{},
		bus:     event.NewBus(),
	}
	add := func(o *world.Object) world.ObjectID {
		id, err := ws.AddObject(o)
		require.NoError(t, err)
		return id
	}
	f.cord = add(&world.Object{Name: "cord", Kind: world.KindMega, X: 500, Z: 500})
	f.chi = add(&world.Object{Name: "chi", Kind: world.KindMega, X: 450, Z: 500})
	f.guard = add(&world.Object{Name: "guard", Kind: world.KindMega, X: 800, Z: 800, Hostile: true})
	f.lift = add(&world.Object{Name: "lift", Kind: world.KindProp, X: 2050, Z: 50})
	require.NoError(t, ws.SetPlayer(f.cord))

	f.ai = New(config.Defaults().Companion, Deps{
		World:   ws,
		Paths:   f.paths,
		Sight:   f.sight,
		Anim:    f.anim,
		Sockets: f.sockets,
		Gun:     f.gun,
		Hearing: f.hearing,
		Bus:     f.bus,
		Rand:    rand.New(rand.NewSource(7)),
		Log:     zap.NewNop(),
	})
	require.NoError(t, f.ai.Register(f.chi))
	return f
}

// follow starts escorting with the idle timer parked far away so the
// companion doesn't wander during a test.
func (f *fixture) follow() {
	f.ai.StartFollowing()
	f.ai.st.NextMoveTimer = 1000
}

// fighting puts the companion into FightHelp facing the guard, with the
// armed player in view.
func (f *fixture) fighting() {
	f.follow()
	f.ws.SetCamera("cam_hall")
	f.ws.Object(f.cord).Armed = true
	f.sight[f.cord] = true
	f.sight[f.guard] = true

	me, g := f.ws.Object(f.chi), f.ws.Object(f.guard)
	me.WeaponOut = true
	me.Pan = world.PanTo(me.X, me.Z, g.X, g.Z)
	f.ai.st.Do = FightHelp
	f.ai.st.HasTarget = true
	f.ai.st.Target = f.guard
	f.ai.st.FightPause = 0
}

// ===== Registration =====

func TestRegisterOnlyOnce(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.ai.Registered())
	assert.ErrorIs(t, f.ai.Register(f.guard), ErrCompanionRegistered)
}

func TestRegisterRejectsPropsAndBadIDs(t *testing.T) {
	f := newFixture(t)
	ai := New(config.Defaults().Companion, Deps{World: f.ws, Paths: f.paths})
	assert.ErrorIs(t, ai.Register(f.lift), ErrNotMega)
	assert.ErrorIs(t, ai.Register(99), world.ErrBadObject)
	assert.False(t, ai.Registered())
	assert.Equal(t, mcode.Repeat, ai.Process())
}

func TestStartFollowingResyncs(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.ws.History.Advance(world.HistoryEntry{FirstX: 10, FirstZ: 10})
	}
	f.ai.GrantPermission()

	f.ai.StartFollowing()
	st := f.ai.State()
	assert.Equal(t, ThinkFollowing, st.Think)
	assert.Equal(t, Thinking, st.Do)
	assert.Equal(t, 3, st.FollowCursor)
	assert.False(t, st.PermissionToFire)
	assert.Equal(t, config.Defaults().Companion.StartDelay, st.NextMoveTimer)
	assert.Empty(t, f.paths.setups, "nothing moves on the call itself")

	f.ai.StopFollowing()
	assert.Equal(t, ThinkNothing, f.ai.State().Think)
	assert.True(t, f.ai.Tick(), "idle companion does nothing")
}

func TestCalibrateSquares(t *testing.T) {
	f := newFixture(t)
	f.ai.Calibrate(30, 400)
	assert.Equal(t, 900.0, f.ai.State().CatchUpDistSq)
	assert.Equal(t, 160000.0, f.ai.State().LostDistSq)
}

// ===== Following =====

func TestLostReacquiresOnSameFloor(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.ai.st.Think = ThinkLost
	f.ws.MoveObject(f.cord, 2050, 0, 50)
	f.ws.History.Advance(world.HistoryEntry{FirstX: 2050, FirstZ: 50})
	f.ws.History.Advance(world.HistoryEntry{FirstX: 500, FirstZ: 500})

	f.ai.Tick()
	assert.Equal(t, ThinkLost, f.ai.State().Think, "player still on another floor")

	f.ws.MoveObject(f.cord, 500, 0, 500)
	f.ai.Tick()
	st := f.ai.State()
	assert.Equal(t, ThinkFollowing, st.Think)
	assert.Equal(t, f.ws.History.Cursor(), st.FollowCursor)
	assert.Equal(t, 2, st.FollowCursor)
}

func TestChaseGuardFollowsLostDistance(t *testing.T) {
	lost := float64(config.Defaults().Companion.LostDist)
	for _, d := range []float64{0, 100, lost - 1, lost, lost + 1, 2 * lost} {
		f := newFixture(t)
		f.follow()
		f.ws.MoveObject(f.chi, 0, 0, 0)
		f.ws.MoveObject(f.cord, d, 0, 0)

		f.ai.Tick()
		chasing := f.ai.State().Do == Chasing
		assert.Equal(t, d*d >= lost*lost, chasing, "d=%v", d)
		if chasing {
			require.Len(t, f.paths.setups, 1)
			assert.True(t, f.paths.setups[0].run)
			assert.True(t, f.paths.setups[0].mask, "chase routes use a barrier mask")
		}
	}
}

func TestChaseNeedsSameFloorHeight(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.ws.MoveObject(f.chi, 0, 0, 0)
	f.ws.MoveObject(f.cord, 900, 300, 900)

	f.ai.Tick()
	assert.Equal(t, Thinking, f.ai.State().Do)
	assert.Empty(t, f.paths.setups)
}

func TestChaseFailedRouteFallsBackToIdle(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.paths.fail = true
	f.ws.MoveObject(f.chi, 0, 0, 0)

	assert.True(t, f.ai.Tick())
	assert.Equal(t, Thinking, f.ai.State().Do)
	assert.Equal(t, 999, f.ai.State().NextMoveTimer)
}

func TestChaseAbandonsWhenCaughtUp(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.paths.steps = 10
	f.ws.MoveObject(f.chi, 0, 0, 0)
	f.ai.Tick()
	require.Equal(t, Chasing, f.ai.State().Do)

	f.ai.Tick()
	assert.Equal(t, Chasing, f.ai.State().Do)

	f.ws.MoveObject(f.chi, 490, 0, 500)
	f.ai.Tick()
	assert.Equal(t, Thinking, f.ai.State().Do)
	assert.Equal(t, 1, f.paths.cancels)
}

func TestChaseFinishStands(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.ws.MoveObject(f.chi, 0, 0, 0)
	f.ai.Tick()
	require.Equal(t, Chasing, f.ai.State().Do)

	f.ws.MoveObject(f.chi, 300, 0, 500) // route ended inside lost range
	f.ai.Tick()
	assert.Equal(t, AnimateToThink, f.ai.State().Do)
	assert.Equal(t, []anim.Kind{anim.Stand}, f.anim.started)

	f.ai.Tick()
	assert.Equal(t, Thinking, f.ai.State().Do)
}

func TestIdleTimerThenBumble(t *testing.T) {
	f := newFixture(t)
	f.ai.StartFollowing()
	f.ai.st.NextMoveTimer = 2

	assert.True(t, f.ai.Tick())
	assert.True(t, f.ai.Tick())
	assert.Empty(t, f.paths.setups)

	f.paths.steps = 5
	assert.False(t, f.ai.Tick())
	assert.Equal(t, Bumbling, f.ai.State().Do)
	require.Len(t, f.paths.setups, 1)
	r := f.paths.setups[0]
	assert.False(t, r.run)
	assert.True(t, r.x >= 0 && r.x <= 1000 && r.z >= 0 && r.z <= 1000, "spot inside the current floor")
	st := f.ai.State()
	assert.GreaterOrEqual(t, st.NextMoveTimer, config.Defaults().Companion.IdleMoveMin)
	assert.LessOrEqual(t, st.NextMoveTimer, config.Defaults().Companion.IdleMoveMax)
}

func TestBumbleAbandonedWhenPlayerMoves(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.ws.MoveObject(f.chi, 400, 0, 500)
	f.paths.steps = 5
	f.ai.st.NextMoveTimer = 0
	f.ai.Tick()
	require.Equal(t, Bumbling, f.ai.State().Do)

	f.ws.History.Advance(world.HistoryEntry{FirstX: 2050, FirstZ: 50})
	f.ai.Tick()
	assert.NotEqual(t, Bumbling, f.ai.State().Do)
	assert.Equal(t, 1, f.paths.cancels)
}

func TestRoomChangeRoutesToNextEntry(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.ws.MoveObject(f.cord, 2050, 0, 50)
	f.ws.History.Advance(world.HistoryEntry{FirstX: 2010, FirstZ: 40})

	assert.False(t, f.ai.Tick())
	st := f.ai.State()
	assert.Equal(t, Routing, st.Do)
	assert.Equal(t, 1, st.FollowCursor)
	require.Len(t, f.paths.setups, 1)
	assert.Equal(t, plannedRoute{x: 2010, z: 40, run: true}, f.paths.setups[0])

	f.ai.Tick()
	assert.Equal(t, Pausing, f.ai.State().Do)
	for i := 0; i < config.Defaults().Companion.ArrivalPause; i++ {
		assert.True(t, f.ai.Tick())
	}
	f.ai.Tick()
	assert.Equal(t, Thinking, f.ai.State().Do)
}

func TestRoomChangeFallsBackToLaser(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.paths.fail = true
	f.ws.MoveObject(f.cord, 2050, 0, 50)
	f.ws.History.Advance(world.HistoryEntry{FirstX: 2010, FirstZ: 40})

	f.ai.Tick()
	assert.Equal(t, Routing, f.ai.State().Do)
	require.Len(t, f.paths.lasers, 1)
	assert.Equal(t, 2010.0, f.paths.lasers[0].x)
}

func TestRoutingInterruptedWhenPlayerReturns(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.paths.steps = 10
	f.ws.MoveObject(f.cord, 2050, 0, 50)
	f.ws.History.Advance(world.HistoryEntry{FirstX: 2010, FirstZ: 40})
	f.ai.Tick()
	require.Equal(t, Routing, f.ai.State().Do)

	f.ws.MoveObject(f.cord, 500, 0, 500)
	f.ai.Tick()
	assert.Equal(t, Thinking, f.ai.State().Do)
	assert.Equal(t, 1, f.paths.cancels)
}

// ===== Interactions =====

func TestInteractionRunsSocketGosub(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.sockets[f.lift] = []string{"interact", "chi"}
	f.ws.History.Advance(world.HistoryEntry{Interaction: true, TargetID: int32(f.lift)})
	f.ws.History.Advance(world.HistoryEntry{FirstX: 2050, FirstZ: 50})

	assert.Equal(t, mcode.Gosub, f.ai.Process())
	assert.Equal(t, InteractFollow, f.ai.State().Do)
	g, ok := f.ai.TakeGosub()
	require.True(t, ok)
	assert.Equal(t, Gosub{Object: f.lift, Socket: "chi"}, g, "chi socket preferred")
	_, ok = f.ai.TakeGosub()
	assert.False(t, ok)

	assert.Equal(t, mcode.Repeat, f.ai.Process(), "waits while the sub-script runs")
	assert.Equal(t, 0, f.ai.State().FollowCursor, "peeked, not advanced")

	f.ai.ReturnFromInteract()
	assert.Equal(t, Thinking, f.ai.State().Do)
	assert.Equal(t, 2, f.ai.State().FollowCursor)
}

func TestInteractReturnStopsAtLiveCursor(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.sockets[f.lift] = []string{"interact"}
	f.ws.History.Advance(world.HistoryEntry{Interaction: true, TargetID: int32(f.lift)})

	f.ai.Tick()
	g, ok := f.ai.TakeGosub()
	require.True(t, ok)
	assert.Equal(t, "interact", g.Socket)

	f.ai.ReturnFromInteract()
	assert.Equal(t, 1, f.ai.State().FollowCursor)
}

func TestInteractionWithoutSocketIsLost(t *testing.T) {
	f := newFixture(t)
	f.follow()
	var lost []event.CompanionLost
	event.Subscribe(f.bus, func(ev event.CompanionLost) { lost = append(lost, ev) })
	f.ws.History.Advance(world.HistoryEntry{Interaction: true, TargetID: int32(f.lift)})

	assert.Equal(t, mcode.Repeat, f.ai.Process())
	assert.Equal(t, ThinkLost, f.ai.State().Think)

	f.bus.SwapBuffers()
	f.bus.DispatchAll()
	require.Len(t, lost, 1)
	assert.Equal(t, f.lift, lost[0].Target)
}

func TestGoCordGoWaitsForPlayerToClear(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.ai.WaitForPlayerToClear()
	assert.Equal(t, GoCordGo, f.ai.State().Do)

	assert.True(t, f.ai.Tick())
	assert.Equal(t, GoCordGo, f.ai.State().Do)

	f.ws.MoveObject(f.cord, 700, 0, 500)
	f.ai.Tick()
	assert.Equal(t, Thinking, f.ai.State().Do)
}

// ===== Fighting =====

func TestGunshotPermissionNeedsWitness(t *testing.T) {
	f := newFixture(t)
	f.follow()

	f.ai.NotifyHeardGunshot()
	assert.False(t, f.ai.State().PermissionToFire, "no line of sight")

	f.sight[f.cord] = true
	f.ws.History.Advance(world.HistoryEntry{FirstX: 1, FirstZ: 1})
	f.ai.NotifyHeardGunshot()
	assert.False(t, f.ai.State().PermissionToFire, "different room")

	f.ai.StartFollowing()
	f.ai.NotifyHeardGunshot()
	assert.True(t, f.ai.State().PermissionToFire)
}

func TestGunshotInFightAlwaysGrants(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	f.sight[f.cord] = false
	f.ai.NotifyHeardGunshot()
	assert.True(t, f.ai.State().PermissionToFire)
}

func TestPermissionIsSingleUse(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	f.ai.NotifyHeardGunshot()
	require.True(t, f.ai.State().PermissionToFire)

	f.ai.Tick()
	require.Len(t, f.gun.shots, 1)
	assert.Equal(t, shot{f.chi, f.guard}, f.gun.shots[0])
	assert.False(t, f.ai.State().PermissionToFire)
	assert.Equal(t, AnimateToFightHelp, f.ai.State().Do)

	f.sight[f.cord] = false
	f.ai.NotifyHeardGunshot()
	assert.False(t, f.ai.State().PermissionToFire)
}

func TestHeardGunshotPolledByProcess(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	f.ai.st.FightPause = 50
	f.hearing.hear(sound.Gunshot)

	f.ai.Process()
	assert.True(t, f.ai.State().PermissionToFire)

	f.ai.st.PermissionToFire = false
	f.ai.Process()
	assert.False(t, f.ai.State().PermissionToFire, "each shot is noticed once")
}

func TestTargetLossPicksRandomTurn(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	f.ws.Object(f.guard).Dead = true

	f.ai.Tick()
	st := f.ai.State()
	assert.False(t, st.HasTarget)
	assert.Equal(t, TurnRandom, st.Do)
}

func TestTargetLossReacquires(t *testing.T) {
	f := newFixture(t)
	second, err := f.ws.AddObject(&world.Object{Name: "guard2", Kind: world.KindMega, X: 900, Z: 100, Hostile: true})
	require.NoError(t, err)
	f.fighting()
	f.sight[second] = true
	f.ws.Object(f.guard).Dead = true

	f.ai.Tick()
	st := f.ai.State()
	assert.True(t, st.HasTarget)
	assert.Equal(t, second, st.Target)
	assert.Equal(t, TurnToFaceObject, st.Do)
}

func TestFindTargetFirstRegisteredWins(t *testing.T) {
	f := newFixture(t)
	near, err := f.ws.AddObject(&world.Object{Name: "near", Kind: world.KindMega, X: 460, Z: 500, Hostile: true})
	require.NoError(t, err)
	f.ws.SetCamera("cam_hall")
	f.sight[f.guard] = true
	f.sight[near] = true

	id, ok := f.ai.findTarget(f.ws.Object(f.chi))
	require.True(t, ok)
	assert.Equal(t, f.guard, id, "registration order, not distance")

	f.ws.Object(f.guard).Held = true
	id, _ = f.ai.findTarget(f.ws.Object(f.chi))
	assert.Equal(t, near, id)
}

func TestArmedPlayerInViewDrawsWeapon(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.ws.SetCamera("cam_hall")
	f.ws.Object(f.cord).Armed = true
	f.sight[f.cord] = true
	f.sight[f.guard] = true

	for i := 0; i < 40 && f.ai.State().Do != FightHelp; i++ {
		f.ai.Process()
	}
	st := f.ai.State()
	require.Equal(t, FightHelp, st.Do)
	assert.True(t, f.ws.Object(f.chi).WeaponOut)
	assert.True(t, st.HasTarget)
	assert.Equal(t, f.guard, st.Target)
	assert.Contains(t, f.anim.started, anim.DrawWeapon)

	f.ai.GrantPermission()
	for i := 0; i < 100 && len(f.gun.shots) == 0; i++ {
		f.ai.Process()
	}
	require.Len(t, f.gun.shots, 1)
	assert.False(t, f.ai.State().PermissionToFire)
}

func TestUnarmedPlayerStandsDown(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	f.ws.Object(f.cord).Armed = false

	f.ai.Tick()
	assert.Equal(t, DisarmToThink, f.ai.State().Do)
	assert.Equal(t, []anim.Kind{anim.Disarm}, f.anim.started)

	f.ai.Tick()
	assert.Equal(t, Thinking, f.ai.State().Do)
	assert.False(t, f.ws.Object(f.chi).WeaponOut)
}

func TestStandsDownOffCamera(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	f.ws.SetCamera("cam_lift")
	f.ai.Tick()
	assert.Equal(t, DisarmToThink, f.ai.State().Do)
}

func TestStandsDownFacingAwayFromUnseenPlayer(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	f.sight[f.cord] = false
	me, p := f.ws.Object(f.chi), f.ws.Object(f.cord)
	me.Pan = world.NormalisePan(world.PanTo(me.X, me.Z, p.X, p.Z) + 0.5)

	f.ai.Tick()
	assert.Equal(t, DisarmToThink, f.ai.State().Do)
}

func TestRandomTurnSnapsSmallDelta(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	me := f.ws.Object(f.chi)
	f.ai.st.Do = TurnRandom
	f.ai.st.TurnTarget = world.NormalisePan(me.Pan + 0.01)

	f.ai.Tick()
	assert.InDelta(t, f.ai.st.TurnTarget, me.Pan, 1e-12)
	assert.Equal(t, FightHelp, f.ai.State().Do)
}

func TestRandomTurnAnimates(t *testing.T) {
	f := newFixture(t)
	f.fighting()
	me := f.ws.Object(f.chi)
	start := me.Pan
	f.ai.st.Do = TurnRandom
	f.ai.st.TurnTarget = world.NormalisePan(start - 0.2)

	assert.True(t, f.ai.Tick())
	assert.InDelta(t, -0.05, world.PanDelta(start, me.Pan), 1e-9, "turns the short way")
	assert.Equal(t, TurnRandom, f.ai.State().Do)
}

// ===== Snapshot =====

func TestRestoreResumesInteractAsThinking(t *testing.T) {
	f := newFixture(t)
	f.follow()
	f.ai.st.Do = InteractFollow
	snap := f.ai.Snapshot()

	f.ai.Reset()
	assert.False(t, f.ai.Registered())
	require.NoError(t, f.ai.Restore(snap))
	assert.True(t, f.ai.Registered())
	assert.Equal(t, Thinking, f.ai.State().Do)

	snap.State.Do = DoMode(99)
	assert.Error(t, f.ai.Restore(snap))
	snap.State.Do = Thinking
	snap.State.ID = f.lift
	assert.ErrorIs(t, f.ai.Restore(snap), ErrNotMega)
}

func TestModeNames(t *testing.T) {
	assert.Equal(t, "FightHelp", FightHelp.String())
	assert.Equal(t, "Pausing", Pausing.String())
	assert.Equal(t, "Lost", ThinkLost.String())
	assert.Equal(t, "Unknown(42)", DoMode(42).String())
}
