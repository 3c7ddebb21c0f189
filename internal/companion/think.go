package companion

import (
	"github.com/icbgo/icb/internal/anim"
	"github.com/icbgo/icb/internal/core/event"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// lost waits for the player to walk back into the companion's floor rect.
func (a *AI) lost(me, p *world.Object) bool {
	if p.Floor == world.NoFloor || p.Floor != me.Floor {
		return true
	}
	a.st.Think = ThinkFollowing
	a.st.FollowCursor = a.deps.World.History.Cursor()
	a.log.Info("companion re-acquired player", zap.Int("cursor", a.st.FollowCursor))
	a.setDo(Thinking)
	return false
}

func (a *AI) thinking(me, p *world.Object) bool {
	if a.st.FollowCursor != a.deps.World.History.Cursor() {
		return a.followHistory(me)
	}

	dist := world.DistSqXZ(me, p)
	level := sameFloorY(me, p)

	// back the player up
	if a.deps.World.OnCamera(me.ID) && dist < a.st.LostDistSq && level &&
		(a.st.PermissionToFire || (p.Armed && a.deps.Sight.LineOfSight(me.ID, p.ID))) {
		a.st.FightPause = a.fightPause()
		a.setDo(GetWeaponOut)
		return false
	}

	// fallen behind in the same room
	if dist >= a.st.LostDistSq && level {
		if a.deps.Paths.SetupRoute(me.ID, p.X, p.Z, true, true) {
			a.setDo(Chasing)
			return false
		}
		a.log.Debug("chase route failed", zap.Float64("dist_sq", dist))
	}

	if a.st.NextMoveTimer > 0 {
		a.st.NextMoveTimer--
		return true
	}
	a.st.NextMoveTimer = a.randRange(a.cfg.IdleMoveMin, a.cfg.IdleMoveMax)
	return a.bumble(me)
}

// bumble picks a random spot in the companion's floor rect and strolls there.
func (a *AI) bumble(me *world.Object) bool {
	if me.Floor == world.NoFloor {
		return true
	}
	r := a.deps.World.Floors().Rect(me.Floor)
	x := r.X0 + a.deps.Rand.Float64()*(r.X1-r.X0)
	z := r.Z0 + a.deps.Rand.Float64()*(r.Z1-r.Z0)
	if !a.deps.Paths.SetupRoute(me.ID, x, z, false, false) {
		return true
	}
	a.setDo(Bumbling)
	return false
}

// followHistory handles the player having moved on: the next history entry
// is either an interaction to copy or a room to walk to.
func (a *AI) followHistory(me *world.Object) bool {
	next := world.WrapHistory(a.st.FollowCursor + 1)
	e := a.deps.World.History.Get(next)

	if e.Interaction {
		target := world.ObjectID(e.TargetID)
		for _, sock := range interactSockets {
			if a.deps.Sockets.HasSocket(target, sock) {
				a.gosub = &Gosub{Object: target, Socket: sock}
				a.setDo(InteractFollow)
				return true
			}
		}
		a.log.Warn("companion lost: no interact socket on target",
			zap.Int32("target", e.TargetID),
			zap.Int("cursor", next))
		a.st.Think = ThinkLost
		event.Emit(a.deps.Bus, event.CompanionLost{Companion: me.ID, Cursor: next, Target: target})
		return true
	}

	a.st.FollowCursor = next
	a.st.RouteStartFloor = me.Floor
	far := float64(a.cfg.FarRouteDist)
	run := world.DistSq(me.X, me.Z, e.FirstX, e.FirstZ) > far*far
	if !a.deps.Paths.SetupRoute(me.ID, e.FirstX, e.FirstZ, run, false) {
		a.log.Debug("route failed, using laser route",
			zap.Float64("x", e.FirstX), zap.Float64("z", e.FirstZ))
		a.deps.Paths.Laser(me.ID, e.FirstX, e.FirstZ, run)
	}
	a.setDo(Routing)
	return false
}

func (a *AI) routing(me, p *world.Object) bool {
	// player came straight back to where we set off from
	if p.Floor != world.NoFloor && p.Floor == a.st.RouteStartFloor && me.Floor == p.Floor {
		a.deps.Paths.Cancel(me.ID)
		a.setDo(Thinking)
		return false
	}
	if a.deps.Paths.Process(me.ID) {
		a.st.PauseTicks = a.cfg.ArrivalPause
		a.setDo(Pausing)
	}
	return true
}

func (a *AI) pausing() bool {
	if a.st.PauseTicks > 0 {
		a.st.PauseTicks--
		return true
	}
	a.setDo(Thinking)
	return false
}

func (a *AI) chasing(me, p *world.Object) bool {
	if a.st.FollowCursor != a.deps.World.History.Cursor() ||
		world.DistSqXZ(me, p) < a.st.CatchUpDistSq {
		a.deps.Paths.Cancel(me.ID)
		a.setDo(Thinking)
		return false
	}
	if !a.deps.Paths.Process(me.ID) {
		return true
	}
	if world.DistSqXZ(me, p) < a.st.LostDistSq {
		a.deps.Anim.Start(me.ID, anim.Stand)
		a.setDo(AnimateToThink)
		return true
	}
	a.setDo(Thinking)
	return false
}

func (a *AI) bumbling(me, p *world.Object) bool {
	if a.st.FollowCursor != a.deps.World.History.Cursor() ||
		world.DistSqXZ(me, p) < a.st.CatchUpDistSq/4 {
		a.deps.Paths.Cancel(me.ID)
		a.setDo(Thinking)
		return false
	}
	if a.deps.Paths.Process(me.ID) {
		a.deps.Anim.Start(me.ID, anim.Stand)
		a.setDo(AnimateToThink)
	}
	return true
}

func (a *AI) animateTo(me *world.Object, next DoMode) bool {
	if a.deps.Anim.Step(me.ID) {
		a.setDo(next)
	}
	return true
}

func (a *AI) goCordGo(me, p *world.Object) bool {
	clearDist := float64(a.cfg.CordClearDist)
	if a.st.FollowCursor != a.deps.World.History.Cursor() ||
		world.DistSqXZ(me, p) > clearDist*clearDist {
		a.setDo(Thinking)
		return false
	}
	return true
}
