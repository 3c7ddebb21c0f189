package companion

import (
	"github.com/icbgo/icb/internal/anim"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// facing away: more than a quarter turn off the bearing
const facingAwayPan = 0.25

func (a *AI) getWeaponOut(me *world.Object) bool {
	if a.st.FightPause > 0 {
		a.st.FightPause--
		return true
	}
	me.WeaponOut = true
	if t, ok := a.findTarget(me); ok {
		a.st.HasTarget, a.st.Target = true, t
	}
	a.st.FightPause = a.fightPause()
	a.deps.Anim.Start(me.ID, anim.DrawWeapon)
	a.setDo(AnimateToFightHelp)
	return false
}

func (a *AI) fightHelp(me, p *world.Object) bool {
	if a.shouldDisarm(me, p) {
		a.st.HasTarget = false
		a.st.Target = world.NoObject
		a.deps.Anim.Start(me.ID, anim.Disarm)
		a.setDo(DisarmToThink)
		return false
	}

	if a.st.HasTarget && !a.validTarget(a.st.Target) {
		a.log.Debug("target lost", zap.Int32("target", int32(a.st.Target)))
		a.st.HasTarget = false
		a.st.Target = world.NoObject
		if t, ok := a.findTarget(me); ok {
			a.st.HasTarget, a.st.Target = true, t
			a.setDo(TurnToFaceObject)
			return false
		}
		a.st.TurnTarget = world.NormalisePan(a.deps.Rand.Float64() - 0.5)
		a.setDo(TurnRandom)
		return false
	}

	if !a.st.HasTarget {
		if t, ok := a.findTarget(me); ok {
			a.st.HasTarget, a.st.Target = true, t
			a.setDo(TurnToFaceObject)
			return false
		}
	}

	if a.st.HasTarget {
		t := a.deps.World.Object(a.st.Target)
		want := world.PanTo(me.X, me.Z, t.X, t.Z)
		if d := world.PanDelta(me.Pan, want); d > a.cfg.RandomTurnEpsilon || d < -a.cfg.RandomTurnEpsilon {
			a.setDo(TurnToFaceObject)
			return false
		}
	}

	if a.st.FightPause > 0 {
		a.st.FightPause--
		return true
	}

	if a.st.HasTarget && a.st.PermissionToFire {
		a.st.PermissionToFire = false
		a.log.Info("companion fires", zap.Int32("target", int32(a.st.Target)))
		a.deps.Gun.Fire(me.ID, a.st.Target)
		a.deps.Anim.Start(me.ID, anim.Fire)
		a.st.FightPause = a.fightPause()
		a.setDo(AnimateToFightHelp)
		return true
	}
	return true
}

// shouldDisarm is true when backing the player up no longer makes sense.
func (a *AI) shouldDisarm(me, p *world.Object) bool {
	ws := a.deps.World
	if a.st.FollowCursor != ws.History.Cursor() {
		return true // player left the room
	}
	if !ws.OnCamera(me.ID) {
		return true
	}
	seen := a.deps.Sight.LineOfSight(me.ID, p.ID)
	if !p.Armed && seen && !a.st.PermissionToFire {
		return true
	}
	if ws.OnCamera(p.ID) && !seen {
		off := world.PanDelta(me.Pan, world.PanTo(me.X, me.Z, p.X, p.Z))
		if off > facingAwayPan || off < -facingAwayPan {
			return true
		}
	}
	return false
}

// findTarget returns the first mega, in registration order, that is alive,
// free, hostile, on camera and in sight. First match wins, not nearest.
func (a *AI) findTarget(me *world.Object) (world.ObjectID, bool) {
	ws := a.deps.World
	found := world.NoObject
	ws.Each(func(o *world.Object) bool {
		if !o.IsMega() || o.ID == me.ID || o.ID == ws.PlayerID() {
			return true
		}
		if o.Dead || o.Held || !o.Hostile {
			return true
		}
		if !ws.OnCamera(o.ID) || !a.deps.Sight.LineOfSight(me.ID, o.ID) {
			return true
		}
		found = o.ID
		return false
	})
	return found, found != world.NoObject
}

// validTarget re-checks the current target each tick.
func (a *AI) validTarget(id world.ObjectID) bool {
	t := a.deps.World.Object(id)
	return t != nil && !t.Dead && a.deps.World.OnCamera(id)
}

func (a *AI) turnToFaceObject(me *world.Object) bool {
	t := a.deps.World.Object(a.st.Target)
	if !a.st.HasTarget || t == nil {
		a.setDo(FightHelp)
		return false
	}
	if turnToward(me, world.PanTo(me.X, me.Z, t.X, t.Z), a.cfg.TurnSpeed) {
		a.setDo(FightHelp)
		return false
	}
	return true
}

func (a *AI) turnRandom(me *world.Object) bool {
	d := world.PanDelta(me.Pan, a.st.TurnTarget)
	if d < a.cfg.RandomTurnEpsilon && d > -a.cfg.RandomTurnEpsilon {
		me.Pan = a.st.TurnTarget // snap, too small to animate
		a.setDo(FightHelp)
		return false
	}
	if turnToward(me, a.st.TurnTarget, a.cfg.TurnSpeed) {
		a.setDo(FightHelp)
		return false
	}
	return true
}

func (a *AI) disarmToThink(me *world.Object) bool {
	if !a.deps.Anim.Step(me.ID) {
		return true
	}
	me.WeaponOut = false
	a.setDo(Thinking)
	return true
}
