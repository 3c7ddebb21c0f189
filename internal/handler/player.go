package handler

import (
	"fmt"

	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// RecordPlayerInteraction handles fn_record_player_interaction(target):
// the player used target (a lift, a ladder), so the companion has to use it
// too. The target becomes the player's interaction partner.
func RecordPlayerInteraction(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	o := objectParam(deps, p, 0)
	if o == nil {
		return fatal(deps, "fn_record_player_interaction", fmt.Errorf("target %s: %w", p.Str(0), world.ErrBadObject))
	}
	deps.History.RecordInteraction(o.ID)
	deps.World.SetInteractTarget(o.ID)
	*res = 1
	return mcode.Continue
}

// PrimePlayerHistory handles fn_prime_player_history(): the player's
// opening floor becomes the first history entry. A player off every floor
// is a content bug, logged and skipped.
func PrimePlayerHistory(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	if !deps.History.Prime() {
		deps.Log.Warn("fn_prime_player_history: player is not on a floor")
		*res = 0
		return mcode.Continue
	}
	*res = 1
	return mcode.Continue
}

// TeleportPlayer handles fn_teleport_player(x, y, z).
func TeleportPlayer(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	id := deps.World.PlayerID()
	if deps.World.Object(id) == nil {
		return fatal(deps, "fn_teleport_player", fmt.Errorf("player %d: %w", id, world.ErrBadObject))
	}
	deps.World.MoveObject(id, float64(p.Int(0)), float64(p.Int(1)), float64(p.Int(2)))
	deps.World.SetInteractTarget(world.NoObject)
	*res = 1
	return mcode.Continue
}

// TeleportObject handles fn_teleport_object(object, x, y, z). Interact
// sockets use it to carry the companion through a lift or a hatch.
func TeleportObject(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	o := objectParam(deps, p, 0)
	if o == nil {
		return fatal(deps, "fn_teleport_object", fmt.Errorf("object %s: %w", p.Str(0), world.ErrBadObject))
	}
	deps.World.MoveObject(o.ID, float64(p.Int(1)), float64(p.Int(2)), float64(p.Int(3)))
	*res = 1
	return mcode.Continue
}

// SetPlayerArmed handles fn_set_player_armed(flag): gun drawn or holstered.
func SetPlayerArmed(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	pl := deps.World.Player()
	if pl == nil {
		return mcode.Continue
	}
	pl.Armed = p.Bool(0)
	pl.WeaponOut = pl.Armed
	*res = 1
	return mcode.Continue
}

// PlayerFire handles fn_player_fire(target). A shot at a live target
// orders the companion to fire. A shot at nothing only does so when the
// companion can't see the player, since it would not witness the shot.
func PlayerFire(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	pl := deps.World.Player()
	if pl == nil {
		return mcode.Continue
	}
	target := world.NoObject
	live := false
	if o := objectParam(deps, p, 0); o != nil {
		target = o.ID
		live = !o.Dead
	}
	deps.Gun.Fire(pl.ID, target)

	if deps.Chi.Registered() && (live || !deps.Sight.LineOfSight(deps.Chi.ID(), pl.ID)) {
		deps.Chi.GrantPermission()
		deps.Log.Debug("companion ordered to fire",
			zap.Int32("companion", int32(deps.Chi.ID())),
			zap.Bool("live_target", live))
	}
	*res = 1
	return mcode.Continue
}

// SetCamera handles fn_set_camera(name).
func SetCamera(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	deps.World.SetCamera(p.Str(0))
	*res = 1
	return mcode.Continue
}

// SetDead handles fn_set_dead(object).
func SetDead(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	o := objectParam(deps, p, 0)
	if o == nil {
		return fatal(deps, "fn_set_dead", fmt.Errorf("object %s: %w", p.Str(0), world.ErrBadObject))
	}
	o.Dead = true
	o.Hits = 0
	*res = 1
	return mcode.Continue
}
