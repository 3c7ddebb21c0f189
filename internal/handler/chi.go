package handler

import (
	"fmt"

	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// RegisterChi handles fn_register_chi(object). A second companion, a prop
// or an unknown object stops the script.
func RegisterChi(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	o := objectParam(deps, p, 0)
	if o == nil {
		return fatal(deps, "fn_register_chi", fmt.Errorf("object %v: %w", p.Str(0), world.ErrBadObject))
	}
	if err := deps.Chi.Register(o.ID); err != nil {
		return fatal(deps, "fn_register_chi", err)
	}
	*res = 1
	return mcode.Continue
}

func StartChiFollowing(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	if !chiReady(deps, "fn_start_chi_following") {
		return mcode.Continue
	}
	deps.Chi.StartFollowing()
	*res = 1
	return mcode.Continue
}

func StopChiFollowing(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	if !chiReady(deps, "fn_stop_chi_following") {
		return mcode.Continue
	}
	deps.Chi.StopFollowing()
	*res = 1
	return mcode.Continue
}

// CalibrateChi handles fn_calibrate_chi(catchUp, lost).
func CalibrateChi(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	deps.Chi.Calibrate(int(p.Int(0)), int(p.Int(1)))
	*res = 1
	return mcode.Continue
}

func ChiHeardGunshot(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	if !chiReady(deps, "fn_chi_heard_gunshot") {
		return mcode.Continue
	}
	deps.Chi.NotifyHeardGunshot()
	boolResult(res, deps.Chi.State().PermissionToFire)
	return mcode.Continue
}

func ChiPermission(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	deps.Chi.GrantPermission()
	*res = 1
	return mcode.Continue
}

// FetchChiMode returns the think mode: 0 nothing, 1 following, 2 lost.
func FetchChiMode(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	*res = int32(deps.Chi.State().Think)
	return mcode.Continue
}

// WaitForChi repeats until the companion stands idle near the player.
func WaitForChi(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	if !chiReady(deps, "fn_wait_for_chi") {
		return mcode.Continue
	}
	if !deps.Chi.Arrived() {
		*res = 0
		return mcode.Repeat
	}
	*res = 1
	return mcode.Continue
}

// ChiWaitForCord parks the companion until the player has cleared a tight
// spot.
func ChiWaitForCord(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	if !chiReady(deps, "fn_chi_wait_for_cord") {
		return mcode.Continue
	}
	deps.Chi.WaitForPlayerToClear()
	*res = 1
	return mcode.Continue
}

func chiReady(deps *Deps, op string) bool {
	if deps.Chi.Registered() {
		return true
	}
	deps.Log.Warn("no companion registered", zap.String("op", op))
	return false
}
