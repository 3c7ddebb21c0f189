// Package handler implements the fn_* opcodes scripts call into the
// companion, sound and player layers.
package handler

import (
	"github.com/icbgo/icb/internal/audio"
	"github.com/icbgo/icb/internal/companion"
	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/data"
	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// HistoryRecorder writes the entries the companion follows.
type HistoryRecorder interface {
	RecordInteraction(target world.ObjectID)
	Prime() bool
}

// Deps holds shared dependencies injected into all opcode handlers.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	World   *world.State
	Sound   *sound.Logic
	Chi     *companion.AI
	Sight   companion.LineOfSight
	Gun     *Gunfire
	History HistoryRecorder
	Audio   *audio.Mixer // nil when audio is disabled
	Sfx     *data.SfxTable
}

// RegisterAll registers every opcode into the registry.
func RegisterAll(reg *mcode.Registry, deps *Deps) {
	// Companion
	reg.Register("fn_register_chi", func(res *int32, p mcode.Params) mcode.Code {
		return RegisterChi(res, p, deps)
	})
	reg.Register("fn_start_chi_following", func(res *int32, p mcode.Params) mcode.Code {
		return StartChiFollowing(res, p, deps)
	})
	reg.Register("fn_stop_chi_following", func(res *int32, p mcode.Params) mcode.Code {
		return StopChiFollowing(res, p, deps)
	})
	reg.Register("fn_calibrate_chi", func(res *int32, p mcode.Params) mcode.Code {
		return CalibrateChi(res, p, deps)
	})
	reg.Register("fn_chi_heard_gunshot", func(res *int32, p mcode.Params) mcode.Code {
		return ChiHeardGunshot(res, p, deps)
	})
	reg.Register("fn_chi_permission", func(res *int32, p mcode.Params) mcode.Code {
		return ChiPermission(res, p, deps)
	})
	reg.Register("fn_fetch_chi_mode", func(res *int32, p mcode.Params) mcode.Code {
		return FetchChiMode(res, p, deps)
	})
	reg.Register("fn_wait_for_chi", func(res *int32, p mcode.Params) mcode.Code {
		return WaitForChi(res, p, deps)
	})
	reg.Register("fn_chi_wait_for_cord", func(res *int32, p mcode.Params) mcode.Code {
		return ChiWaitForCord(res, p, deps)
	})

	// Hearing
	reg.Register("fn_set_hearing_sensitivity", func(res *int32, p mcode.Params) mcode.Code {
		return SetHearingSensitivity(res, p, deps)
	})
	reg.Register("fn_register_for_event", func(res *int32, p mcode.Params) mcode.Code {
		return RegisterForEvent(res, p, deps)
	})
	reg.Register("fn_unregister_for_event", func(res *int32, p mcode.Params) mcode.Code {
		return UnregisterForEvent(res, p, deps)
	})
	reg.Register("fn_unregister_all_events", func(res *int32, p mcode.Params) mcode.Code {
		return UnregisterAllEvents(res, p, deps)
	})
	reg.Register("fn_suspend_events", func(res *int32, p mcode.Params) mcode.Code {
		return SuspendEvents(res, p, deps)
	})
	reg.Register("fn_sound_heard_this", func(res *int32, p mcode.Params) mcode.Code {
		return SoundHeardThis(res, p, deps)
	})
	reg.Register("fn_sound_heard_something", func(res *int32, p mcode.Params) mcode.Code {
		return SoundHeardSomething(res, p, deps)
	})
	reg.Register("fn_get_last_sound_sender", func(res *int32, p mcode.Params) mcode.Code {
		return GetLastSoundSender(res, p, deps)
	})

	// Sound routing & playback
	reg.Register("fn_link_floors_for_sound", func(res *int32, p mcode.Params) mcode.Code {
		return LinkFloorsForSound(res, p, deps)
	})
	reg.Register("fn_play_sfx", func(res *int32, p mcode.Params) mcode.Code {
		return PlaySfx(res, p, deps)
	})
	reg.Register("fn_play_sfx_xyz", func(res *int32, p mcode.Params) mcode.Code {
		return PlaySfxXYZ(res, p, deps)
	})
	reg.Register("fn_get_sound_x", func(res *int32, p mcode.Params) mcode.Code {
		return GetSoundX(res, p, deps)
	})
	reg.Register("fn_get_sound_z", func(res *int32, p mcode.Params) mcode.Code {
		return GetSoundZ(res, p, deps)
	})
	reg.Register("fn_get_subtitle", func(res *int32, p mcode.Params) mcode.Code {
		return GetSubtitle(res, p, deps)
	})

	// Player & world
	reg.Register("fn_record_player_interaction", func(res *int32, p mcode.Params) mcode.Code {
		return RecordPlayerInteraction(res, p, deps)
	})
	reg.Register("fn_prime_player_history", func(res *int32, p mcode.Params) mcode.Code {
		return PrimePlayerHistory(res, p, deps)
	})
	reg.Register("fn_teleport_player", func(res *int32, p mcode.Params) mcode.Code {
		return TeleportPlayer(res, p, deps)
	})
	reg.Register("fn_teleport_object", func(res *int32, p mcode.Params) mcode.Code {
		return TeleportObject(res, p, deps)
	})
	reg.Register("fn_set_player_armed", func(res *int32, p mcode.Params) mcode.Code {
		return SetPlayerArmed(res, p, deps)
	})
	reg.Register("fn_player_fire", func(res *int32, p mcode.Params) mcode.Code {
		return PlayerFire(res, p, deps)
	})
	reg.Register("fn_set_camera", func(res *int32, p mcode.Params) mcode.Code {
		return SetCamera(res, p, deps)
	})
	reg.Register("fn_set_dead", func(res *int32, p mcode.Params) mcode.Code {
		return SetDead(res, p, deps)
	})
}

// objectParam resolves parameter i as an object name or id.
func objectParam(deps *Deps, p mcode.Params, i int) *world.Object {
	if i >= p.Len() {
		return nil
	}
	if p[i].IsStr {
		return deps.World.ByName(p[i].Str)
	}
	return deps.World.Object(world.ObjectID(p[i].Int))
}

// fatal logs a content error and stops the calling script.
func fatal(deps *Deps, op string, err error) mcode.Code {
	deps.Log.Error("opcode failed", zap.String("op", op), zap.Error(err))
	return mcode.Terminate
}

func boolResult(res *int32, v bool) {
	if v {
		*res = 1
	} else {
		*res = 0
	}
}
