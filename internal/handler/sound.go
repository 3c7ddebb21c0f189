package handler

import (
	"fmt"

	"github.com/icbgo/icb/internal/data"
	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// listenerParam resolves parameter 0 as the listening object.
func listenerParam(deps *Deps, p mcode.Params, op string) (world.ObjectID, bool) {
	o := objectParam(deps, p, 0)
	if o == nil {
		deps.Log.Warn("unknown listener", zap.String("op", op), zap.Stringers("params", []mcode.Value(p)))
		return world.NoObject, false
	}
	return o.ID, true
}

// soundParam reads parameter i as a sound name, or a raw id for numbers.
func soundParam(p mcode.Params, i int) sound.ID {
	if i < p.Len() && !p[i].IsStr {
		return sound.ID(uint32(p[i].Int))
	}
	return sound.Hash(p.Str(i))
}

// SetHearingSensitivity handles fn_set_hearing_sensitivity(listener, 0..10).
func SetHearingSensitivity(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	id, ok := listenerParam(deps, p, "fn_set_hearing_sensitivity")
	if !ok {
		return mcode.Continue
	}
	if err := deps.Sound.Hearing.SetSensitivity(id, int(p.Int(1))); err != nil {
		return fatal(deps, "fn_set_hearing_sensitivity", err)
	}
	*res = 1
	return mcode.Continue
}

// RegisterForEvent handles fn_register_for_event(listener, sound).
func RegisterForEvent(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	id, ok := listenerParam(deps, p, "fn_register_for_event")
	if !ok {
		return mcode.Continue
	}
	if err := deps.Sound.Hearing.Subscribe(id, soundParam(p, 1)); err != nil {
		return fatal(deps, "fn_register_for_event", err)
	}
	*res = 1
	return mcode.Continue
}

func UnregisterForEvent(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	if id, ok := listenerParam(deps, p, "fn_unregister_for_event"); ok {
		deps.Sound.Hearing.Unsubscribe(id, soundParam(p, 1))
		*res = 1
	}
	return mcode.Continue
}

func UnregisterAllEvents(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	if id, ok := listenerParam(deps, p, "fn_unregister_all_events"); ok {
		deps.Sound.Hearing.UnsubscribeAll(id)
		*res = 1
	}
	return mcode.Continue
}

// SuspendEvents handles fn_suspend_events(listener, suspended).
func SuspendEvents(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	id, ok := listenerParam(deps, p, "fn_suspend_events")
	if !ok {
		return mcode.Continue
	}
	if err := deps.Sound.Hearing.Suspend(id, p.Bool(1)); err != nil {
		return fatal(deps, "fn_suspend_events", err)
	}
	*res = 1
	return mcode.Continue
}

// SoundHeardThis consumes a pending event: result 1 at most once per event.
func SoundHeardThis(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	id, ok := listenerParam(deps, p, "fn_sound_heard_this")
	if !ok {
		return mcode.Continue
	}
	boolResult(res, deps.Sound.Hearing.CheckHeard(id, soundParam(p, 1)))
	return mcode.Continue
}

func SoundHeardSomething(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	id, ok := listenerParam(deps, p, "fn_sound_heard_something")
	if !ok {
		return mcode.Continue
	}
	boolResult(res, deps.Sound.Hearing.HeardSomething(id))
	return mcode.Continue
}

func GetLastSoundSender(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	*res = int32(world.NoObject)
	if id, ok := listenerParam(deps, p, "fn_get_last_sound_sender"); ok {
		*res = int32(deps.Sound.Hearing.LastSender(id))
	}
	return mcode.Continue
}

// LinkFloorsForSound handles fn_link_floors_for_sound(floorA, floorB).
// Overflowing the link table stops the script.
func LinkFloorsForSound(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	if err := deps.Sound.Model.LinkFloors(p.Str(0), p.Str(1)); err != nil {
		return fatal(deps, "fn_link_floors_for_sound", err)
	}
	*res = 1
	return mcode.Continue
}

// PlaySfx handles fn_play_sfx(sfx, emitter): an event at the emitter's
// position plus playback for the player. The result is the playback volume.
func PlaySfx(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	sfx := deps.Sfx.Get(p.Str(0))
	if sfx == nil {
		deps.Log.Warn("unknown sfx", zap.String("sfx", p.Str(0)))
		return mcode.Continue
	}
	o := objectParam(deps, p, 1)
	if o == nil {
		o = deps.World.Player()
	}
	if o == nil {
		return fatal(deps, "fn_play_sfx", fmt.Errorf("sfx %s: no emitter: %w", sfx.Name, world.ErrBadObject))
	}
	*res = int32(postAndPlay(deps, o.ID, o.X, o.Y, o.Z, sfx))
	return mcode.Continue
}

// PlaySfxXYZ handles fn_play_sfx_xyz(sfx, x, y, z) for a sound with no
// emitting object.
func PlaySfxXYZ(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	sfx := deps.Sfx.Get(p.Str(0))
	if sfx == nil {
		deps.Log.Warn("unknown sfx", zap.String("sfx", p.Str(0)))
		return mcode.Continue
	}
	x, y, z := float64(p.Int(1)), float64(p.Int(2)), float64(p.Int(3))
	*res = int32(postAndPlay(deps, world.NoObject, x, y, z, sfx))
	return mcode.Continue
}

func postAndPlay(deps *Deps, emitter world.ObjectID, x, y, z float64, sfx *data.SfxEntry) int {
	deps.Sound.Router.PostEvent(emitter, x, y, z, sfx.Envelope(), sfx.ID())
	if deps.Audio == nil {
		return 0
	}
	return deps.Audio.Play(deps.World.PlayerID(), x, y, z, sfx)
}

// GetSoundX returns where the sound was last posted, or NoPosition.
func GetSoundX(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	*res = deps.Sound.Router.SoundX(soundParam(p, 0))
	return mcode.Continue
}

func GetSoundZ(res *int32, p mcode.Params, deps *Deps) mcode.Code {
	*res = deps.Sound.Router.SoundZ(soundParam(p, 0))
	return mcode.Continue
}

// GetSubtitle returns the ticks left on the showing subtitle, 0 for none.
func GetSubtitle(res *int32, _ mcode.Params, deps *Deps) mcode.Code {
	text, ticks := deps.Sound.Router.Subtitle()
	*res = int32(ticks)
	if ticks > 0 {
		deps.Log.Debug("subtitle", zap.String("text", text), zap.Int("ticks", ticks))
	}
	return mcode.Continue
}
