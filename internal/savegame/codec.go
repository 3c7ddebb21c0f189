// Package savegame encodes a session's structured state into a compact
// binary image and back.
package savegame

import (
	"errors"
	"fmt"

	"github.com/icbgo/icb/internal/companion"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
)

// Version is the current image format. Decode rejects anything else.
const Version byte = 1

var ErrVersion = errors.New("unsupported save version")

// ObjectState is the mutable part of one object; the level file supplies
// the rest.
type ObjectState struct {
	Name      string
	X, Y, Z   float64
	Pan       float64
	Hits      int
	Dead      bool
	Held      bool
	Hostile   bool
	Armed     bool
	WeaponOut bool
}

// Snapshot is everything a session save holds.
type Snapshot struct {
	Level          string
	Tick           uint32
	Camera         string
	InteractTarget world.ObjectID
	Objects        []ObjectState
	History        world.HistorySnapshot
	Companion      companion.Snapshot
	Subscribers    []sound.SubscriberState
	FloorLinks     [][2]string
	Recent         []sound.RecentPosition
}

// Encode writes s at the current version.
func Encode(s *Snapshot) []byte {
	w := NewWriter()
	w.WriteC(Version)
	w.WriteS(s.Level)
	w.WriteDU(s.Tick)
	w.WriteS(s.Camera)
	w.WriteD(int32(s.InteractTarget))

	// ===== Objects =====
	w.WriteH(uint16(len(s.Objects)))
	for _, o := range s.Objects {
		w.WriteS(o.Name)
		w.WriteF(o.X)
		w.WriteF(o.Y)
		w.WriteF(o.Z)
		w.WriteF(o.Pan)
		w.WriteD(int32(o.Hits))
		w.WriteC(objectFlags(o))
	}

	// ===== History =====
	w.WriteC(byte(s.History.Cursor))
	w.WriteC(byte(len(s.History.Entries)))
	for _, e := range s.History.Entries {
		w.WriteBool(e.Interaction)
		w.WriteD(e.TargetID)
		w.WriteF(e.FirstX)
		w.WriteF(e.FirstZ)
	}

	// ===== Companion =====
	c := s.Companion
	st := c.State
	w.WriteBool(c.Registered)
	w.WriteD(int32(st.ID))
	w.WriteC(byte(st.FollowCursor))
	w.WriteC(byte(st.Think))
	w.WriteC(byte(st.Do))
	w.WriteD(int32(st.NextMoveTimer))
	w.WriteD(int32(st.PauseTicks))
	w.WriteD(int32(st.FightPause))
	w.WriteBool(st.HasTarget)
	w.WriteD(int32(st.Target))
	w.WriteBool(st.PermissionToFire)
	w.WriteF(st.CatchUpDistSq)
	w.WriteF(st.LostDistSq)
	w.WriteF(st.TurnTarget)
	w.WriteD(int32(st.RouteStartFloor))

	// ===== Sound =====
	w.WriteH(uint16(len(s.Subscribers)))
	for _, sub := range s.Subscribers {
		w.WriteD(int32(sub.Listener))
		w.WriteH(uint16(sub.Threshold))
		w.WriteC(byte(len(sub.Sounds)))
		for _, id := range sub.Sounds {
			w.WriteDU(uint32(id))
		}
		w.WriteBool(sub.Heard)
		w.WriteDU(uint32(sub.LastHeard))
		w.WriteD(int32(sub.LastSender))
		w.WriteBool(sub.Suspended)
	}
	w.WriteH(uint16(len(s.FloorLinks)))
	for _, l := range s.FloorLinks {
		w.WriteS(l[0])
		w.WriteS(l[1])
	}
	w.WriteC(byte(len(s.Recent)))
	for _, p := range s.Recent {
		w.WriteDU(uint32(p.Sound))
		w.WriteD(p.X)
		w.WriteD(p.Z)
		w.WriteDU(p.Age)
	}
	return w.Bytes()
}

const (
	flagDead byte = 1 << iota
	flagHeld
	flagHostile
	flagArmed
	flagWeaponOut
)

func objectFlags(o ObjectState) byte {
	var f byte
	for _, b := range []struct {
		set  bool
		flag byte
	}{
		{o.Dead, flagDead},
		{o.Held, flagHeld},
		{o.Hostile, flagHostile},
		{o.Armed, flagArmed},
		{o.WeaponOut, flagWeaponOut},
	} {
		if b.set {
			f |= b.flag
		}
	}
	return f
}

// Decode reads an image written by Encode.
func Decode(data []byte) (*Snapshot, error) {
	r := NewReader(data)
	if v := r.ReadC(); r.Err() == nil && v != Version {
		return nil, fmt.Errorf("decode save: version %d: %w", v, ErrVersion)
	}
	s := &Snapshot{}
	s.Level = r.ReadS()
	s.Tick = r.ReadDU()
	s.Camera = r.ReadS()
	s.InteractTarget = world.ObjectID(r.ReadD())

	n := int(r.ReadH())
	for i := 0; i < n && r.Err() == nil; i++ {
		o := ObjectState{Name: r.ReadS()}
		o.X, o.Y, o.Z = r.ReadF(), r.ReadF(), r.ReadF()
		o.Pan = r.ReadF()
		o.Hits = int(r.ReadD())
		f := r.ReadC()
		o.Dead = f&flagDead != 0
		o.Held = f&flagHeld != 0
		o.Hostile = f&flagHostile != 0
		o.Armed = f&flagArmed != 0
		o.WeaponOut = f&flagWeaponOut != 0
		s.Objects = append(s.Objects, o)
	}

	s.History.Cursor = int(r.ReadC())
	n = int(r.ReadC())
	for i := 0; i < n && r.Err() == nil; i++ {
		e := world.HistoryEntry{Interaction: r.ReadBool(), TargetID: r.ReadD()}
		e.FirstX, e.FirstZ = r.ReadF(), r.ReadF()
		s.History.Entries = append(s.History.Entries, e)
	}

	c := &s.Companion
	c.Registered = r.ReadBool()
	c.State.ID = world.ObjectID(r.ReadD())
	c.State.FollowCursor = int(r.ReadC())
	c.State.Think = companion.ThinkMode(r.ReadC())
	c.State.Do = companion.DoMode(r.ReadC())
	c.State.NextMoveTimer = int(r.ReadD())
	c.State.PauseTicks = int(r.ReadD())
	c.State.FightPause = int(r.ReadD())
	c.State.HasTarget = r.ReadBool()
	c.State.Target = world.ObjectID(r.ReadD())
	c.State.PermissionToFire = r.ReadBool()
	c.State.CatchUpDistSq = r.ReadF()
	c.State.LostDistSq = r.ReadF()
	c.State.TurnTarget = r.ReadF()
	c.State.RouteStartFloor = int(r.ReadD())

	n = int(r.ReadH())
	for i := 0; i < n && r.Err() == nil; i++ {
		sub := sound.SubscriberState{
			Listener:  world.ObjectID(r.ReadD()),
			Threshold: int(r.ReadH()),
		}
		k := int(r.ReadC())
		for j := 0; j < k && r.Err() == nil; j++ {
			sub.Sounds = append(sub.Sounds, sound.ID(r.ReadDU()))
		}
		sub.Heard = r.ReadBool()
		sub.LastHeard = sound.ID(r.ReadDU())
		sub.LastSender = world.ObjectID(r.ReadD())
		sub.Suspended = r.ReadBool()
		s.Subscribers = append(s.Subscribers, sub)
	}
	n = int(r.ReadH())
	for i := 0; i < n && r.Err() == nil; i++ {
		s.FloorLinks = append(s.FloorLinks, [2]string{r.ReadS(), r.ReadS()})
	}
	n = int(r.ReadC())
	for i := 0; i < n && r.Err() == nil; i++ {
		s.Recent = append(s.Recent, sound.RecentPosition{
			Sound: sound.ID(r.ReadDU()),
			X:     r.ReadD(),
			Z:     r.ReadD(),
			Age:   r.ReadDU(),
		})
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("decode save: %d trailing bytes", r.Remaining())
	}
	return s, nil
}
