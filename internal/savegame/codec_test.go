package savegame

import (
	"errors"
	"testing"

	"github.com/icbgo/icb/internal/companion"
	"github.com/icbgo/icb/internal/sound"
	"github.com/icbgo/icb/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *Snapshot {
	var h world.PlayerHistory
	h.Advance(world.HistoryEntry{TargetID: 1, FirstX: 120.5, FirstZ: -40})
	h.Advance(world.HistoryEntry{Interaction: true, TargetID: 3, FirstX: 10, FirstZ: 20})

	return &Snapshot{
		Level:          "tanker",
		Tick:           4242,
		Camera:         "cam_hall",
		InteractTarget: 3,
		Objects: []ObjectState{
			{Name: "cord", X: 1, Y: 0, Z: 2, Pan: 0.25, Hits: 10},
			{Name: "guard", X: 300, Z: 300, Hits: 0, Dead: true, Hostile: true, Armed: true, WeaponOut: true},
			{Name: "señal", Held: true, Hits: 1},
		},
		History: h.Snapshot(),
		Companion: companion.Snapshot{
			Registered: true,
			State: companion.State{
				ID:               1,
				FollowCursor:     2,
				Think:            companion.ThinkFollowing,
				Do:               companion.FightHelp,
				NextMoveTimer:    30,
				FightPause:       7,
				HasTarget:        true,
				Target:           2,
				PermissionToFire: true,
				CatchUpDistSq:    10000,
				LostDistSq:       62500,
				TurnTarget:       -0.125,
				RouteStartFloor:  world.NoFloor,
			},
		},
		Subscribers: []sound.SubscriberState{
			{Listener: 1, Threshold: 60, Sounds: []sound.ID{sound.Gunshot, sound.Hash("door")},
				Heard: true, LastHeard: sound.Gunshot, LastSender: 0},
			{Listener: 2, Threshold: 120, LastSender: world.NoObject, Suspended: true},
		},
		FloorLinks: [][2]string{{"hall", "lift"}},
		Recent: []sound.RecentPosition{
			{Sound: sound.Gunshot, X: 10, Z: 20, Age: 3},
			{Age: ^uint32(0)},
		},
	}
}

func TestEncodeDecodeSnapshot(t *testing.T) {
	in := sampleSnapshot()
	data := Encode(in)
	require.Equal(t, Version, data[0])

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeRejectsBadImages(t *testing.T) {
	data := Encode(sampleSnapshot())

	_, err := Decode(data[:len(data)-3])
	assert.True(t, errors.Is(err, ErrShort))

	_, err = Decode(nil)
	assert.True(t, errors.Is(err, ErrShort))

	bad := append([]byte(nil), data...)
	bad[0] = 9
	_, err = Decode(bad)
	assert.True(t, errors.Is(err, ErrVersion))

	_, err = Decode(append(data, 0))
	assert.ErrorContains(t, err, "trailing")
}

func TestWriterReaderFields(t *testing.T) {
	w := NewWriter()
	w.WriteC(7)
	w.WriteBool(true)
	w.WriteH(0xBEEF)
	w.WriteD(-5)
	w.WriteDU(0xDEADBEEF)
	w.WriteF(3.5)
	w.WriteS("café")
	assert.Equal(t, w.Len(), len(w.Bytes()))

	r := NewReader(w.Bytes())
	assert.Equal(t, byte(7), r.ReadC())
	assert.True(t, r.ReadBool())
	assert.Equal(t, uint16(0xBEEF), r.ReadH())
	assert.Equal(t, int32(-5), r.ReadD())
	assert.Equal(t, uint32(0xDEADBEEF), r.ReadDU())
	assert.Equal(t, 3.5, r.ReadF())
	assert.Equal(t, "café", r.ReadS())
	assert.Equal(t, 0, r.Remaining())
	require.NoError(t, r.Err())

	assert.Equal(t, int32(0), r.ReadD())
	assert.ErrorIs(t, r.Err(), ErrShort)
}
