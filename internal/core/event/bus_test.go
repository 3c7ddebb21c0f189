package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []SoundPosted
	Subscribe(b, func(ev SoundPosted) { got = append(got, ev) })

	Emit(b, SoundPosted{Sound: 42})
	b.DispatchAll()
	assert.Empty(t, got, "back buffer is not dispatched before the swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1)
	assert.Equal(t, uint32(42), got[0].Sound)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1, "each event is delivered once")
}

func TestNilBusDropsEvents(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { Emit(b, CompanionLost{}) })
}

func TestBusReset(t *testing.T) {
	b := NewBus()
	var got []SubtitleShown
	Subscribe(b, func(ev SubtitleShown) { got = append(got, ev) })

	Emit(b, SubtitleShown{Text: "x"})
	b.Reset()
	b.SwapBuffers()
	b.DispatchAll()
	assert.Empty(t, got)
}
