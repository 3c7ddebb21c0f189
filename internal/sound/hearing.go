package sound

import (
	"errors"
	"fmt"

	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

var (
	// ErrRegistrationsFull: a listener registered for more sounds than allowed.
	ErrRegistrationsFull = errors.New("sound registrations full")
	// ErrListenersFull: more listening objects than the table holds.
	ErrListenersFull = errors.New("sound listener table full")
)

// ThresholdForSensitivity inverts a 0..10 sensitivity into a 0..127-scale
// volume threshold. Out-of-range input is clamped.
func ThresholdForSensitivity(s int) int {
	if s < 0 {
		s = 0
	} else if s > 10 {
		s = 10
	}
	return (10 - s) * (MaxVolume / 10)
}

// Subscriber is one listening object's hearing state.
type Subscriber struct {
	Listener  world.ObjectID
	Threshold int
	sounds    []ID
	maxSounds int

	heard      bool
	lastHeard  ID
	lastSender world.ObjectID
	suspended  bool
	seq        uint32 // bumped on every event heard
}

func (s *Subscriber) Registered(id ID) bool {
	for _, r := range s.sounds {
		if r == id {
			return true
		}
	}
	return false
}

// Notify delivers one routed event. partner is set when the listener is the
// player's current interaction partner; such a listener ignores gunshots.
func (s *Subscriber) Notify(id ID, sender world.ObjectID, volume int, partner bool) {
	if s.suspended {
		return
	}
	if partner && id == Gunshot {
		return
	}
	if s.Registered(id) && volume >= s.Threshold {
		s.heard = true
		s.lastHeard = id
		s.lastSender = sender
		s.seq++
	}
}

// CheckHeard consumes a pending event for id. Each event can be claimed
// exactly once.
func (s *Subscriber) CheckHeard(id ID) bool {
	if s.suspended || !s.heard || s.lastHeard != id {
		return false
	}
	s.heard = false
	return true
}

// Hearing is the process-wide subscriber table for one session.
type Hearing struct {
	world            *world.State
	subs             []*Subscriber
	byListener       map[world.ObjectID]*Subscriber
	maxRegs          int
	maxListeners     int
	defaultThreshold int
	log              *zap.Logger
}

func NewHearing(ws *world.State, maxRegs, maxListeners, defaultSensitivity int, log *zap.Logger) *Hearing {
	return &Hearing{
		world:            ws,
		subs:             make([]*Subscriber, 0, maxListeners),
		byListener:       make(map[world.ObjectID]*Subscriber, maxListeners),
		maxRegs:          maxRegs,
		maxListeners:     maxListeners,
		defaultThreshold: ThresholdForSensitivity(defaultSensitivity),
		log:              log,
	}
}

// subscriber returns the listener's entry, creating it on first use.
func (h *Hearing) subscriber(listener world.ObjectID) (*Subscriber, error) {
	if s, ok := h.byListener[listener]; ok {
		return s, nil
	}
	if h.world.Object(listener) == nil {
		return nil, fmt.Errorf("hearing: listener %d: %w", listener, world.ErrBadObject)
	}
	if len(h.subs) >= h.maxListeners {
		return nil, fmt.Errorf("hearing: listener %d (max %d): %w", listener, h.maxListeners, ErrListenersFull)
	}
	s := &Subscriber{
		Listener:   listener,
		Threshold:  h.defaultThreshold,
		maxSounds:  h.maxRegs,
		lastSender: world.NoObject,
	}
	h.subs = append(h.subs, s)
	h.byListener[listener] = s
	return s, nil
}

// Get returns the listener's subscriber, or nil if it never registered.
func (h *Hearing) Get(listener world.ObjectID) *Subscriber {
	return h.byListener[listener]
}

// Subscribe registers listener for a sound. Registering past the per-listener
// limit is a content error; nothing is evicted.
func (h *Hearing) Subscribe(listener world.ObjectID, id ID) error {
	s, err := h.subscriber(listener)
	if err != nil {
		return err
	}
	if s.Registered(id) {
		return nil
	}
	if len(s.sounds) >= s.maxSounds {
		return fmt.Errorf("hearing: listener %d sound %08x (max %d): %w", listener, uint32(id), s.maxSounds, ErrRegistrationsFull)
	}
	s.sounds = append(s.sounds, id)
	return nil
}

// Unsubscribe removes one sound from the listener's set.
func (h *Hearing) Unsubscribe(listener world.ObjectID, id ID) {
	s := h.byListener[listener]
	if s == nil {
		return
	}
	for i, r := range s.sounds {
		if r == id {
			s.sounds = append(s.sounds[:i], s.sounds[i+1:]...)
			return
		}
	}
}

// UnsubscribeAll resets the listener: no sounds, no pending event.
func (h *Hearing) UnsubscribeAll(listener world.ObjectID) {
	s := h.byListener[listener]
	if s == nil {
		return
	}
	s.sounds = s.sounds[:0]
	s.heard = false
	s.lastHeard = 0
	s.lastSender = world.NoObject
}

// Suspend stops a listener receiving events; its subscriptions are kept.
func (h *Hearing) Suspend(listener world.ObjectID, suspended bool) error {
	s, err := h.subscriber(listener)
	if err != nil {
		return err
	}
	s.suspended = suspended
	return nil
}

// SetSensitivity stores the inverted hearing threshold for a listener.
func (h *Hearing) SetSensitivity(listener world.ObjectID, sensitivity int) error {
	s, err := h.subscriber(listener)
	if err != nil {
		return err
	}
	s.Threshold = ThresholdForSensitivity(sensitivity)
	return nil
}

// Notify routes an event to one listener.
func (h *Hearing) Notify(listener, sender world.ObjectID, id ID, volume int) {
	s := h.byListener[listener]
	if s == nil {
		return
	}
	s.Notify(id, sender, volume, h.world.InteractTarget() == listener)
}

// CheckHeard consumes a pending event for the listener.
func (h *Hearing) CheckHeard(listener world.ObjectID, id ID) bool {
	s := h.byListener[listener]
	if s == nil {
		return false
	}
	return s.CheckHeard(id)
}

// HeardSince reports, without consuming, whether the listener's last heard
// event is id and arrived after mark was taken. It returns the mark for the
// next call. A script's CheckHeard and a HeardSince poller see the same event.
func (h *Hearing) HeardSince(listener world.ObjectID, id ID, mark uint32) (uint32, bool) {
	s := h.byListener[listener]
	if s == nil {
		return mark, false
	}
	if s.suspended {
		return s.seq, false
	}
	return s.seq, s.seq != mark && s.lastHeard == id
}

// HeardSomething reports, without consuming, whether any event is pending.
func (h *Hearing) HeardSomething(listener world.ObjectID) bool {
	s := h.byListener[listener]
	return s != nil && !s.suspended && s.heard
}

// LastSender returns who emitted the last sound the listener heard.
func (h *Hearing) LastSender(listener world.ObjectID) world.ObjectID {
	s := h.byListener[listener]
	if s == nil {
		return world.NoObject
	}
	return s.lastSender
}

// Each visits subscribers in registration order.
func (h *Hearing) Each(fn func(*Subscriber)) {
	for _, s := range h.subs {
		fn(s)
	}
}

func (h *Hearing) Reset() {
	h.subs = h.subs[:0]
	clear(h.byListener)
}

// SubscriberState is the saved form of a subscriber.
type SubscriberState struct {
	Listener   world.ObjectID
	Threshold  int
	Sounds     []ID
	Heard      bool
	LastHeard  ID
	LastSender world.ObjectID
	Suspended  bool
}

func (h *Hearing) Snapshot() []SubscriberState {
	out := make([]SubscriberState, 0, len(h.subs))
	for _, s := range h.subs {
		out = append(out, SubscriberState{
			Listener:   s.Listener,
			Threshold:  s.Threshold,
			Sounds:     append([]ID(nil), s.sounds...),
			Heard:      s.heard,
			LastHeard:  s.lastHeard,
			LastSender: s.lastSender,
			Suspended:  s.suspended,
		})
	}
	return out
}

// Restore replaces the table with saved state.
func (h *Hearing) Restore(states []SubscriberState) error {
	h.Reset()
	for _, st := range states {
		s, err := h.subscriber(st.Listener)
		if err != nil {
			return err
		}
		if len(st.Sounds) > s.maxSounds {
			return fmt.Errorf("hearing: restore listener %d: %w", st.Listener, ErrRegistrationsFull)
		}
		s.Threshold = st.Threshold
		s.sounds = append(s.sounds[:0], st.Sounds...)
		s.heard = st.Heard
		s.lastHeard = st.LastHeard
		s.lastSender = st.LastSender
		s.suspended = st.Suspended
		if st.Heard {
			s.seq = 1 // a pending event is new to every poller after a load
		}
	}
	return nil
}
