package world

import (
	"errors"
	"fmt"
)

// ErrBadObject: an id that names no registered object.
var ErrBadObject = errors.New("bad object id")

// State is the in-memory session world: objects in registration order, the
// floor table, the player's history ring and the active camera.
// Accessed only from the game loop goroutine, no locks needed.
type State struct {
	floors  *Floors
	objects []*Object
	byName  map[string]ObjectID

	playerID       ObjectID
	interactTarget ObjectID // object the player is currently talking to / using
	camera         string

	History PlayerHistory
}

func NewState(floors *Floors) *State {
	if floors == nil {
		floors = NewFloors(nil)
	}
	return &State{
		floors:         floors,
		objects:        make([]*Object, 0, 64),
		byName:         make(map[string]ObjectID, 64),
		playerID:       NoObject,
		interactTarget: NoObject,
	}
}

func (s *State) Floors() *Floors { return s.floors }

// AddObject registers an object, assigning its id in registration order and
// resolving its floor. Duplicate names are rejected.
func (s *State) AddObject(o *Object) (ObjectID, error) {
	if _, dup := s.byName[o.Name]; dup {
		return NoObject, fmt.Errorf("object %q already registered", o.Name)
	}
	o.ID = ObjectID(len(s.objects))
	o.Pan = NormalisePan(o.Pan)
	o.Floor = s.floors.Locate(o.X, o.Y, o.Z)
	s.objects = append(s.objects, o)
	s.byName[o.Name] = o.ID
	return o.ID, nil
}

// Object returns an object by id, or nil.
func (s *State) Object(id ObjectID) *Object {
	if id < 0 || int(id) >= len(s.objects) {
		return nil
	}
	return s.objects[id]
}

// ByName returns an object by name, or nil.
func (s *State) ByName(name string) *Object {
	id, ok := s.byName[name]
	if !ok {
		return nil
	}
	return s.objects[id]
}

// Each visits objects in registration order until fn returns false.
func (s *State) Each(fn func(*Object) bool) {
	for _, o := range s.objects {
		if !fn(o) {
			return
		}
	}
}

func (s *State) ObjectCount() int { return len(s.objects) }

// SetPlayer marks the object the user controls.
func (s *State) SetPlayer(id ObjectID) error {
	if s.Object(id) == nil {
		return fmt.Errorf("player id %d: %w", id, ErrBadObject)
	}
	s.playerID = id
	return nil
}

func (s *State) PlayerID() ObjectID { return s.playerID }

// Player returns the player object, or nil before SetPlayer.
func (s *State) Player() *Object { return s.Object(s.playerID) }

// MoveObject places an object and re-resolves its floor rect.
func (s *State) MoveObject(id ObjectID, x, y, z float64) {
	o := s.Object(id)
	if o == nil {
		return
	}
	o.X, o.Y, o.Z = x, y, z
	o.Floor = s.floors.Locate(x, y, z)
}

func (s *State) SetCamera(name string) { s.camera = name }
func (s *State) Camera() string        { return s.camera }

// OnCamera reports whether the object stands in the region drawn by the
// active camera.
func (s *State) OnCamera(id ObjectID) bool {
	o := s.Object(id)
	if o == nil || o.Floor == NoFloor || s.camera == "" {
		return false
	}
	return s.floors.Rect(o.Floor).Camera == s.camera
}

// SetInteractTarget records who the player is interacting with (NoObject
// to clear).
func (s *State) SetInteractTarget(id ObjectID) { s.interactTarget = id }
func (s *State) InteractTarget() ObjectID      { return s.interactTarget }

// Reset drops every object and the history for a new session.
func (s *State) Reset() {
	s.objects = s.objects[:0]
	clear(s.byName)
	s.playerID = NoObject
	s.interactTarget = NoObject
	s.camera = ""
	s.History.Reset()
}
