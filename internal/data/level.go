package data

import (
	"fmt"
	"os"
	"strings"

	"github.com/icbgo/icb/internal/anim"
	"github.com/icbgo/icb/internal/world"
	"gopkg.in/yaml.v3"
)

// FloorEntry is one floor rect of the level.
type FloorEntry struct {
	Name   string  `yaml:"name"`
	Camera string  `yaml:"camera"`
	X0     float64 `yaml:"x0"`
	Z0     float64 `yaml:"z0"`
	X1     float64 `yaml:"x1"`
	Z1     float64 `yaml:"z1"`
	Y      float64 `yaml:"y"`
	Height float64 `yaml:"height"`
}

// ObjectEntry places one object.
type ObjectEntry struct {
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"` // mega | prop
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z"`
	Pan     float64 `yaml:"pan"`
	Hits    int     `yaml:"hits"`
	Hostile bool    `yaml:"hostile"`
	Armed   bool    `yaml:"armed"`
}

// Level is a mission's static layout.
type Level struct {
	Name       string         `yaml:"name"`
	Camera     string         `yaml:"camera"`
	Player     string         `yaml:"player"`
	Companion  string         `yaml:"companion"`
	Floors     []FloorEntry   `yaml:"floors"`
	FloorLinks [][2]string    `yaml:"floor_links"`
	Objects    []ObjectEntry  `yaml:"objects"`
	Animations map[string]int `yaml:"animations"` // frames per animation
}

// LoadLevel loads and validates level.yaml.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return ParseLevel(raw)
}

func ParseLevel(raw []byte) (*Level, error) {
	var l Level
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("level %q: %w", l.Name, err)
	}
	return &l, nil
}

func (l *Level) validate() error {
	if len(l.Floors) == 0 {
		return fmt.Errorf("no floors")
	}
	seen := make(map[string]bool, len(l.Floors))
	for _, f := range l.Floors {
		if f.Name == "" {
			return fmt.Errorf("floor without a name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate floor %q", f.Name)
		}
		if f.X1 < f.X0 || f.Z1 < f.Z0 {
			return fmt.Errorf("floor %q has inverted bounds", f.Name)
		}
		seen[f.Name] = true
	}
	names := make(map[string]bool, len(l.Objects))
	for _, o := range l.Objects {
		if _, err := parseKind(o.Kind); err != nil {
			return fmt.Errorf("object %q: %w", o.Name, err)
		}
		names[o.Name] = true
	}
	if l.Player == "" || !names[l.Player] {
		return fmt.Errorf("player object %q not placed", l.Player)
	}
	if l.Companion != "" && !names[l.Companion] {
		return fmt.Errorf("companion object %q not placed", l.Companion)
	}
	return nil
}

func parseKind(s string) (world.Kind, error) {
	switch strings.ToLower(s) {
	case "mega", "":
		return world.KindMega, nil
	case "prop":
		return world.KindProp, nil
	}
	return world.KindProp, fmt.Errorf("unknown kind %q", s)
}

// BuildFloors converts the floor list to the runtime table.
func (l *Level) BuildFloors() *world.Floors {
	rects := make([]world.FloorRect, len(l.Floors))
	for i, f := range l.Floors {
		rects[i] = world.FloorRect{
			Name: f.Name, Camera: f.Camera,
			X0: f.X0, Z0: f.Z0, X1: f.X1, Z1: f.Z1,
			Y: f.Y, Height: f.Height,
		}
	}
	return world.NewFloors(rects)
}

// Populate registers the level's objects in file order and sets the player
// and starting camera.
func (l *Level) Populate(ws *world.State) error {
	for _, e := range l.Objects {
		kind, _ := parseKind(e.Kind)
		hits := e.Hits
		if hits == 0 {
			hits = 1
		}
		if _, err := ws.AddObject(&world.Object{
			Name: e.Name, Kind: kind,
			X: e.X, Y: e.Y, Z: e.Z, Pan: e.Pan,
			Hits: hits, Hostile: e.Hostile, Armed: e.Armed,
		}); err != nil {
			return err
		}
	}
	if err := ws.SetPlayer(ws.ByName(l.Player).ID); err != nil {
		return err
	}
	ws.SetCamera(l.Camera)
	return nil
}

// AnimFrames returns frame counts for the animation player, falling back to
// the defaults for kinds the level doesn't list.
func (l *Level) AnimFrames() map[anim.Kind]int {
	out := make(map[anim.Kind]int, len(anim.DefaultFrames))
	for k, n := range anim.DefaultFrames {
		out[k] = n
		if v, ok := l.Animations[k.String()]; ok && v > 0 {
			out[k] = v
		}
	}
	return out
}
