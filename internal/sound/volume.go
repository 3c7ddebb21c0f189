package sound

import (
	"errors"
	"fmt"
	"math"

	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

// MaxVolume is full volume on the 0..127 scale.
const MaxVolume = 127

// ErrFloorLinksFull is returned when the level declares more floor links
// than the table holds.
var ErrFloorLinksFull = errors.New("sound floor link table full")

// Mode selects how floors separating listener and sound are treated.
type Mode int

const (
	// ForEventRouting is used for AI hearing: sound through a floor or wall
	// is attenuated, not cut.
	ForEventRouting Mode = iota
	// ForPlayback is used for speaker output: sound on another floor is silent.
	ForPlayback
)

func (m Mode) String() string {
	if m == ForPlayback {
		return "playback"
	}
	return "event"
}

type floorLink struct{ a, b int }

// Model computes how loud a sound is for a listener.
type Model struct {
	world       *world.State
	links       []floorLink
	maxLinks    int
	attenuation int
	tolerance   float64
	log         *zap.Logger
}

func NewModel(ws *world.State, cfg config.SoundConfig, log *zap.Logger) *Model {
	return &Model{
		world:       ws,
		links:       make([]floorLink, 0, cfg.MaxFloorLinks),
		maxLinks:    cfg.MaxFloorLinks,
		attenuation: cfg.FloorAttenuation,
		tolerance:   cfg.FloorTolerance,
		log:         log,
	}
}

// ComputeVolume returns 0..MaxVolume for a sound at (x,y,z) heard by
// listener, falling off linearly between minDist and maxDist.
func (m *Model) ComputeVolume(mode Mode, listener world.ObjectID, x, y, z float64, minDist, maxDist int) int {
	if listener == world.SyntheticID {
		return MaxVolume
	}
	lo := m.world.Object(listener)
	if lo == nil {
		return 0
	}

	linked := m.SameOrLinkedFloor(listener, x, y, z)
	if mode == ForPlayback && !linked {
		return 0
	}

	vol := rawVolume(x-lo.X, y-lo.Y, z-lo.Z, minDist, maxDist)
	if mode == ForEventRouting && !linked && vol > 0 {
		vol /= m.attenuation
		if vol == 0 {
			vol = 1 // still sensed, just barely
		}
	}
	return vol
}

// maxRange caps distances before squaring so the squares fit in int64.
const maxRange = 1 << 30

// rawVolume uses the dominant axis as the distance, squared and shifted
// down by 4 to keep level-scale coordinates in integer range.
func rawVolume(dx, dy, dz float64, minDist, maxDist int) int {
	d := math.Max(math.Abs(dx), math.Max(math.Abs(dy), math.Abs(dz)))
	if !(d < maxRange) { // also catches NaN
		d = maxRange
	}
	di := int64(d)
	lo, hi := int64(clampRange(minDist)), int64(clampRange(maxDist))
	distSq := (di * di) >> 4
	minSq := (lo * lo) >> 4
	maxSq := (hi * hi) >> 4

	if distSq <= minSq {
		return MaxVolume
	}
	if distSq >= maxSq || maxSq <= minSq {
		return 0
	}
	return int(MaxVolume * (maxSq - distSq) / (maxSq - minSq))
}

func clampRange(d int) int {
	return min(max(d, 0), maxRange)
}

// SameOrLinkedFloor reports whether a sound at (x,y,z) is on the listener's
// floor, a floor sharing its camera, a designer-linked floor, or within the
// boundary tolerance of the listener's rect (doors sit on floor edges).
func (m *Model) SameOrLinkedFloor(listener world.ObjectID, x, y, z float64) bool {
	lo := m.world.Object(listener)
	if lo == nil || lo.Floor == world.NoFloor {
		return false
	}
	floors := m.world.Floors()
	sf := floors.Locate(x, y, z)
	if sf == lo.Floor {
		return true
	}
	if sf != world.NoFloor {
		if floors.SameCamera(lo.Floor, sf) || m.Linked(lo.Floor, sf) {
			return true
		}
	}
	return floors.Rect(lo.Floor).Contains(x, y, z, m.tolerance)
}

// Linked reports whether two floors were paired by LinkFloors.
func (m *Model) Linked(a, b int) bool {
	for _, l := range m.links {
		if (l.a == a && l.b == b) || (l.a == b && l.b == a) {
			return true
		}
	}
	return false
}

// LinkFloors pairs two floors so events carry between them. Unknown floor
// names are ignored; exceeding the table is a content error.
func (m *Model) LinkFloors(nameA, nameB string) error {
	floors := m.world.Floors()
	a, okA := floors.Index(nameA)
	b, okB := floors.Index(nameB)
	if !okA || !okB {
		m.log.Debug("link floors: unknown floor ignored",
			zap.String("a", nameA), zap.String("b", nameB))
		return nil
	}
	if m.Linked(a, b) {
		return nil
	}
	if len(m.links) >= m.maxLinks {
		return fmt.Errorf("link %s<->%s (max %d): %w", nameA, nameB, m.maxLinks, ErrFloorLinksFull)
	}
	m.links = append(m.links, floorLink{a: a, b: b})
	return nil
}

// LinkNames returns the links as floor-name pairs, in insertion order.
func (m *Model) LinkNames() [][2]string {
	floors := m.world.Floors()
	out := make([][2]string, len(m.links))
	for i, l := range m.links {
		out[i] = [2]string{floors.Name(l.a), floors.Name(l.b)}
	}
	return out
}

func (m *Model) Reset() {
	m.links = m.links[:0]
}
