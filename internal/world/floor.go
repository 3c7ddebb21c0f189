package world

// NoFloor is returned when a point isn't on any floor rect.
const NoFloor = -1

// FloorRect is a named walkable region of the level. Camera names the
// camera region the rect is drawn from; rects sharing a camera are treated
// as one visible area.
type FloorRect struct {
	Name   string
	Camera string
	X0, Z0 float64
	X1, Z1 float64
	Y      float64 // floor base height
	Height float64 // headroom above Y still counted as on this floor
}

// Contains reports whether the point lies in the rect grown by tol on the
// horizontal axes.
func (r FloorRect) Contains(x, y, z, tol float64) bool {
	if x < r.X0-tol || x > r.X1+tol || z < r.Z0-tol || z > r.Z1+tol {
		return false
	}
	return y >= r.Y-1 && y <= r.Y+r.Height
}

// Floors is the level's floor table, indexed in level order.
type Floors struct {
	rects  []FloorRect
	byName map[string]int
}

func NewFloors(rects []FloorRect) *Floors {
	f := &Floors{
		rects:  make([]FloorRect, len(rects)),
		byName: make(map[string]int, len(rects)),
	}
	copy(f.rects, rects)
	for i, r := range f.rects {
		f.byName[r.Name] = i
	}
	return f
}

func (f *Floors) Len() int { return len(f.rects) }

// Rect returns the floor at index i. Caller checks the index.
func (f *Floors) Rect(i int) FloorRect { return f.rects[i] }

// Index resolves a floor name.
func (f *Floors) Index(name string) (int, bool) {
	i, ok := f.byName[name]
	return i, ok
}

// Name returns the floor name or "" for NoFloor.
func (f *Floors) Name(i int) string {
	if i < 0 || i >= len(f.rects) {
		return ""
	}
	return f.rects[i].Name
}

// Locate returns the first floor containing the point, or NoFloor.
func (f *Floors) Locate(x, y, z float64) int {
	for i, r := range f.rects {
		if r.Contains(x, y, z, 0) {
			return i
		}
	}
	return NoFloor
}

// SameCamera reports whether two floors are drawn by the same camera.
func (f *Floors) SameCamera(a, b int) bool {
	if a < 0 || b < 0 || a >= len(f.rects) || b >= len(f.rects) {
		return false
	}
	ca, cb := f.rects[a].Camera, f.rects[b].Camera
	return ca != "" && ca == cb
}

// LocateXZ returns the first floor whose footprint holds (x,z) at any
// height, or NoFloor.
func (f *Floors) LocateXZ(x, z float64) int {
	for i, r := range f.rects {
		if x >= r.X0 && x <= r.X1 && z >= r.Z0 && z <= r.Z1 {
			return i
		}
	}
	return NoFloor
}

// Rects returns a copy of the table in level order.
func (f *Floors) Rects() []FloorRect {
	return append([]FloorRect(nil), f.rects...)
}
