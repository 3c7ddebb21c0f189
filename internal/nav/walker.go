package nav

import (
	"math"

	"github.com/icbgo/icb/internal/config"
	"github.com/icbgo/icb/internal/world"
	"go.uber.org/zap"
)

type route struct {
	x, y, z float64
	speed   float64
	laser   bool
}

// Walker is the stand-in route planner: straight lines across floor rects.
type Walker struct {
	world  *world.State
	routes map[world.ObjectID]*route
	walk   float64
	run    float64
	mask   float64
	log    *zap.Logger
}

func NewWalker(ws *world.State, cfg config.CompanionConfig, log *zap.Logger) *Walker {
	return &Walker{
		world:  ws,
		routes: make(map[world.ObjectID]*route),
		walk:   cfg.WalkSpeed,
		run:    cfg.RunSpeed,
		mask:   cfg.BarrierMaskRadius,
		log:    log,
	}
}

func (w *Walker) speed(run bool) float64 {
	if run {
		return w.run
	}
	return w.walk
}

// destFloor resolves the destination height: the mover's own level when the
// point is on a floor there, else the base of whichever floor holds (x,z).
func (w *Walker) destFloor(o *world.Object, x, z float64) (float64, bool) {
	floors := w.world.Floors()
	if floors.Locate(x, o.Y, z) != world.NoFloor {
		return o.Y, true
	}
	if i := floors.LocateXZ(x, z); i != world.NoFloor {
		return floors.Rect(i).Y, true
	}
	return 0, false
}

// SetupRoute plans a route to (x,z). It fails when the destination is off
// every floor. With mask set the route stops short of the destination by
// the barrier mask radius so the mover doesn't end inside whoever is there.
func (w *Walker) SetupRoute(id world.ObjectID, x, z float64, run, mask bool) bool {
	o := w.world.Object(id)
	if o == nil {
		return false
	}
	y, ok := w.destFloor(o, x, z)
	if !ok {
		return false
	}
	if mask && w.mask > 0 {
		dx, dz := x-o.X, z-o.Z
		d := math.Hypot(dx, dz)
		if d <= w.mask {
			x, z = o.X, o.Z
		} else {
			k := (d - w.mask) / d
			x, z = o.X+dx*k, o.Z+dz*k
		}
	}
	w.routes[id] = &route{x: x, y: y, z: z, speed: w.speed(run)}
	return true
}

// Laser sets a direct route that ignores floors. It never fails.
func (w *Walker) Laser(id world.ObjectID, x, z float64, run bool) {
	o := w.world.Object(id)
	if o == nil {
		return
	}
	y, ok := w.destFloor(o, x, z)
	if !ok {
		y = o.Y
	}
	w.routes[id] = &route{x: x, y: y, z: z, speed: w.speed(run), laser: true}
}

// Process moves the object one tick along its route and reports arrival.
// An object with no route has arrived.
func (w *Walker) Process(id world.ObjectID) bool {
	r := w.routes[id]
	o := w.world.Object(id)
	if r == nil || o == nil {
		delete(w.routes, id)
		return true
	}
	dx, dz := r.x-o.X, r.z-o.Z
	d := math.Hypot(dx, dz)
	if d > 0 {
		o.Pan = world.PanTo(o.X, o.Z, r.x, r.z)
	}
	if d <= r.speed {
		w.world.MoveObject(id, r.x, r.y, r.z)
		delete(w.routes, id)
		return true
	}
	k := r.speed / d
	w.world.MoveObject(id, o.X+dx*k, o.Y, o.Z+dz*k)
	return false
}

func (w *Walker) Cancel(id world.ObjectID) {
	delete(w.routes, id)
}

// Active reports whether the object has a route in progress.
func (w *Walker) Active(id world.ObjectID) bool {
	_, ok := w.routes[id]
	return ok
}

func (w *Walker) Reset() {
	clear(w.routes)
}
