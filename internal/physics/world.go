package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

// Spatial grid cell size - static colliders are bucketed by the cells their bounds touch
const CellSize = 5.0

// maxCellsPerCollider bounds grid insertion; larger colliders go to a list scanned on every query.
const maxCellsPerCollider = 64

// maxQueryCells bounds query cell walks; larger queries scan every static collider instead.
const maxQueryCells = 512

// Cell key for spatial hashing
type CellKey struct {
	X, Y, Z int
}

func posToCell(pos rl.Vector3) CellKey {
	return CellKey{
		X: int(math32.Floor(pos.X / CellSize)),
		Y: int(math32.Floor(pos.Y / CellSize)),
		Z: int(math32.Floor(pos.Z / CellSize)),
	}
}

func cellCount(lo, hi CellKey) int {
	return (hi.X - lo.X + 1) * (hi.Y - lo.Y + 1) * (hi.Z - lo.Z + 1)
}

// World is an in-memory scene answering ray, sweep, overlap and penetration queries.
// Static colliders live in a spatial grid; colliders attached to bodies are tested directly.
type World struct {
	Gravity rl.Vector3
	Logger  zerolog.Logger

	bodies   []*Body
	statics  []*Collider
	attached []*Collider

	grid      map[CellKey][]*Collider
	large     []*Collider
	gridDirty bool
	stamp     uint32
}

func NewWorld() *World {
	return &World{
		Gravity: rl.Vector3{X: 0, Y: -9.81, Z: 0},
		Logger:  zerolog.Nop(),
		grid:    make(map[CellKey][]*Collider),
	}
}

// AddCollider registers a collider. Its body, if any, is registered too.
func (w *World) AddCollider(c *Collider) {
	if c.world == w {
		return
	}
	c.world = w
	if c.Body == nil {
		w.statics = append(w.statics, c)
		w.gridDirty = true
		return
	}
	w.attached = append(w.attached, c)
	w.addBody(c.Body)
}

// AddBody registers a body and every collider attached to it.
func (w *World) AddBody(b *Body) {
	w.addBody(b)
	for _, c := range b.colliders {
		w.AddCollider(c)
	}
}

func (w *World) addBody(b *Body) {
	for _, existing := range w.bodies {
		if existing == b {
			return
		}
	}
	w.bodies = append(w.bodies, b)
}

// RemoveCollider unregisters a collider; its body stays registered.
func (w *World) RemoveCollider(c *Collider) {
	if c.world != w {
		return
	}
	c.world = nil
	if removeCollider(&w.statics, c) {
		w.gridDirty = true
		return
	}
	removeCollider(&w.attached, c)
}

// RemoveBody unregisters a body and its colliders.
func (w *World) RemoveBody(b *Body) {
	for _, c := range b.colliders {
		w.RemoveCollider(c)
	}
	for i, existing := range w.bodies {
		if existing == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

func removeCollider(list *[]*Collider, c *Collider) bool {
	for i, existing := range *list {
		if existing == c {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// Bodies returns the registered bodies.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Colliders returns every registered collider, static first.
func (w *World) Colliders() []*Collider {
	all := make([]*Collider, 0, len(w.statics)+len(w.attached))
	all = append(all, w.statics...)
	return append(all, w.attached...)
}

// rebuildGrid clears and repopulates the spatial hash grid
func (w *World) rebuildGrid() {
	for k := range w.grid {
		delete(w.grid, k)
	}
	w.large = w.large[:0]

	for _, c := range w.statics {
		b := c.Bounds()
		lo, hi := posToCell(b.Min), posToCell(b.Max)
		if cellCount(lo, hi) > maxCellsPerCollider {
			c.large = true
			w.large = append(w.large, c)
			continue
		}
		c.large = false
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					key := CellKey{x, y, z}
					w.grid[key] = append(w.grid[key], c)
				}
			}
		}
	}
	w.gridDirty = false

	w.Logger.Debug().
		Int("statics", len(w.statics)).
		Int("cells", len(w.grid)).
		Int("large", len(w.large)).
		Msg("physics: grid rebuilt")
}

// gather visits each collider whose bounds intersect the query box once.
// visit returns false to stop early.
func (w *World) gather(bounds AABB, visit func(*Collider) bool) {
	if w.gridDirty {
		w.rebuildGrid()
	}
	w.stamp++
	stamp := w.stamp

	try := func(c *Collider) bool {
		if c.mark == stamp {
			return true
		}
		c.mark = stamp
		if c.Disabled || !c.Bounds().Intersects(bounds) {
			return true
		}
		return visit(c)
	}

	for _, c := range w.attached {
		if !try(c) {
			return
		}
	}
	for _, c := range w.large {
		if !try(c) {
			return
		}
	}

	lo, hi := posToCell(bounds.Min), posToCell(bounds.Max)
	if cellCount(lo, hi) > maxQueryCells {
		for _, c := range w.statics {
			if !try(c) {
				return
			}
		}
		return
	}
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				for _, c := range w.grid[CellKey{x, y, z}] {
					if !try(c) {
						return
					}
				}
			}
		}
	}
}

// Step advances kinematic and dynamic bodies. Bodies driven by an Agent are left to their controller.
func (w *World) Step(deltaTime float32) {
	if deltaTime <= 0 {
		return
	}

	// 1. Kinematic bodies follow their own velocity
	for _, b := range w.bodies {
		if b.Agent != nil || !b.IsKinematic {
			continue
		}
		b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(b.Velocity, deltaTime))
		b.Rotation = integrateRotation(b.Rotation, b.AngularVelocity, deltaTime)
	}

	// 2. Dynamic bodies integrate gravity and velocity, then get pushed out of blocking geometry
	for _, b := range w.bodies {
		if b.Agent != nil || b.IsKinematic || b.IsSleeping {
			continue
		}
		if b.UseGravity {
			b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(w.Gravity, deltaTime))
		}
		b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(b.Velocity, deltaTime))
		b.Rotation = integrateRotation(b.Rotation, b.AngularVelocity, deltaTime)

		for _, col := range b.colliders {
			if col.IsTrigger {
				continue
			}
			w.gather(col.Bounds(), func(other *Collider) bool {
				if other.IsTrigger || other.Disabled || other.Body == b {
					return true
				}
				// Only static and kinematic geometry blocks dynamic bodies
				if other.Body != nil && !other.Body.IsKinematic {
					return true
				}
				w.resolveStaticCollision(b, col, other)
				return true
			})
		}

		// Check if object should go to sleep
		b.TrySleep(deltaTime)
	}
}
