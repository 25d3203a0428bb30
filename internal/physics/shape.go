package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCapsule
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	}
	return "unknown"
}

// Shape is a convex collision volume expressed in its collider's local space.
type Shape interface {
	Kind() ShapeKind
	// SignedDistance returns the distance from local point p to the surface (negative inside)
	// and the outward unit direction at the closest surface feature.
	SignedDistance(p rl.Vector3) (float32, rl.Vector3)
	// HalfExtents bounds the shape with a local axis-aligned box.
	HalfExtents() rl.Vector3
}

// Box is an oriented box with the given half extents.
type Box struct {
	Half rl.Vector3
}

// NewBox creates a box from full size dimensions.
func NewBox(size rl.Vector3) Box {
	return Box{Half: rl.Vector3{X: abs(size.X) / 2, Y: abs(size.Y) / 2, Z: abs(size.Z) / 2}}
}

func (b Box) Kind() ShapeKind         { return ShapeBox }
func (b Box) HalfExtents() rl.Vector3 { return b.Half }

// localAxes orients a box in its own frame.
var localAxes = [3]rl.Vector3{{X: 1}, {Y: 1}, {Z: 1}}

func (b Box) SignedDistance(p rl.Vector3) (float32, rl.Vector3) {
	q := rl.Vector3{X: abs(p.X) - b.Half.X, Y: abs(p.Y) - b.Half.Y, Z: abs(p.Z) - b.Half.Z}

	if q.X > 0 || q.Y > 0 || q.Z > 0 {
		closest := ClosestPointOnOBB(OBB{HalfSize: b.Half, Axes: localAxes}, p)
		d := rl.Vector3Subtract(p, closest)
		return rl.Vector3Length(d), unit(d, worldUp)
	}

	// Inside: the nearest face wins
	n := rl.Vector3{X: sign(p.X)}
	depth := q.X
	if q.Y > depth {
		depth = q.Y
		n = rl.Vector3{Y: sign(p.Y)}
	}
	if q.Z > depth {
		depth = q.Z
		n = rl.Vector3{Z: sign(p.Z)}
	}
	return depth, n
}

// Sphere is centered on its collider.
type Sphere struct {
	Radius float32
}

func (s Sphere) Kind() ShapeKind { return ShapeSphere }

func (s Sphere) HalfExtents() rl.Vector3 {
	return rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
}

func (s Sphere) SignedDistance(p rl.Vector3) (float32, rl.Vector3) {
	return rl.Vector3Length(p) - s.Radius, unit(p, worldUp)
}

// Capsule is aligned with its collider's local Y axis and centered on it.
type Capsule struct {
	Radius float32
	Height float32
}

func (c Capsule) Kind() ShapeKind { return ShapeCapsule }

func (c Capsule) HalfExtents() rl.Vector3 {
	return rl.Vector3{X: c.Radius, Y: math32.Max(c.Height*0.5, c.Radius), Z: c.Radius}
}

// Segment returns the local inner segment endpoints.
func (c Capsule) Segment() (rl.Vector3, rl.Vector3) {
	half := math32.Max(c.Height*0.5-c.Radius, 0)
	return rl.Vector3{Y: -half}, rl.Vector3{Y: half}
}

func (c Capsule) SignedDistance(p rl.Vector3) (float32, rl.Vector3) {
	a, b := c.Segment()
	d := rl.Vector3Subtract(p, closestPointOnSegment(p, a, b))
	return rl.Vector3Length(d) - c.Radius, unit(d, worldRight)
}

func sign(x float32) float32 {
	if x < 0 {
		return -1
	}
	return 1
}
