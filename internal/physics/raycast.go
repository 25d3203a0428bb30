package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Hit describes a ray or sweep contact.
type Hit struct {
	Collider *Collider
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
	// StartPenetrating is set when the swept volume already overlaps the collider at distance zero.
	StartPenetrating bool
}

// Raycast fills hits with every collider crossed by the ray within maxDistance and returns the count.
// Colliders containing the origin are not reported.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32, mask uint32, hits []Hit) int {
	direction = unit(direction, rl.Vector3{})
	if len(hits) == 0 || maxDistance <= 0 || rl.Vector3Length(direction) == 0 {
		return 0
	}

	end := rl.Vector3Add(origin, rl.Vector3Scale(direction, maxDistance))
	count := 0
	w.gather(segmentAABB(origin, end, 0), func(c *Collider) bool {
		if !c.InMask(mask) {
			return true
		}
		hit, ok := raycastCollider(origin, direction, c, maxDistance)
		if !ok {
			return true
		}
		hit.Collider = c
		hits[count] = hit
		count++
		return count < len(hits)
	})
	return count
}

func raycastCollider(origin, direction rl.Vector3, c *Collider, maxDistance float32) (Hit, bool) {
	switch s := c.Shape.(type) {
	case Box:
		return raycastBox(origin, direction, c, s, maxDistance)
	case Sphere:
		return raycastSphere(origin, direction, c, s, maxDistance)
	default:
		return raycastMarch(origin, direction, c, maxDistance)
	}
}

// raycastBox runs the slab test in the box's local frame.
func raycastBox(origin, direction rl.Vector3, c *Collider, box Box, maxDistance float32) (Hit, bool) {
	localOrigin := c.ToLocal(origin)
	_, rot := c.Pose()
	localDir := rl.Vector3RotateByQuaternion(direction, rl.QuaternionInvert(rot))

	min := rl.Vector3Negate(box.Half)
	max := box.Half

	tmin := float32(-1e30)
	tmax := float32(1e30)
	o := [3]float32{localOrigin.X, localOrigin.Y, localOrigin.Z}
	d := [3]float32{localDir.X, localDir.Y, localDir.Z}
	lo := [3]float32{min.X, min.Y, min.Z}
	hi := [3]float32{max.X, max.Y, max.Z}

	for axis := 0; axis < 3; axis++ {
		if d[axis] != 0 {
			t1 := (lo[axis] - o[axis]) / d[axis]
			t2 := (hi[axis] - o[axis]) / d[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if o[axis] < lo[axis] || o[axis] > hi[axis] {
			return Hit{}, false
		}
		if tmin > tmax {
			return Hit{}, false
		}
	}

	// Starting inside the box is not a hit
	if tmin < 0 || tmin > maxDistance {
		return Hit{}, false
	}

	local := rl.Vector3Add(localOrigin, rl.Vector3Scale(localDir, tmin))

	// Calculate normal based on which face was hit
	var normal rl.Vector3
	epsilon := float32(0.001)
	if abs(local.X-min.X) < epsilon {
		normal = rl.Vector3{X: -1}
	} else if abs(local.X-max.X) < epsilon {
		normal = rl.Vector3{X: 1}
	} else if abs(local.Y-min.Y) < epsilon {
		normal = rl.Vector3{Y: -1}
	} else if abs(local.Y-max.Y) < epsilon {
		normal = rl.Vector3{Y: 1}
	} else if abs(local.Z-min.Z) < epsilon {
		normal = rl.Vector3{Z: -1}
	} else {
		normal = rl.Vector3{Z: 1}
	}

	return Hit{
		Point:    rl.Vector3Add(origin, rl.Vector3Scale(direction, tmin)),
		Normal:   rl.Vector3RotateByQuaternion(normal, rot),
		Distance: tmin,
	}, true
}

func raycastSphere(origin, direction rl.Vector3, c *Collider, sphere Sphere, maxDistance float32) (Hit, bool) {
	center, _ := c.Pose()
	radius := sphere.Radius

	oc := rl.Vector3Subtract(origin, center)
	b := rl.Vector3DotProduct(oc, direction)
	cc := rl.Vector3DotProduct(oc, oc) - radius*radius
	if cc <= 0 {
		return Hit{}, false
	}

	discriminant := b*b - cc
	if discriminant < 0 {
		return Hit{}, false
	}

	t := -b - math32.Sqrt(discriminant)
	if t < 0 || t > maxDistance {
		return Hit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := unit(rl.Vector3Subtract(point, center), rl.Vector3Negate(direction))

	return Hit{Point: point, Normal: normal, Distance: t}, true
}

// raycastMarch sphere-traces the collider's signed distance, used for shapes without a closed form here.
func raycastMarch(origin, direction rl.Vector3, c *Collider, maxDistance float32) (Hit, bool) {
	probe := capsuleProbe{a: origin, b: origin}
	hit, ok := probe.sweep(c, direction, maxDistance)
	if !ok || hit.StartPenetrating {
		return Hit{}, false
	}
	return hit, true
}
