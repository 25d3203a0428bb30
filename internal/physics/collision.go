package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sweep solver tolerances
const (
	contactTolerance   = 1e-5 // gap treated as touching
	advancementSteps   = 32
	bisectionSteps     = 30
	penetrationEpsilon = 1e-6
)

// capsuleProbe is a segment inflated by radius, the swept volume of every capsule query.
type capsuleProbe struct {
	a, b   rl.Vector3
	radius float32
}

func (p capsuleProbe) at(t float32, offset rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(rl.Vector3Lerp(p.a, p.b, t), offset)
}

func (p capsuleProbe) bounds() AABB {
	return segmentAABB(p.a, p.b, p.radius)
}

// gap returns the separation between the probe shifted by offset and the collider,
// negative when overlapping, and the segment parameter of the closest point.
// The signed distance of a convex shape is convex along the segment.
func (p capsuleProbe) gap(c *Collider, offset rl.Vector3) (float32, float32) {
	if p.a == p.b {
		d, _ := c.SignedDistance(rl.Vector3Add(p.a, offset))
		return d - p.radius, 0
	}
	t, d := minimizeConvex(0, 1, func(t float32) float32 {
		d, _ := c.SignedDistance(p.at(t, offset))
		return d
	})
	return d - p.radius, t
}

// contact builds a hit for the probe touching c at offset.
func (p capsuleProbe) contact(c *Collider, offset rl.Vector3, t, distance float32) Hit {
	q := p.at(t, offset)
	d, n := c.SignedDistance(q)
	return Hit{
		Collider: c,
		Point:    rl.Vector3Subtract(q, rl.Vector3Scale(n, d)),
		Normal:   n,
		Distance: distance,
	}
}

// sweep moves the probe along direction (unit) and returns the first contact within maxDistance.
func (p capsuleProbe) sweep(c *Collider, direction rl.Vector3, maxDistance float32) (Hit, bool) {
	g0, t0 := p.gap(c, rl.Vector3{})
	if g0 <= 0 {
		hit := p.contact(c, rl.Vector3{}, t0, 0)
		hit.Normal = rl.Vector3Negate(direction)
		hit.StartPenetrating = true
		return hit, true
	}

	gapAt := func(s float32) (float32, float32) {
		return p.gap(c, rl.Vector3Scale(direction, s))
	}

	// Conservative advancement: the gap shrinks by at most the distance travelled
	s, g := float32(0), g0
	for i := 0; i < advancementSteps; i++ {
		if g <= contactTolerance {
			_, t := gapAt(s)
			return p.contact(c, rl.Vector3Scale(direction, s), t, s), true
		}
		s += g
		if s > maxDistance {
			return Hit{}, false
		}
		g, _ = gapAt(s)
	}
	if g <= contactTolerance {
		_, t := gapAt(s)
		return p.contact(c, rl.Vector3Scale(direction, s), t, s), true
	}

	// Grazing approach: the gap is convex in s, so find its minimum and bisect to the first root
	sMin, gMin := minimizeConvex(s, maxDistance, func(s float32) float32 {
		g, _ := gapAt(s)
		return g
	})
	if gMin > contactTolerance {
		return Hit{}, false
	}
	lo, hi := s, sMin
	for i := 0; i < bisectionSteps; i++ {
		mid := (lo + hi) * 0.5
		if g, _ := gapAt(mid); g > contactTolerance {
			lo = mid
		} else {
			hi = mid
		}
	}
	_, t := gapAt(hi)
	return p.contact(c, rl.Vector3Scale(direction, hi), t, hi), true
}

// penetration returns the direction and depth that separate the probe from c.
func (p capsuleProbe) penetration(c *Collider) (rl.Vector3, float32, bool) {
	g, t := p.gap(c, rl.Vector3{})
	if g >= -penetrationEpsilon {
		return rl.Vector3{}, 0, false
	}
	_, n := c.SignedDistance(p.at(t, rl.Vector3{}))
	return n, -g, true
}

// probeFor returns the capsule probe matching a sphere or capsule collider.
func probeFor(c *Collider) (capsuleProbe, bool) {
	pos, rot := c.Pose()
	switch s := c.Shape.(type) {
	case Sphere:
		return capsuleProbe{a: pos, b: pos, radius: s.Radius}, true
	case Capsule:
		a, b := s.Segment()
		return capsuleProbe{
			a:      rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(a, rot)),
			b:      rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(b, rot)),
			radius: s.Radius,
		}, true
	}
	return capsuleProbe{}, false
}

// CapsuleCast sweeps the capsule (p1, p2, radius) along direction and fills hits with every
// contact within maxDistance. Overlaps at the start are reported with StartPenetrating set.
func (w *World) CapsuleCast(p1, p2 rl.Vector3, radius float32, direction rl.Vector3, maxDistance float32, mask uint32, hits []Hit) int {
	direction = unit(direction, rl.Vector3{})
	if len(hits) == 0 || maxDistance < 0 || rl.Vector3Length(direction) == 0 {
		return 0
	}

	probe := capsuleProbe{a: p1, b: p2, radius: radius}
	swept := probe.bounds().Sweep(rl.Vector3Scale(direction, maxDistance))

	count := 0
	w.gather(swept, func(c *Collider) bool {
		if !c.InMask(mask) {
			return true
		}
		hit, ok := probe.sweep(c, direction, maxDistance)
		if !ok {
			return true
		}
		hits[count] = hit
		count++
		return count < len(hits)
	})
	return count
}

// OverlapCapsule fills out with every collider overlapping the capsule and returns the count.
func (w *World) OverlapCapsule(p1, p2 rl.Vector3, radius float32, mask uint32, out []*Collider) int {
	if len(out) == 0 {
		return 0
	}

	probe := capsuleProbe{a: p1, b: p2, radius: radius}
	count := 0
	w.gather(probe.bounds(), func(c *Collider) bool {
		if !c.InMask(mask) {
			return true
		}
		if g, _ := probe.gap(c, rl.Vector3{}); g >= 0 {
			return true
		}
		out[count] = c
		count++
		return count < len(out)
	})
	return count
}

// ComputePenetration returns the direction and distance that move the capsule out of other.
// ok is false when they do not overlap.
func (w *World) ComputePenetration(p1, p2 rl.Vector3, radius float32, other *Collider) (rl.Vector3, float32, bool) {
	probe := capsuleProbe{a: p1, b: p2, radius: radius}
	return probe.penetration(other)
}

// separation returns the translation that pushes a out of b, or false when they do not touch.
func separation(a, b *Collider) (rl.Vector3, bool) {
	if _, ok := a.Shape.(Box); ok {
		if _, ok := b.Shape.(Box); ok {
			pushOut := a.OBB().ResolveOBB(b.OBB())
			return pushOut, pushOut.X != 0 || pushOut.Y != 0 || pushOut.Z != 0
		}
		// Push b out of the box and invert
		probe, ok := probeFor(b)
		if !ok {
			return rl.Vector3{}, false
		}
		dir, dist, ok := probe.penetration(a)
		return rl.Vector3Scale(dir, -dist), ok
	}

	probe, ok := probeFor(a)
	if !ok {
		return rl.Vector3{}, false
	}
	dir, dist, ok := probe.penetration(b)
	return rl.Vector3Scale(dir, dist), ok
}

// resolveStaticCollision pushes a dynamic body's collider out of a blocking collider
// and removes the closing velocity.
func (w *World) resolveStaticCollision(b *Body, col, blocker *Collider) {
	pushOut, ok := separation(col, blocker)
	if !ok {
		return
	}

	// Push fully out (blocker doesn't move)
	b.Position = rl.Vector3Add(b.Position, pushOut)

	pushLen := rl.Vector3Length(pushOut)
	if pushLen < 0.0001 {
		return
	}
	normal := rl.Vector3Scale(pushOut, 1/pushLen)

	// Kinematic blockers carry the body along
	var carrier rl.Vector3
	if blocker.Body != nil {
		carrier = blocker.Body.GetPointVelocity(b.Position)
	}
	relative := rl.Vector3Subtract(b.Velocity, carrier)

	velAlongNormal := rl.Vector3DotProduct(relative, normal)
	if velAlongNormal < 0 {
		// Reflect and apply bounciness
		relative = rl.Vector3Subtract(relative, rl.Vector3Scale(normal, (1+b.Bounciness)*velAlongNormal))

		// Apply friction perpendicular to normal
		along := rl.Vector3DotProduct(relative, normal)
		tangent := rl.Vector3Subtract(relative, rl.Vector3Scale(normal, along))
		tangent = rl.Vector3Scale(tangent, 1-clamp(b.Friction, 0, 1))
		b.Velocity = rl.Vector3Add(carrier, rl.Vector3Add(tangent, rl.Vector3Scale(normal, along)))
	}
}
