package motion

import (
	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// shouldFilter reports whether a collider is invisible to this agent.
func (m *CharacterMovement) shouldFilter(c *physics.Collider) bool {
	if c == m.collider || (c.Body != nil && c.Body == m.body) {
		return true
	}
	if c.IsTrigger && !m.hitTriggers {
		return true
	}
	if _, ok := m.ignoredColliders[c]; ok {
		return true
	}
	if c.Body != nil {
		if _, ok := m.ignoredBodies[c.Body]; ok {
			return true
		}
	}
	return m.ColliderFilter != nil && m.ColliderFilter(c)
}

func (m *CharacterMovement) behaviourOf(c *physics.Collider) (CollisionBehaviour, bool) {
	if m.Behaviours == nil || c == nil {
		return BehaviourDefault, false
	}
	return m.Behaviours.Behaviour(c), true
}

// computeHitLocation classifies a normal against the agent's up axis.
func (m *CharacterMovement) computeHitLocation(normal rl.Vector3) HitLocation {
	vertical := dot(normal, m.characterUp)
	if vertical > m.tol.HemisphereLimit {
		return HitBelow
	}
	if vertical < -m.tol.HemisphereLimit {
		return HitAbove
	}
	return HitSides
}

// isWalkable decides whether a surface with the given normal can be stood on.
// Precedence: behaviour flags, then the collider's slope override, then the agent's slope limit.
func (m *CharacterMovement) isWalkable(c *physics.Collider, normal rl.Vector3) bool {
	if m.computeHitLocation(normal) != HitBelow {
		return false
	}

	if b, ok := m.behaviourOf(c); ok {
		if b.Has(Walkable) {
			return dot(normal, m.characterUp) > m.tol.MaxWalkableSlopeLimit
		}
		if b.Has(NotWalkable) {
			return dot(normal, m.characterUp) > m.tol.MinWalkableSlopeLimit
		}
	}

	limit := m.minSlopeLimit
	if m.slopeLimitOverride && c != nil {
		switch c.SlopeOverride.Behaviour {
		case physics.SlopeWalkable:
			limit = m.tol.MaxWalkableSlopeLimit
		case physics.SlopeNotWalkable:
			limit = m.tol.MinWalkableSlopeLimit
		case physics.SlopeOverride:
			limit = c.SlopeOverride.WalkableCos()
		}
	}
	return dot(normal, m.characterUp) > limit
}

// computeBlockingNormal flattens a non-walkable normal while on the ground so the agent is
// neither pushed up a steep face nor down into the floor.
func (m *CharacterMovement) computeBlockingNormal(normal rl.Vector3, walkable bool) rl.Vector3 {
	if !(m.IsGrounded() || m.hasLanded) || walkable {
		return normal
	}

	groundNormal := m.currentGround.Normal
	if m.hasLanded {
		groundNormal = m.foundGround.Normal
	}

	forward := perpendicularTo(groundNormal, normal)
	blocking := perpendicularTo(forward, m.characterUp)
	if dot(blocking, normal) < 0 {
		blocking = neg(blocking)
	}
	if blocking = m.ConstrainDirectionToPlane(blocking); !isZero(blocking) {
		return blocking
	}
	return normal
}

// IsWithinEdgeTolerance reports whether point lies inside the capsule footprint, shrunk by the edge reject distance.
func (m *CharacterMovement) IsWithinEdgeTolerance(position, point rl.Vector3, radius float32) bool {
	distSq := sqrMag(projectOnPlane(sub(point, position), m.characterUp))
	reduced := math32.Max(m.tol.SweepEdgeRejectDistance+m.tol.KindaSmallNumber, radius-m.tol.SweepEdgeRejectDistance)
	return distSq < reduced*reduced
}

func (m *CharacterMovement) capsulePoints(position rl.Vector3) (bottom, top rl.Vector3) {
	return add(position, m.transformedBotCenter), add(position, m.transformedTopCenter)
}

// Raycast returns the closest unfiltered hit along the ray.
func (m *CharacterMovement) Raycast(origin, direction rl.Vector3, distance float32) (physics.Hit, bool) {
	n := m.backend.Raycast(origin, direction, distance, m.collisionLayers, m.hits[:])

	best := -1
	for i := 0; i < n; i++ {
		h := &m.hits[i]
		if h.Distance <= 0 || m.shouldFilter(h.Collider) {
			continue
		}
		if best < 0 || h.Distance < m.hits[best].Distance {
			best = i
		}
	}
	if best < 0 {
		return physics.Hit{}, false
	}
	return m.hits[best], true
}

// castClosest sweeps a capsule and returns the closest unfiltered blocking hit.
// Overlaps at the start mark the outcome penetrating; the closest blocking hit is still reported.
func (m *CharacterMovement) castClosest(p1, p2 rl.Vector3, radius float32, direction rl.Vector3, distance float32) SweepOutcome {
	m.metrics.sweep(m.ctx)
	n := m.backend.CapsuleCast(p1, p2, radius, direction, distance, m.collisionLayers, m.hits[:])

	var out SweepOutcome
	best := -1
	for i := 0; i < n; i++ {
		h := &m.hits[i]
		if m.shouldFilter(h.Collider) {
			continue
		}
		if h.StartPenetrating || h.Distance <= 0 {
			out.State = SweepPenetrating
			continue
		}
		if best < 0 || h.Distance < m.hits[best].Distance {
			best = i
		}
	}
	if best >= 0 {
		out.Hit, out.HasHit = m.hits[best], true
		if out.State == SweepClear {
			out.State = SweepBlocked
		}
	}
	return out
}

// capsuleCast sweeps the agent capsule from position.
func (m *CharacterMovement) capsuleCast(position rl.Vector3, radius float32, direction rl.Vector3, distance float32) SweepOutcome {
	bottom, top := m.capsulePoints(position)
	return m.castClosest(bottom, top, radius, direction, distance)
}

// capsuleCastEx sweeps the agent capsule and measures starting overlaps. Overlapping hits get
// the blocking normal of their recovery direction and a negative distance. The most opposing
// overlap wins; with ignoreNonBlocking, overlaps the sweep is already leaving are skipped.
func (m *CharacterMovement) capsuleCastEx(position rl.Vector3, radius float32, direction rl.Vector3, distance float32, ignoreNonBlocking bool) SweepOutcome {
	m.metrics.sweep(m.ctx)
	bottom, top := m.capsulePoints(position)
	n := m.backend.CapsuleCast(bottom, top, radius, direction, distance, m.collisionLayers, m.hits[:])
	if n == 0 {
		return SweepOutcome{}
	}

	for i := 0; i < n; i++ {
		h := &m.hits[i]
		if !h.StartPenetrating || m.shouldFilter(h.Collider) {
			continue
		}
		mtdDir, mtdDist, ok := m.computeMTD(position, h.Collider)
		if !ok {
			continue
		}
		mtdDir = m.ConstrainDirectionToPlane(mtdDir)
		h.Point = m.contactPointOnCapsule(position, mtdDir)
		h.Normal = m.computeBlockingNormal(mtdDir, m.isWalkable(h.Collider, mtdDir))
		h.Distance = -mtdDist
	}

	sortHits(m.hits[:n])

	mostOpposing := math32.Inf(1)
	best := -1
	for i := 0; i < n; i++ {
		h := &m.hits[i]
		if m.shouldFilter(h.Collider) {
			continue
		}
		// Only measured overlaps carry a negative distance
		if h.Distance < 0 {
			movementDotNormal := dot(direction, h.Normal)
			if ignoreNonBlocking && movementDotNormal > 0 {
				continue
			}
			if movementDotNormal < mostOpposing {
				mostOpposing = movementDotNormal
				best = i
			}
		} else if best < 0 {
			best = i
			break
		}
	}
	if best < 0 {
		return SweepOutcome{}
	}

	out := SweepOutcome{State: SweepBlocked, Hit: m.hits[best], HasHit: true}
	if out.Hit.Distance <= 0 {
		out.State = SweepPenetrating
		out.RecoverDirection = out.Hit.Normal
		out.RecoverDistance = math32.Abs(out.Hit.Distance)
	}
	return out
}

// sortHits orders hits by distance without allocating.
func sortHits(hits []physics.Hit) {
	for i := 1; i < len(hits); i++ {
		key := hits[i]
		j := i - 1
		for ; j >= 0 && key.Distance < hits[j].Distance; j-- {
			hits[j+1] = hits[j]
		}
		hits[j+1] = key
	}
}

// contactPointOnCapsule returns the capsule surface point opposite a recovery direction.
func (m *CharacterMovement) contactPointOnCapsule(position, recoverDirection rl.Vector3) rl.Vector3 {
	var center rl.Vector3
	switch m.computeHitLocation(recoverDirection) {
	case HitAbove:
		center = m.transformedTopCenter
	case HitBelow:
		center = m.transformedBotCenter
	default:
		center = m.transformedCenter
	}
	return sub(add(position, center), scale(recoverDirection, m.radius))
}

// sweepTest casts an inner capsule and one grown by the contact offset, and returns the closer
// blocking hit pulled back by the matching offset. Casting past the distance catches near-parallel grazes.
func (m *CharacterMovement) sweepTest(origin rl.Vector3, radius float32, direction rl.Vector3, distance float32) SweepOutcome {
	inner := m.capsuleCast(origin, radius, direction, distance+radius)
	innerHit := inner.HasHit && inner.Hit.Distance <= distance

	out := m.combineSweeps(origin, radius, direction, distance, inner.Hit, innerHit)
	if inner.Penetrating() {
		out.State = SweepPenetrating
	}
	return out
}

// sweepTestEx is sweepTest with measured overlaps; a penetrating inner sweep returns at once.
func (m *CharacterMovement) sweepTestEx(origin rl.Vector3, radius float32, direction rl.Vector3, distance float32, ignoreNonBlocking bool) SweepOutcome {
	inner := m.capsuleCastEx(origin, radius, direction, distance+radius, ignoreNonBlocking)
	innerHit := inner.HasHit && inner.Hit.Distance <= distance

	if innerHit && inner.Penetrating() {
		inner.Hit.Distance = math32.Max(0, inner.Hit.Distance-m.tol.SmallContactOffset)
		return inner
	}
	return m.combineSweeps(origin, radius, direction, distance, inner.Hit, innerHit)
}

func (m *CharacterMovement) combineSweeps(origin rl.Vector3, radius float32, direction rl.Vector3, distance float32, innerHit physics.Hit, haveInner bool) SweepOutcome {
	outerRadius := radius + m.tol.ContactOffset
	outer := m.capsuleCast(origin, outerRadius, direction, distance+outerRadius)
	haveOuter := outer.HasHit && outer.Hit.Distance <= distance

	if !haveInner && !haveOuter {
		return SweepOutcome{}
	}

	var hit physics.Hit
	switch {
	case !haveOuter, haveInner && innerHit.Distance < outer.Hit.Distance:
		hit = innerHit
		hit.Distance = math32.Max(0, hit.Distance-m.tol.ContactOffset)
	default:
		hit = outer.Hit
		hit.Distance = math32.Max(0, hit.Distance-m.tol.SmallContactOffset)
	}
	return SweepOutcome{State: SweepBlocked, Hit: hit, HasHit: true}
}

// computeInflatedMTD measures the overlap with c using a capsule grown by inflation.
func (m *CharacterMovement) computeInflatedMTD(position rl.Vector3, inflation float32, c *physics.Collider) (rl.Vector3, float32, bool) {
	bottom, top := m.capsulePoints(position)
	dir, dist, ok := m.backend.ComputePenetration(bottom, top, m.radius+inflation, c)
	if !ok {
		return rl.Vector3{}, 0, false
	}
	if !isFinite(dir) || math32.IsNaN(dist) || math32.IsInf(dist, 0) {
		m.logger.Warn().
			Str("collider", c.Name).
			Float32("x", dir.X).Float32("y", dir.Y).Float32("z", dir.Z).
			Msg("motion: penetration direction is not finite, skipping")
		return rl.Vector3{}, 0, false
	}
	return dir, math32.Max(math32.Abs(dist)-inflation, 0) + m.tol.KindaSmallNumber, true
}

// computeMTD tries a small inflation for precision and falls back to a larger one.
func (m *CharacterMovement) computeMTD(position rl.Vector3, c *physics.Collider) (rl.Vector3, float32, bool) {
	if dir, dist, ok := m.computeInflatedMTD(position, m.tol.SmallMTDInflation, c); ok {
		return dir, dist, true
	}
	return m.computeInflatedMTD(position, m.tol.LargeMTDInflation, c)
}

// overlapCount fills the overlap buffer with unfiltered colliders overlapping the capsule.
func (m *CharacterMovement) overlapCount(position rl.Vector3, rotation rl.Quaternion, radius, height float32) int {
	_, bottomCenter, topCenter := makeCapsule(radius, height)
	bottom := add(position, rotate(bottomCenter, rotation))
	top := add(position, rotate(topCenter, rotation))

	raw := m.backend.OverlapCapsule(bottom, top, radius, m.collisionLayers, m.overlaps[:])

	count := raw
	for i := 0; i < count; {
		if m.shouldFilter(m.overlaps[i]) {
			count--
			m.overlaps[i] = m.overlaps[count]
			m.overlaps[count] = nil
			continue
		}
		i++
	}
	return count
}

// OverlapTest returns the colliders overlapping a capsule of the given size at a pose.
// The slice aliases an internal buffer.
func (m *CharacterMovement) OverlapTest(position rl.Vector3, rotation rl.Quaternion, radius, height float32) []*physics.Collider {
	n := m.overlapCount(position, rotation, radius, height)
	return m.overlaps[:n]
}

// CheckCapsule reports whether the capsule overlaps anything but the current platform.
func (m *CharacterMovement) CheckCapsule() bool {
	return m.CheckHeight(m.height)
}

// CheckHeight reports whether a capsule of the given height would overlap anything but the current platform.
func (m *CharacterMovement) CheckHeight(height float32) bool {
	platform := m.movingPlatform.Platform
	hidden := m.hideBody(platform)
	n := m.overlapCount(m.body.Position, m.body.Rotation, m.radius, height)
	if hidden {
		m.IgnoreBody(platform, false)
	}
	return n > 0
}

// findGeomOpposingNormal returns the true surface normal behind a hit, the box face most opposed to
// the displacement for boxes. Spheres and capsules report exact normals already.
func (m *CharacterMovement) findGeomOpposingNormal(displacement rl.Vector3, hit physics.Hit) rl.Vector3 {
	if hit.Collider == nil {
		return hit.Normal
	}
	if _, ok := hit.Collider.Shape.(physics.Box); ok {
		return findBoxOpposingNormal(displacement, hit.Normal, hit.Collider)
	}
	return hit.Normal
}

// findBoxOpposingNormal picks, among the box faces adjacent to the contact, the one facing the displacement most.
func findBoxOpposingNormal(displacement, normal rl.Vector3, box *physics.Collider) rl.Vector3 {
	const kindaSmallNumber = 1e-4

	_, rot := box.Pose()
	inv := rl.QuaternionInvert(rot)
	localNormal := rotate(normal, inv)
	localTrace := rotate(displacement, inv)

	best := localNormal
	bestOpposingDot := math32.MaxFloat32
	for axis := 0; axis < 3; axis++ {
		n := component(localNormal, axis)
		switch {
		case n > kindaSmallNumber:
			if d := component(localTrace, axis); d < bestOpposingDot {
				bestOpposingDot = d
				best = axisVector(axis, 1)
			}
		case n < -kindaSmallNumber:
			if d := -component(localTrace, axis); d < bestOpposingDot {
				bestOpposingDot = d
				best = axisVector(axis, -1)
			}
		}
	}
	return box.ToWorldDir(best)
}

// otherVelocity is the velocity of whatever was hit at point: the agent velocity for agents.
func otherVelocity(c *physics.Collider, point rl.Vector3) rl.Vector3 {
	if c == nil || c.Body == nil {
		return rl.Vector3{}
	}
	if c.Body.Agent != nil {
		return c.Body.Agent.Velocity()
	}
	return c.Body.GetPointVelocity(point)
}

func (m *CharacterMovement) clearCollisionResults() {
	m.collisionCount = 0
	m.droppedCollisions = 0
}

// addCollisionResult records a collision. Only the first contact per body is kept and contacts
// with the current platform are skipped. Results past capacity are dropped and counted.
func (m *CharacterMovement) addCollisionResult(r *CollisionResult) {
	m.collisionFlags |= CollisionFlags(r.HitLocation)

	if b := r.Body(); b != nil {
		if b == m.movingPlatform.Platform {
			return
		}
		for i := 0; i < m.collisionCount; i++ {
			if m.collisions[i].Body() == b {
				return
			}
		}
	}

	if m.collisionCount < MaxCollisionCount {
		m.collisions[m.collisionCount] = *r
		m.collisionCount++
		return
	}
	m.droppedCollisions++
	m.metrics.drop(m.ctx)
}

func colliderName(c *physics.Collider) string {
	if c == nil {
		return ""
	}
	return c.Name
}
