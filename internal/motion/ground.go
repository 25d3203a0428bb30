package motion

import (
	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// groundSweepTest sweeps a capsule of the given radius and half height, centered on the agent, downward.
func (m *CharacterMovement) groundSweepTest(position rl.Vector3, radius, halfHeight, distance float32) SweepOutcome {
	center := add(position, m.transformedCenter)
	axis := scale(m.characterUp, halfHeight-radius)
	return m.castClosest(sub(center, axis), add(center, axis), radius, neg(m.characterUp), distance)
}

// ComputeGroundDistance measures the distance from the capsule bottom to the first surface below it.
// It sweeps a shortened capsule first, re-sweeps a thinner one when the hit lies on the rim, and falls
// back to a ray from the capsule center when the sweep was blocked by something it cannot stand on.
func (m *CharacterMovement) ComputeGroundDistance(position rl.Vector3, sweepRadius, sweepDistance, castDistance float32) GroundResult {
	var g GroundResult

	// A raycast result is only meaningful inside the swept range
	if sweepDistance < castDistance {
		return g
	}

	halfHeight := m.height * 0.5
	maxPenetrationAdjust := math32.Max(m.tol.MaxGroundDistance, m.radius)

	var found, penetrating bool
	if sweepDistance > 0 && sweepRadius > 0 {
		const shrinkScale, shrinkScaleOverlap = 0.9, 0.1

		// A shorter capsule avoids odd results when starting on a surface
		shrinkHeight := (halfHeight - m.radius) * (1 - shrinkScale)
		radius := sweepRadius
		capsuleHalfHeight := halfHeight - shrinkHeight

		sweep := m.groundSweepTest(position, radius, capsuleHalfHeight, sweepDistance+shrinkHeight)
		found, penetrating = sweep.HasHit, sweep.Penetrating()

		if found || penetrating {
			if penetrating || !m.IsWithinEdgeTolerance(position, sweep.Hit.Point, radius) {
				shrinkHeight = (halfHeight - m.radius) * (1 - shrinkScaleOverlap)
				radius = math32.Max(m.tol.MinSweepRadius, radius-m.tol.SweepEdgeRejectDistance-m.tol.KindaSmallNumber)
				capsuleHalfHeight = math32.Max(radius, halfHeight-shrinkHeight)

				sweep = m.groundSweepTest(position, radius, capsuleHalfHeight, sweepDistance+shrinkHeight)
				found, penetrating = sweep.HasHit, sweep.Penetrating()
			}

			if found && !penetrating {
				// Negative distances are allowed so the caller can lift out of shallow penetration
				sweepResult := math32.Max(-maxPenetrationAdjust, sweep.Hit.Distance-shrinkHeight)

				down := neg(m.characterUp)
				hitPosition := add(position, scale(down, sweepResult))

				surfaceNormal := sweep.Hit.Normal
				walkable := false
				hitGround := sweepResult <= sweepDistance && m.computeHitLocation(sweep.Hit.Normal) == HitBelow
				if hitGround {
					surfaceNormal = m.findGeomOpposingNormal(scale(down, sweepDistance), sweep.Hit)
					walkable = m.isWalkable(sweep.Hit.Collider, surfaceNormal)
				}

				g = groundFromSweep(hitGround, walkable, hitPosition, sweepResult, sweep.Hit, surfaceNormal)
				if g.IsWalkableGround() {
					return g
				}
			}
		}
	}

	// Nothing below at all; a penetrating sweep still deserves a ray
	if !found && !penetrating {
		return g
	}

	if castDistance > 0 {
		rayPosition := position
		if found && !penetrating {
			rayPosition = g.Position
		}

		hit, ok := m.Raycast(add(position, m.transformedCenter), neg(m.characterUp), castDistance+halfHeight)
		if ok && hit.Distance > 0 {
			castResult := math32.Max(-maxPenetrationAdjust, hit.Distance-halfHeight)
			if castResult <= castDistance && m.isWalkable(hit.Collider, hit.Normal) {
				return g.withRaycast(true, true, rayPosition, g.GroundDistance, castResult, hit)
			}
		}
	}

	g.IsWalkable = false
	return g
}

func (m *CharacterMovement) canPerchOn(c *physics.Collider) bool {
	if b, ok := m.behaviourOf(c); ok {
		if b.Has(CanPerchOn) {
			return true
		}
		if b.Has(CanNotPerchOn) {
			return false
		}
	}
	return true
}

// perchRadiusThreshold is the rim width beyond the perch offset. Perching is skipped when it is negligible.
func (m *CharacterMovement) perchRadiusThreshold() float32 {
	return math32.Max(0, m.radius-m.perchOffset)
}

// validPerchRadius is the radius the agent may stand on around its axis for collider c.
func (m *CharacterMovement) validPerchRadius(c *physics.Collider) float32 {
	if !m.canPerchOn(c) {
		return m.tol.MinSweepRadius
	}
	return math32.Max(m.tol.MinSweepRadius, math32.Min(m.radius, m.perchOffset))
}

func (m *CharacterMovement) shouldComputePerch(position rl.Vector3, point rl.Vector3, c *physics.Collider) bool {
	if m.perchRadiusThreshold() <= m.tol.SweepEdgeRejectDistance {
		return false
	}

	distSq := sqrMag(projectOnPlane(sub(point, position), m.characterUp))
	r := m.validPerchRadius(c)
	return distSq > r*r
}

// computePerchResult re-probes the ground with a thinner capsule and reports whether it finds
// walkable support within maxDistance of the capsule bottom.
func (m *CharacterMovement) computePerchResult(position rl.Vector3, testRadius, maxDistance float32, point rl.Vector3) (GroundResult, bool) {
	if maxDistance <= 0 {
		return GroundResult{}, false
	}

	// Sweep further than requested to catch hits the thinner capsule may otherwise miss
	aboveBase := math32.Max(0, dot(sub(point, position), m.characterUp))
	castDistance := math32.Max(0, maxDistance-aboveBase)
	sweepDistance := math32.Max(0, maxDistance) + m.radius

	perch := m.ComputeGroundDistance(position, testRadius, sweepDistance, castDistance)
	if !perch.IsWalkable {
		return perch, false
	}
	if aboveBase+perch.GroundDistance > maxDistance {
		perch.IsWalkable = false
		return perch, false
	}
	return perch, true
}

// FindGround probes the ground below position. The probe reaches one step further while grounded so
// height adjustment does not lose the ground, and edge hits are retried as perches.
func (m *CharacterMovement) FindGround(position rl.Vector3) GroundResult {
	if !m.detectCollisions {
		return GroundResult{}
	}

	heightCheckAdjust := -m.tol.MaxGroundDistance
	if m.IsGrounded() {
		heightCheckAdjust = m.tol.MaxGroundDistance + m.tol.KindaSmallNumber
	}
	sweepDistance := math32.Max(m.tol.MaxGroundDistance, m.stepOffset+heightCheckAdjust)

	g := m.ComputeGroundDistance(position, m.radius, sweepDistance, sweepDistance)
	if !g.HitGround || g.IsRaycastResult {
		return g
	}

	onGround := g.Position
	if !m.shouldComputePerch(onGround, g.Point, g.Collider) {
		return g
	}

	maxPerchDistance := sweepDistance
	if m.IsGrounded() {
		maxPerchDistance += m.perchAdditionalHeight
	}

	perch, ok := m.computePerchResult(onGround, m.validPerchRadius(g.Collider), maxPerchDistance, g.Point)
	if !ok {
		// No support within the perch radius: drop the ground so the agent falls
		g.IsWalkable = false
		return g
	}

	// Keep the height adjustment from lifting the agent past the perch distance
	avg := m.tol.AvgGroundDistance()
	if avg-g.GroundDistance+perch.GroundDistance >= maxPerchDistance {
		g.GroundDistance = avg
	}

	if !g.IsWalkableGround() {
		hit := physics.Hit{Collider: perch.Collider, Point: perch.Point, Normal: perch.Normal, Distance: perch.HitDistance}
		g = g.withRaycast(true, true, g.Position, g.GroundDistance, math32.Max(m.tol.MinGroundDistance, g.GroundDistance), hit)
	}
	return g
}

// adjustGroundHeight moves the agent up or down to keep its distance to walkable ground inside the band.
func (m *CharacterMovement) adjustGroundHeight() {
	if !m.currentGround.IsWalkableGround() || !m.IsConstrainedToGround() {
		return
	}

	lastDistance := m.currentGround.GroundDistance
	if m.currentGround.IsRaycastResult {
		// Raycast support under a low sweep hit means a wall; do not climb it
		if lastDistance < m.tol.MinGroundDistance && m.currentGround.RaycastDistance >= m.tol.MinGroundDistance {
			return
		}
		lastDistance = m.currentGround.RaycastDistance
	}

	if lastDistance >= m.tol.MinGroundDistance && lastDistance <= m.tol.MaxGroundDistance {
		return
	}

	initialY := dot(m.updatedPosition, m.characterUp)
	moveDistance := m.tol.AvgGroundDistance() - lastDistance

	displacement := scale(m.characterUp, moveDistance)
	direction := normalized(displacement)

	sweep := m.sweepTestEx(m.updatedPosition, m.radius, direction, math32.Abs(moveDistance), true)
	if sweep.Clear() {
		m.updatedPosition = add(m.updatedPosition, displacement)
		m.currentGround.GroundDistance += moveDistance
		return
	}

	m.updatedPosition = add(m.updatedPosition, scale(direction, sweep.Hit.Distance))
	m.currentGround.GroundDistance += dot(m.updatedPosition, m.characterUp) - initialY
}

// updateCurrentGround commits a ground result, remembering the previous tick's support.
func (m *CharacterMovement) updateCurrentGround(g GroundResult) {
	m.wasOnGround = m.IsOnGround()
	m.wasOnWalkableGround = m.IsOnWalkableGround()
	m.wasGrounded = m.IsGrounded()

	m.currentGround = g
}
