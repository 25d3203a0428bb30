package motion

import (
	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func (m *CharacterMovement) canStepUp(c *physics.Collider) bool {
	if c == nil {
		return false
	}
	if b, ok := m.behaviourOf(c); ok {
		if b.Has(CanStepOn) {
			return true
		}
		if b.Has(CanNotStepOn) {
			return false
		}
	}
	return true
}

// stepUp tries to climb the obstacle behind c by sweeping up, forward and back down.
// It returns the position on top of the step; the rise never exceeds the step offset.
func (m *CharacterMovement) stepUp(c *CollisionResult) (rl.Vector3, bool) {
	if c.HitLocation == HitAbove {
		return rl.Vector3{}, false
	}

	// The step budget is measured from the actual ground contact
	initialY := dot(c.Position, m.characterUp)
	groundPointY := initialY
	actualGroundDistance := math32.Max(0, m.currentGround.DistanceToGround())
	initialY -= actualGroundDistance

	travelUp := math32.Max(0, m.stepOffset-actualGroundDistance)
	travelDown := m.stepOffset + m.tol.MaxGroundDistance*2

	hitVerticalFace := !m.IsWithinEdgeTolerance(c.Position, c.Point, m.radius+m.tol.ContactOffset)
	if !m.currentGround.IsRaycastResult && !hitVerticalFace {
		groundPointY = dot(m.currentGround.Point, m.characterUp)
	} else {
		groundPointY -= m.currentGround.GroundDistance
	}

	// Contacts at or below the ground are not steps
	if dot(c.Point, m.characterUp) <= initialY {
		return rl.Vector3{}, false
	}

	origin := c.Position

	// Up
	sweep := m.sweepTest(origin, m.radius, m.characterUp, travelUp)
	if sweep.Penetrating() {
		return rl.Vector3{}, false
	}
	if sweep.HasHit {
		origin = add(origin, scale(m.characterUp, sweep.Hit.Distance))
	} else {
		origin = add(origin, scale(m.characterUp, travelUp))
	}

	// Forward, horizontally only
	displacement := c.RemainingDisplacement
	forward := normalized(m.ConstrainVectorToPlane(projectOnPlane(displacement, m.characterUp)))
	// Full remaining length, vertical part included, not just the forward component
	forwardDistance := mag(displacement)

	sweep = m.sweepTest(origin, m.radius, forward, forwardDistance)
	if sweep.Penetrating() || sweep.HasHit {
		return rl.Vector3{}, false
	}
	origin = add(origin, scale(forward, forwardDistance))

	// Down
	down := neg(m.characterUp)
	sweep = m.sweepTest(origin, m.radius, down, travelDown)
	if !sweep.HasHit || sweep.Penetrating() {
		return rl.Vector3{}, false
	}
	hit := sweep.Hit

	deltaY := dot(hit.Point, m.characterUp) - groundPointY
	if deltaY > m.stepOffset {
		return rl.Vector3{}, false
	}

	onStep := add(origin, scale(down, hit.Distance))
	if m.overlapCount(onStep, m.updatedRotation, m.radius, m.height) > 0 {
		return rl.Vector3{}, false
	}

	surfaceNormal := m.findGeomOpposingNormal(scale(down, travelDown), hit)
	if !m.isWalkable(hit.Collider, surfaceNormal) {
		if dot(displacement, surfaceNormal) < 0 {
			return rl.Vector3{}, false
		}
		if dot(onStep, m.characterUp) > dot(c.Position, m.characterUp) {
			return rl.Vector3{}, false
		}
	}

	// Keep consistent with ground detection: reject rim contacts
	if !m.IsWithinEdgeTolerance(onStep, hit.Point, m.radius+m.tol.ContactOffset) {
		return rl.Vector3{}, false
	}

	if deltaY > 0 && !m.canStepUp(hit.Collider) {
		return rl.Vector3{}, false
	}

	m.metrics.step(m.ctx)
	m.logger.Debug().
		Str("collider", colliderName(hit.Collider)).
		Float32("rise", deltaY).
		Msg("motion: stepped up")
	return onStep, true
}
