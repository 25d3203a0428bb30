package motion

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// resolveOverlaps pushes the capsule out of everything it starts the tick inside, recording each
// push as a penetrating collision.
func (m *CharacterMovement) resolveOverlaps(behaviour depenetrationBehaviour) {
	if !m.detectCollisions {
		return
	}

	ignoreStatic := behaviour&ignoreStatic != 0
	ignoreDynamic := behaviour&ignoreDynamic != 0
	ignoreKinematic := behaviour&ignoreKinematic != 0

	for i := 0; i < m.advanced.MaxDepenetrationIterations; i++ {
		n := m.overlapCount(m.updatedPosition, m.updatedRotation, m.radius, m.height)
		if n == 0 {
			break
		}

		for j := 0; j < n; j++ {
			c := m.overlaps[j]

			if c.Body == nil {
				if ignoreStatic {
					continue
				}
			} else if (ignoreKinematic && c.Body.IsKinematic) || (ignoreDynamic && !c.Body.IsKinematic) {
				continue
			}

			recoverDirection, recoverDistance, ok := m.computeMTD(m.updatedPosition, c)
			if !ok {
				continue
			}
			m.metrics.depenetration(m.ctx)

			recoverDirection = m.ConstrainDirectionToPlane(recoverDirection)
			location := m.computeHitLocation(recoverDirection)
			walkable := m.isWalkable(c, recoverDirection)
			impactNormal := m.computeBlockingNormal(recoverDirection, walkable)

			m.updatedPosition = add(m.updatedPosition, scale(impactNormal, recoverDistance+m.tol.PenetrationOffset))

			point := m.contactPointOnCapsule(m.updatedPosition, recoverDirection)
			m.addCollisionResult(&CollisionResult{
				StartPenetrating: true,
				HitLocation:      location,
				IsWalkable:       walkable,
				Position:         m.updatedPosition,
				Velocity:         m.velocity,
				OtherVelocity:    otherVelocity(c, point),
				Point:            point,
				Normal:           impactNormal,
				SurfaceNormal:    impactNormal,
				Collider:         c,
			})

			m.logger.Debug().
				Str("collider", c.Name).
				Float32("distance", recoverDistance).
				Stringer("location", location).
				Msg("motion: depenetrated")
		}
	}
}

// tryMove sweeps along delta with overlaps that are already being left ignored, advances as far as it
// can and reports whether the position changed.
func (m *CharacterMovement) tryMove(delta rl.Vector3) bool {
	last := m.updatedPosition
	direction := normalized(delta)

	sweep := m.capsuleCastEx(m.updatedPosition, m.radius, direction, mag(delta), true)
	if !sweep.HasHit {
		m.updatedPosition = add(m.updatedPosition, delta)
	} else {
		m.updatedPosition = add(m.updatedPosition, scale(direction, math32.Max(sweep.Hit.Distance-m.tol.SmallContactOffset, 0)))
	}
	return m.updatedPosition != last
}

// resolvePenetration tries to move out of a penetration by proposedAdjustment. When that is blocked it
// combines it with a second recovery, then with the pending displacement, then the displacement alone.
func (m *CharacterMovement) resolvePenetration(displacement, proposedAdjustment rl.Vector3) bool {
	adjustment := m.ConstrainVectorToPlane(proposedAdjustment)
	if isZero(adjustment) {
		return false
	}

	// Slightly inflated so the free spot is not left touching
	if m.overlapCount(add(m.updatedPosition, adjustment), m.updatedRotation, m.radius+m.tol.OverlapInflation, m.height) == 0 {
		m.updatedPosition = add(m.updatedPosition, adjustment)
		return true
	}

	last := m.updatedPosition
	direction := normalized(adjustment)
	sweep := m.capsuleCastEx(m.updatedPosition, m.radius, direction, mag(adjustment), true)
	if !sweep.HasHit {
		m.updatedPosition = add(m.updatedPosition, adjustment)
	} else {
		m.updatedPosition = add(m.updatedPosition, scale(direction, math32.Max(sweep.Hit.Distance-m.tol.SmallContactOffset, 0)))
	}
	moved := m.updatedPosition != last

	// Stuck in a second shape: try recovering from both at once
	if !moved && sweep.Penetrating() {
		secondMTD := scale(sweep.RecoverDirection, sweep.RecoverDistance+m.tol.ContactOffset+m.tol.PenetrationOffset)
		combined := add(adjustment, secondMTD)
		if secondMTD != adjustment && !isZero(combined) {
			moved = m.tryMove(combined)
		}
	}

	if !moved {
		moveDelta := m.ConstrainVectorToPlane(displacement)
		if !isZero(moveDelta) {
			moved = m.tryMove(add(adjustment, moveDelta))
			if !moved && dot(moveDelta, adjustment) > 0 {
				moved = m.tryMove(moveDelta)
			}
		}
	}
	return moved
}
