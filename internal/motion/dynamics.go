package motion

import (
	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// bodyMass returns b's mass, treating massless bodies as unit mass.
func bodyMass(b *physics.Body) float32 {
	if b.Mass <= 0 {
		return 1
	}
	return b.Mass
}

// computeDynamicCollisionResponse splits the normal relative velocity of a contact between the agent
// and the other body by mass. Static-like kinematic bodies take nothing.
func (m *CharacterMovement) computeDynamicCollisionResponse(c *CollisionResult) (characterImpulse, otherImpulse rl.Vector3) {
	other := c.Body()

	var massRatio float32
	if !other.IsKinematic || other.Agent != nil {
		mass := bodyMass(m.body)
		massRatio = mass / (mass + bodyMass(other))
	}

	normal := c.Normal
	velocityDotNormal := dot(c.Velocity, normal)
	otherVelocityDotNormal := dot(c.OtherVelocity, normal)

	if velocityDotNormal < 0 {
		characterImpulse = add(characterImpulse, scale(normal, velocityDotNormal))
	}
	if otherVelocityDotNormal > velocityDotNormal {
		relative := scale(normal, otherVelocityDotNormal-velocityDotNormal)
		characterImpulse = add(characterImpulse, scale(relative, 1-massRatio))
		otherImpulse = sub(otherImpulse, scale(relative, massRatio))
	}
	return characterImpulse, otherImpulse
}

// resolveDynamicCollisions exchanges impulses with the bodies hit this tick.
func (m *CharacterMovement) resolveDynamicCollisions() {
	if !m.advanced.EnablePhysicsInteraction {
		return
	}

	for i := 0; i < m.collisionCount; i++ {
		c := &m.collisions[i]
		if c.IsWalkable {
			continue
		}
		other := c.Body()
		if other == nil {
			continue
		}

		characterImpulse, otherImpulse := m.computeDynamicCollisionResponse(c)
		if m.CollisionResponse != nil {
			m.CollisionResponse(c, &characterImpulse, &otherImpulse)
		}

		if other.Agent != nil {
			if m.advanced.AllowPushCharacters {
				m.velocity = add(m.velocity, characterImpulse)
				other.Agent.AddVelocity(scale(otherImpulse, m.pushForceScale))
			}
			continue
		}

		m.velocity = add(m.velocity, characterImpulse)
		if !other.IsKinematic {
			other.AddForceAtPosition(scale(otherImpulse, m.pushForceScale), c.Point)
		}
	}

	if m.IsGrounded() {
		m.velocity = keepMagnitudeOnPlane(m.velocity, m.characterUp)
	}
	m.velocity = m.ConstrainVectorToPlane(m.velocity)
}
