package motion

import (
	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// canRideOn reports whether the agent moves along with the body carrying c.
func (m *CharacterMovement) canRideOn(c *physics.Collider) bool {
	if c == nil || c.Body == nil {
		return false
	}
	if b, ok := m.behaviourOf(c); ok {
		if b.Has(CanRideOn) {
			return true
		}
		if b.Has(CanNotRideOn) {
			return false
		}
	}
	return true
}

// updateCurrentPlatform picks the platform for the next tick and records the pose relative to it.
func (m *CharacterMovement) updateCurrentPlatform() {
	p := &m.movingPlatform
	p.LastPlatform = p.Platform

	switch {
	case m.parentPlatform != nil:
		p.Platform = m.parentPlatform
	case m.IsGrounded() && m.canRideOn(m.currentGround.Collider):
		p.Platform = m.currentGround.Collider.Body
	default:
		p.Platform = nil
	}

	if p.Platform == nil {
		return
	}
	p.Position = m.updatedPosition
	p.LocalPosition = p.Platform.InverseTransformPoint(m.updatedPosition)
	p.Rotation = m.updatedRotation
	p.LocalRotation = rl.QuaternionMultiply(rl.QuaternionInvert(p.Platform.Rotation), m.updatedRotation)
}

// updatePlatformMovement carries the agent along with its platform and hands over platform velocity
// when the agent leaves or changes platforms.
func (m *CharacterMovement) updatePlatformMovement(deltaTime float32) {
	p := &m.movingPlatform
	lastPlatformVelocity := p.PlatformVelocity

	if p.Platform == nil {
		p.PlatformVelocity = rl.Vector3{}
	} else {
		newPosition := p.Platform.TransformPoint(p.LocalPosition)
		p.DeltaPosition = sub(newPosition, p.Position)
		if deltaTime > 0 {
			p.PlatformVelocity = scale(p.DeltaPosition, 1/deltaTime)
		} else {
			p.PlatformVelocity = rl.Vector3{}
		}

		if m.advanced.ImpartPlatformRotation {
			newRotation := rl.QuaternionMultiply(p.Platform.Rotation, p.LocalRotation)
			p.DeltaRotation = rl.QuaternionMultiply(newRotation, rl.QuaternionInvert(p.Rotation))

			// Yaw only: the agent stays upright
			facing := rotate(rotate(worldForward, m.updatedRotation), p.DeltaRotation)
			m.updatedRotation = lookRotation(normalized(projectOnPlane(facing, m.characterUp)), m.characterUp)
			m.refreshCapsuleFrame()
		}
	}

	if m.advanced.ImpartPlatformMovement && sqrMag(p.PlatformVelocity) > 0 {
		delta := m.ConstrainVectorToPlane(scale(p.PlatformVelocity, deltaTime))
		if m.FastPlatformMove {
			m.updatedPosition = add(m.updatedPosition, delta)
		} else {
			platform := p.Platform
			hidden := m.hideBody(platform)
			m.moveAndSlide(delta)
			if hidden {
				m.IgnoreBody(platform, false)
			}
		}
	}

	if m.advanced.ImpartPlatformVelocity {
		var imparted rl.Vector3
		if p.LastPlatform != nil && p.Platform != p.LastPlatform {
			imparted = add(sub(imparted, p.PlatformVelocity), lastPlatformVelocity)
		}
		if p.LastPlatform == nil && p.Platform != nil {
			imparted = sub(imparted, p.PlatformVelocity)
		}
		m.velocity = add(m.velocity, imparted)
	}
}
