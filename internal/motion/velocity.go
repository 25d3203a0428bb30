package motion

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ApplyVelocityBraking slows velocity by friction and a constant deceleration without reversing it.
func ApplyVelocityBraking(velocity rl.Vector3, friction, deceleration, deltaTime float32) rl.Vector3 {
	zeroFriction := friction == 0
	zeroBraking := deceleration == 0
	if zeroFriction && zeroBraking {
		return velocity
	}

	old := velocity
	var reverse rl.Vector3
	if !zeroBraking {
		reverse = scale(normalized(velocity), -deceleration)
	}
	velocity = add(velocity, scale(add(scale(velocity, -friction), reverse), deltaTime))

	if dot(velocity, old) <= 0 {
		return rl.Vector3{}
	}

	// Snap tiny speeds to rest
	sq := sqrMag(velocity)
	if sq <= 0.00001 || (!zeroBraking && sq <= 0.01) {
		return rl.Vector3{}
	}
	return velocity
}

// analogInputModifier is the fraction of maxSpeed requested by desired, in [0, 1].
func analogInputModifier(desired rl.Vector3, maxSpeed float32) float32 {
	if maxSpeed > 0 && sqrMag(desired) > 0 {
		return clamp01(mag(desired) / maxSpeed)
	}
	return 0
}

// CalcVelocity accelerates velocity toward desired. Friction turns the velocity toward the desired
// direction while accelerating; braking applies when there is no input or the agent is over speed.
func CalcVelocity(velocity, desired rl.Vector3, maxSpeed, acceleration, deceleration, friction, brakingFriction, deltaTime float32) rl.Vector3 {
	desiredSpeed := mag(desired)
	var direction rl.Vector3
	if desiredSpeed > 0 {
		direction = scale(desired, 1/desiredSpeed)
	}

	modifier := analogInputModifier(desired, maxSpeed)
	requested := scale(direction, acceleration*modifier)
	actualMaxSpeed := math32.Max(0, maxSpeed*modifier)

	zeroAcceleration := isZero(requested)
	overMax := isExceeding(velocity, actualMaxSpeed)

	if zeroAcceleration || overMax {
		old := velocity
		velocity = ApplyVelocityBraking(velocity, brakingFriction, deceleration, deltaTime)

		// Braking alone must not drop an over-speed agent below max speed
		if overMax && sqrMag(velocity) < actualMaxSpeed*actualMaxSpeed && dot(requested, old) > 0 {
			velocity = scale(normalized(old), actualMaxSpeed)
		}
	} else {
		turn := sub(velocity, scale(direction, mag(velocity)))
		velocity = sub(velocity, scale(turn, math32.Min(friction*deltaTime, 1)))
	}

	if !zeroAcceleration {
		newMaxSpeed := actualMaxSpeed
		if isExceeding(velocity, actualMaxSpeed) {
			newMaxSpeed = mag(velocity)
		}
		velocity = clampedTo(add(velocity, scale(requested, deltaTime)), newMaxSpeed)
	}
	return velocity
}

// ClearAccumulatedForces drops pending forces, impulses and launch velocity.
func (m *CharacterMovement) ClearAccumulatedForces() {
	m.pendingForces = rl.Vector3{}
	m.pendingImpulses = rl.Vector3{}
	m.pendingLaunchVelocity = rl.Vector3{}
}

// AddForce queues a force for the next Move, interpreted according to mode.
func (m *CharacterMovement) AddForce(force rl.Vector3, mode ForceMode) {
	mass := bodyMass(m.body)

	switch mode {
	case Force:
		m.pendingForces = add(m.pendingForces, scale(force, 1/mass))
	case Acceleration:
		m.pendingForces = add(m.pendingForces, force)
	case Impulse:
		m.pendingImpulses = add(m.pendingImpulses, scale(force, 1/mass))
	case VelocityChange:
		m.pendingImpulses = add(m.pendingImpulses, force)
	}
}

// AddExplosionForce pushes the agent away from origin. With a positive radius the strength falls off
// linearly to zero at the radius.
func (m *CharacterMovement) AddExplosionForce(strength float32, origin rl.Vector3, radius float32, mode ForceMode) {
	delta := sub(m.WorldCenter(), origin)
	magnitude := strength
	if radius > 0 {
		magnitude *= 1 - clamp01(mag(delta)/radius)
	}
	m.AddForce(scale(normalized(delta), magnitude), mode)
}

// LaunchCharacter replaces the velocity on the next Move. Unless overridden, the current vertical
// and lateral velocity are added to the launch velocity.
func (m *CharacterMovement) LaunchCharacter(launch rl.Vector3, overrideVertical, overrideLateral bool) {
	up := rotate(worldUp, m.body.Rotation)

	final := launch
	if !overrideLateral {
		final = add(final, projectOnPlane(m.velocity, up))
	}
	if !overrideVertical {
		final = add(final, projectOn(m.velocity, up))
	}
	m.pendingLaunchVelocity = final
}

// updateVelocity drains the pending forces into the new velocity.
func (m *CharacterMovement) updateVelocity(velocity rl.Vector3, deltaTime float32) {
	m.velocity = add(add(velocity, scale(m.pendingForces, deltaTime)), m.pendingImpulses)
	if sqrMag(m.pendingLaunchVelocity) > 0 {
		m.velocity = m.pendingLaunchVelocity
	}
	m.ClearAccumulatedForces()
	m.velocity = m.ConstrainVectorToPlane(m.velocity)
}

// SimpleMove drives the agent toward a desired velocity. Grounded agents accelerate along the ground;
// airborne agents get the same acceleration model plus gravity, and are kept from walking into steep
// ground they are touching.
func (m *CharacterMovement) SimpleMove(desired rl.Vector3, maxSpeed, acceleration, deceleration, friction, brakingFriction float32, gravity rl.Vector3, onlyHorizontal bool, deltaTime float32) CollisionFlags {
	if m.IsGrounded() {
		m.velocity = CalcVelocity(m.velocity, desired, maxSpeed, acceleration, deceleration, friction, brakingFriction, deltaTime)
		return m.MoveWithCurrentVelocity(deltaTime)
	}

	up := neg(normalized(gravity))

	v := m.velocity
	if onlyHorizontal {
		v = projectOnPlane(v, up)
		desired = projectOnPlane(desired, up)
	}

	if m.IsOnGround() {
		groundNormal := m.currentGround.Normal
		if dot(desired, groundNormal) < 0 {
			groundNormal = normalized(projectOnPlane(groundNormal, up))
			desired = projectOnPlane(desired, groundNormal)
		}
	}

	v = CalcVelocity(v, desired, maxSpeed, acceleration, deceleration, friction, brakingFriction, deltaTime)
	if onlyHorizontal {
		m.velocity = add(m.velocity, projectOnPlane(sub(v, m.velocity), up))
	} else {
		m.velocity = v
	}
	m.velocity = add(m.velocity, scale(gravity, deltaTime))

	return m.MoveWithCurrentVelocity(deltaTime)
}
