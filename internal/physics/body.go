package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sleep thresholds
const (
	SleepVelocityThreshold = 0.3 // units/sec - below this, body might sleep
	SleepAngularThreshold  = 1.0 // deg/sec - below this, body might sleep
	SleepTimeThreshold     = 0.3 // seconds of low velocity before sleeping
)

// Agent is implemented by kinematic controllers that own a body.
// Dynamic responses exchange velocity with agents instead of applying forces.
type Agent interface {
	Velocity() rl.Vector3
	AddVelocity(delta rl.Vector3)
}

// Body is a rigid body carrying one or more colliders.
type Body struct {
	Name            string
	Position        rl.Vector3
	Rotation        rl.Quaternion
	Velocity        rl.Vector3
	AngularVelocity rl.Vector3 // degrees per second on each world axis
	Mass            float32
	Bounciness      float32 // 0 = no bounce, 1 = perfect bounce
	Friction        float32 // 0 = ice, 1 = stops immediately
	UseGravity      bool
	IsKinematic     bool // moves by its own velocity, never pushed by contacts

	// Agent is set when a character controller drives this body.
	Agent Agent

	// Sleep state - sleeping bodies skip integration
	IsSleeping bool
	sleepTimer float32
	CanSleep   bool

	colliders []*Collider
}

func NewBody(name string) *Body {
	return &Body{
		Name:       name,
		Rotation:   rl.QuaternionIdentity(),
		Mass:       1.0,
		Bounciness: 0.0,
		Friction:   0.1,
		UseGravity: true,
		CanSleep:   true,
	}
}

// NewKinematicBody creates a body that moves only by its own velocity.
func NewKinematicBody(name string) *Body {
	b := NewBody(name)
	b.IsKinematic = true
	b.UseGravity = false
	b.CanSleep = false
	return b
}

// Colliders returns the colliders attached to this body.
func (b *Body) Colliders() []*Collider {
	return b.colliders
}

// TransformPoint maps a body-local point to world space.
func (b *Body) TransformPoint(local rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(b.Position, rl.Vector3RotateByQuaternion(local, b.Rotation))
}

// InverseTransformPoint maps a world point to body-local space.
func (b *Body) InverseTransformPoint(world rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3Subtract(world, b.Position), rl.QuaternionInvert(b.Rotation))
}

// GetPointVelocity returns the world velocity of a point rigidly attached to the body.
func (b *Body) GetPointVelocity(point rl.Vector3) rl.Vector3 {
	omega := rl.Vector3Scale(b.AngularVelocity, rl.Deg2rad)
	r := rl.Vector3Subtract(point, b.Position)
	return rl.Vector3Add(b.Velocity, cross(omega, r))
}

// AddForceAtPosition applies an instantaneous velocity change.
// The contact point is accepted for API symmetry; no torque is produced.
func (b *Body) AddForceAtPosition(velocityChange, point rl.Vector3) {
	if b.IsKinematic {
		return
	}
	b.Velocity = rl.Vector3Add(b.Velocity, velocityChange)
	b.Wake()
}

// Wake forces the body out of sleep state
func (b *Body) Wake() {
	b.IsSleeping = false
	b.sleepTimer = 0
}

// TrySleep checks if the body should go to sleep based on velocity
func (b *Body) TrySleep(deltaTime float32) {
	if !b.CanSleep || b.IsSleeping {
		return
	}

	speed := rl.Vector3Length(b.Velocity)
	angSpeed := rl.Vector3Length(b.AngularVelocity)

	if speed < SleepVelocityThreshold && angSpeed < SleepAngularThreshold {
		b.sleepTimer += deltaTime

		// Extra damping when nearly at rest reduces jitter
		dampFactor := float32(0.9)
		b.Velocity = rl.Vector3Scale(b.Velocity, dampFactor)
		b.AngularVelocity = rl.Vector3Scale(b.AngularVelocity, dampFactor)

		if b.sleepTimer >= SleepTimeThreshold {
			b.IsSleeping = true
			b.Velocity = rl.Vector3{}
			b.AngularVelocity = rl.Vector3{}
		}
	} else {
		b.sleepTimer = 0
	}
}
