package motion

import (
	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func (m *CharacterMovement) Body() *physics.Body         { return m.body }
func (m *CharacterMovement) Collider() *physics.Collider { return m.collider }
func (m *CharacterMovement) Radius() float32             { return m.radius }
func (m *CharacterMovement) Height() float32             { return m.height }

// SetRadius changes the radius, keeping the height when possible.
func (m *CharacterMovement) SetRadius(radius float32) {
	m.SetDimensions(radius, m.height)
}

func (m *CharacterMovement) SlopeLimit() float32 { return m.slopeLimit }

// SetSlopeLimit sets the maximum walkable angle in degrees, clamped to [0, 89].
func (m *CharacterMovement) SetSlopeLimit(degrees float32) {
	m.slopeLimit = math32.Max(0, math32.Min(89, degrees))
	m.minSlopeLimit = math32.Cos((m.slopeLimit + 0.01) * rl.Deg2rad)
}

func (m *CharacterMovement) StepOffset() float32 { return m.stepOffset }

// SetStepOffset sets the tallest obstacle the agent climbs.
func (m *CharacterMovement) SetStepOffset(offset float32) {
	m.stepOffset = math32.Max(0, offset)
}

func (m *CharacterMovement) PerchOffset() float32 { return m.perchOffset }

// SetPerchOffset sets how far from the capsule axis the agent may stand on an edge, clamped to [0, radius].
func (m *CharacterMovement) SetPerchOffset(offset float32) {
	m.perchOffset = math32.Max(0, math32.Min(m.radius, offset))
}

func (m *CharacterMovement) PerchAdditionalHeight() float32 { return m.perchAdditionalHeight }

func (m *CharacterMovement) SetPerchAdditionalHeight(height float32) {
	m.perchAdditionalHeight = math32.Max(0, height)
}

func (m *CharacterMovement) SlopeLimitOverride() bool       { return m.slopeLimitOverride }
func (m *CharacterMovement) SetSlopeLimitOverride(on bool)  { m.slopeLimitOverride = on }
func (m *CharacterMovement) UseFlatTop() bool               { return m.useFlatTop }
func (m *CharacterMovement) SetUseFlatTop(on bool)          { m.useFlatTop = on }
func (m *CharacterMovement) CollisionLayers() uint32        { return m.collisionLayers }
func (m *CharacterMovement) SetCollisionLayers(mask uint32) { m.collisionLayers = mask }
func (m *CharacterMovement) HitTriggers() bool              { return m.hitTriggers }
func (m *CharacterMovement) SetHitTriggers(on bool)         { m.hitTriggers = on }
func (m *CharacterMovement) DetectCollisions() bool         { return m.detectCollisions }
func (m *CharacterMovement) PushForceScale() float32        { return m.pushForceScale }
func (m *CharacterMovement) Tolerances() Tolerances         { return m.tol }
func (m *CharacterMovement) SetTolerances(t Tolerances)     { m.tol = t }
func (m *CharacterMovement) Advanced() Advanced             { return m.advanced }
func (m *CharacterMovement) CollisionFlags() CollisionFlags { return m.collisionFlags }
func (m *CharacterMovement) MovingPlatform() MovingPlatform { return m.movingPlatform }
func (m *CharacterMovement) LandedVelocity() rl.Vector3     { return m.landedVelocity }
func (m *CharacterMovement) UpdatedPosition() rl.Vector3    { return m.updatedPosition }
func (m *CharacterMovement) UpdatedRotation() rl.Quaternion { return m.updatedRotation }
func (m *CharacterMovement) DroppedCollisions() int         { return m.droppedCollisions }
func (m *CharacterMovement) UnconstrainedTimer() float32    { return m.unconstrainedTimer }
func (m *CharacterMovement) ConstrainToGround() bool        { return m.isConstrainedToGround }
func (m *CharacterMovement) SetConstrainToGround(on bool)   { m.isConstrainedToGround = on }

// SetDetectCollisions toggles every collision query. While off the capsule collider is hidden from the scene.
func (m *CharacterMovement) SetDetectCollisions(on bool) {
	m.detectCollisions = on
	m.collider.Disabled = !on
}

// SetPushForceScale scales impulses given to pushed bodies; negative values become zero.
func (m *CharacterMovement) SetPushForceScale(s float32) {
	m.pushForceScale = math32.Max(0, s)
}

// SetAdvanced replaces the advanced settings after clamping them.
func (m *CharacterMovement) SetAdvanced(a Advanced) {
	a.Validate()
	m.advanced = a
}

// Velocity returns the agent velocity.
func (m *CharacterMovement) Velocity() rl.Vector3 { return m.velocity }

// SetVelocity replaces the agent velocity.
func (m *CharacterMovement) SetVelocity(v rl.Vector3) { m.velocity = v }

// AddVelocity adds delta to the agent velocity.
func (m *CharacterMovement) AddVelocity(delta rl.Vector3) {
	m.velocity = add(m.velocity, delta)
}

func (m *CharacterMovement) Speed() float32 { return mag(m.velocity) }

// ForwardSpeed is the velocity along the agent's facing.
func (m *CharacterMovement) ForwardSpeed() float32 {
	return dot(m.velocity, rotate(worldForward, m.body.Rotation))
}

// SidewaysSpeed is the velocity along the agent's right axis.
func (m *CharacterMovement) SidewaysSpeed() float32 {
	return dot(m.velocity, rotate(worldRight, m.body.Rotation))
}

// Position returns the committed foot position.
func (m *CharacterMovement) Position() rl.Vector3 { return m.body.Position }

// Rotation returns the committed rotation.
func (m *CharacterMovement) Rotation() rl.Quaternion { return m.body.Rotation }

// WorldCenter returns the capsule center in world space.
func (m *CharacterMovement) WorldCenter() rl.Vector3 {
	return add(m.body.Position, rotate(m.capsuleCenter, m.body.Rotation))
}

// FootPosition returns the position lowered by the average ground distance.
func (m *CharacterMovement) FootPosition() rl.Vector3 {
	up := rotate(worldUp, m.body.Rotation)
	return sub(m.body.Position, scale(up, m.tol.AvgGroundDistance()))
}

// IsConstrainedToGround reports whether ground constraint is on and not paused.
func (m *CharacterMovement) IsConstrainedToGround() bool {
	return m.isConstrainedToGround && m.unconstrainedTimer == 0
}

// IsGroundConstraintPaused reports whether ground constraint is temporarily suspended.
func (m *CharacterMovement) IsGroundConstraintPaused() bool {
	return m.isConstrainedToGround && m.unconstrainedTimer > 0
}

// PauseGroundConstraint suspends ground constraint for the given time, letting the agent leave the ground.
func (m *CharacterMovement) PauseGroundConstraint(seconds float32) {
	m.unconstrainedTimer = math32.Max(0, seconds)
}

func (m *CharacterMovement) WasOnGround() bool         { return m.wasOnGround }
func (m *CharacterMovement) IsOnGround() bool          { return m.currentGround.HitGround }
func (m *CharacterMovement) WasOnWalkableGround() bool { return m.wasOnWalkableGround }
func (m *CharacterMovement) IsOnWalkableGround() bool  { return m.currentGround.IsWalkableGround() }
func (m *CharacterMovement) WasGrounded() bool         { return m.wasGrounded }

// IsGrounded reports whether the agent stands on walkable ground while constrained to it.
func (m *CharacterMovement) IsGrounded() bool {
	return m.IsOnWalkableGround() && m.IsConstrainedToGround()
}

func (m *CharacterMovement) CurrentGround() GroundResult     { return m.currentGround }
func (m *CharacterMovement) GroundDistance() float32         { return m.currentGround.GroundDistance }
func (m *CharacterMovement) GroundPoint() rl.Vector3         { return m.currentGround.Point }
func (m *CharacterMovement) GroundNormal() rl.Vector3        { return m.currentGround.Normal }
func (m *CharacterMovement) GroundSurfaceNormal() rl.Vector3 { return m.currentGround.SurfaceNormal }
func (m *CharacterMovement) GroundCollider() *physics.Collider {
	return m.currentGround.Collider
}
func (m *CharacterMovement) GroundBody() *physics.Body { return m.currentGround.Body() }

// CollisionCount returns the number of collision results from the last Move.
func (m *CharacterMovement) CollisionCount() int { return m.collisionCount }

// CollisionResult returns the i-th collision result from the last Move.
func (m *CharacterMovement) CollisionResult(i int) CollisionResult { return m.collisions[i] }

// CollisionResults returns the collision results from the last Move.
// The slice aliases an internal buffer and is overwritten by the next Move.
func (m *CharacterMovement) CollisionResults() []CollisionResult {
	return m.collisions[:m.collisionCount]
}

// AttachTo makes body the platform regardless of ground support. Nil clears it.
func (m *CharacterMovement) AttachTo(body *physics.Body) {
	m.parentPlatform = body
}

// IgnoreCollider hides (or shows again) one collider from every query.
func (m *CharacterMovement) IgnoreCollider(c *physics.Collider, ignore bool) {
	if c == nil {
		return
	}
	if ignore {
		m.ignoredColliders[c] = struct{}{}
	} else {
		delete(m.ignoredColliders, c)
	}
}

// hideBody ignores b for the length of a query and reports whether it was newly hidden.
// A body the caller already ignores stays ignored.
func (m *CharacterMovement) hideBody(b *physics.Body) bool {
	if b == nil {
		return false
	}
	if _, ok := m.ignoredBodies[b]; ok {
		return false
	}
	m.ignoredBodies[b] = struct{}{}
	return true
}

// IgnoreBody hides (or shows again) every collider attached to body.
func (m *CharacterMovement) IgnoreBody(b *physics.Body, ignore bool) {
	if b == nil {
		return
	}
	if ignore {
		m.ignoredBodies[b] = struct{}{}
	} else {
		delete(m.ignoredBodies, b)
	}
}
