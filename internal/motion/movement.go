package motion

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Move advances the agent one tick with the given velocity and returns where it was touched.
func (m *CharacterMovement) Move(velocity rl.Vector3, deltaTime float32) CollisionFlags {
	m.updateCachedFields()
	m.clearCollisionResults()
	m.updateVelocity(velocity, deltaTime)

	m.updatePlatformMovement(deltaTime)
	m.performMovement(deltaTime)

	if m.IsGrounded() || m.hasLanded {
		m.foundGround = m.FindGround(m.updatedPosition)
	}
	m.updateCurrentGround(m.foundGround)

	if m.unconstrainedTimer > 0 {
		m.unconstrainedTimer = math32.Max(0, m.unconstrainedTimer-deltaTime)
	}

	m.adjustGroundHeight()
	m.updateCurrentPlatform()
	m.resolveDynamicCollisions()

	m.commitPose()

	for i := 0; i < m.collisionCount; i++ {
		m.Collided.Invoke(m.collisions[i])
	}
	if !m.wasOnWalkableGround && m.IsOnWalkableGround() {
		m.FoundGround.Invoke(m.currentGround)
	}

	if m.droppedCollisions > 0 {
		m.logger.Debug().Int("dropped", m.droppedCollisions).Msg("motion: collision buffer full")
	}
	return m.collisionFlags
}

// MoveWithCurrentVelocity advances the agent one tick with its current velocity.
func (m *CharacterMovement) MoveWithCurrentVelocity(deltaTime float32) CollisionFlags {
	return m.Move(m.velocity, deltaTime)
}

func (m *CharacterMovement) commitPose() {
	m.body.Position = m.updatedPosition
	m.body.Rotation = m.updatedRotation
}

// SetPosition teleports the agent. With updateGround the ground, height and platform are refreshed.
func (m *CharacterMovement) SetPosition(position rl.Vector3, updateGround bool) {
	m.SetPositionAndRotation(position, m.body.Rotation, updateGround)
}

// SetRotation sets the agent rotation.
func (m *CharacterMovement) SetRotation(rotation rl.Quaternion) {
	m.updatedRotation = rotation
	m.refreshCapsuleFrame()
	m.body.Rotation = rotation
}

// SetPositionAndRotation teleports the agent. With updateGround the ground, height and platform are refreshed.
func (m *CharacterMovement) SetPositionAndRotation(position rl.Vector3, rotation rl.Quaternion, updateGround bool) {
	m.updatedPosition = position
	m.updatedRotation = rotation
	m.refreshCapsuleFrame()

	if updateGround {
		m.updateCurrentGround(m.FindGround(m.updatedPosition))
		m.adjustGroundHeight()
		m.updateCurrentPlatform()
	}
	m.commitPose()
}

// RotateTowards turns the agent toward a world direction by at most maxDegrees. With yawOnly the
// direction is flattened onto the agent's horizontal plane first.
func (m *CharacterMovement) RotateTowards(direction rl.Vector3, maxDegrees float32, yawOnly bool) {
	up := rotate(worldUp, m.body.Rotation)
	if yawOnly {
		direction = projectOnPlane(direction, up)
	}
	if isZero(direction) {
		return
	}

	target := lookRotation(direction, up)
	m.SetRotation(rotateTowards(m.body.Rotation, target, maxDegrees))
}

// SetState restores a saved agent state, for example on a network rollback.
func (m *CharacterMovement) SetState(position rl.Vector3, rotation rl.Quaternion, velocity rl.Vector3,
	constrainedToGround bool, unconstrainedTimer float32, hitGround, isWalkable bool) {
	m.velocity = velocity
	m.isConstrainedToGround = constrainedToGround
	m.unconstrainedTimer = math32.Max(0, unconstrainedTimer)

	m.currentGround.HitGround = hitGround
	m.currentGround.IsWalkable = isWalkable

	m.SetPositionAndRotation(position, rotation, m.IsGrounded())
}
