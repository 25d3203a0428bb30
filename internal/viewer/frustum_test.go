package viewer

import (
	"testing"

	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func lookingDownNegZ() rl.Camera3D {
	return rl.Camera3D{
		Position:   rl.Vector3{},
		Target:     rl.Vector3{Z: -1},
		Up:         rl.Vector3{Y: 1},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

func TestFrustumPoints(t *testing.T) {
	f := ExtractFrustum(lookingDownNegZ(), 1)

	assert.True(t, f.ContainsPoint(rl.Vector3{Z: -10}))
	assert.True(t, f.ContainsPoint(rl.Vector3{X: 3, Z: -10}))
	assert.False(t, f.ContainsPoint(rl.Vector3{Z: 10}), "behind the camera")
	assert.False(t, f.ContainsPoint(rl.Vector3{X: 100, Z: -10}), "far off to the side")
	assert.False(t, f.ContainsPoint(rl.Vector3{Z: -2000}), "past the far plane")
}

func TestFrustumVolumes(t *testing.T) {
	f := ExtractFrustum(lookingDownNegZ(), 1)

	assert.False(t, f.ContainsSphere(rl.Vector3{Z: 5}, 1))
	assert.True(t, f.ContainsSphere(rl.Vector3{Z: 5}, 6), "large enough to reach the near plane")

	inView := physics.NewAABBFromCenter(rl.Vector3{Z: -10}, rl.Vector3{X: 1, Y: 1, Z: 1})
	behind := physics.NewAABBFromCenter(rl.Vector3{Z: 10}, rl.Vector3{X: 1, Y: 1, Z: 1})
	straddling := physics.NewAABBFromCenter(rl.Vector3{X: 10, Z: -10}, rl.Vector3{X: 20, Y: 1, Z: 1})
	assert.True(t, f.ContainsAABB(inView))
	assert.False(t, f.ContainsAABB(behind))
	assert.True(t, f.ContainsAABB(straddling))
}

func TestAxisAngle(t *testing.T) {
	axis, angle := axisAngle(rl.QuaternionIdentity())
	assert.Zero(t, angle)
	assert.Equal(t, rl.Vector3{Y: 1}, axis)

	axis, angle = axisAngle(physics.EulerToQuaternion(rl.Vector3{Y: 90}))
	assert.InDelta(t, 90, angle, 1e-3)
	assert.InDelta(t, 1, axis.Y, 1e-5)
}
