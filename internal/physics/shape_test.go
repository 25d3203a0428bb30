package physics

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func TestBoxSignedDistance(t *testing.T) {
	box := NewBox(rl.Vector3{X: 1, Y: 1, Z: 1})

	tests := []struct {
		name   string
		point  rl.Vector3
		dist   float32
		normal rl.Vector3
	}{
		{"above face", rl.Vector3{Y: 1.5}, 1.0, rl.Vector3{Y: 1}},
		{"inside near top", rl.Vector3{Y: 0.4}, -0.1, rl.Vector3{Y: 1}},
		{"inside near side", rl.Vector3{X: -0.45}, -0.05, rl.Vector3{X: -1}},
		{"off edge", rl.Vector3{X: 1.5, Y: 1.5}, 1.41421356, rl.Vector3{X: 0.70710678, Y: 0.70710678}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, n := box.SignedDistance(tt.point)
			assert.InDelta(t, tt.dist, d, 1e-5)
			assertVec(t, tt.normal, n, 1e-5)
		})
	}
}

func TestCapsuleSignedDistance(t *testing.T) {
	c := Capsule{Radius: 0.5, Height: 2}

	a, b := c.Segment()
	assertVec(t, rl.Vector3{Y: -0.5}, a, 1e-6)
	assertVec(t, rl.Vector3{Y: 0.5}, b, 1e-6)

	d, n := c.SignedDistance(rl.Vector3{Y: 2})
	assert.InDelta(t, 1.0, d, 1e-5)
	assertVec(t, rl.Vector3{Y: 1}, n, 1e-5)

	d, _ = c.SignedDistance(rl.Vector3{X: 0.25})
	assert.InDelta(t, -0.25, d, 1e-5)
}

func TestOBBIntersectAndResolve(t *testing.T) {
	a := NewOBB(rl.Vector3{}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, rl.QuaternionIdentity())
	b := NewOBB(rl.Vector3{X: 0.8}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, rl.QuaternionIdentity())
	far := NewOBB(rl.Vector3{X: 3}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, rl.QuaternionIdentity())

	assert.True(t, a.IntersectsOBB(b))
	assert.False(t, a.IntersectsOBB(far))

	mtv := a.ResolveOBB(b)
	assertVec(t, rl.Vector3{X: -0.2}, mtv, 1e-5)
	assert.Equal(t, rl.Vector3Zero(), a.ResolveOBB(far))
}

func TestOBBBoundsRotated(t *testing.T) {
	o := NewOBB(rl.Vector3{}, rl.Vector3{X: 1, Y: 0.5, Z: 1}, EulerToQuaternion(rl.Vector3{Y: 45}))
	b := o.Bounds()

	assert.InDelta(t, 1.41421356, b.Max.X, 1e-5)
	assert.InDelta(t, 0.5, b.Max.Y, 1e-5)
	assert.InDelta(t, -1.41421356, b.Min.Z, 1e-5)
}

func TestMinimizeConvex(t *testing.T) {
	x, fx := minimizeConvex(-2, 5, func(x float32) float32 { return (x - 1.25) * (x - 1.25) })
	assert.InDelta(t, 1.25, x, 1e-3)
	assert.InDelta(t, 0, fx, 1e-5)

	// Monotone: the endpoint wins
	x, _ = minimizeConvex(0, 1, func(x float32) float32 { return x })
	assert.Equal(t, float32(0), x)
}

func TestClosestPointOnOBB(t *testing.T) {
	o := NewOBB(rl.Vector3{X: 1}, rl.Vector3{X: 1, Y: 1, Z: 1}, rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math.Pi/4))

	assertVec(t, rl.Vector3{X: 1, Y: 1}, ClosestPointOnOBB(o, rl.Vector3{X: 1, Y: 5}), 1e-5)

	inside := rl.Vector3{X: 1.2, Y: -0.3, Z: 0.1}
	assertVec(t, inside, ClosestPointOnOBB(o, inside), 1e-5)

	// Straight out of a rotated face lands on its center
	far := rl.Vector3Add(o.Center, rl.Vector3Scale(o.Axes[0], 4))
	assertVec(t, rl.Vector3Add(o.Center, o.Axes[0]), ClosestPointOnOBB(o, far), 1e-5)
}
