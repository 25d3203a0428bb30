package motion

import (
	"testing"

	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = float32(1.0 / 60.0)

// restHeight is the agent height above a floor at y=0 when resting mid-band.
var restHeight = DefaultTolerances().AvgGroundDistance()

func newFloorScene() *physics.World {
	w := physics.NewWorld()
	w.AddCollider(physics.NewCollider("floor", physics.NewBox(rl.Vector3{X: 200, Y: 1, Z: 200}), rl.Vector3{Y: -0.5}))
	return w
}

func addBox(w *physics.World, name string, center, size rl.Vector3) *physics.Collider {
	c := physics.NewCollider(name, physics.NewBox(size), center)
	w.AddCollider(c)
	return c
}

// addRamp adds a wide box tilted about Z so its top face rises toward -X. The top face passes
// through the origin.
func addRamp(w *physics.World, name string, degrees float32) *physics.Collider {
	rot := physics.EulerToQuaternion(rl.Vector3{Z: degrees})
	normal := rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, rot)
	c := physics.NewCollider(name, physics.NewBox(rl.Vector3{X: 20, Y: 1, Z: 20}), rl.Vector3Scale(normal, -0.5))
	c.Rotation = rot
	w.AddCollider(c)
	return c
}

// rampStandPosition returns the agent position whose bottom sphere sits gap above a ramp made by addRamp.
func rampStandPosition(degrees, gap float32) rl.Vector3 {
	normal := rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, physics.EulerToQuaternion(rl.Vector3{Z: degrees}))
	sphereCenter := rl.Vector3Scale(normal, DefaultRadius+gap)
	return rl.Vector3Subtract(sphereCenter, rl.Vector3{Y: DefaultRadius})
}

func newAgent(t *testing.T, w *physics.World, position rl.Vector3, opts ...Option) *CharacterMovement {
	t.Helper()
	m := New(w, append([]Option{WithName("agent")}, opts...)...)
	w.AddBody(m.Body())
	m.SetPosition(position, true)
	return m
}

func assertVec(t *testing.T, expected, actual rl.Vector3, delta float64) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, delta, "x")
	assert.InDelta(t, expected.Y, actual.Y, delta, "y")
	assert.InDelta(t, expected.Z, actual.Z, delta, "z")
}

func requireBand(t *testing.T, m *CharacterMovement) {
	t.Helper()
	tol := m.Tolerances()
	require.GreaterOrEqual(t, m.GroundDistance(), tol.MinGroundDistance-1e-4)
	require.LessOrEqual(t, m.GroundDistance(), tol.MaxGroundDistance+1e-4)
}

func horizontal(v rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: v.X, Z: v.Z}
}

func yawDegrees(q rl.Quaternion) float32 {
	f := rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, q)
	return math32.Atan2(f.X, f.Z) * rl.Rad2deg
}

// countingBackend counts the queries the solver issues.
type countingBackend struct {
	*physics.World
	casts    int
	overlaps int
}

func (b *countingBackend) CapsuleCast(p1, p2 rl.Vector3, radius float32, direction rl.Vector3, maxDistance float32, mask uint32, hits []physics.Hit) int {
	b.casts++
	return b.World.CapsuleCast(p1, p2, radius, direction, maxDistance, mask, hits)
}

func (b *countingBackend) OverlapCapsule(p1, p2 rl.Vector3, radius float32, mask uint32, out []*physics.Collider) int {
	b.overlaps++
	return b.World.OverlapCapsule(p1, p2, radius, mask, out)
}

// nanBackend reports every penetration with a non-finite direction.
type nanBackend struct {
	*physics.World
}

func (nanBackend) ComputePenetration(p1, p2 rl.Vector3, radius float32, other *physics.Collider) (rl.Vector3, float32, bool) {
	nan := math32.NaN()
	return rl.Vector3{X: nan, Y: nan, Z: nan}, 0.05, true
}
