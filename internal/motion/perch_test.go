package motion

import (
	"testing"

	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLedgeScene adds a ledge whose top is y=0 and whose edge runs along x=0, with nothing beyond it.
func newLedgeScene() *physics.World {
	w := physics.NewWorld()
	addBox(w, "ledge", rl.Vector3{X: -5, Y: -0.5}, rl.Vector3{X: 10, Y: 1, Z: 10})
	return w
}

// ledgeRestPosition places the bottom sphere at rest height above the ledge edge, its axis overhang
// past the edge.
func ledgeRestPosition(overhang float32) rl.Vector3 {
	r := float32(DefaultRadius)
	return rl.Vector3{X: overhang, Y: math32.Sqrt(r*r-overhang*overhang) - r + restHeight}
}

func newPerchedAgent(t *testing.T, w *physics.World, overhang, perchOffset float32) *CharacterMovement {
	t.Helper()
	m := newAgent(t, w, rl.Vector3{X: -2, Y: restHeight})
	m.SetPerchOffset(perchOffset)
	m.SetPosition(ledgeRestPosition(overhang), true)
	return m
}

func TestPerchOnLedge(t *testing.T) {
	tests := []struct {
		name        string
		overhang    float32
		perchOffset float32
		lowerStep   bool
		walkable    bool
	}{
		{"full radius perch", 0.3, DefaultPerchOffset, false, true},
		{"contact inside perch radius", 0.05, 0.1, false, true},
		{"contact outside perch radius", 0.3, 0.1, false, false},
		{"lower step within perch reach", 0.3, 0.1, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newLedgeScene()
			if tt.lowerStep {
				addBox(w, "step", rl.Vector3{X: 5, Y: -0.8}, rl.Vector3{X: 10, Y: 1, Z: 10})
			}
			m := newPerchedAgent(t, w, tt.overhang, tt.perchOffset)

			assert.True(t, m.IsOnGround())
			assert.Equal(t, tt.walkable, m.IsOnWalkableGround())
			assert.Equal(t, tt.walkable, m.IsGrounded())
			assert.Equal(t, "ledge", m.CurrentGround().Collider.Name)
		})
	}
}

func TestFallOffLedgeOutsidePerchRadius(t *testing.T) {
	m := newPerchedAgent(t, newLedgeScene(), 0.3, 0.1)
	require.False(t, m.IsOnWalkableGround())
	start := m.Position()

	for i := 0; i < 30; i++ {
		v := m.Velocity()
		v.Y -= 9.81 * tick
		m.Move(v, tick)
	}

	assert.False(t, m.IsGrounded())
	assert.Less(t, m.Position().Y, start.Y-0.05)
	// The rim pushes the agent away from the ledge as it slides off
	assert.Greater(t, m.Position().X, start.X)
}
