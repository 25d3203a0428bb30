package motion

import (
	"fmt"
	"testing"

	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCourtyard builds a walled floor with a pillar and a crate in the middle.
func newCourtyard() *physics.World {
	w := newFloorScene()
	addBox(w, "north", rl.Vector3{Z: 6.5, Y: 1.5}, rl.Vector3{X: 14, Y: 3, Z: 1})
	addBox(w, "south", rl.Vector3{Z: -6.5, Y: 1.5}, rl.Vector3{X: 14, Y: 3, Z: 1})
	addBox(w, "east", rl.Vector3{X: 6.5, Y: 1.5}, rl.Vector3{X: 1, Y: 3, Z: 14})
	addBox(w, "west", rl.Vector3{X: -6.5, Y: 1.5}, rl.Vector3{X: 1, Y: 3, Z: 14})
	addBox(w, "crate", rl.Vector3{X: 2, Y: 0.75, Z: 2}, rl.Vector3{X: 1.5, Y: 1.5, Z: 1.5})
	w.AddCollider(physics.NewCollider("pillar", physics.Sphere{Radius: 1}, rl.Vector3{X: -2, Y: 0.5, Z: 1}))
	return w
}

// courtyardInput is a fixed walking pattern that runs into every obstacle of the courtyard.
func courtyardInput(i int) rl.Vector3 {
	inputs := []rl.Vector3{
		{X: 6}, {Z: 6}, {X: -6, Z: 1}, {X: 4, Z: -6}, {X: -3, Z: -3}, {X: 5, Z: 5},
	}
	return inputs[(i/40)%len(inputs)]
}

func TestNoPenetrationAfterMove(t *testing.T) {
	w := newCourtyard()
	m := newAgent(t, w, rl.Vector3{Y: restHeight})

	const skin = 0.005
	for i := 0; i < 240; i++ {
		m.Move(courtyardInput(i), tick)

		overlaps := m.OverlapTest(m.Position(), m.Rotation(), m.Radius()-skin, m.Height()-2*skin)
		require.Empty(t, overlaps, "tick %d at %v", i, m.Position())
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() []rl.Vector3 {
		w := newCourtyard()
		m := newAgent(t, w, rl.Vector3{X: -1, Y: restHeight, Z: -1})
		var poses []rl.Vector3
		for i := 0; i < 180; i++ {
			m.SimpleMove(courtyardInput(i), 6, 20, 20, 8, 0, rl.Vector3{Y: -9.81}, true, tick)
			poses = append(poses, m.Position())
		}
		return poses
	}

	assert.Equal(t, run(), run())
}

func TestSlideIterationsAreBounded(t *testing.T) {
	for _, iterations := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("iterations=%d", iterations), func(t *testing.T) {
			w := newFloorScene()
			addBox(w, "x-wall", rl.Vector3{X: 1.5, Y: 1.5}, rl.Vector3{X: 1, Y: 3, Z: 10})
			addBox(w, "z-wall", rl.Vector3{Z: 1.5, Y: 1.5}, rl.Vector3{X: 10, Y: 3, Z: 1})

			backend := &countingBackend{World: w}
			m := New(backend, WithName("agent"))
			w.AddBody(m.Body())
			adv := m.Advanced()
			adv.MaxMovementIterations = iterations
			m.SetAdvanced(adv)
			m.SetPosition(rl.Vector3{Y: restHeight}, true)

			backend.casts = 0
			m.Move(rl.Vector3{X: 50, Z: 50}, 1)

			// Per iteration: movement sweep, penetration retry, three step sweeps and a landing probe,
			// each at most two casts. Plus the end of tick ground probe and height adjustment.
			bound := iterations*2*(1+1+3+1) + 2*2 + 2
			assert.LessOrEqual(t, backend.casts, bound)
			assert.LessOrEqual(t, m.CollisionCount(), iterations)

			// Wedged in the corner, never through it
			assert.LessOrEqual(t, m.Position().X, float32(0.5))
			assert.LessOrEqual(t, m.Position().Z, float32(0.5))
		})
	}
}

func TestGroundDistanceStaysInBand(t *testing.T) {
	w := newFloorScene()
	m := newAgent(t, w, rl.Vector3{Y: 0.3})

	// Dropped from slightly above, height adjustment brings it into the band
	for i := 0; i < 60 && !m.IsGrounded(); i++ {
		m.SimpleMove(rl.Vector3{}, 5, 20, 20, 8, 0, rl.Vector3{Y: -9.81}, true, tick)
	}
	require.True(t, m.IsGrounded())

	for i := 0; i < 120; i++ {
		m.SimpleMove(rl.Vector3{X: 3, Z: 1}, 5, 20, 20, 8, 0, rl.Vector3{Y: -9.81}, true, tick)
		require.True(t, m.IsGrounded(), "tick %d", i)
		requireBand(t, m)
	}
	assert.Greater(t, m.Position().X, float32(3))
}

func TestStepHeightBound(t *testing.T) {
	cases := []struct {
		height float32
		climb  bool
	}{
		{0.1, true},
		{0.2, true},
		{0.4, true},
		{0.6, false},
		{1.0, false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("h=%.1f", tc.height), func(t *testing.T) {
			w := newFloorScene()
			addBox(w, "ledge", rl.Vector3{X: 3, Y: tc.height / 2}, rl.Vector3{X: 4, Y: tc.height, Z: 10})
			m := newAgent(t, w, rl.Vector3{Y: restHeight})

			m.Move(rl.Vector3{X: 3}, 1)

			require.True(t, m.IsGrounded(), "no fall either way")
			if tc.climb {
				assert.InDelta(t, 3.0, m.Position().X, 1e-3)
				assert.InDelta(t, tc.height+restHeight, m.Position().Y, 2e-3)
				assert.Equal(t, "ledge", m.GroundCollider().Name)
				return
			}
			assert.Less(t, m.Position().X, float32(0.5))
			assert.InDelta(t, restHeight, m.Position().Y, 1e-3)
			assert.Equal(t, "floor", m.GroundCollider().Name)
		})
	}
}

func TestSlopeGating(t *testing.T) {
	t.Run("walkable slope holds the agent", func(t *testing.T) {
		w := physics.NewWorld()
		addRamp(w, "ramp", 30)
		m := newAgent(t, w, rampStandPosition(30, 0.02))
		require.True(t, m.IsGrounded())
		start := m.Position()

		for i := 0; i < 30; i++ {
			m.SimpleMove(rl.Vector3{}, 5, 20, 20, 8, 0, rl.Vector3{Y: -9.81}, true, tick)
			require.True(t, m.IsGrounded(), "tick %d", i)
		}
		assertVec(t, horizontal(start), horizontal(m.Position()), 1e-3)
	})

	t.Run("steep slope is not a floor", func(t *testing.T) {
		w := physics.NewWorld()
		addRamp(w, "ramp", 60)
		m := newAgent(t, w, rampStandPosition(60, 0.02))
		assert.True(t, m.IsOnGround())
		assert.False(t, m.IsOnWalkableGround())
		start := m.Position()

		for i := 0; i < 20; i++ {
			m.SimpleMove(rl.Vector3{}, 5, 20, 0, 8, 0, rl.Vector3{Y: -9.81}, true, tick)
			require.False(t, m.IsGrounded(), "tick %d", i)
		}
		assert.Less(t, m.Position().Y, start.Y-0.1)
	})

	t.Run("slope limit decides", func(t *testing.T) {
		w := physics.NewWorld()
		addRamp(w, "ramp", 50)
		m := newAgent(t, w, rampStandPosition(50, 0.02))
		assert.False(t, m.IsOnWalkableGround())

		m.SetSlopeLimit(55)
		m.SetPosition(m.Position(), true)
		assert.True(t, m.IsOnWalkableGround())
	})
}
