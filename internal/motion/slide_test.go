package motion

import (
	"testing"

	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlopeBoostingOnSteepFace(t *testing.T) {
	m := New(physics.NewWorld())
	require.False(t, m.IsGrounded())
	steep := slopeNormal(70)

	// Level motion into the face never climbs it; the upward part turns sideways
	got := m.computeSlideVector(rl.Vector3{X: 1, Z: 1}, steep, false)
	assertVec(t, rl.Vector3{Z: 1}, got, 1e-5)

	// Rising motion climbs no faster than asked
	got = m.computeSlideVector(rl.Vector3{X: 1, Y: 0.1}, steep, false)
	assert.InDelta(t, 0.1, got.Y, 1e-5)
	assert.Greater(t, got.X, float32(0))
	assert.InDelta(t, 0, got.Z, 1e-6)

	// Falling motion is left to slide down the face
	down := rl.Vector3{X: 1, Y: -1}
	assertVec(t, projectOnPlane(down, steep), m.computeSlideVector(down, steep, false), 1e-6)

	m.SetConstrainToGround(false)
	got = m.computeSlideVector(rl.Vector3{X: 1, Y: 0.1}, steep, false)
	assert.InDelta(t, 0.41, got.Y, 1e-2)
}

func TestSlideCreaseThenStop(t *testing.T) {
	m := New(physics.NewWorld())
	input := rl.Vector3{X: 2, Y: -1, Z: 1}
	s := slider{input: input}
	velocity, displacement := input, input

	m.slide(&s, &velocity, &displacement, &CollisionResult{Normal: rl.Vector3{X: -1}})
	assertVec(t, rl.Vector3{Y: -1, Z: 1}, displacement, 1e-6)
	assertVec(t, displacement, velocity, 0)
	assert.Equal(t, 1, s.iteration)

	// The second wall opposes the first slide: follow the crease between them
	m.slide(&s, &velocity, &displacement, &CollisionResult{Normal: rl.Vector3{Z: -1}})
	assertVec(t, rl.Vector3{Y: -1}, displacement, 1e-6)
	assertVec(t, displacement, velocity, 0)
	assert.Equal(t, 2, s.iteration)

	m.slide(&s, &velocity, &displacement, &CollisionResult{Normal: rl.Vector3{X: 1}})
	assertVec(t, rl.Vector3{}, displacement, 0)
	assertVec(t, rl.Vector3{}, velocity, 0)
}

func TestSlideAlongAgreeingSecondHit(t *testing.T) {
	m := New(physics.NewWorld())
	s := slider{input: rl.Vector3{X: 2, Z: 1}}
	displacement := s.input

	m.slide(&s, nil, &displacement, &CollisionResult{Normal: rl.Vector3{X: -1}})
	assertVec(t, rl.Vector3{Z: 1}, displacement, 1e-6)

	m.slide(&s, nil, &displacement, &CollisionResult{Normal: rl.Vector3Normalize(rl.Vector3{X: -1, Z: -0.1})})
	assertVec(t, rl.Vector3{X: -0.0990, Z: 0.9901}, displacement, 1e-3)
	assert.Equal(t, 1, s.iteration)
}
