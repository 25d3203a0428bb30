package config

import (
	"os"
	"path/filepath"
	"testing"

	"capsulekin/internal/motion"
	"capsulekin/internal/physics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestDefaultTuningMatchesSolver(t *testing.T) {
	m := motion.New(physics.NewWorld())
	before := m.Advanced()

	DefaultTuning().Apply(m)

	assert.Equal(t, float32(motion.DefaultRadius), m.Radius())
	assert.Equal(t, float32(motion.DefaultHeight), m.Height())
	assert.Equal(t, float32(motion.DefaultSlopeLimit), m.SlopeLimit())
	assert.Equal(t, float32(motion.DefaultStepOffset), m.StepOffset())
	assert.Equal(t, float32(motion.DefaultPerchOffset), m.PerchOffset())
	assert.True(t, m.ConstrainToGround())
	assert.True(t, m.DetectCollisions())
	assert.Equal(t, before, m.Advanced())
}

func TestLoadTuning(t *testing.T) {
	path := writeFile(t, "agent.yaml", `
radius: 0.4
height: 1.8
slopeLimit: 50
stepOffset: 0.3
advanced:
  maxMovementIterations: 8
  impartPlatformMovement: true
locomotion:
  maxSpeed: 7
  gravity: [0, -20, 0]
`)

	tuning, err := LoadTuning(path)
	require.NoError(t, err)

	assert.Equal(t, float32(0.4), tuning.Radius)
	assert.Equal(t, float32(50), tuning.SlopeLimit)
	assert.Equal(t, float32(motion.DefaultPerchAdditionalHeight), tuning.PerchAdditionalHeight, "unset fields keep defaults")
	assert.Equal(t, float32(7), tuning.Locomotion.MaxSpeed)
	assert.Equal(t, float32(20), tuning.Locomotion.Acceleration)
	assert.Equal(t, float32(-20), tuning.Locomotion.Gravity.Vector().Y)

	m := motion.New(physics.NewWorld())
	tuning.Apply(m)

	assert.Equal(t, float32(0.4), m.Radius())
	assert.Equal(t, float32(1.8), m.Height())
	assert.Equal(t, float32(0.3), m.StepOffset())
	// Perch offset is clamped to the new radius
	assert.Equal(t, float32(0.4), m.PerchOffset())
	assert.Equal(t, 8, m.Advanced().MaxMovementIterations)
	assert.True(t, m.Advanced().ImpartPlatformMovement)
}

func TestApplyClampsMisconfiguration(t *testing.T) {
	tuning := DefaultTuning()
	tuning.Radius = 1
	tuning.Height = 0.5
	tuning.SlopeLimit = 120
	tuning.Advanced.MaxMovementIterations = 0

	m := motion.New(physics.NewWorld())
	tuning.Apply(m)

	assert.Equal(t, float32(2), m.Height())
	assert.Equal(t, float32(89), m.SlopeLimit())
	assert.Equal(t, 1, m.Advanced().MaxMovementIterations)
}

func TestLoadTuningErrors(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tuning")

	path := writeFile(t, "broken.yaml", "radius: [oops\n")
	_, err = LoadTuning(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse tuning")
}
