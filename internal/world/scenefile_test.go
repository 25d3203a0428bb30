package world

import (
	"os"
	"path/filepath"
	"testing"

	"capsulekin/internal/motion"
	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `
name: yard
gravity: [0, -20, 0]
behaviours:
  ice: [not_walkable, can_not_perch_on]
  cart: [can_ride_on]
objects:
  - name: floor
    color: Gray
    position: [0, -0.5, 0]
    colliders:
      - shape: box
        size: [40, 1, 40]
  - name: post
    position: [0, 1, 0]
    rotation: [0, 90, 0]
    tags: [ice]
    colliders:
      - shape: sphere
        radius: 0.5
        offset: [1, 0, 0]
        tags: [round]
      - shape: capsule
        radius: 0.25
        height: 0.2
        trigger: true
  - name: ramp
    position: [5, 0, 0]
    rotation: [0, 0, 40]
    colliders:
      - shape: box
        size: [4, 0.2, 4]
        slope:
          behaviour: override
          limit: 50
  - name: lift
    kind: kinematic
    tags: [cart]
    position: [-5, 0, 0]
    velocity: [0, 1, 0]
    angularVelocity: [0, 45, 0]
    colliders:
      - shape: box
        size: [3, 0.5, 3]
        offset: [0, -0.25, 0]
  - name: crate
    kind: dynamic
    mass: 4
    useGravity: false
    position: [2, 0.5, 2]
    colliders:
      - shape: box
        size: [1, 1, 1]
        layer: 3
agents:
  - name: walker
    position: [0, 0.0215, -3]
    yaw: 90
    waypoints:
      - [3, 0, -3]
      - [3, 0, 3]
  - name: drifter
    position: [1, 0.0215, -3]
    input: [1, 0, 0]
`

func findCollider(t *testing.T, s *Scene, name string) *physics.Collider {
	t.Helper()
	for _, c := range s.World.Colliders() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "collider not found", "%s", name)
	return nil
}

func TestParseScene(t *testing.T) {
	s, err := ParseScene([]byte(testScene), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "yard", s.Name)
	assert.Equal(t, rl.Vector3{Y: -20}, s.World.Gravity)
	assert.Equal(t, motion.NotWalkable|motion.CanNotPerchOn, s.Behaviours["ice"])
	assert.Equal(t, motion.CanRideOn, s.Behaviours["cart"])

	floor := findCollider(t, s, "floor")
	assert.True(t, floor.IsStatic())
	assert.Equal(t, physics.NewBox(rl.Vector3{X: 40, Y: 1, Z: 40}), floor.Shape)
	assert.Equal(t, rl.Gray, s.Color(floor))

	// Static collider offsets are rotated into world space
	sphere := findCollider(t, s, "post_0")
	assert.InDelta(t, 0, sphere.Offset.X, 1e-5)
	assert.InDelta(t, 1, sphere.Offset.Y, 1e-5)
	assert.InDelta(t, -1, sphere.Offset.Z, 1e-5)
	assert.Equal(t, []string{"ice", "round"}, sphere.Tags)
	assert.Equal(t, rl.LightGray, s.Color(sphere))

	capsule := findCollider(t, s, "post_1")
	assert.True(t, capsule.IsTrigger)
	assert.Equal(t, physics.Capsule{Radius: 0.25, Height: 0.5}, capsule.Shape, "height is raised to the diameter")

	ramp := findCollider(t, s, "ramp")
	assert.Equal(t, physics.SlopeLimitOverride{Behaviour: physics.SlopeOverride, Limit: 50}, ramp.SlopeOverride)

	lift := findCollider(t, s, "lift")
	require.NotNil(t, lift.Body)
	assert.True(t, lift.Body.IsKinematic)
	assert.Equal(t, rl.Vector3{Y: 1}, lift.Body.Velocity)
	assert.Equal(t, rl.Vector3{Y: 45}, lift.Body.AngularVelocity)
	assert.Equal(t, rl.Vector3{Y: -0.25}, lift.Offset, "attached colliders stay body-local")

	crate := findCollider(t, s, "crate")
	require.NotNil(t, crate.Body)
	assert.False(t, crate.Body.IsKinematic)
	assert.Equal(t, float32(4), crate.Body.Mass)
	assert.False(t, crate.Body.UseGravity)
	assert.Equal(t, uint8(3), crate.Layer)

	require.Len(t, s.Spawns, 2)
	walker := s.Spawns[0]
	assert.Equal(t, "walker", walker.Name)
	assert.Equal(t, rl.Vector3{Z: -3, Y: 0.0215}, walker.Position)
	assert.Len(t, walker.Waypoints, 2)
	assert.Equal(t, float32(motion.DefaultRadius), walker.Tuning.Radius)
	assert.Equal(t, rl.Vector3{X: 1}, s.Spawns[1].Input)
}

func TestLoadSceneResolvesTuning(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "agents"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agents", "small.yaml"), []byte("radius: 0.3\nheight: 1.2\n"), 0644))

	scene := `
objects:
  - name: floor
    colliders: [{shape: box, size: [10, 1, 10]}]
agents:
  - name: kid
    tuning: agents/small.yaml
`
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scene), 0644))

	s, err := LoadScene(path)
	require.NoError(t, err)
	require.Len(t, s.Spawns, 1)
	assert.Equal(t, float32(0.3), s.Spawns[0].Tuning.Radius)
	assert.Equal(t, float32(1.2), s.Spawns[0].Tuning.Height)
}

func TestParseSceneErrors(t *testing.T) {
	cases := map[string]struct {
		yaml string
		msg  string
	}{
		"bad yaml":        {"objects: [", "parse scene"},
		"unknown shape":   {"objects: [{name: a, colliders: [{shape: cone}]}]", `unknown shape "cone"`},
		"unknown kind":    {"objects: [{name: a, kind: floaty, colliders: [{shape: sphere, radius: 1}]}]", `unknown kind "floaty"`},
		"no colliders":    {"objects: [{name: a}]", "no colliders"},
		"flat box":        {"objects: [{name: a, colliders: [{shape: box, size: [1, 0, 1]}]}]", "box size"},
		"bad slope":       {"objects: [{name: a, colliders: [{shape: sphere, radius: 1, slope: {behaviour: sticky}}]}]", "slope behaviour"},
		"bad behaviour":   {"behaviours: {ice: [slippery]}", `tag "ice"`},
		"missing tuning":  {"agents: [{name: a, tuning: nope.yaml}]", "read tuning"},
		"sphere radius":   {"objects: [{name: a, colliders: [{shape: sphere}]}]", "radius must be positive"},
		"capsule radius":  {"objects: [{name: a, colliders: [{shape: capsule, height: 2}]}]", "radius must be positive"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScene([]byte(tc.yaml), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLoadSceneMissingFile(t *testing.T) {
	_, err := LoadScene(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scene")
}

func TestPlaygroundScene(t *testing.T) {
	s, err := LoadScene("../../assets/scenes/playground.yaml")
	require.NoError(t, err)
	require.Len(t, s.Spawns, 3)
	assert.True(t, s.Spawns[0].Tuning.Advanced.EnablePhysicsInteraction)

	sim := NewSimulation(s, zerolog.Nop())
	sim.SpawnAgents(len(s.Spawns))
	sim.Run(300, 1.0/60.0)

	for _, a := range sim.Agents {
		p := a.Movement.Position()
		assert.False(t, math32.IsNaN(p.X) || math32.IsNaN(p.Y) || math32.IsNaN(p.Z), a.Name)
		assert.Greater(t, p.Y, float32(-0.1), "%s stays above the floor", a.Name)
		assert.Less(t, math32.Abs(p.X), float32(20), a.Name)
		assert.Less(t, math32.Abs(p.Z), float32(20), a.Name)
	}
}
