// Stress test timing agent ticks through a generated obstacle field
package main

import (
	"fmt"
	"math/rand"
	"time"

	"capsulekin/internal/config"
	"capsulekin/internal/logging"
	"capsulekin/internal/physics"
	"capsulekin/internal/world"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	ticks := pflag.Int("ticks", 300, "ticks per run")
	obstacles := pflag.Int("obstacles", 400, "obstacles in the field")
	logLevel := pflag.String("log-level", "warn", "log level")
	pflag.Parse()

	logger := logging.New(*logLevel, true)

	// Test various agent counts
	testCounts := []int{1, 10, 50, 100, 250, 500}

	for _, count := range testCounts {
		testAgents(count, *obstacles, *ticks, logger)
	}
}

// agentSpacing separates spawn points on the start grid.
const agentSpacing = 1.5

// buildField scatters boxes, spheres and low steps on a floor, leaving a clear spawn area of the given radius.
func buildField(obstacles int, size, clearRadius float32) *world.Scene {
	rng := rand.New(rand.NewSource(42)) // Consistent results

	s := &world.Scene{
		Name:   "stress",
		World:  physics.NewWorld(),
		Colors: make(map[*physics.Collider]rl.Color),
	}
	s.World.AddCollider(physics.NewCollider("floor", physics.NewBox(rl.Vector3{X: size + 10, Y: 1, Z: size + 10}), rl.Vector3{Y: -0.5}))

	for i := 0; i < obstacles; i++ {
		pos := rl.Vector3{
			X: rng.Float32()*size - size/2,
			Z: rng.Float32()*size - size/2,
		}
		if rl.Vector3Length(pos) < clearRadius {
			continue
		}

		name := fmt.Sprintf("obstacle_%d", i)
		var c *physics.Collider
		switch i % 3 {
		case 0:
			h := 0.5 + rng.Float32()*2
			pos.Y = h / 2
			c = physics.NewCollider(name, physics.NewBox(rl.Vector3{X: 0.5 + rng.Float32()*1.5, Y: h, Z: 0.5 + rng.Float32()*1.5}), pos)
			c.Rotation = physics.EulerToQuaternion(rl.Vector3{Y: rng.Float32() * 90})
		case 1:
			r := 0.3 + rng.Float32()*0.9
			pos.Y = r * 0.5
			c = physics.NewCollider(name, physics.Sphere{Radius: r}, pos)
		default:
			// Steps low enough to climb
			h := 0.1 + rng.Float32()*0.3
			pos.Y = h / 2
			c = physics.NewCollider(name, physics.NewBox(rl.Vector3{X: 2, Y: h, Z: 2}), pos)
		}
		s.World.AddCollider(c)
	}
	return s
}

func testAgents(count, obstacles, ticks int, logger zerolog.Logger) {
	side := int(math32.Ceil(math32.Sqrt(float32(count))))
	half := float32(side-1) * agentSpacing / 2
	clearRadius := half*math32.Sqrt(2) + 2
	spawnSize := float32(40.0) + 2*clearRadius
	s := buildField(obstacles, spawnSize, clearRadius)

	tuning := config.DefaultTuning()
	tuning.Advanced.AllowPushCharacters = true
	tuning.Advanced.EnablePhysicsInteraction = true

	rng := rand.New(rand.NewSource(int64(count)))
	for i := 0; i < count; i++ {
		// Agents start on a grid in the clear center and walk out through the field
		start := rl.Vector3{
			X: float32(i%side)*agentSpacing - half,
			Y: 0.0215,
			Z: float32(i/side)*agentSpacing - half,
		}
		var waypoints []rl.Vector3
		for j := 0; j < 4; j++ {
			waypoints = append(waypoints, rl.Vector3{
				X: rng.Float32()*spawnSize - spawnSize/2,
				Z: rng.Float32()*spawnSize - spawnSize/2,
			})
		}
		s.Spawns = append(s.Spawns, world.Spawn{
			Name:      fmt.Sprintf("agent_%d", i),
			Position:  start,
			Rotation:  rl.QuaternionIdentity(),
			Tuning:    tuning,
			Waypoints: waypoints,
		})
	}

	sim := world.NewSimulation(s, logger)
	sim.SpawnAgents(count)

	// Warm up
	sim.Run(10, 1.0/60.0)

	start := time.Now()
	sim.Run(ticks, 1.0/60.0)
	elapsed := time.Since(start)

	var grounded, collisions int
	for _, a := range sim.Agents {
		if a.Movement.IsGrounded() {
			grounded++
		}
		collisions += a.Collisions
	}

	perTick := elapsed / time.Duration(ticks)
	perAgent := perTick / time.Duration(count)
	fmt.Printf("%4d agents: %10v/tick | %8v/agent-tick | %4d grounded | %6d collisions\n",
		count, perTick.Round(time.Microsecond), perAgent.Round(100*time.Nanosecond), grounded, collisions)
}
