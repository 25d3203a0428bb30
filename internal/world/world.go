package world

import (
	"fmt"

	"capsulekin/internal/config"
	"capsulekin/internal/motion"
	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

// WaypointRadius is how close an agent gets to a waypoint before heading to the next one.
const WaypointRadius = 0.35

// Agent is one simulated character with its steering input and running stats.
type Agent struct {
	Name      string
	Movement  *motion.CharacterMovement
	Tuning    config.Tuning
	Waypoints []rl.Vector3
	Input     rl.Vector3

	next int

	Landings     int
	Collisions   int
	GroundedTime float32
	Distance     float32
}

// NextWaypoint returns the index of the waypoint the agent is walking to.
func (a *Agent) NextWaypoint() int { return a.next }

// desiredVelocity steers toward the next waypoint, or returns the constant input.
func (a *Agent) desiredVelocity() rl.Vector3 {
	if len(a.Waypoints) == 0 {
		return a.Input
	}

	pos := a.Movement.Position()
	for range a.Waypoints {
		to := rl.Vector3Subtract(a.Waypoints[a.next], pos)
		to.Y = 0
		if rl.Vector3Length(to) > WaypointRadius {
			return rl.Vector3Scale(rl.Vector3Normalize(to), a.Tuning.Locomotion.MaxSpeed)
		}
		a.next = (a.next + 1) % len(a.Waypoints)
	}
	return rl.Vector3{}
}

// Simulation ticks a scene and its agents at a fixed step.
type Simulation struct {
	Scene  *Scene
	Agents []*Agent
	Logger zerolog.Logger

	// Options passed to every agent created by Spawn
	AgentOptions []motion.Option

	Paused    bool
	TimeScale float32
	Tick      int
	Time      float32
}

func NewSimulation(scene *Scene, logger zerolog.Logger) *Simulation {
	scene.World.Logger = logger
	return &Simulation{
		Scene:     scene,
		Logger:    logger,
		TimeScale: 1,
	}
}

// Spawn adds an agent at the given spawn point.
func (s *Simulation) Spawn(spawn Spawn) *Agent {
	name := spawn.Name
	if name == "" {
		name = fmt.Sprintf("agent_%d", len(s.Agents))
	}

	opts := append([]motion.Option{motion.WithName(name), motion.WithLogger(s.Logger.With().Str("agent", name).Logger())}, s.AgentOptions...)
	m := motion.New(s.Scene.World, opts...)
	spawn.Tuning.Apply(m)
	m.Behaviours = s.Scene.Behaviours
	s.Scene.World.AddBody(m.Body())
	m.SetPositionAndRotation(spawn.Position, spawn.Rotation, true)

	a := &Agent{
		Name:      name,
		Movement:  m,
		Tuning:    spawn.Tuning,
		Waypoints: spawn.Waypoints,
		Input:     spawn.Input,
	}
	m.FoundGround.AddListener(func(motion.GroundResult) { a.Landings++ })
	m.Collided.AddListener(func(motion.CollisionResult) { a.Collisions++ })

	s.Agents = append(s.Agents, a)
	s.Logger.Debug().Str("agent", name).
		Float32("x", spawn.Position.X).Float32("y", spawn.Position.Y).Float32("z", spawn.Position.Z).
		Bool("grounded", m.IsGrounded()).
		Msg("world: agent spawned")
	return a
}

// Despawn removes a and its body from the scene. It reports false if a is not one of the
// simulation's agents.
func (s *Simulation) Despawn(a *Agent) bool {
	for i, other := range s.Agents {
		if other != a {
			continue
		}
		s.Agents = append(s.Agents[:i], s.Agents[i+1:]...)
		s.Scene.World.RemoveBody(a.Movement.Body())
		s.Logger.Debug().Str("agent", a.Name).Msg("world: agent despawned")
		return true
	}
	return false
}

// SpawnAgents spawns count agents, cycling through the scene spawn points. Agents beyond the
// number of spawn points are placed on a grid beside their template.
func (s *Simulation) SpawnAgents(count int) {
	spawns := s.Scene.Spawns
	if len(spawns) == 0 {
		spawns = []Spawn{{Name: "agent", Rotation: rl.QuaternionIdentity(), Tuning: config.DefaultTuning()}}
	}

	for i := 0; i < count; i++ {
		spawn := spawns[i%len(spawns)]
		if round := i / len(spawns); round > 0 {
			spacing := 2*spawn.Tuning.Radius + 0.5
			spawn.Name = fmt.Sprintf("%s_%d", spawn.Name, round)
			spawn.Position.X += float32(round%8) * spacing
			spawn.Position.Z += float32(round/8) * spacing
		}
		s.Spawn(spawn)
	}
}

// Step advances the scene by deltaTime scaled by TimeScale. Bodies move first, then agents
// in spawn order.
func (s *Simulation) Step(deltaTime float32) {
	if s.Paused {
		return
	}
	dt := deltaTime * s.TimeScale
	if dt <= 0 {
		return
	}

	s.Scene.World.Step(dt)

	for _, a := range s.Agents {
		m := a.Movement
		loco := a.Tuning.Locomotion
		before := m.Position()

		desired := a.desiredVelocity()
		if loco.TurnRate > 0 {
			m.RotateTowards(desired, loco.TurnRate*dt, true)
		}
		m.SimpleMove(desired, loco.MaxSpeed, loco.Acceleration, loco.Deceleration, loco.Friction,
			loco.BrakingFriction, loco.Gravity.Vector(), loco.OnlyHorizontal, dt)

		a.Distance += rl.Vector3Distance(before, m.Position())
		if m.IsGrounded() {
			a.GroundedTime += dt
		}
		if n := m.DroppedCollisions(); n > 0 {
			s.Logger.Debug().Str("agent", a.Name).Int("dropped", n).Msg("world: collision results dropped")
		}
	}

	s.Tick++
	s.Time += dt
}

// Run advances ticks fixed steps.
func (s *Simulation) Run(ticks int, deltaTime float32) {
	for i := 0; i < ticks; i++ {
		s.Step(deltaTime)
	}
}

// LogSummary writes one line per agent.
func (s *Simulation) LogSummary() {
	for _, a := range s.Agents {
		m := a.Movement
		p := m.Position()
		ground := "none"
		if c := m.GroundCollider(); c != nil {
			ground = c.Name
		}
		s.Logger.Info().
			Str("agent", a.Name).
			Int("tick", s.Tick).
			Float32("x", round3(p.X)).Float32("y", round3(p.Y)).Float32("z", round3(p.Z)).
			Float32("speed", round3(m.Speed())).
			Float32("distance", round3(a.Distance)).
			Float32("grounded", round3(a.GroundedTime)).
			Str("ground", ground).
			Int("landings", a.Landings).
			Int("collisions", a.Collisions).
			Msg("world: agent summary")
	}
}

// Bodies returns the non-agent bodies of the scene.
func (s *Simulation) Bodies() []*physics.Body {
	var out []*physics.Body
	for _, b := range s.Scene.World.Bodies() {
		if b.Agent == nil {
			out = append(out, b)
		}
	}
	return out
}

func round3(v float32) float32 {
	return math32.Round(v*1000) / 1000
}
