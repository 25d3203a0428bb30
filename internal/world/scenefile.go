package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"capsulekin/internal/config"
	"capsulekin/internal/motion"
	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

// --- YAML types ---

type SceneFile struct {
	Name       string              `yaml:"name"`
	Gravity    *config.Vec3        `yaml:"gravity,omitempty"`
	Behaviours map[string][]string `yaml:"behaviours,omitempty"`
	Objects    []ObjectDef         `yaml:"objects"`
	Agents     []AgentDef          `yaml:"agents,omitempty"`
}

// ObjectDef is a static object, a kinematic platform or a dynamic body with its colliders.
type ObjectDef struct {
	Name            string        `yaml:"name"`
	Tags            []string      `yaml:"tags,omitempty"`
	Kind            string        `yaml:"kind,omitempty"` // static (default), kinematic or dynamic
	Position        config.Vec3   `yaml:"position"`
	Rotation        config.Vec3   `yaml:"rotation,omitempty"`
	Velocity        config.Vec3   `yaml:"velocity,omitempty"`
	AngularVelocity config.Vec3   `yaml:"angularVelocity,omitempty"`
	Mass            float32       `yaml:"mass,omitempty"`
	UseGravity      *bool         `yaml:"useGravity,omitempty"`
	Color           string        `yaml:"color,omitempty"`
	Colliders       []ColliderDef `yaml:"colliders"`
}

type ColliderDef struct {
	Shape    string      `yaml:"shape"` // box, sphere or capsule
	Size     config.Vec3 `yaml:"size,omitempty"`
	Radius   float32     `yaml:"radius,omitempty"`
	Height   float32     `yaml:"height,omitempty"`
	Offset   config.Vec3 `yaml:"offset,omitempty"`
	Rotation config.Vec3 `yaml:"rotation,omitempty"`
	Layer    uint8       `yaml:"layer,omitempty"`
	Trigger  bool        `yaml:"trigger,omitempty"`
	Tags     []string    `yaml:"tags,omitempty"`
	Slope    *SlopeDef   `yaml:"slope,omitempty"`
}

type SlopeDef struct {
	Behaviour string  `yaml:"behaviour"` // walkable, not_walkable or override
	Limit     float32 `yaml:"limit,omitempty"`
}

// AgentDef spawns one agent. Tuning is a path relative to the scene file.
type AgentDef struct {
	Name      string        `yaml:"name"`
	Position  config.Vec3   `yaml:"position"`
	Yaw       float32       `yaml:"yaw,omitempty"`
	Tuning    string        `yaml:"tuning,omitempty"`
	Waypoints []config.Vec3 `yaml:"waypoints,omitempty"`
	Input     config.Vec3   `yaml:"input,omitempty"`
}

// --- Color mapping ---

var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Pink":      rl.Pink,
	"SkyBlue":   rl.SkyBlue,
	"Lime":      rl.Lime,
	"Magenta":   rl.Magenta,
	"White":     rl.White,
	"LightGray": rl.LightGray,
	"Gray":      rl.Gray,
	"DarkGray":  rl.DarkGray,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"Maroon":    rl.Maroon,
	"Gold":      rl.Gold,
}

func lookupColor(name string) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	return rl.LightGray
}

// --- Loaded scene ---

// Spawn is a resolved agent spawn point.
type Spawn struct {
	Name      string
	Position  rl.Vector3
	Rotation  rl.Quaternion
	Tuning    config.Tuning
	Waypoints []rl.Vector3
	Input     rl.Vector3
}

// Scene is a populated physics world plus everything needed to spawn and draw agents.
type Scene struct {
	Name       string
	World      *physics.World
	Behaviours motion.TagBehaviours
	Spawns     []Spawn
	Colors     map[*physics.Collider]rl.Color
}

// Color returns the draw color of a collider.
func (s *Scene) Color(c *physics.Collider) rl.Color {
	if color, ok := s.Colors[c]; ok {
		return color
	}
	return rl.LightGray
}

// --- Loading ---

// LoadScene reads and builds the scene file at path.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	scene, err := ParseScene(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return scene, nil
}

// ParseScene builds a scene from YAML. Agent tuning paths are resolved against dir.
func ParseScene(data []byte, dir string) (*Scene, error) {
	var sf SceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	s := &Scene{
		Name:       sf.Name,
		World:      physics.NewWorld(),
		Behaviours: motion.TagBehaviours{},
		Colors:     make(map[*physics.Collider]rl.Color),
	}
	if sf.Gravity != nil {
		s.World.Gravity = sf.Gravity.Vector()
	}

	for tag, names := range sf.Behaviours {
		var flags motion.CollisionBehaviour
		for _, name := range names {
			b, err := motion.ParseBehaviour(name)
			if err != nil {
				return nil, fmt.Errorf("behaviours of tag %q: %w", tag, err)
			}
			flags |= b
		}
		s.Behaviours[tag] = flags
	}

	for i, objDef := range sf.Objects {
		if err := s.loadObject(objDef); err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, objDef.Name, err)
		}
	}

	for i, agentDef := range sf.Agents {
		spawn, err := loadSpawn(agentDef, dir)
		if err != nil {
			return nil, fmt.Errorf("agent %d (%s): %w", i, agentDef.Name, err)
		}
		s.Spawns = append(s.Spawns, spawn)
	}

	return s, nil
}

func (s *Scene) loadObject(def ObjectDef) error {
	if len(def.Colliders) == 0 {
		return fmt.Errorf("no colliders")
	}

	position := def.Position.Vector()
	rotation := physics.EulerToQuaternion(def.Rotation.Vector())
	color := lookupColor(def.Color)

	var body *physics.Body
	switch strings.ToLower(def.Kind) {
	case "", "static":
	case "kinematic":
		body = physics.NewKinematicBody(def.Name)
	case "dynamic":
		body = physics.NewBody(def.Name)
		if def.Mass > 0 {
			body.Mass = def.Mass
		}
		if def.UseGravity != nil {
			body.UseGravity = *def.UseGravity
		}
	default:
		return fmt.Errorf("unknown kind %q", def.Kind)
	}
	if body != nil {
		body.Position = position
		body.Rotation = rotation
		body.Velocity = def.Velocity.Vector()
		body.AngularVelocity = def.AngularVelocity.Vector()
	}

	for j, colDef := range def.Colliders {
		shape, err := loadShape(colDef)
		if err != nil {
			return fmt.Errorf("collider %d: %w", j, err)
		}
		slope, err := loadSlope(colDef.Slope)
		if err != nil {
			return fmt.Errorf("collider %d: %w", j, err)
		}

		name := def.Name
		if len(def.Colliders) > 1 {
			name = fmt.Sprintf("%s_%d", def.Name, j)
		}

		offset := colDef.Offset.Vector()
		localRotation := physics.EulerToQuaternion(colDef.Rotation.Vector())

		col := physics.NewCollider(name, shape, offset)
		col.Rotation = localRotation
		col.Layer = colDef.Layer
		col.IsTrigger = colDef.Trigger
		col.SlopeOverride = slope
		col.Tags = append(append([]string(nil), def.Tags...), colDef.Tags...)

		if body != nil {
			col.Attach(body)
		} else {
			// Static colliders are placed in world space
			col.Offset = rl.Vector3Add(position, rl.Vector3RotateByQuaternion(offset, rotation))
			col.Rotation = rl.QuaternionMultiply(rotation, localRotation)
			s.World.AddCollider(col)
		}
		s.Colors[col] = color
	}

	if body != nil {
		s.World.AddBody(body)
	}
	return nil
}

func loadShape(def ColliderDef) (physics.Shape, error) {
	switch strings.ToLower(def.Shape) {
	case "box":
		size := def.Size.Vector()
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return nil, fmt.Errorf("box size must be positive, got %v", def.Size)
		}
		return physics.NewBox(size), nil
	case "sphere":
		if def.Radius <= 0 {
			return nil, fmt.Errorf("sphere radius must be positive")
		}
		return physics.Sphere{Radius: def.Radius}, nil
	case "capsule":
		if def.Radius <= 0 {
			return nil, fmt.Errorf("capsule radius must be positive")
		}
		height := def.Height
		if height < 2*def.Radius {
			height = 2 * def.Radius
		}
		return physics.Capsule{Radius: def.Radius, Height: height}, nil
	default:
		return nil, fmt.Errorf("unknown shape %q", def.Shape)
	}
}

func loadSlope(def *SlopeDef) (physics.SlopeLimitOverride, error) {
	if def == nil {
		return physics.SlopeLimitOverride{}, nil
	}
	switch strings.ToLower(def.Behaviour) {
	case "", "default":
		return physics.SlopeLimitOverride{}, nil
	case "walkable":
		return physics.SlopeLimitOverride{Behaviour: physics.SlopeWalkable}, nil
	case "not_walkable":
		return physics.SlopeLimitOverride{Behaviour: physics.SlopeNotWalkable}, nil
	case "override":
		return physics.SlopeLimitOverride{Behaviour: physics.SlopeOverride, Limit: def.Limit}, nil
	default:
		return physics.SlopeLimitOverride{}, fmt.Errorf("unknown slope behaviour %q", def.Behaviour)
	}
}

func loadSpawn(def AgentDef, dir string) (Spawn, error) {
	spawn := Spawn{
		Name:     def.Name,
		Position: def.Position.Vector(),
		Rotation: physics.EulerToQuaternion(rl.Vector3{Y: def.Yaw}),
		Tuning:   config.DefaultTuning(),
		Input:    def.Input.Vector(),
	}
	if def.Tuning != "" {
		path := def.Tuning
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		t, err := config.LoadTuning(path)
		if err != nil {
			return Spawn{}, err
		}
		spawn.Tuning = t
	}
	for _, wp := range def.Waypoints {
		spawn.Waypoints = append(spawn.Waypoints, wp.Vector())
	}
	return spawn, nil
}
