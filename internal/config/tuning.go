package config

import (
	"fmt"
	"os"

	"capsulekin/internal/motion"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

// Vec3 is a vector written as a three element YAML sequence.
type Vec3 [3]float32

func (v Vec3) Vector() rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// Tuning is the per-agent solver configuration.
type Tuning struct {
	Radius                float32 `yaml:"radius"`
	Height                float32 `yaml:"height"`
	SlopeLimit            float32 `yaml:"slopeLimit"`
	StepOffset            float32 `yaml:"stepOffset"`
	PerchOffset           float32 `yaml:"perchOffset"`
	PerchAdditionalHeight float32 `yaml:"perchAdditionalHeight"`
	PushForceScale        float32 `yaml:"pushForceScale"`
	ConstrainToGround     bool    `yaml:"constrainToGround"`
	SlopeLimitOverride    bool    `yaml:"slopeLimitOverride"`
	UseFlatTop            bool    `yaml:"useFlatTop"`
	HitTriggers           bool    `yaml:"hitTriggers"`
	DetectCollisions      bool    `yaml:"detectCollisions"`
	FastPlatformMove      bool    `yaml:"fastPlatformMove"`

	Advanced   AdvancedTuning   `yaml:"advanced"`
	Locomotion LocomotionTuning `yaml:"locomotion"`
}

// AdvancedTuning mirrors motion.Advanced.
type AdvancedTuning struct {
	MinMoveDistance            float32 `yaml:"minMoveDistance"`
	MaxMovementIterations      int     `yaml:"maxMovementIterations"`
	MaxDepenetrationIterations int     `yaml:"maxDepenetrationIterations"`
	EnablePhysicsInteraction   bool    `yaml:"enablePhysicsInteraction"`
	AllowPushCharacters        bool    `yaml:"allowPushCharacters"`
	ImpartPlatformMovement     bool    `yaml:"impartPlatformMovement"`
	ImpartPlatformRotation     bool    `yaml:"impartPlatformRotation"`
	ImpartPlatformVelocity     bool    `yaml:"impartPlatformVelocity"`
}

// LocomotionTuning feeds SimpleMove when the simulator drives an agent.
type LocomotionTuning struct {
	MaxSpeed        float32 `yaml:"maxSpeed"`
	Acceleration    float32 `yaml:"acceleration"`
	Deceleration    float32 `yaml:"deceleration"`
	Friction        float32 `yaml:"friction"`
	BrakingFriction float32 `yaml:"brakingFriction"`
	Gravity         Vec3    `yaml:"gravity"`
	OnlyHorizontal  bool    `yaml:"onlyHorizontal"`
	TurnRate        float32 `yaml:"turnRate"`
}

// DefaultTuning matches the solver defaults.
func DefaultTuning() Tuning {
	adv := motion.DefaultAdvanced()
	return Tuning{
		Radius:                motion.DefaultRadius,
		Height:                motion.DefaultHeight,
		SlopeLimit:            motion.DefaultSlopeLimit,
		StepOffset:            motion.DefaultStepOffset,
		PerchOffset:           motion.DefaultPerchOffset,
		PerchAdditionalHeight: motion.DefaultPerchAdditionalHeight,
		PushForceScale:        motion.DefaultPushForceScale,
		ConstrainToGround:     true,
		DetectCollisions:      true,
		Advanced: AdvancedTuning{
			MinMoveDistance:            adv.MinMoveDistance,
			MaxMovementIterations:      adv.MaxMovementIterations,
			MaxDepenetrationIterations: adv.MaxDepenetrationIterations,
		},
		Locomotion: LocomotionTuning{
			MaxSpeed:       5,
			Acceleration:   20,
			Deceleration:   20,
			Friction:       8,
			Gravity:        Vec3{0, -9.81, 0},
			OnlyHorizontal: true,
			TurnRate:       540,
		},
	}
}

// LoadTuning reads a YAML tuning file. Fields missing from the file keep their defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	return t, nil
}

// Apply configures m. Out of range values are clamped by the solver setters.
func (t Tuning) Apply(m *motion.CharacterMovement) {
	m.SetDimensions(t.Radius, t.Height)
	m.SetSlopeLimit(t.SlopeLimit)
	m.SetStepOffset(t.StepOffset)
	m.SetPerchOffset(t.PerchOffset)
	m.SetPerchAdditionalHeight(t.PerchAdditionalHeight)
	m.SetPushForceScale(t.PushForceScale)
	m.SetConstrainToGround(t.ConstrainToGround)
	m.SetSlopeLimitOverride(t.SlopeLimitOverride)
	m.SetUseFlatTop(t.UseFlatTop)
	m.SetHitTriggers(t.HitTriggers)
	m.SetDetectCollisions(t.DetectCollisions)
	m.FastPlatformMove = t.FastPlatformMove

	m.SetAdvanced(motion.Advanced{
		MinMoveDistance:            t.Advanced.MinMoveDistance,
		MaxMovementIterations:      t.Advanced.MaxMovementIterations,
		MaxDepenetrationIterations: t.Advanced.MaxDepenetrationIterations,
		EnablePhysicsInteraction:   t.Advanced.EnablePhysicsInteraction,
		AllowPushCharacters:        t.Advanced.AllowPushCharacters,
		ImpartPlatformMovement:     t.Advanced.ImpartPlatformMovement,
		ImpartPlatformRotation:     t.Advanced.ImpartPlatformRotation,
		ImpartPlatformVelocity:     t.Advanced.ImpartPlatformVelocity,
	})
}
