package camera

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Input is one frame of camera controls.
type Input struct {
	MouseDelta rl.Vector2
	Wheel      float32
	Orbiting   bool // mouse look is active, e.g. right button held
}

// ReadInput samples the raylib mouse state.
func ReadInput() Input {
	return Input{
		MouseDelta: rl.GetMouseDelta(),
		Wheel:      rl.GetMouseWheelMove(),
		Orbiting:   rl.IsMouseButtonDown(rl.MouseRightButton),
	}
}

// FollowCamera orbits a target point, easing toward it every frame.
type FollowCamera struct {
	Target    rl.Vector3
	Yaw       float32 // degrees around +Y
	Pitch     float32 // degrees above the horizon
	Distance  float32
	LookSpeed float32
	ZoomSpeed float32
	Smoothing float32 // per second; zero snaps to the target

	MinDistance float32
	MaxDistance float32
	Fovy        float32
}

func New(target rl.Vector3) *FollowCamera {
	return &FollowCamera{
		Target:      target,
		Yaw:         -135.0,
		Pitch:       30.0,
		Distance:    10.0,
		LookSpeed:   0.2,
		ZoomSpeed:   1.0,
		Smoothing:   8.0,
		MinDistance: 2.0,
		MaxDistance: 80.0,
		Fovy:        45,
	}
}

// Update applies input and eases the orbit center toward follow.
func (c *FollowCamera) Update(in Input, follow rl.Vector3, deltaTime float32) {
	if in.Orbiting {
		c.Yaw += in.MouseDelta.X * c.LookSpeed
		c.Pitch += in.MouseDelta.Y * c.LookSpeed
	}
	// Clamp pitch
	c.Pitch = math32.Max(-10, math32.Min(89, c.Pitch))

	c.Distance -= in.Wheel * c.ZoomSpeed
	c.Distance = math32.Max(c.MinDistance, math32.Min(c.MaxDistance, c.Distance))

	t := float32(1)
	if c.Smoothing > 0 {
		t = math32.Min(1, c.Smoothing*deltaTime)
	}
	c.Target = rl.Vector3Lerp(c.Target, follow, t)
}

// Position returns the eye position on the orbit sphere.
func (c *FollowCamera) Position() rl.Vector3 {
	yaw := c.Yaw * rl.Deg2rad
	pitch := c.Pitch * rl.Deg2rad
	offset := rl.Vector3{
		X: math32.Cos(yaw) * math32.Cos(pitch),
		Y: math32.Sin(pitch),
		Z: math32.Sin(yaw) * math32.Cos(pitch),
	}
	return rl.Vector3Add(c.Target, rl.Vector3Scale(offset, c.Distance))
}

func (c *FollowCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position(),
		Target:     c.Target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}
