package viewer

import (
	"time"

	"capsulekin/internal/camera"
	"capsulekin/internal/config"
	"capsulekin/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

// maxStepsPerFrame bounds catch-up after a long frame.
const maxStepsPerFrame = 8

// Viewer draws a running simulation in a raylib window.
type Viewer struct {
	Sim    *world.Simulation
	Camera *camera.FollowCamera
	Config config.Config
	Logger zerolog.Logger

	selected     int
	showContacts bool
	showGround   bool
	stepOnce     bool
	accumulator  float32

	updateMs float64
	drawMs   float64
	drawn    int
	culled   int
}

func New(sim *world.Simulation, cfg config.Config, logger zerolog.Logger) *Viewer {
	v := &Viewer{
		Sim:          sim,
		Camera:       camera.New(rl.Vector3{}),
		Config:       cfg,
		Logger:       logger,
		showContacts: true,
		showGround:   true,
	}
	if a := v.selectedAgent(); a != nil {
		v.Camera.Target = a.Movement.WorldCenter()
	}
	return v
}

func (v *Viewer) selectedAgent() *world.Agent {
	if len(v.Sim.Agents) == 0 {
		return nil
	}
	return v.Sim.Agents[v.selected%len(v.Sim.Agents)]
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(v.Config.Viewer.Width), int32(v.Config.Viewer.Height), v.Config.Viewer.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(120)
	initStyle()

	v.Logger.Info().
		Int("agents", len(v.Sim.Agents)).
		Int("tickRate", v.Config.TickRate).
		Msg("viewer: window opened")

	for !rl.WindowShouldClose() {
		v.Update(rl.GetFrameTime())
		v.Draw()
	}
}

// Update runs as many fixed simulation steps as the frame time covers.
func (v *Viewer) Update(frameTime float32) {
	updateStart := time.Now()
	dt := v.Config.DeltaTime()

	if rl.IsKeyPressed(rl.KeySpace) {
		v.Sim.Paused = !v.Sim.Paused
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.selected++
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		v.showContacts = !v.showContacts
	}
	if rl.IsKeyPressed(rl.KeyDelete) {
		if a := v.selectedAgent(); a != nil {
			v.Sim.Despawn(a)
		}
	}

	switch {
	case v.Sim.Paused && v.stepOnce:
		v.Sim.Paused = false
		v.Sim.Step(dt)
		v.Sim.Paused = true
		v.accumulator = 0
	case v.Sim.Paused:
		v.accumulator = 0
	default:
		v.accumulator += frameTime
		for steps := 0; v.accumulator >= dt && steps < maxStepsPerFrame; steps++ {
			v.Sim.Step(dt)
			v.accumulator -= dt
		}
		if v.accumulator > dt {
			v.accumulator = 0
		}
	}
	v.stepOnce = false

	follow := v.Camera.Target
	if a := v.selectedAgent(); a != nil {
		follow = a.Movement.WorldCenter()
	}
	v.Camera.Update(camera.ReadInput(), follow, frameTime)

	v.updateMs = float64(time.Since(updateStart).Microseconds()) / 1000.0
}

func (v *Viewer) Draw() {
	cam := v.Camera.GetRaylibCamera()

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	drawStart := time.Now()
	rl.BeginMode3D(cam)
	rl.DrawGrid(40, 1)
	aspect := float32(rl.GetScreenWidth()) / float32(rl.GetScreenHeight())
	frustum := ExtractFrustum(cam, aspect)
	v.drawScene(frustum)
	v.drawAgents(frustum)
	rl.EndMode3D()
	v.drawMs = float64(time.Since(drawStart).Microseconds()) / 1000.0

	v.drawHUD()
	rl.EndDrawing()
}
