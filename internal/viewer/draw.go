package viewer

import (
	"capsulekin/internal/motion"
	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	colorGrounded   = rl.NewColor(108, 99, 255, 255)
	colorAirborne   = rl.Orange
	colorSelected   = rl.Gold
	colorContact    = rl.Red
	colorGroundHint = rl.Lime
)

func (v *Viewer) drawScene(frustum Frustum) {
	v.drawn, v.culled = 0, 0
	for _, c := range v.Sim.Scene.World.Colliders() {
		if c.Body != nil && c.Body.Agent != nil {
			continue
		}
		if !frustum.ContainsAABB(c.Bounds()) {
			v.culled++
			continue
		}
		v.drawn++
		color := v.Sim.Scene.Color(c)
		if c.IsTrigger {
			color = rl.Fade(color, 0.3)
		}
		drawCollider(c, color)
	}
}

// drawCollider draws c at its world pose.
func drawCollider(c *physics.Collider, color rl.Color) {
	pos, rot := c.Pose()

	rl.PushMatrix()
	rl.Translatef(pos.X, pos.Y, pos.Z)
	if axis, angle := axisAngle(rot); angle != 0 {
		rl.Rotatef(angle, axis.X, axis.Y, axis.Z)
	}

	switch shape := c.Shape.(type) {
	case physics.Box:
		size := rl.Vector3Scale(shape.Half, 2)
		rl.DrawCubeV(rl.Vector3{}, size, color)
		rl.DrawCubeWiresV(rl.Vector3{}, size, rl.Fade(rl.Black, 0.4))
	case physics.Sphere:
		rl.DrawSphere(rl.Vector3{}, shape.Radius, color)
	case physics.Capsule:
		a, b := shape.Segment()
		rl.DrawCapsule(a, b, shape.Radius, 12, 6, color)
	}

	rl.PopMatrix()
}

// axisAngle converts q to an axis and an angle in degrees.
func axisAngle(q rl.Quaternion) (rl.Vector3, float32) {
	q = rl.QuaternionNormalize(q)
	s := math32.Sqrt(math32.Max(0, 1-q.W*q.W))
	if s < 1e-6 {
		return rl.Vector3{Y: 1}, 0
	}
	angle := 2 * math32.Acos(math32.Max(-1, math32.Min(1, q.W))) * rl.Rad2deg
	return rl.Vector3{X: q.X / s, Y: q.Y / s, Z: q.Z / s}, angle
}

func (v *Viewer) drawAgents(frustum Frustum) {
	selected := v.selectedAgent()

	for _, a := range v.Sim.Agents {
		m := a.Movement
		size := rl.Vector3{X: 2 * m.Radius(), Y: m.Height(), Z: 2 * m.Radius()}
		if !frustum.ContainsAABB(physics.NewAABBFromCenter(m.WorldCenter(), size)) {
			continue
		}
		up := rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, m.Rotation())
		bottom := rl.Vector3Add(m.Position(), rl.Vector3Scale(up, m.Radius()))
		top := rl.Vector3Add(m.Position(), rl.Vector3Scale(up, m.Height()-m.Radius()))

		color := colorAirborne
		if m.IsGrounded() {
			color = colorGrounded
		}
		rl.DrawCapsule(bottom, top, m.Radius(), 12, 6, color)
		if a == selected {
			rl.DrawCapsuleWires(bottom, top, m.Radius()+0.02, 12, 6, colorSelected)
		}

		// Facing
		forward := rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, m.Rotation())
		center := m.WorldCenter()
		rl.DrawLine3D(center, rl.Vector3Add(center, rl.Vector3Scale(forward, m.Radius()+0.4)), rl.White)

		if v.showGround && m.IsOnGround() {
			drawGround(m)
		}
		if v.showContacts {
			for _, c := range m.CollisionResults() {
				rl.DrawSphere(c.Point, 0.05, colorContact)
				rl.DrawLine3D(c.Point, rl.Vector3Add(c.Point, rl.Vector3Scale(c.Normal, 0.5)), colorContact)
			}
		}
	}
}

func drawGround(m *motion.CharacterMovement) {
	g := m.CurrentGround()
	color := colorGroundHint
	if !g.IsWalkable {
		color = colorAirborne
	}
	rl.DrawSphere(g.Point, 0.04, color)
	rl.DrawLine3D(g.Point, rl.Vector3Add(g.Point, rl.Vector3Scale(g.Normal, 0.6)), color)
}
