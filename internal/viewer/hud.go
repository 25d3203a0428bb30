package viewer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	colorBgDark        = rl.NewColor(24, 24, 32, 230)
	colorBgElement     = rl.NewColor(38, 38, 50, 255)
	colorBgHover       = rl.NewColor(50, 50, 68, 255)
	colorAccent        = rl.NewColor(108, 99, 255, 255)
	colorTextPrimary   = rl.NewColor(240, 240, 245, 255)
	colorTextSecondary = rl.NewColor(160, 160, 175, 255)
)

// initStyle sets up the dark raygui theme
func initStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

const (
	panelX     = 10
	panelWidth = 260
	rowHeight  = 22
)

func (v *Viewer) drawHUD() {
	y := float32(10)
	rl.DrawRectangle(panelX-5, int32(y)-5, panelWidth+10, 430, colorBgDark)

	row := func() rl.Rectangle {
		r := rl.Rectangle{X: panelX + 90, Y: y, Width: panelWidth - 100, Height: rowHeight - 4}
		y += rowHeight
		return r
	}
	label := func(text string, color rl.Color) {
		rl.DrawText(text, panelX, int32(y)+3, 15, color)
	}

	label("Paused", colorTextSecondary)
	v.Sim.Paused = gui.CheckBox(rl.Rectangle{X: panelX + 90, Y: y + 2, Width: 14, Height: 14}, "", v.Sim.Paused)
	y += rowHeight

	label("Time scale", colorTextSecondary)
	v.Sim.TimeScale = gui.Slider(row(), "", fmt.Sprintf("%.2f", v.Sim.TimeScale), v.Sim.TimeScale, 0.05, 2)

	label("Contacts", colorTextSecondary)
	v.showContacts = gui.CheckBox(rl.Rectangle{X: panelX + 90, Y: y + 2, Width: 14, Height: 14}, "", v.showContacts)
	y += rowHeight

	label("Ground", colorTextSecondary)
	v.showGround = gui.CheckBox(rl.Rectangle{X: panelX + 90, Y: y + 2, Width: 14, Height: 14}, "", v.showGround)
	y += rowHeight

	if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: rowHeight - 2}, "Step") {
		v.stepOnce = true
		v.Sim.Paused = true
	}
	if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: rowHeight - 2}, "Next agent") {
		v.selected++
	}
	y += rowHeight + 6

	text := func(format string, args ...any) {
		rl.DrawText(fmt.Sprintf(format, args...), panelX, int32(y), 15, colorTextPrimary)
		y += 18
	}

	text("Tick %d  t=%.2fs", v.Sim.Tick, v.Sim.Time)
	text("Update %.2f ms  Draw %.2f ms", v.updateMs, v.drawMs)
	text("Colliders %d drawn, %d culled", v.drawn, v.culled)
	rl.DrawFPS(panelX, int32(y))
	y += 24

	a := v.selectedAgent()
	if a == nil {
		return
	}
	m := a.Movement
	p := m.Position()
	g := m.CurrentGround()
	ground := "none"
	if c := m.GroundCollider(); c != nil {
		ground = c.Name
	}

	text("Agent %s (%d/%d)", a.Name, v.selected%len(v.Sim.Agents)+1, len(v.Sim.Agents))
	text("Pos %.2f %.2f %.2f", p.X, p.Y, p.Z)
	text("Speed %.2f  fwd %.2f  side %.2f", m.Speed(), m.ForwardSpeed(), m.SidewaysSpeed())
	text("Grounded %v  walkable %v", m.IsGrounded(), g.IsWalkable)
	text("Ground %s  d=%.4f", ground, g.GroundDistance)
	text("Flags %08b  hits %d", m.CollisionFlags(), m.CollisionCount())
	if pl := m.MovingPlatform().Platform; pl != nil {
		text("Platform %s", pl.Name)
	}
	text("Landings %d  collisions %d", a.Landings, a.Collisions)
}
