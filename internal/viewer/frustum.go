package viewer

import (
	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Clip distances used for culling
const (
	cullNear float32 = 0.1
	cullFar  float32 = 1000.0
)

// Frustum represents the 6 planes of a view frustum for culling
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane represents a plane in 3D space (ax + by + cz + d = 0)
type Plane struct {
	normal   rl.Vector3
	distance float32
}

// ExtractFrustum extracts frustum planes from the camera view-projection matrix
// using the Gribb/Hartmann method.
func ExtractFrustum(camera rl.Camera3D, aspect float32) Frustum {
	view := rl.MatrixLookAt(camera.Position, camera.Target, camera.Up)

	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, cullNear, cullFar)
	} else {
		halfH := camera.Fovy / 2.0
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, cullNear, cullFar)
	}

	// VP = P * V
	vp := rl.MatrixMultiply(view, proj)

	row := func(i int) (rl.Vector3, float32) {
		switch i {
		case 0:
			return rl.Vector3{X: vp.M0, Y: vp.M4, Z: vp.M8}, vp.M12
		case 1:
			return rl.Vector3{X: vp.M1, Y: vp.M5, Z: vp.M9}, vp.M13
		case 2:
			return rl.Vector3{X: vp.M2, Y: vp.M6, Z: vp.M10}, vp.M14
		}
		return rl.Vector3{X: vp.M3, Y: vp.M7, Z: vp.M11}, vp.M15
	}

	w, wd := row(3)
	var f Frustum
	for i := 0; i < 3; i++ {
		n, d := row(i)
		// row4 + row(i), then row4 - row(i)
		f.planes[2*i] = normalizePlane(Plane{normal: rl.Vector3Add(w, n), distance: wd + d})
		f.planes[2*i+1] = normalizePlane(Plane{normal: rl.Vector3Subtract(w, n), distance: wd - d})
	}
	return f
}

// normalizePlane normalizes a plane equation
func normalizePlane(p Plane) Plane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return Plane{
		normal:   rl.Vector3Scale(p.normal, 1.0/length),
		distance: p.distance / length,
	}
}

// ContainsSphere tests if a sphere is inside or intersects the frustum
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for i := 0; i < 6; i++ {
		dist := rl.Vector3DotProduct(f.planes[i].normal, center) + f.planes[i].distance
		if dist < -radius {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum
func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	for i := 0; i < 6; i++ {
		dist := rl.Vector3DotProduct(f.planes[i].normal, point) + f.planes[i].distance
		if dist < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB tests the box corner furthest along each plane normal.
func (f *Frustum) ContainsAABB(b physics.AABB) bool {
	for i := 0; i < 6; i++ {
		n := f.planes[i].normal
		p := b.Min
		if n.X >= 0 {
			p.X = b.Max.X
		}
		if n.Y >= 0 {
			p.Y = b.Max.Y
		}
		if n.Z >= 0 {
			p.Z = b.Max.Z
		}
		if rl.Vector3DotProduct(n, p)+f.planes[i].distance < 0 {
			return false
		}
	}
	return true
}
