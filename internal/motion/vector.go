package motion

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// epsilon is the smallest positive float32
const epsilon = 1.401298e-45

var (
	worldUp      = rl.Vector3{Y: 1}
	worldRight   = rl.Vector3{X: 1}
	worldForward = rl.Vector3{Z: 1}
)

func add(a, b rl.Vector3) rl.Vector3           { return rl.Vector3Add(a, b) }
func sub(a, b rl.Vector3) rl.Vector3           { return rl.Vector3Subtract(a, b) }
func scale(v rl.Vector3, s float32) rl.Vector3 { return rl.Vector3Scale(v, s) }
func dot(a, b rl.Vector3) float32              { return rl.Vector3DotProduct(a, b) }
func neg(v rl.Vector3) rl.Vector3              { return rl.Vector3Negate(v) }
func sqrMag(v rl.Vector3) float32              { return rl.Vector3DotProduct(v, v) }
func mag(v rl.Vector3) float32                 { return rl.Vector3Length(v) }

func rotate(v rl.Vector3, q rl.Quaternion) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(v, q)
}

// normalized returns v scaled to unit length, or zero when v is too short to have a direction.
func normalized(v rl.Vector3) rl.Vector3 {
	m := mag(v)
	if m > 1e-5 {
		return scale(v, 1/m)
	}
	return rl.Vector3{}
}

func isZero(v rl.Vector3) bool {
	return sqrMag(v) < 9.99999943962493e-11
}

// isExceeding reports whether v is longer than magnitude, with a 1% tolerance.
func isExceeding(v rl.Vector3, magnitude float32) bool {
	const errorTolerance = 1.01
	sq := sqrMag(v)
	return sq > 0 && sq > magnitude*magnitude*errorTolerance
}

func clampedTo(v rl.Vector3, maxLength float32) rl.Vector3 {
	sq := sqrMag(v)
	if sq > maxLength*maxLength {
		return scale(v, maxLength/math32.Sqrt(sq))
	}
	return v
}

func projectOnPlane(v, planeNormal rl.Vector3) rl.Vector3 {
	sq := sqrMag(planeNormal)
	if sq < epsilon {
		return v
	}
	return sub(v, scale(planeNormal, dot(v, planeNormal)/sq))
}

func projectOn(v, onNormal rl.Vector3) rl.Vector3 {
	sq := sqrMag(onNormal)
	if sq < epsilon {
		return rl.Vector3{}
	}
	return scale(onNormal, dot(v, onNormal)/sq)
}

// perpendicularTo returns the unit vector perpendicular to both a and b.
func perpendicularTo(a, b rl.Vector3) rl.Vector3 {
	return normalized(rl.Vector3CrossProduct(a, b))
}

// tangentTo returns v re-oriented along the surface with the given normal, keeping its length.
func tangentTo(v, normal, up rl.Vector3) rl.Vector3 {
	right := perpendicularTo(v, up)
	tangent := perpendicularTo(normal, right)
	return scale(tangent, mag(v))
}

// keepMagnitudeOnPlane flattens v onto the plane of up while preserving its length.
func keepMagnitudeOnPlane(v, up rl.Vector3) rl.Vector3 {
	return scale(normalized(projectOnPlane(v, up)), mag(v))
}

func isFinite(v rl.Vector3) bool {
	return !math32.IsNaN(v.X) && !math32.IsNaN(v.Y) && !math32.IsNaN(v.Z) &&
		!math32.IsInf(v.X, 0) && !math32.IsInf(v.Y, 0) && !math32.IsInf(v.Z, 0)
}

func component(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func axisVector(axis int, sign float32) rl.Vector3 {
	switch axis {
	case 0:
		return rl.Vector3{X: sign}
	case 1:
		return rl.Vector3{Y: sign}
	}
	return rl.Vector3{Z: sign}
}

func clamp01(x float32) float32 {
	return math32.Max(0, math32.Min(1, x))
}

// lookRotation returns the rotation whose local +Z faces forward and local +Y leans toward up.
func lookRotation(forward, up rl.Vector3) rl.Quaternion {
	f := normalized(forward)
	if isZero(f) {
		return rl.QuaternionIdentity()
	}
	r := normalized(rl.Vector3CrossProduct(up, f))
	if isZero(r) {
		// forward parallel to up: pick any right axis
		r = normalized(rl.Vector3CrossProduct(worldForward, f))
		if isZero(r) {
			r = worldRight
		}
	}
	u := rl.Vector3CrossProduct(f, r)

	m00, m01, m02 := r.X, u.X, f.X
	m10, m11, m12 := r.Y, u.Y, f.Y
	m20, m21, m22 := r.Z, u.Z, f.Z

	var q rl.Quaternion
	if trace := m00 + m11 + m22; trace > 0 {
		s := math32.Sqrt(trace+1) * 2
		q = rl.Quaternion{W: 0.25 * s, X: (m21 - m12) / s, Y: (m02 - m20) / s, Z: (m10 - m01) / s}
	} else if m00 > m11 && m00 > m22 {
		s := math32.Sqrt(1+m00-m11-m22) * 2
		q = rl.Quaternion{W: (m21 - m12) / s, X: 0.25 * s, Y: (m01 + m10) / s, Z: (m02 + m20) / s}
	} else if m11 > m22 {
		s := math32.Sqrt(1+m11-m00-m22) * 2
		q = rl.Quaternion{W: (m02 - m20) / s, X: (m01 + m10) / s, Y: 0.25 * s, Z: (m12 + m21) / s}
	} else {
		s := math32.Sqrt(1+m22-m00-m11) * 2
		q = rl.Quaternion{W: (m10 - m01) / s, X: (m02 + m20) / s, Y: (m12 + m21) / s, Z: 0.25 * s}
	}
	return rl.QuaternionNormalize(q)
}

// rotateTowards turns from toward to by at most maxDegrees.
func rotateTowards(from, to rl.Quaternion, maxDegrees float32) rl.Quaternion {
	d := math32.Abs(from.X*to.X + from.Y*to.Y + from.Z*to.Z + from.W*to.W)
	angle := math32.Acos(math32.Min(d, 1)) * 2 * rl.Rad2deg
	if angle == 0 {
		return to
	}
	return rl.QuaternionSlerp(from, to, math32.Min(1, maxDegrees/angle))
}
