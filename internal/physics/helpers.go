package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	worldUp    = rl.Vector3{X: 0, Y: 1, Z: 0}
	worldRight = rl.Vector3{X: 1, Y: 0, Z: 0}
)

// cross computes the cross product of two vectors
func cross(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// clamp restricts a value to a range
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// unit returns v normalized, or fallback when v is too short to carry a direction.
func unit(v, fallback rl.Vector3) rl.Vector3 {
	l := rl.Vector3Length(v)
	if l < 1e-6 {
		return fallback
	}
	return rl.Vector3Scale(v, 1/l)
}

func isFinite(v rl.Vector3) bool {
	return !math32.IsNaN(v.X) && !math32.IsNaN(v.Y) && !math32.IsNaN(v.Z) &&
		!math32.IsInf(v.X, 0) && !math32.IsInf(v.Y, 0) && !math32.IsInf(v.Z, 0)
}

// closestPointOnSegment returns the point on segment ab closest to p.
func closestPointOnSegment(p, a, b rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	denom := rl.Vector3DotProduct(ab, ab)
	if denom < 1e-12 {
		return a
	}
	t := clamp(rl.Vector3DotProduct(rl.Vector3Subtract(p, a), ab)/denom, 0, 1)
	return rl.Vector3Add(a, rl.Vector3Scale(ab, t))
}

// Golden-section search parameters. Every function minimized here is convex on its interval.
const (
	goldenRatio      = 0.6180339887
	goldenIterations = 32
)

// minimizeConvex returns the argument in [lo, hi] that minimizes f, and f at that point.
func minimizeConvex(lo, hi float32, f func(float32) float32) (float32, float32) {
	a, b := lo, hi
	c := b - goldenRatio*(b-a)
	d := a + goldenRatio*(b-a)
	fc, fd := f(c), f(d)
	for i := 0; i < goldenIterations && b-a > 1e-7; i++ {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - goldenRatio*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + goldenRatio*(b-a)
			fd = f(d)
		}
	}

	best, fbest := (a+b)*0.5, f((a+b)*0.5)
	// Endpoints win on plateaus and monotone segments
	if flo := f(lo); flo <= fbest {
		best, fbest = lo, flo
	}
	if fhi := f(hi); fhi < fbest {
		best, fbest = hi, fhi
	}
	return best, fbest
}

// EulerToQuaternion converts euler angles in degrees to a quaternion.
func EulerToQuaternion(rotation rl.Vector3) rl.Quaternion {
	return rl.QuaternionFromEuler(rotation.X*rl.Deg2rad, rotation.Y*rl.Deg2rad, rotation.Z*rl.Deg2rad)
}

// integrateRotation advances q by an angular velocity given in degrees per second.
func integrateRotation(q rl.Quaternion, angularVelocity rl.Vector3, deltaTime float32) rl.Quaternion {
	angle := rl.Vector3Length(angularVelocity) * deltaTime * rl.Deg2rad
	if angle < 1e-7 {
		return q
	}
	axis := rl.Vector3Normalize(angularVelocity)
	delta := rl.QuaternionFromAxisAngle(axis, angle)
	return rl.QuaternionNormalize(rl.QuaternionMultiply(delta, q))
}
