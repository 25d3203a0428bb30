package motion

import (
	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// QueryBackend answers the scene queries the solver is built on. *physics.World implements it.
//
// Cast queries fill hits and return the count. Capsule casts report shapes overlapping the capsule
// at the start with StartPenetrating set and a zero distance.
type QueryBackend interface {
	Raycast(origin, direction rl.Vector3, maxDistance float32, mask uint32, hits []physics.Hit) int
	CapsuleCast(p1, p2 rl.Vector3, radius float32, direction rl.Vector3, maxDistance float32, mask uint32, hits []physics.Hit) int
	OverlapCapsule(p1, p2 rl.Vector3, radius float32, mask uint32, out []*physics.Collider) int
	ComputePenetration(p1, p2 rl.Vector3, radius float32, other *physics.Collider) (rl.Vector3, float32, bool)
}

var _ QueryBackend = (*physics.World)(nil)
