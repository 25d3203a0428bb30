package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// SlopeBehaviour selects how a surface overrides the walkable slope limit.
type SlopeBehaviour int

const (
	SlopeDefault SlopeBehaviour = iota
	SlopeWalkable
	SlopeNotWalkable
	SlopeOverride
)

// SlopeLimitOverride is a per-surface walkable slope policy.
type SlopeLimitOverride struct {
	Behaviour SlopeBehaviour
	Limit     float32 // degrees, used with SlopeOverride
}

// WalkableCos returns the cosine threshold for Limit.
func (o SlopeLimitOverride) WalkableCos() float32 {
	limit := clamp(o.Limit, 0, 89)
	return math32.Cos((limit + 0.01) * rl.Deg2rad)
}

// AllLayers matches every collider layer.
const AllLayers uint32 = 0xFFFFFFFF

// Collider is a shape placed in the scene. A collider without a body is static.
type Collider struct {
	Name      string
	Tags      []string
	Shape     Shape
	Offset    rl.Vector3    // relative to Body when attached, world position otherwise
	Rotation  rl.Quaternion // relative to Body when attached, world rotation otherwise
	Layer     uint8         // 0-31
	IsTrigger bool
	Disabled  bool // hidden from every query
	Body      *Body

	SlopeOverride SlopeLimitOverride

	world *World
	mark  uint32
	cells []CellKey
	large bool
}

// NewCollider creates a static collider at a world position.
func NewCollider(name string, shape Shape, position rl.Vector3) *Collider {
	return &Collider{
		Name:     name,
		Shape:    shape,
		Offset:   position,
		Rotation: rl.QuaternionIdentity(),
	}
}

// Attach binds the collider to a body; Offset and Rotation become body-local.
func (c *Collider) Attach(b *Body) {
	if c.Body != nil {
		c.Detach()
	}
	c.Body = b
	b.colliders = append(b.colliders, c)
}

// Detach removes the collider from its body, keeping its current world pose.
func (c *Collider) Detach() {
	b := c.Body
	if b == nil {
		return
	}
	c.Offset, c.Rotation = c.Pose()
	for i, other := range b.colliders {
		if other == c {
			b.colliders = append(b.colliders[:i], b.colliders[i+1:]...)
			break
		}
	}
	c.Body = nil
}

// HasTag reports whether the collider carries tag.
func (c *Collider) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// InMask reports whether the collider's layer is selected by mask.
func (c *Collider) InMask(mask uint32) bool {
	return mask&(1<<(c.Layer&31)) != 0
}

// IsStatic reports whether the collider has no body.
func (c *Collider) IsStatic() bool {
	return c.Body == nil
}

// Pose returns the collider's world position and rotation.
func (c *Collider) Pose() (rl.Vector3, rl.Quaternion) {
	if c.Body == nil {
		return c.Offset, c.Rotation
	}
	return c.Body.TransformPoint(c.Offset), rl.QuaternionMultiply(c.Body.Rotation, c.Rotation)
}

// ToLocal expresses a world point in the collider's frame.
func (c *Collider) ToLocal(p rl.Vector3) rl.Vector3 {
	pos, rot := c.Pose()
	return rl.Vector3RotateByQuaternion(rl.Vector3Subtract(p, pos), rl.QuaternionInvert(rot))
}

// ToWorldDir rotates a local direction into world space.
func (c *Collider) ToWorldDir(d rl.Vector3) rl.Vector3 {
	_, rot := c.Pose()
	return rl.Vector3RotateByQuaternion(d, rot)
}

// SignedDistance returns the world-space signed distance to the surface and the outward normal.
func (c *Collider) SignedDistance(p rl.Vector3) (float32, rl.Vector3) {
	pos, rot := c.Pose()
	local := rl.Vector3RotateByQuaternion(rl.Vector3Subtract(p, pos), rl.QuaternionInvert(rot))
	d, n := c.Shape.SignedDistance(local)
	return d, rl.Vector3RotateByQuaternion(n, rot)
}

// OBB returns the collider's oriented bounding box.
func (c *Collider) OBB() OBB {
	pos, rot := c.Pose()
	return NewOBB(pos, c.Shape.HalfExtents(), rot)
}

// Bounds returns the world-space AABB of the collider.
func (c *Collider) Bounds() AABB {
	return c.OBB().Bounds()
}
