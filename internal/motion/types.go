package motion

import (
	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HitLocation classifies a contact against the capsule's up axis.
type HitLocation uint8

const (
	HitNone  HitLocation = 0
	HitSides HitLocation = 1
	HitAbove HitLocation = 2
	HitBelow HitLocation = 4
)

func (h HitLocation) String() string {
	switch h {
	case HitSides:
		return "sides"
	case HitAbove:
		return "above"
	case HitBelow:
		return "below"
	}
	return "none"
}

// CollisionFlags summarizes every hit location touched during a tick.
type CollisionFlags uint8

const (
	CollisionNone  CollisionFlags = 0
	CollisionSides CollisionFlags = CollisionFlags(HitSides)
	CollisionAbove CollisionFlags = CollisionFlags(HitAbove)
	CollisionBelow CollisionFlags = CollisionFlags(HitBelow)
)

// Has reports whether every bit of f is set.
func (c CollisionFlags) Has(f CollisionFlags) bool {
	return c&f == f && f != 0
}

// PlaneConstraint restricts motion to a plane.
type PlaneConstraint int

const (
	ConstrainNone PlaneConstraint = iota
	ConstrainXAxis
	ConstrainYAxis
	ConstrainZAxis
	ConstrainCustom
)

// ForceMode selects how AddForce interprets its argument.
type ForceMode int

const (
	// Force is divided by mass and integrated over the tick.
	Force ForceMode = iota
	// Acceleration is integrated over the tick, ignoring mass.
	Acceleration
	// Impulse is divided by mass and applied at once.
	Impulse
	// VelocityChange is applied at once, ignoring mass.
	VelocityChange
)

type depenetrationBehaviour uint8

const (
	ignoreNone      depenetrationBehaviour = 0
	ignoreStatic    depenetrationBehaviour = 1 << 0
	ignoreDynamic   depenetrationBehaviour = 1 << 1
	ignoreKinematic depenetrationBehaviour = 1 << 2
)

// GroundResult is the support found below the capsule.
type GroundResult struct {
	HitGround  bool
	IsWalkable bool

	// Position is the capsule pose the result was computed for, adjusted to the contact for sweeps.
	Position      rl.Vector3
	Point         rl.Vector3
	Normal        rl.Vector3
	SurfaceNormal rl.Vector3
	Collider      *physics.Collider

	GroundDistance  float32
	IsRaycastResult bool
	RaycastDistance float32
	// HitDistance is the raw distance of the sweep that produced the result.
	HitDistance float32
}

// IsWalkableGround reports whether the result hit ground that can be stood on.
func (g GroundResult) IsWalkableGround() bool {
	return g.HitGround && g.IsWalkable
}

// DistanceToGround returns the raycast distance for raycast results and the sweep distance otherwise.
func (g GroundResult) DistanceToGround() float32 {
	if g.IsRaycastResult {
		return g.RaycastDistance
	}
	return g.GroundDistance
}

// Body returns the body carrying the ground collider, if any.
func (g GroundResult) Body() *physics.Body {
	if g.Collider == nil {
		return nil
	}
	return g.Collider.Body
}

func groundFromSweep(hitGround, isWalkable bool, position rl.Vector3, sweepDistance float32, hit physics.Hit, surfaceNormal rl.Vector3) GroundResult {
	return GroundResult{
		HitGround:      hitGround,
		IsWalkable:     isWalkable,
		Position:       position,
		Point:          hit.Point,
		Normal:         hit.Normal,
		SurfaceNormal:  surfaceNormal,
		Collider:       hit.Collider,
		GroundDistance: sweepDistance,
		HitDistance:    hit.Distance,
	}
}

func groundFromContact(position rl.Vector3, c CollisionResult, sweepDistance float32) GroundResult {
	return GroundResult{
		HitGround:      true,
		Position:       position,
		Point:          c.Point,
		Normal:         c.Normal,
		SurfaceNormal:  c.SurfaceNormal,
		Collider:       c.Collider,
		GroundDistance: sweepDistance,
		HitDistance:    sweepDistance,
	}
}

// withRaycast returns g replaced by a raycast result. The previous sweep distance is kept.
func (g GroundResult) withRaycast(hitGround, isWalkable bool, position rl.Vector3, sweepDistance, castDistance float32, hit physics.Hit) GroundResult {
	return GroundResult{
		HitGround:       hitGround,
		IsWalkable:      isWalkable,
		Position:        position,
		Point:           hit.Point,
		Normal:          hit.Normal,
		SurfaceNormal:   hit.Normal,
		Collider:        hit.Collider,
		GroundDistance:  sweepDistance,
		IsRaycastResult: true,
		RaycastDistance: castDistance,
		HitDistance:     g.HitDistance,
	}
}

// CollisionResult describes one contact made during a tick.
type CollisionResult struct {
	StartPenetrating bool
	HitLocation      HitLocation
	IsWalkable       bool

	Position      rl.Vector3
	Velocity      rl.Vector3
	OtherVelocity rl.Vector3

	Point         rl.Vector3
	Normal        rl.Vector3
	SurfaceNormal rl.Vector3

	DisplacementToHit     rl.Vector3
	RemainingDisplacement rl.Vector3

	Collider    *physics.Collider
	HitDistance float32
}

// Body returns the body carrying the collider hit, if any.
func (c CollisionResult) Body() *physics.Body {
	if c.Collider == nil {
		return nil
	}
	return c.Collider.Body
}

// MovingPlatform tracks the body supporting the agent.
type MovingPlatform struct {
	LastPlatform *physics.Body
	Platform     *physics.Body

	Position      rl.Vector3
	LocalPosition rl.Vector3
	DeltaPosition rl.Vector3

	Rotation      rl.Quaternion
	LocalRotation rl.Quaternion
	DeltaRotation rl.Quaternion

	PlatformVelocity rl.Vector3
}

// SweepState is the outcome class of a sweep.
type SweepState uint8

const (
	SweepClear SweepState = iota
	SweepBlocked
	SweepPenetrating
)

func (s SweepState) String() string {
	switch s {
	case SweepClear:
		return "clear"
	case SweepBlocked:
		return "blocked"
	case SweepPenetrating:
		return "penetrating"
	}
	return "unknown"
}

// SweepOutcome is the result of sweeping the capsule.
// Hit is valid when HasHit is set; a penetrating sweep may or may not carry one.
type SweepOutcome struct {
	State  SweepState
	Hit    physics.Hit
	HasHit bool

	// Recovery for penetrating sweeps, when the overlap could be measured.
	RecoverDirection rl.Vector3
	RecoverDistance  float32
}

// Clear reports whether the sweep found nothing.
func (o SweepOutcome) Clear() bool {
	return o.State == SweepClear
}

// Penetrating reports whether the sweep started inside geometry.
func (o SweepOutcome) Penetrating() bool {
	return o.State == SweepPenetrating
}
