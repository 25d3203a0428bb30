package motion

import (
	"context"

	"capsulekin/internal/engine"
	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// CharacterMovement moves one kinematic capsule through a scene, one tick per Move call.
// It owns a kinematic body carrying the capsule collider; register Body() with the scene
// so other agents and dynamic bodies can collide with it.
//
// A CharacterMovement is not safe for concurrent use.
type CharacterMovement struct {
	backend  QueryBackend
	body     *physics.Body
	collider *physics.Collider
	logger   zerolog.Logger
	meter    metric.Meter
	metrics  *metrics
	ctx      context.Context

	tol      Tolerances
	advanced Advanced

	radius              float32
	height              float32
	capsuleCenter       rl.Vector3
	capsuleTopCenter    rl.Vector3
	capsuleBottomCenter rl.Vector3

	planeConstraint       PlaneConstraint
	constraintPlaneNormal rl.Vector3

	slopeLimit            float32
	minSlopeLimit         float32
	stepOffset            float32
	perchOffset           float32
	perchAdditionalHeight float32
	slopeLimitOverride    bool
	useFlatTop            bool
	collisionLayers       uint32
	hitTriggers           bool
	detectCollisions      bool
	pushForceScale        float32

	// FastPlatformMove offsets the agent by the platform delta without sweeping.
	FastPlatformMove bool
	// ColliderFilter, when set, hides colliders it returns true for.
	ColliderFilter ColliderFilter
	// Behaviours, when set, overrides walk, perch, step and ride rules per collider.
	Behaviours BehaviourLookup
	// CollisionResponse, when set, can rewrite dynamic collision impulses.
	CollisionResponse CollisionResponseFunc

	// Collided fires once per collision result at the end of Move.
	Collided engine.EventWithArg[CollisionResult]
	// FoundGround fires when the agent reaches walkable ground.
	FoundGround engine.EventWithArg[GroundResult]

	ignoredColliders map[*physics.Collider]struct{}
	ignoredBodies    map[*physics.Body]struct{}

	hits              [MaxHitCount]physics.Hit
	overlaps          [MaxOverlapCount]*physics.Collider
	collisions        [MaxCollisionCount]CollisionResult
	collisionCount    int
	droppedCollisions int

	isConstrainedToGround bool
	unconstrainedTimer    float32

	// Working pose for the current tick
	updatedPosition      rl.Vector3
	updatedRotation      rl.Quaternion
	characterUp          rl.Vector3
	transformedCenter    rl.Vector3
	transformedTopCenter rl.Vector3
	transformedBotCenter rl.Vector3
	collisionFlags       CollisionFlags

	velocity              rl.Vector3
	pendingForces         rl.Vector3
	pendingImpulses       rl.Vector3
	pendingLaunchVelocity rl.Vector3

	hasLanded           bool
	foundGround         GroundResult
	currentGround       GroundResult
	landedVelocity      rl.Vector3
	wasOnGround         bool
	wasOnWalkableGround bool
	wasGrounded         bool

	parentPlatform *physics.Body
	movingPlatform MovingPlatform
}

// Option configures a CharacterMovement.
type Option func(*CharacterMovement)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *CharacterMovement) {
		m.logger = logger
	}
}

// WithMeter sets the meter the solver counters are created from.
func WithMeter(meter metric.Meter) Option {
	return func(m *CharacterMovement) {
		m.meter = meter
	}
}

// WithName names the agent body and collider.
func WithName(name string) Option {
	return func(m *CharacterMovement) {
		m.body.Name = name
		m.collider.Name = name
	}
}

// New creates an agent at the origin with default settings.
func New(backend QueryBackend, opts ...Option) *CharacterMovement {
	m := &CharacterMovement{
		backend:          backend,
		body:             physics.NewKinematicBody("character"),
		logger:           zerolog.Nop(),
		ctx:              context.Background(),
		ignoredColliders: make(map[*physics.Collider]struct{}),
		ignoredBodies:    make(map[*physics.Body]struct{}),
		updatedRotation:  rl.QuaternionIdentity(),
	}
	m.body.Agent = m
	m.collider = physics.NewCollider("character", physics.Capsule{}, rl.Vector3{})
	m.collider.Attach(m.body)

	m.Reset()

	for _, opt := range opts {
		opt(m)
	}

	met, err := newMetrics(m.meter)
	if err != nil {
		m.logger.Warn().Err(err).Msg("motion: metrics disabled")
		met = noopMetrics()
	}
	m.metrics = met

	m.updateCachedFields()
	return m
}

// Reset restores every setting to its default. Pose and velocity are kept.
func (m *CharacterMovement) Reset() {
	m.tol = DefaultTolerances()
	m.SetDimensions(DefaultRadius, DefaultHeight)
	m.SetPlaneConstraint(ConstrainNone, rl.Vector3{})

	m.SetSlopeLimit(DefaultSlopeLimit)
	m.SetStepOffset(DefaultStepOffset)
	m.SetPerchOffset(DefaultPerchOffset)
	m.SetPerchAdditionalHeight(DefaultPerchAdditionalHeight)

	m.slopeLimitOverride = false
	m.useFlatTop = false
	m.collisionLayers = physics.AllLayers
	m.hitTriggers = false
	m.SetDetectCollisions(true)

	m.advanced = DefaultAdvanced()
	m.isConstrainedToGround = true
	m.pushForceScale = DefaultPushForceScale
}

// makeCapsule returns the capsule center and sphere centers in local space, up along +Y.
func makeCapsule(radius, height float32) (center, bottomCenter, topCenter rl.Vector3) {
	radius = math32.Max(radius, 0)
	height = math32.Max(height, radius*2)

	center = scale(worldUp, height*0.5)
	sideHeight := height - radius*2

	bottomCenter = sub(center, scale(worldUp, sideHeight*0.5))
	topCenter = add(center, scale(worldUp, sideHeight*0.5))
	return center, bottomCenter, topCenter
}

// SetDimensions sets the capsule radius and height. Height is raised to at least twice the radius.
func (m *CharacterMovement) SetDimensions(radius, height float32) {
	m.radius = math32.Max(radius, 0)
	m.height = math32.Max(height, m.radius*2)
	m.rebuildCapsule()
	m.SetPerchOffset(m.perchOffset)
}

// SetHeight changes the capsule height, keeping the radius.
func (m *CharacterMovement) SetHeight(height float32) {
	m.height = math32.Max(height, m.radius*2)
	m.rebuildCapsule()
}

func (m *CharacterMovement) rebuildCapsule() {
	m.capsuleCenter, m.capsuleBottomCenter, m.capsuleTopCenter = makeCapsule(m.radius, m.height)

	m.collider.Shape = physics.Capsule{Radius: m.radius, Height: m.height}
	m.collider.Offset = m.capsuleCenter

	m.refreshCapsuleFrame()
}

// refreshCapsuleFrame re-derives the world up axis and capsule offsets from the working rotation.
func (m *CharacterMovement) refreshCapsuleFrame() {
	m.characterUp = rotate(worldUp, m.updatedRotation)
	m.transformedCenter = rotate(m.capsuleCenter, m.updatedRotation)
	m.transformedTopCenter = rotate(m.capsuleTopCenter, m.updatedRotation)
	m.transformedBotCenter = rotate(m.capsuleBottomCenter, m.updatedRotation)
}

// updateCachedFields starts a tick from the committed pose.
func (m *CharacterMovement) updateCachedFields() {
	m.hasLanded = false
	m.foundGround = GroundResult{}

	m.updatedPosition = m.body.Position
	m.updatedRotation = m.body.Rotation
	m.refreshCapsuleFrame()

	m.collisionFlags = CollisionNone
}

// SetPlaneConstraint locks motion along an axis. normal is used only with ConstrainCustom.
func (m *CharacterMovement) SetPlaneConstraint(constraint PlaneConstraint, normal rl.Vector3) {
	m.planeConstraint = constraint
	switch constraint {
	case ConstrainXAxis:
		m.constraintPlaneNormal = worldRight
	case ConstrainYAxis:
		m.constraintPlaneNormal = worldUp
	case ConstrainZAxis:
		m.constraintPlaneNormal = worldForward
	case ConstrainCustom:
		m.constraintPlaneNormal = normal
	default:
		m.planeConstraint = ConstrainNone
		m.constraintPlaneNormal = rl.Vector3{}
	}
}

// PlaneConstraint returns the active constraint.
func (m *CharacterMovement) PlaneConstraint() PlaneConstraint {
	return m.planeConstraint
}

// PlaneConstraintNormal returns the constraint plane normal, zero when unconstrained.
func (m *CharacterMovement) PlaneConstraintNormal() rl.Vector3 {
	return m.constraintPlaneNormal
}

func (m *CharacterMovement) IsConstrainedToPlane() bool {
	return m.planeConstraint != ConstrainNone
}

// ConstrainVectorToPlane removes the component of v along the constraint normal.
func (m *CharacterMovement) ConstrainVectorToPlane(v rl.Vector3) rl.Vector3 {
	if !m.IsConstrainedToPlane() {
		return v
	}
	return projectOnPlane(v, m.constraintPlaneNormal)
}

// ConstrainDirectionToPlane constrains a direction and renormalizes it.
func (m *CharacterMovement) ConstrainDirectionToPlane(direction rl.Vector3) rl.Vector3 {
	return normalized(m.ConstrainVectorToPlane(direction))
}
