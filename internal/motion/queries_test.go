package motion

import (
	"bytes"
	"testing"

	"capsulekin/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slopeNormal(degrees float32) rl.Vector3 {
	return rl.Vector3{X: -math32.Sin(degrees * rl.Deg2rad), Y: math32.Cos(degrees * rl.Deg2rad)}
}

func TestHitLocation(t *testing.T) {
	m := New(physics.NewWorld())

	assert.Equal(t, HitBelow, m.computeHitLocation(rl.Vector3{Y: 1}))
	assert.Equal(t, HitAbove, m.computeHitLocation(rl.Vector3{Y: -1}))
	assert.Equal(t, HitSides, m.computeHitLocation(rl.Vector3{X: 1}))
	assert.Equal(t, HitSides, m.computeHitLocation(rl.Vector3Normalize(rl.Vector3{X: 1, Y: 0.005})))
	assert.Equal(t, "below", HitBelow.String())
}

func TestWalkablePrecedence(t *testing.T) {
	m := New(physics.NewWorld())
	c := physics.NewCollider("surface", physics.NewBox(rl.Vector3{X: 1, Y: 1, Z: 1}), rl.Vector3{})

	assert.True(t, m.isWalkable(c, slopeNormal(30)))
	assert.False(t, m.isWalkable(c, slopeNormal(60)))
	assert.False(t, m.isWalkable(c, rl.Vector3{X: 1}), "walls are never walkable")

	// The collider override only applies when the agent honors it
	c.SlopeOverride = physics.SlopeLimitOverride{Behaviour: physics.SlopeOverride, Limit: 70}
	assert.False(t, m.isWalkable(c, slopeNormal(60)))
	m.SetSlopeLimitOverride(true)
	assert.True(t, m.isWalkable(c, slopeNormal(60)))

	c.SlopeOverride = physics.SlopeLimitOverride{Behaviour: physics.SlopeNotWalkable}
	assert.False(t, m.isWalkable(c, slopeNormal(10)))
	c.SlopeOverride = physics.SlopeLimitOverride{Behaviour: physics.SlopeWalkable}
	assert.True(t, m.isWalkable(c, slopeNormal(80)))

	// Behaviour flags win over the override
	c.Tags = []string{"ice"}
	m.Behaviours = TagBehaviours{"ice": NotWalkable}
	assert.False(t, m.isWalkable(c, slopeNormal(80)))
	assert.False(t, m.isWalkable(c, rl.Vector3{Y: 1}))

	m.Behaviours = TagBehaviours{"ice": Walkable}
	c.SlopeOverride = physics.SlopeLimitOverride{Behaviour: physics.SlopeNotWalkable}
	assert.True(t, m.isWalkable(c, slopeNormal(85)))
}

func TestBehaviourLookup(t *testing.T) {
	b, err := ParseBehaviour(" Can_Step_On ")
	require.NoError(t, err)
	assert.Equal(t, CanStepOn, b)

	_, err = ParseBehaviour("bouncy")
	assert.Error(t, err)

	lookup := TagBehaviours{"ledge": CanNotStepOn, "cart": CanRideOn | CanPerchOn}
	c := physics.NewCollider("c", physics.Sphere{Radius: 1}, rl.Vector3{})
	c.Tags = []string{"ledge", "cart"}

	got := lookup.Behaviour(c)
	assert.True(t, got.Has(CanNotStepOn))
	assert.True(t, got.Has(CanRideOn))
	assert.False(t, got.Has(Walkable))
	assert.Equal(t, "can_perch_on|can_not_step_on|can_ride_on", got.String())
	assert.Equal(t, "default", BehaviourDefault.String())

	m := New(physics.NewWorld())
	m.Behaviours = lookup
	assert.False(t, m.canStepUp(c))
	assert.True(t, m.canPerchOn(c))

	untagged := physics.NewCollider("u", physics.Sphere{Radius: 1}, rl.Vector3{})
	untagged.Tags = []string{"crate"}
	assert.Equal(t, BehaviourDefault, lookup.Behaviour(untagged))

	m.Behaviours = BehaviourFunc(func(*physics.Collider) CollisionBehaviour { return CanStepOn })
	assert.True(t, m.canStepUp(c))
}

func TestRideRulesNeedABody(t *testing.T) {
	m := New(physics.NewWorld())
	static := physics.NewCollider("static", physics.Sphere{Radius: 1}, rl.Vector3{})
	assert.False(t, m.canRideOn(static))

	m.Behaviours = BehaviourFunc(func(*physics.Collider) CollisionBehaviour { return CanRideOn })
	assert.False(t, m.canRideOn(static))

	cart := physics.NewCollider("cart", physics.Sphere{Radius: 1}, rl.Vector3{})
	cart.Attach(physics.NewKinematicBody("cart"))
	assert.True(t, m.canRideOn(cart))

	m.Behaviours = BehaviourFunc(func(*physics.Collider) CollisionBehaviour { return CanNotRideOn })
	assert.False(t, m.canRideOn(cart))
}

func TestCollisionResultBuffer(t *testing.T) {
	m := New(physics.NewWorld())
	m.clearCollisionResults()

	static := physics.NewCollider("static", physics.Sphere{Radius: 1}, rl.Vector3{})
	for i := 0; i < MaxCollisionCount+4; i++ {
		m.addCollisionResult(&CollisionResult{Collider: static, HitLocation: HitSides})
	}
	assert.Equal(t, MaxCollisionCount, m.CollisionCount())
	assert.Equal(t, 4, m.DroppedCollisions())
	assert.True(t, m.CollisionFlags().Has(CollisionSides))

	m.clearCollisionResults()
	assert.Zero(t, m.DroppedCollisions())

	// One result per body
	crate := physics.NewBody("crate")
	a := physics.NewCollider("a", physics.Sphere{Radius: 1}, rl.Vector3{})
	b := physics.NewCollider("b", physics.Sphere{Radius: 1}, rl.Vector3{X: 2})
	a.Attach(crate)
	b.Attach(crate)
	m.addCollisionResult(&CollisionResult{Collider: a, HitLocation: HitSides})
	m.addCollisionResult(&CollisionResult{Collider: b, HitLocation: HitAbove})
	require.Equal(t, 1, m.CollisionCount())
	assert.Same(t, a, m.CollisionResult(0).Collider)
	assert.True(t, m.CollisionFlags().Has(CollisionAbove), "flags still record the dropped contact")

	// Contacts with the current platform are not results
	m.clearCollisionResults()
	m.movingPlatform.Platform = crate
	m.addCollisionResult(&CollisionResult{Collider: a, HitLocation: HitBelow})
	assert.Zero(t, m.CollisionCount())
}

func TestNonFiniteRecoveryIsSkipped(t *testing.T) {
	w := physics.NewWorld()
	addBox(w, "box", rl.Vector3{X: 0.95, Y: 1}, rl.Vector3{X: 1, Y: 4, Z: 4})

	var logs bytes.Buffer
	m := New(nanBackend{World: w}, WithLogger(zerolog.New(&logs)))
	w.AddBody(m.Body())
	m.SetPosition(rl.Vector3{}, false)

	m.Move(rl.Vector3{}, tick)

	assertVec(t, rl.Vector3{}, m.Position(), 0)
	assert.Zero(t, m.CollisionCount())
	assert.Contains(t, logs.String(), "not finite")
}

func TestIgnoredAndTriggerColliders(t *testing.T) {
	w := newFloorScene()
	wall := addBox(w, "wall", rl.Vector3{X: 3, Y: 2}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newAgent(t, w, rl.Vector3{Y: restHeight})

	m.IgnoreCollider(wall, true)
	m.Move(rl.Vector3{X: 5}, 1)
	assert.InDelta(t, 5, m.Position().X, 1e-4)

	m.IgnoreCollider(wall, false)
	m.SetPosition(rl.Vector3{Y: restHeight}, true)
	wall.IsTrigger = true
	m.Move(rl.Vector3{X: 5}, 1)
	assert.InDelta(t, 5, m.Position().X, 1e-4)

	m.SetHitTriggers(true)
	m.SetPosition(rl.Vector3{Y: restHeight}, true)
	m.Move(rl.Vector3{X: 5}, 1)
	assert.Less(t, m.Position().X, float32(2.01))

	wall.IsTrigger = false
	m.ColliderFilter = func(c *physics.Collider) bool { return c == wall }
	m.SetPosition(rl.Vector3{Y: restHeight}, true)
	m.Move(rl.Vector3{X: 5}, 1)
	assert.InDelta(t, 5, m.Position().X, 1e-4)
}

func TestBoxOpposingNormal(t *testing.T) {
	box := physics.NewCollider("box", physics.NewBox(rl.Vector3{X: 2, Y: 2, Z: 2}), rl.Vector3{})

	// An edge contact moving sideways resolves to the side face
	edge := rl.Vector3Normalize(rl.Vector3{X: -1, Y: 1})
	assertVec(t, rl.Vector3{X: -1}, findBoxOpposingNormal(rl.Vector3{X: 1}, edge, box), 1e-6)
	// and falling onto it resolves to the top face
	assertVec(t, rl.Vector3{Y: 1}, findBoxOpposingNormal(rl.Vector3{Y: -1}, edge, box), 1e-6)

	box.Rotation = physics.EulerToQuaternion(rl.Vector3{Y: 90})
	got := findBoxOpposingNormal(rl.Vector3{Y: -1}, rl.Vector3{Y: 1}, box)
	assertVec(t, rl.Vector3{Y: 1}, got, 1e-5)
	// Face normals come back in world space
	assertVec(t, rl.Vector3{X: -1}, findBoxOpposingNormal(rl.Vector3{X: 1}, edge, box), 1e-5)

	box.Rotation = physics.EulerToQuaternion(rl.Vector3{Y: 45})
	diagonal := rl.Vector3Normalize(rl.Vector3{X: 1, Z: 1})
	got = findBoxOpposingNormal(diagonal, rl.Vector3Negate(diagonal), box)
	assert.InDelta(t, 0, got.Y, 1e-5)
	assert.InDelta(t, 1, rl.Vector3Length(got), 1e-5)
	assert.Less(t, rl.Vector3DotProduct(got, diagonal), float32(-0.7))
}

func TestBlockingNormalFollowsPlaneConstraint(t *testing.T) {
	m := newAgent(t, newFloorScene(), rl.Vector3{Y: restHeight})
	require.True(t, m.IsGrounded())
	steep := rl.Vector3Normalize(rl.Vector3{X: -1, Y: 0.3, Z: -1})

	assertVec(t, rl.Vector3Normalize(rl.Vector3{X: -1, Z: -1}), m.computeBlockingNormal(steep, false), 1e-5)

	m.SetPlaneConstraint(ConstrainZAxis, rl.Vector3{})
	assertVec(t, rl.Vector3{X: -1}, m.computeBlockingNormal(steep, false), 1e-5)
}

func TestCheckHeight(t *testing.T) {
	w := newFloorScene()
	addBox(w, "ceiling", rl.Vector3{Y: 2.6}, rl.Vector3{X: 4, Y: 1, Z: 4})
	m := newAgent(t, w, rl.Vector3{Y: restHeight})

	assert.False(t, m.CheckCapsule())
	assert.False(t, m.CheckHeight(1.5))
	assert.True(t, m.CheckHeight(2.5))

	// A ceiling the caller ignores stays ignored when it is also the platform
	ceiling := physics.NewKinematicBody("ceiling_body")
	m.IgnoreBody(ceiling, true)
	m.AttachTo(ceiling)
	m.SetPosition(m.Position(), true)
	require.Same(t, ceiling, m.MovingPlatform().Platform)
	assert.False(t, m.CheckHeight(1.5))
	_, ignored := m.ignoredBodies[ceiling]
	assert.True(t, ignored)
}

func TestCollidedAndFoundGroundEvents(t *testing.T) {
	w := newFloorScene()
	m := newAgent(t, w, rl.Vector3{Y: 1.5})
	require.False(t, m.IsOnWalkableGround())

	var landed []GroundResult
	m.FoundGround.AddListener(func(g GroundResult) { landed = append(landed, g) })
	var hits int
	id := m.Collided.AddListener(func(CollisionResult) { hits++ })

	for i := 0; i < 90; i++ {
		m.SimpleMove(rl.Vector3{}, 5, 20, 20, 8, 0, rl.Vector3{Y: -9.81}, true, tick)
	}

	require.Len(t, landed, 1)
	assert.Equal(t, "floor", landed[0].Collider.Name)
	assert.True(t, m.IsGrounded())
	requireBand(t, m)
	assert.InDelta(t, restHeight, m.Position().Y, 2e-3)
	assert.Zero(t, m.Velocity().Y)
	assert.Equal(t, 1, hits)

	assert.True(t, m.Collided.RemoveListener(id))
	assert.Zero(t, m.Collided.GetListenerCount())
}
