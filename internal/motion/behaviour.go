package motion

import (
	"fmt"
	"strings"

	"capsulekin/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// CollisionBehaviour is a set of per-collider overrides of the default classification rules.
type CollisionBehaviour uint16

const (
	BehaviourDefault CollisionBehaviour = 0

	Walkable      CollisionBehaviour = 1 << 0
	NotWalkable   CollisionBehaviour = 1 << 1
	CanPerchOn    CollisionBehaviour = 1 << 2
	CanNotPerchOn CollisionBehaviour = 1 << 3
	CanStepOn     CollisionBehaviour = 1 << 4
	CanNotStepOn  CollisionBehaviour = 1 << 5
	CanRideOn     CollisionBehaviour = 1 << 6
	CanNotRideOn  CollisionBehaviour = 1 << 7
)

var behaviourNames = []struct {
	name string
	flag CollisionBehaviour
}{
	{"walkable", Walkable},
	{"not_walkable", NotWalkable},
	{"can_perch_on", CanPerchOn},
	{"can_not_perch_on", CanNotPerchOn},
	{"can_step_on", CanStepOn},
	{"can_not_step_on", CanNotStepOn},
	{"can_ride_on", CanRideOn},
	{"can_not_ride_on", CanNotRideOn},
}

// Has reports whether flag is set.
func (b CollisionBehaviour) Has(flag CollisionBehaviour) bool {
	return b&flag != 0
}

func (b CollisionBehaviour) String() string {
	if b == BehaviourDefault {
		return "default"
	}
	var parts []string
	for _, n := range behaviourNames {
		if b.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseBehaviour converts a behaviour name such as "can_step_on" to its flag.
func ParseBehaviour(name string) (CollisionBehaviour, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, n := range behaviourNames {
		if n.name == key {
			return n.flag, nil
		}
	}
	return BehaviourDefault, fmt.Errorf("unknown collision behaviour %q", name)
}

// BehaviourLookup returns the behaviour flags for a collider.
type BehaviourLookup interface {
	Behaviour(c *physics.Collider) CollisionBehaviour
}

// BehaviourFunc adapts a function to BehaviourLookup.
type BehaviourFunc func(c *physics.Collider) CollisionBehaviour

func (f BehaviourFunc) Behaviour(c *physics.Collider) CollisionBehaviour {
	return f(c)
}

// TagBehaviours maps collider tags to behaviour flags. A collider gets the union of its tags' flags.
type TagBehaviours map[string]CollisionBehaviour

func (t TagBehaviours) Behaviour(c *physics.Collider) CollisionBehaviour {
	var b CollisionBehaviour
	for tag, flags := range t {
		if c.HasTag(tag) {
			b |= flags
		}
	}
	return b
}

// ColliderFilter returns true for colliders the solver should ignore.
type ColliderFilter func(c *physics.Collider) bool

// CollisionResponseFunc may rewrite a collision and the impulse pair computed for it before they are applied.
type CollisionResponseFunc func(result *CollisionResult, characterImpulse, otherImpulse *rl.Vector3)
