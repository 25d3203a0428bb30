package motion

// Buffer capacities, per agent
const (
	MaxCollisionCount = 16
	MaxOverlapCount   = 16
	MaxHitCount       = 16
)

// Defaults applied by New and Reset
const (
	DefaultRadius                = 0.5
	DefaultHeight                = 2.0
	DefaultSlopeLimit            = 45.0
	DefaultStepOffset            = 0.45
	DefaultPerchOffset           = 0.5
	DefaultPerchAdditionalHeight = 0.4
	DefaultPushForceScale        = 1.0
	DefaultGroundConstraintPause = 0.1
)

// Tolerances holds the tuned geometric constants used by every query.
// They guard numerically fragile sweep and perch edge cases; change them with care.
type Tolerances struct {
	KindaSmallNumber        float32
	HemisphereLimit         float32
	SweepEdgeRejectDistance float32
	MinGroundDistance       float32
	MaxGroundDistance       float32
	// Cosine thresholds forced by Walkable / NotWalkable behaviours
	MinWalkableSlopeLimit float32
	MaxWalkableSlopeLimit float32
	PenetrationOffset     float32
	ContactOffset         float32
	SmallContactOffset    float32
	SmallMTDInflation     float32
	LargeMTDInflation     float32
	OverlapInflation      float32
	// MinSweepRadius bounds the shrunken probes of ground and perch tests
	MinSweepRadius float32
}

// DefaultTolerances returns the stock tolerance set.
func DefaultTolerances() Tolerances {
	return Tolerances{
		KindaSmallNumber:        0.0001,
		HemisphereLimit:         0.01,
		SweepEdgeRejectDistance: 0.0015,
		MinGroundDistance:       0.019,
		MaxGroundDistance:       0.024,
		MinWalkableSlopeLimit:   1.0,
		MaxWalkableSlopeLimit:   0.017452,
		PenetrationOffset:       0.00125,
		ContactOffset:           0.01,
		SmallContactOffset:      0.001,
		SmallMTDInflation:       0.0025,
		LargeMTDInflation:       0.0175,
		OverlapInflation:        0.001,
		MinSweepRadius:          0.0011,
	}
}

// AvgGroundDistance is the middle of the ground hysteresis band.
func (t Tolerances) AvgGroundDistance() float32 {
	return (t.MinGroundDistance + t.MaxGroundDistance) * 0.5
}

// Advanced groups the less frequently tuned solver settings.
type Advanced struct {
	// MinMoveDistance drops displacements shorter than this. Zero keeps every move.
	MinMoveDistance            float32
	MaxMovementIterations      int
	MaxDepenetrationIterations int

	EnablePhysicsInteraction bool
	AllowPushCharacters      bool
	ImpartPlatformMovement   bool
	ImpartPlatformRotation   bool
	ImpartPlatformVelocity   bool
}

// DefaultAdvanced returns the stock advanced settings.
func DefaultAdvanced() Advanced {
	return Advanced{
		MaxMovementIterations:      5,
		MaxDepenetrationIterations: 1,
	}
}

// Validate clamps the settings into their legal ranges.
func (a *Advanced) Validate() {
	if a.MinMoveDistance < 0 {
		a.MinMoveDistance = 0
	}
	if a.MaxMovementIterations < 1 {
		a.MaxMovementIterations = 1
	}
	if a.MaxDepenetrationIterations < 1 {
		a.MaxDepenetrationIterations = 1
	}
}

func (a Advanced) minMoveDistanceSqr() float32 {
	return a.MinMoveDistance * a.MinMoveDistance
}
