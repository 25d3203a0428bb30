package motion

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// movementSweepTest sweeps the capsule along displacement from position and describes the first blocking
// hit. Starting inside geometry triggers one recovery attempt followed by a fresh sweep.
func (m *CharacterMovement) movementSweepTest(position, velocity, displacement rl.Vector3) (CollisionResult, bool) {
	origin := position
	direction := normalized(displacement)
	distance := mag(displacement)

	sweep := m.sweepTestEx(origin, m.radius, direction, distance, false)
	if sweep.Penetrating() {
		requested := scale(sweep.RecoverDirection, sweep.RecoverDistance+m.tol.ContactOffset+m.tol.PenetrationOffset)
		if m.resolvePenetration(displacement, requested) {
			origin = m.updatedPosition
			sweep = m.sweepTestEx(origin, m.radius, direction, distance, false)
		}
	}
	if !sweep.HasHit {
		return CollisionResult{}, false
	}

	hit := sweep.Hit
	location := m.computeHitLocation(hit.Normal)
	toHit := scale(direction, hit.Distance)

	surfaceNormal := hit.Normal
	walkable := false
	if location == HitBelow {
		surfaceNormal = m.findGeomOpposingNormal(displacement, hit)
		walkable = m.isWalkable(hit.Collider, surfaceNormal)
	}

	return CollisionResult{
		StartPenetrating:      sweep.Penetrating(),
		HitLocation:           location,
		IsWalkable:            walkable,
		Position:              add(origin, toHit),
		Velocity:              velocity,
		OtherVelocity:         otherVelocity(hit.Collider, hit.Point),
		Point:                 hit.Point,
		Normal:                hit.Normal,
		SurfaceNormal:         surfaceNormal,
		DisplacementToHit:     toHit,
		RemainingDisplacement: sub(displacement, toHit),
		Collider:              hit.Collider,
		HitDistance:           hit.Distance,
	}, true
}

// MovementSweepTest sweeps the capsule from position and reports the first blocking hit, using the current velocity.
func (m *CharacterMovement) MovementSweepTest(position, direction rl.Vector3, distance float32) (CollisionResult, bool) {
	return m.movementSweepTest(position, m.velocity, scale(direction, distance))
}

// handleSlopeBoosting keeps a slide off a steep surface from lifting the agent higher than the
// displacement asked for. The excess becomes lateral motion along the surface.
func (m *CharacterMovement) handleSlopeBoosting(slideResult, displacement, normal rl.Vector3) rl.Vector3 {
	result := slideResult

	yResult := dot(result, m.characterUp)
	if yResult <= 0 {
		return result
	}

	yLimit := dot(displacement, m.characterUp)
	if yResult-yLimit <= m.tol.KindaSmallNumber {
		return result
	}

	if yLimit > 0 {
		// Rescale the whole vector so it does not turn back into the surface
		result = scale(result, yLimit/yResult)
	} else {
		result = rl.Vector3{}
	}

	lateralRemainder := projectOnPlane(sub(slideResult, result), m.characterUp)
	lateralNormal := normalized(projectOnPlane(normal, m.characterUp))
	return add(result, projectOnPlane(lateralRemainder, lateralNormal))
}

// computeSlideVector redirects v along a surface.
func (m *CharacterMovement) computeSlideVector(v, normal rl.Vector3, walkable bool) rl.Vector3 {
	switch {
	case m.IsGrounded() && walkable:
		v = tangentTo(v, normal, m.characterUp)
	case m.IsGrounded():
		// Slide along the wall without climbing it or digging into the ground
		right := perpendicularTo(normal, m.currentGround.Normal)
		up := perpendicularTo(right, normal)
		v = tangentTo(projectOnPlane(v, normal), up, m.characterUp)
	case walkable:
		if m.isConstrainedToGround {
			v = projectOnPlane(v, m.characterUp)
		}
		v = projectOnPlane(v, normal)
	default:
		slide := projectOnPlane(v, normal)
		if m.isConstrainedToGround {
			slide = m.handleSlopeBoosting(slide, v, normal)
		}
		v = slide
	}
	return m.ConstrainVectorToPlane(v)
}

// slider carries the slide state across the collisions of one move.
type slider struct {
	iteration  int
	input      rl.Vector3
	prevNormal rl.Vector3
}

// slide redirects displacement, and velocity when given, along the hit surface. A second blocking
// hit slides along the crease of both surfaces and a third stops the move.
func (m *CharacterMovement) slide(s *slider, velocity, displacement *rl.Vector3, hit *CollisionResult) {
	if velocity != nil && m.useFlatTop && hit.HitLocation == HitAbove && hit.Collider != nil {
		if surfaceNormal := findBoxOpposingNormal(*displacement, hit.Normal, hit.Collider); surfaceNormal != hit.Normal {
			hit.Normal = surfaceNormal
			hit.SurfaceNormal = surfaceNormal
		}
	}

	hit.Normal = m.computeBlockingNormal(hit.Normal, hit.IsWalkable)

	apply := func(f func(rl.Vector3) rl.Vector3) {
		if velocity != nil {
			*velocity = f(*velocity)
		}
		*displacement = f(*displacement)
	}
	along := func(walkable bool) func(rl.Vector3) rl.Vector3 {
		return func(v rl.Vector3) rl.Vector3 { return m.computeSlideVector(v, hit.Normal, walkable) }
	}

	if hit.IsWalkable && m.IsConstrainedToGround() {
		apply(along(true))
		return
	}

	switch s.iteration {
	case 0:
		apply(along(hit.IsWalkable))
		s.iteration++
	case 1:
		crease := perpendicularTo(s.prevNormal, hit.Normal)
		oldSlide := projectOnPlane(s.input, crease)
		newSlide := projectOnPlane(m.computeSlideVector(*displacement, hit.Normal, hit.IsWalkable), crease)

		if dot(oldSlide, newSlide) <= 0 || dot(s.prevNormal, hit.Normal) < 0 {
			apply(func(v rl.Vector3) rl.Vector3 { return m.ConstrainVectorToPlane(projectOn(v, crease)) })
			s.iteration++
		} else {
			apply(along(hit.IsWalkable))
		}
	default:
		apply(func(rl.Vector3) rl.Vector3 { return rl.Vector3{} })
	}
	s.prevNormal = hit.Normal
}

// moveAndSlide moves the working position by displacement, sliding along whatever blocks it.
// Velocity and ground state are left untouched.
func (m *CharacterMovement) moveAndSlide(displacement rl.Vector3) {
	s := slider{input: displacement}
	minSqr := m.advanced.minMoveDistanceSqr()

	swept := false
	for i := 0; i < m.advanced.MaxMovementIterations && sqrMag(displacement) > minSqr; i++ {
		hit, ok := m.movementSweepTest(m.updatedPosition, rl.Vector3{}, displacement)
		if !ok {
			swept = true
			break
		}

		m.updatedPosition = add(m.updatedPosition, hit.DisplacementToHit)
		displacement = hit.RemainingDisplacement

		m.slide(&s, nil, &displacement, &hit)
		m.addCollisionResult(&hit)
	}

	// Displacement left over once the iteration budget is spent was never swept and is dropped
	if swept && sqrMag(displacement) > minSqr {
		m.updatedPosition = add(m.updatedPosition, displacement)
	}
}

// shouldCheckForValidLandingSpot reports whether a below hit on an edge might still be standable.
func (m *CharacterMovement) shouldCheckForValidLandingSpot(c *CollisionResult) bool {
	return c.HitLocation == HitBelow && c.Normal != c.SurfaceNormal &&
		m.IsWithinEdgeTolerance(m.updatedPosition, c.Point, m.radius)
}

// isValidLandingSpot confirms a walkable below hit with a ground probe, storing the ground found.
func (m *CharacterMovement) isValidLandingSpot(position rl.Vector3, c *CollisionResult) bool {
	if !c.IsWalkable || c.HitLocation != HitBelow {
		return false
	}

	if !m.IsWithinEdgeTolerance(position, c.Point, m.radius) {
		c.IsWalkable = false
		return false
	}

	g := m.FindGround(position)
	c.IsWalkable = g.IsWalkableGround()
	if c.IsWalkable {
		m.foundGround = g
		return true
	}
	return false
}

// tryLanding runs the landing checks for a falling agent against one collision.
func (m *CharacterMovement) tryLanding(c *CollisionResult, probeEdges bool) {
	if m.isValidLandingSpot(m.updatedPosition, c) {
		m.land(c)
	} else if (probeEdges && m.shouldCheckForValidLandingSpot(c)) || (!probeEdges && c.HitLocation == HitBelow) {
		// The hit itself may be an edge, while the ground under the capsule is fine
		g := m.FindGround(m.updatedPosition)
		c.IsWalkable = g.IsWalkableGround()
		if c.IsWalkable {
			m.foundGround = g
			m.land(c)
		}
	}

	if !m.hasLanded && c.HitLocation == HitBelow {
		m.foundGround = groundFromContact(m.updatedPosition, *c, c.HitDistance)
	}
}

func (m *CharacterMovement) land(c *CollisionResult) {
	m.hasLanded = true
	m.landedVelocity = c.Velocity
	m.logger.Debug().
		Str("collider", colliderName(c.Collider)).
		Float32("speed", mag(c.Velocity)).
		Msg("motion: landed")
}

// performMovement runs the slide solver for one tick.
func (m *CharacterMovement) performMovement(deltaTime float32) {
	flags := ignoreNone
	if !m.advanced.EnablePhysicsInteraction {
		flags = ignoreDynamic
	}
	m.resolveOverlaps(flags)

	if m.IsGrounded() {
		m.velocity = projectOnPlane(m.velocity, m.characterUp)
	}

	displacement := scale(m.velocity, deltaTime)
	if m.IsGrounded() {
		displacement = m.ConstrainVectorToPlane(tangentTo(displacement, m.currentGround.Normal, m.characterUp))
	}

	s := slider{input: displacement}

	// Overlaps just resolved act as collisions: do not move back into them
	for i := 0; i < m.collisionCount; i++ {
		c := &m.collisions[i]
		if dot(displacement, c.Normal) >= 0 {
			continue
		}

		if m.IsConstrainedToGround() && !m.IsOnWalkableGround() {
			m.tryLanding(c, false)
		}
		m.slide(&s, &m.velocity, &displacement, c)
	}

	minSqr := m.advanced.minMoveDistanceSqr()
	swept := !m.detectCollisions
	for i := 0; m.detectCollisions && i < m.advanced.MaxMovementIterations && sqrMag(displacement) > minSqr; i++ {
		hit, ok := m.movementSweepTest(m.updatedPosition, m.velocity, displacement)
		if !ok {
			swept = true
			break
		}

		m.updatedPosition = add(m.updatedPosition, hit.DisplacementToHit)
		displacement = hit.RemainingDisplacement

		// Blocked by a barrier: try climbing it
		if m.IsGrounded() && !hit.IsWalkable && m.canStepUp(hit.Collider) {
			if position, ok := m.stepUp(&hit); ok {
				m.updatedPosition = position
				displacement = rl.Vector3{}
				break
			}
		}

		if m.IsConstrainedToGround() && !m.IsOnWalkableGround() {
			m.tryLanding(&hit, true)
		}

		m.slide(&s, &m.velocity, &displacement, &hit)
		m.addCollisionResult(&hit)
	}

	if swept && sqrMag(displacement) > minSqr {
		m.updatedPosition = add(m.updatedPosition, displacement)
	}

	// Landing or walking discards vertical motion but keeps the speed
	if m.IsGrounded() || m.hasLanded {
		m.velocity = m.ConstrainVectorToPlane(keepMagnitudeOnPlane(m.velocity, m.characterUp))
	}
}
