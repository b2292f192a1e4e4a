package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
)

const (
	collisionTypeBody cp.CollisionType = iota + 1
	collisionTypeBounds
)

// boundsThickness is how far the world-bound walls extend outside the world rectangle.
const boundsThickness = 64.0

type PhysicsSystem struct {
	space         *cp.Space
	gravity       cp.Vector
	dt            float64
	handlersReady bool

	entities     map[ecs.Entity]*bodyInfo
	shapes       map[*cp.Shape]ecs.Entity
	boundsShapes map[*cp.Shape]struct{}
	boundsEntity ecs.Entity
	bounds       component.WorldBounds
	pairs        map[pairKey]struct{}

	contacts []contact
	touching map[pairKey]struct{}
}

type bodyInfo struct {
	body               *cp.Body
	shape              *cp.Shape
	static             bool
	immovable          bool
	allowGravity       bool
	collideWorldBounds bool
	bounce             component.Bounce
	halfW, halfH       float64
}

type pairKey struct {
	a, b ecs.Entity
}

func makePairKey(a, b ecs.Entity) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// contact is a first touch recorded during Step. b is zero for world bounds.
type contact struct {
	a, b   ecs.Entity
	normal cp.Vector
	velA   cp.Vector
	velB   cp.Vector
}

// NewPhysicsSystem creates a system stepping a cp.Space by dt seconds per update.
func NewPhysicsSystem(gravityX, gravityY, dt float64) *PhysicsSystem {
	ps := &PhysicsSystem{
		gravity: cp.Vector{X: gravityX, Y: gravityY},
		dt:      dt,
	}
	ps.reset()
	return ps
}

func (ps *PhysicsSystem) reset() {
	ps.space = cp.NewSpace()
	ps.space.Iterations = 20
	ps.space.SetGravity(ps.gravity)
	ps.handlersReady = false
	ps.entities = make(map[ecs.Entity]*bodyInfo)
	ps.shapes = make(map[*cp.Shape]ecs.Entity)
	ps.boundsShapes = make(map[*cp.Shape]struct{})
	ps.boundsEntity = 0
	ps.pairs = make(map[pairKey]struct{})
	ps.touching = make(map[pairKey]struct{})
	ps.contacts = ps.contacts[:0]
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Gravity() cp.Vector {
	if ps == nil {
		return cp.Vector{}
	}
	return ps.gravity
}

// Collides reports whether a registered collider pair links a and b.
func (ps *PhysicsSystem) Collides(a, b ecs.Entity) bool {
	if ps == nil {
		return false
	}
	_, ok := ps.pairs[makePairKey(a, b)]
	return ok
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	ps.ensureHandlers()
	ps.syncPairs(w)
	ps.syncWorldBounds(w)
	ps.syncEntities(w)
	ps.applyKinematicGravity()

	ps.contacts = ps.contacts[:0]
	clear(ps.touching)
	ps.space.Step(ps.dt)

	ps.applyBounces(w)
	ps.keepInsideBounds()
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	begin := func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		return sys.beginContact(arb)
	}

	bodyHandler := ps.space.NewCollisionHandler(collisionTypeBody, collisionTypeBody)
	bodyHandler.UserData = ps
	bodyHandler.BeginFunc = begin

	boundsHandler := ps.space.NewCollisionHandler(collisionTypeBody, collisionTypeBounds)
	boundsHandler.UserData = ps
	boundsHandler.BeginFunc = begin

	ps.handlersReady = true
}

// beginContact filters collisions down to registered pairs and world bounds,
// and records the pre-impact velocities so the bounce can be applied after Step.
func (ps *PhysicsSystem) beginContact(arb *cp.Arbiter) bool {
	shapeA, shapeB := arb.Shapes()
	n := arb.Normal()

	_, boundsA := ps.boundsShapes[shapeA]
	_, boundsB := ps.boundsShapes[shapeB]
	if boundsA {
		shapeA, shapeB = shapeB, shapeA
		n = n.Neg()
		boundsA, boundsB = boundsB, boundsA
	}
	if boundsA {
		return false
	}

	entA, okA := ps.shapes[shapeA]
	if !okA {
		return true
	}
	infoA := ps.entities[entA]
	if infoA == nil {
		return true
	}

	if boundsB {
		if !infoA.collideWorldBounds {
			return false
		}
		key := makePairKey(entA, 0)
		if _, seen := ps.touching[key]; !seen {
			ps.touching[key] = struct{}{}
			ps.contacts = append(ps.contacts, contact{a: entA, normal: n, velA: infoA.body.Velocity()})
		}
		return true
	}

	entB, okB := ps.shapes[shapeB]
	if !okB {
		return true
	}
	key := makePairKey(entA, entB)
	if _, ok := ps.pairs[key]; !ok {
		return false
	}
	if _, seen := ps.touching[key]; seen {
		return true
	}
	ps.touching[key] = struct{}{}

	var velB cp.Vector
	if infoB := ps.entities[entB]; infoB != nil && infoB.body != nil {
		velB = infoB.body.Velocity()
	}
	ps.contacts = append(ps.contacts, contact{a: entA, b: entB, normal: n, velA: infoA.body.Velocity(), velB: velB})
	return true
}

// applyBounces reflects the approach velocity of each movable body on the
// dominant axis of the contact normal, scaled by that body's bounce.
func (ps *PhysicsSystem) applyBounces(w *ecs.World) {
	minSpeed := ps.restSpeed()
	for _, c := range ps.contacts {
		approach := c.velA.Sub(c.velB).Dot(c.normal)
		if approach <= 0 {
			continue
		}
		ps.bounceBody(c.a, c.velA, c.normal, minSpeed)
		if c.b.Valid() {
			ps.bounceBody(c.b, c.velB, c.normal.Neg(), minSpeed)
		}
		w.Events().Push(ecs.Event{Type: ecs.EventCollision, Data: ecs.CollisionEvent{
			A:       c.a,
			B:       c.b,
			NormalX: c.normal.X,
			NormalY: c.normal.Y,
			Speed:   approach,
		}})
	}
}

func (ps *PhysicsSystem) bounceBody(e ecs.Entity, pre cp.Vector, normal cp.Vector, minSpeed float64) {
	info := ps.entities[e]
	if info == nil || info.static || info.immovable || info.body == nil {
		return
	}
	v := info.body.Velocity()
	if math.Abs(normal.Y) >= math.Abs(normal.X) {
		if pre.Y*normal.Y <= 0 {
			return
		}
		v.Y = reflectSpeed(pre.Y, info.bounce.Y, minSpeed)
	} else {
		if pre.X*normal.X <= 0 {
			return
		}
		v.X = reflectSpeed(pre.X, info.bounce.X, minSpeed)
	}
	info.body.SetVelocityVector(v)
}

// restSpeed is the slowest bounce that is kept: two gravity steps.
func (ps *PhysicsSystem) restSpeed() float64 {
	return ps.gravity.Length() * ps.dt * 2
}

// keepInsideBounds clamps bodies that collide with the world bounds back
// inside after Step. cp does not collide kinematic bodies with the static
// walls, and dynamic bodies may end a step overlapping a wall by the slop.
// A velocity still pointing out of the world on a clamped axis is reflected.
func (ps *PhysicsSystem) keepInsideBounds() {
	if !ps.boundsEntity.Valid() {
		return
	}
	minSpeed := ps.restSpeed()
	for _, info := range ps.entities {
		if !info.collideWorldBounds || info.static || info.body == nil {
			continue
		}
		pos := info.body.Position()
		vel := info.body.Velocity()
		x := clampInto(pos.X, info.halfW, ps.bounds.X, ps.bounds.Width)
		y := clampInto(pos.Y, info.halfH, ps.bounds.Y, ps.bounds.Height)
		if x == pos.X && y == pos.Y {
			continue
		}
		if x != pos.X && (x-pos.X)*vel.X < 0 {
			vel.X = reflectSpeed(vel.X, info.bounce.X, minSpeed)
		}
		if y != pos.Y && (y-pos.Y)*vel.Y < 0 {
			vel.Y = reflectSpeed(vel.Y, info.bounce.Y, minSpeed)
		}
		info.body.SetPosition(cp.Vector{X: x, Y: y})
		info.body.SetVelocityVector(vel)
	}
}

func reflectSpeed(v, bounce, minSpeed float64) float64 {
	v = -v * bounce
	if math.Abs(v) < minSpeed {
		return 0
	}
	return v
}

func (ps *PhysicsSystem) applyKinematicGravity() {
	for _, info := range ps.entities {
		if !info.immovable || !info.allowGravity || info.body == nil {
			continue
		}
		info.body.SetVelocityVector(info.body.Velocity().Add(ps.gravity.Mult(ps.dt)))
	}
}

func (ps *PhysicsSystem) syncPairs(w *ecs.World) {
	clear(ps.pairs)
	ecs.ForEach(w, component.ColliderPairComponent, func(_ ecs.Entity, pair component.ColliderPair) {
		a, b := ecs.Entity(pair.A), ecs.Entity(pair.B)
		if a == b || !w.IsAlive(a) || !w.IsAlive(b) {
			return
		}
		ps.pairs[makePairKey(a, b)] = struct{}{}
	})
}

func (ps *PhysicsSystem) syncWorldBounds(w *ecs.World) {
	boundsEntity, ok := w.First(component.WorldBoundsComponent.Kind())
	if !ok {
		ps.removeWorldBounds()
		return
	}
	bounds, _ := ecs.Get(w, boundsEntity, component.WorldBoundsComponent)
	if boundsEntity == ps.boundsEntity && bounds == ps.bounds {
		return
	}
	ps.removeWorldBounds()
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}

	x, y, wd, ht, th := bounds.X, bounds.Y, bounds.Width, bounds.Height, boundsThickness
	walls := []cp.BB{
		{L: x - th, B: y - th, R: x + wd + th, T: y},           // top
		{L: x - th, B: y + ht, R: x + wd + th, T: y + ht + th}, // bottom
		{L: x - th, B: y - th, R: x, T: y + ht + th},           // left
		{L: x + wd, B: y - th, R: x + wd + th, T: y + ht + th}, // right
	}
	for _, bb := range walls {
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(0)
		shape.SetElasticity(0)
		shape.SetCollisionType(collisionTypeBounds)
		ps.space.AddShape(shape)
		ps.boundsShapes[shape] = struct{}{}
	}
	ps.boundsEntity = boundsEntity
	ps.bounds = bounds
}

func (ps *PhysicsSystem) removeWorldBounds() {
	for shape := range ps.boundsShapes {
		ps.space.RemoveShape(shape)
	}
	clear(ps.boundsShapes)
	ps.boundsEntity = 0
	ps.bounds = component.WorldBounds{}
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		if _, exists := ps.entities[e]; exists {
			continue
		}
		bodyComp, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		transform, _ := ecs.Get(w, e, component.TransformComponent)

		info := ps.createBodyInfo(&transform, bodyComp)
		if info == nil {
			continue
		}
		ps.entities[e] = info
		ps.shapes[info.shape] = e

		bodyComp.Body = info.body
		bodyComp.Shape = info.shape
		_ = ecs.Add(w, e, component.PhysicsBodyComponent, bodyComp)
		_ = ecs.Add(w, e, component.TransformComponent, transform)
	}
}

func (ps *PhysicsSystem) createBodyInfo(transform *component.Transform, bodyComp component.PhysicsBody) *bodyInfo {
	halfW, halfH := bodyHalfExtents(bodyComp)
	if halfW <= 0 || halfH <= 0 {
		return nil
	}

	if bodyComp.CollideWorldBounds && ps.boundsEntity.Valid() {
		transform.X = clampInto(transform.X, halfW, ps.bounds.X, ps.bounds.Width)
		transform.Y = clampInto(transform.Y, halfH, ps.bounds.Y, ps.bounds.Height)
	}
	center := cp.Vector{X: transform.X, Y: transform.Y}

	info := &bodyInfo{
		static:             bodyComp.Static,
		immovable:          bodyComp.Immovable || bodyComp.Static,
		allowGravity:       bodyComp.AllowGravity && !bodyComp.Static,
		collideWorldBounds: bodyComp.CollideWorldBounds,
		bounce:             bodyComp.Bounce,
		halfW:              halfW,
		halfH:              halfH,
	}

	var body *cp.Body
	switch {
	case bodyComp.Static:
		body = ps.space.StaticBody
	case bodyComp.Immovable:
		body = cp.NewKinematicBody()
	default:
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		// Arcade bodies never rotate.
		body = cp.NewBody(mass, math.Inf(1))
		if !bodyComp.AllowGravity {
			body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
				cp.BodyUpdateVelocity(body, cp.Vector{}, damping, dt)
			})
		}
	}

	var shape *cp.Shape
	if bodyComp.Static {
		if bodyComp.Collider == component.BodyShapeCircle {
			shape = cp.NewCircle(body, halfW, center)
		} else {
			shape = cp.NewBox2(body, cp.BB{L: center.X - halfW, B: center.Y - halfH, R: center.X + halfW, T: center.Y + halfH}, 0)
		}
	} else {
		body.SetPosition(center)
		body.SetVelocity(bodyComp.VelocityX, bodyComp.VelocityY)
		ps.space.AddBody(body)
		if bodyComp.Collider == component.BodyShapeCircle {
			shape = cp.NewCircle(body, halfW, cp.Vector{})
		} else {
			shape = cp.NewBox(body, halfW*2, halfH*2, 0)
		}
	}

	shape.SetFriction(0)
	shape.SetElasticity(0)
	shape.SetCollisionType(collisionTypeBody)
	ps.space.AddShape(shape)

	info.body = body
	info.shape = shape
	return info
}

func bodyHalfExtents(b component.PhysicsBody) (float64, float64) {
	if b.Collider == component.BodyShapeCircle {
		r := b.Radius
		if r <= 0 {
			r = math.Min(b.Width, b.Height) / 2
		}
		return r, r
	}
	return b.Width / 2, b.Height / 2
}

// clampInto keeps a center coordinate so that [v-half, v+half] lies inside [origin, origin+size].
func clampInto(v, half, origin, size float64) float64 {
	if half*2 >= size {
		return origin + size/2
	}
	return math.Max(origin+half, math.Min(origin+size-half, v))
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static || info.body == nil {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok {
			continue
		}
		pos := info.body.Position()
		vel := info.body.Velocity()
		transform.X = pos.X
		transform.Y = pos.Y
		bodyComp.VelocityX = vel.X
		bodyComp.VelocityY = vel.Y
		_ = ecs.Add(w, e, component.TransformComponent, transform)
		_ = ecs.Add(w, e, component.PhysicsBodyComponent, bodyComp)
	}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyComponent) {
			continue
		}
		if info.shape != nil {
			ps.space.RemoveShape(info.shape)
			delete(ps.shapes, info.shape)
		}
		if info.body != nil && !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
	}
}
