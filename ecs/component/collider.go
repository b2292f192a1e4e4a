package component

// ColliderPair registers a collision response between two entities, stored
// on an entity of its own. Only registered pairs collide with each other.
type ColliderPair struct {
	A uint64 // ecs.Entity
	B uint64
}

var ColliderPairComponent = NewComponent[ColliderPair]()
