package system

import "github.com/milk9111/bounce/ecs"

// BounceCounter drains collision events and keeps a running total for the debug overlay.
type BounceCounter struct {
	count int
	last  ecs.CollisionEvent
}

func NewBounceCounter() *BounceCounter {
	return &BounceCounter{}
}

func (bc *BounceCounter) Update(w *ecs.World) {
	for _, evt := range w.Events().Drain() {
		if evt.Type != ecs.EventCollision {
			continue
		}
		if c, ok := evt.Data.(ecs.CollisionEvent); ok {
			bc.count++
			bc.last = c
		}
	}
}

func (bc *BounceCounter) Count() int {
	if bc == nil {
		return 0
	}
	return bc.count
}

func (bc *BounceCounter) Last() (ecs.CollisionEvent, bool) {
	if bc == nil || bc.count == 0 {
		return ecs.CollisionEvent{}, false
	}
	return bc.last, true
}
