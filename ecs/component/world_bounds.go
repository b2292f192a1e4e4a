package component

// WorldBounds stores the rectangle bodies with CollideWorldBounds are kept inside.
type WorldBounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

var WorldBoundsComponent = NewComponent[WorldBounds]()
