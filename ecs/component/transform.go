package component

// Transform is the world position of an entity. X/Y name the entity's origin,
// which for sprites and bodies is their center.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
