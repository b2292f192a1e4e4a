package component

import "github.com/jakecoffman/cp"

type BodyShape string

const (
	BodyShapeCircle BodyShape = "circle"
	BodyShapeBox    BodyShape = "box"
)

// Bounce is the fraction of velocity kept on each axis after a collision.
type Bounce struct {
	X float64
	Y float64
}

// PhysicsBody stores the collider configuration of an entity plus the cp
// runtime handles once the physics system has created them.
type PhysicsBody struct {
	Body  *cp.Body
	Shape *cp.Shape

	Collider BodyShape
	Width    float64
	Height   float64
	Radius   float64
	Mass     float64

	Bounce             Bounce
	CollideWorldBounds bool
	AllowGravity       bool
	Immovable          bool
	Static             bool

	VelocityX float64
	VelocityY float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
