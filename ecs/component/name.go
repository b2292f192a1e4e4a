package component

// Name identifies an entity for collider registration and scripts.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
