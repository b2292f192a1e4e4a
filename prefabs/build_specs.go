package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
	// FromBottom measures Y upward from the bottom edge of the canvas.
	FromBottom bool `yaml:"from_bottom"`
}

type SpriteComponentSpec struct {
	Key     string   `yaml:"key"`
	OriginX *float64 `yaml:"origin_x"`
	OriginY *float64 `yaml:"origin_y"`
}

type TileSpriteComponentSpec struct {
	Key    string  `yaml:"key"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type RenderLayerComponentSpec struct {
	Index int `yaml:"index"`
}

type BounceSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type VelocitySpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PhysicsBodyComponentSpec configures an arcade body. Width/Height/Radius of
// zero take the size of the entity's sprite or tile sprite.
type PhysicsBodyComponentSpec struct {
	Shape              string       `yaml:"shape"`
	Width              float64      `yaml:"width"`
	Height             float64      `yaml:"height"`
	Radius             float64      `yaml:"radius"`
	Mass               float64      `yaml:"mass"`
	Bounce             BounceSpec   `yaml:"bounce"`
	Velocity           VelocitySpec `yaml:"velocity"`
	CollideWorldBounds bool         `yaml:"collide_world_bounds"`
	AllowGravity       *bool        `yaml:"allow_gravity"`
	Immovable          bool         `yaml:"immovable"`
	Static             bool         `yaml:"static"`
}
