package entity

import (
	"fmt"

	"github.com/milk9111/bounce/assets"
	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
	"github.com/milk9111/bounce/prefabs"
)

// BuildContext carries what component builders need beyond the raw spec.
type BuildContext struct {
	PrefabPath   string
	Textures     map[string]assets.Texture
	CanvasWidth  float64
	CanvasHeight float64

	// visual size of the entity, set by sprite/tile_sprite, used to size bodies
	visualW float64
	visualH float64
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":    addTransform,
	"sprite":       addSprite,
	"tile_sprite":  addTileSprite,
	"render_layer": addRenderLayer,
	"physics_body": addPhysicsBody,
}

// physics_body must come after the visuals it may take its size from.
var componentBuildOrder = []string{
	"transform",
	"sprite",
	"tile_sprite",
	"render_layer",
	"physics_body",
}

// BuildEntity creates an entity from a prefab file. On error nothing is left in the world.
func BuildEntity(w *ecs.World, prefabPath string, ctx BuildContext) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildEntityFromSpec(w, spec, ctx)
}

func BuildEntityFromSpec(w *ecs.World, spec prefabs.EntityBuildSpec, ctx BuildContext) (ecs.Entity, error) {
	if ctx.PrefabPath == "" {
		ctx.PrefabPath = spec.Name
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", ctx.PrefabPath)
	}

	for name := range spec.Components {
		if _, ok := componentRegistry[name]; !ok {
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", ctx.PrefabPath, name)
		}
	}

	e := w.CreateEntity()
	if spec.Name != "" {
		if err := ecs.Add(w, e, component.NameComponent, component.Name{Value: spec.Name}); err != nil {
			w.DestroyEntity(e)
			return 0, fmt.Errorf("build entity: %q: add name: %w", ctx.PrefabPath, err)
		}
	}

	for _, name := range componentBuildOrder {
		raw, ok := spec.Components[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, &ctx); err != nil {
			w.DestroyEntity(e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", ctx.PrefabPath, name, err)
		}
	}

	return e, nil
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	y := spec.Y
	if spec.FromBottom {
		y = ctx.CanvasHeight - spec.Y
	}
	return ecs.Add(w, e, component.TransformComponent, component.Transform{
		X:        spec.X,
		Y:        y,
		ScaleX:   spec.ScaleX,
		ScaleY:   spec.ScaleY,
		Rotation: spec.Rotation,
	})
}

func texture(ctx *BuildContext, key string) (assets.Texture, error) {
	if key == "" {
		return assets.Texture{}, fmt.Errorf("texture key is empty")
	}
	tex, ok := ctx.Textures[key]
	if !ok {
		return assets.Texture{}, fmt.Errorf("texture %q was not preloaded", key)
	}
	return tex, nil
}

type spriteSpec = prefabs.SpriteComponentSpec

// addSprite centers the origin unless the prefab sets one.
func addSprite(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[spriteSpec](raw)
	if err != nil {
		return fmt.Errorf("decode sprite spec: %w", err)
	}
	tex, err := texture(ctx, spec.Key)
	if err != nil {
		return err
	}

	sprite := component.Sprite{
		Key:     spec.Key,
		Image:   tex.Image,
		OriginX: float64(tex.Width) / 2,
		OriginY: float64(tex.Height) / 2,
	}
	if spec.OriginX != nil {
		sprite.OriginX = *spec.OriginX
	}
	if spec.OriginY != nil {
		sprite.OriginY = *spec.OriginY
	}

	sx, sy := transformScale(w, e)
	ctx.visualW = float64(tex.Width) * sx
	ctx.visualH = float64(tex.Height) * sy

	return ecs.Add(w, e, component.SpriteComponent, sprite)
}

type tileSpriteSpec = prefabs.TileSpriteComponentSpec

func addTileSprite(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[tileSpriteSpec](raw)
	if err != nil {
		return fmt.Errorf("decode tile sprite spec: %w", err)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("tile sprite size must be positive, got %gx%g", spec.Width, spec.Height)
	}
	tex, err := texture(ctx, spec.Key)
	if err != nil {
		return err
	}

	ctx.visualW = spec.Width
	ctx.visualH = spec.Height

	return ecs.Add(w, e, component.TileSpriteComponent, component.TileSprite{
		Key:    spec.Key,
		Image:  tex.Image,
		Width:  spec.Width,
		Height: spec.Height,
	})
}

type renderLayerSpec = prefabs.RenderLayerComponentSpec

func addRenderLayer(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderLayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode render layer spec: %w", err)
	}
	return ecs.Add(w, e, component.RenderLayerComponent, component.RenderLayer{Index: spec.Index})
}

type physicsBodySpec = prefabs.PhysicsBodyComponentSpec

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[physicsBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	if !ecs.Has(w, e, component.TransformComponent) {
		return fmt.Errorf("physics_body requires a transform on the same entity")
	}

	body := component.PhysicsBody{
		Collider:           component.BodyShapeBox,
		Width:              spec.Width,
		Height:             spec.Height,
		Radius:             spec.Radius,
		Mass:               spec.Mass,
		Bounce:             component.Bounce{X: spec.Bounce.X, Y: spec.Bounce.Y},
		CollideWorldBounds: spec.CollideWorldBounds,
		AllowGravity:       true,
		Immovable:          spec.Immovable,
		Static:             spec.Static,
		VelocityX:          spec.Velocity.X,
		VelocityY:          spec.Velocity.Y,
	}
	switch spec.Shape {
	case "", string(component.BodyShapeBox):
	case string(component.BodyShapeCircle):
		body.Collider = component.BodyShapeCircle
	default:
		return fmt.Errorf("unknown body shape %q", spec.Shape)
	}
	if spec.AllowGravity != nil {
		body.AllowGravity = *spec.AllowGravity
	}
	if body.Width <= 0 {
		body.Width = ctx.visualW
	}
	if body.Height <= 0 {
		body.Height = ctx.visualH
	}
	if body.Collider == component.BodyShapeCircle && body.Radius <= 0 {
		body.Radius = min(body.Width, body.Height) / 2
	}
	if body.Width <= 0 || body.Height <= 0 {
		return fmt.Errorf("physics body has no size and no sprite to take it from")
	}
	if body.Bounce.X < 0 || body.Bounce.Y < 0 {
		return fmt.Errorf("bounce must not be negative, got %+v", body.Bounce)
	}
	if !body.Static && body.Mass == 0 {
		body.Mass = 1
	}

	return ecs.Add(w, e, component.PhysicsBodyComponent, body)
}

func transformScale(w *ecs.World, e ecs.Entity) (float64, float64) {
	t, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		return 1, 1
	}
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}
