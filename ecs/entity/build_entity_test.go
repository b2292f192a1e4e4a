package entity

import (
	"testing"

	"github.com/milk9111/bounce/assets"
	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
	"github.com/milk9111/bounce/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() BuildContext {
	return BuildContext{
		Textures: map[string]assets.Texture{
			"ball":   {Width: 240, Height: 240},
			"shroom": {Width: 70, Height: 70},
		},
		CanvasWidth:  800,
		CanvasHeight: 600,
	}
}

func TestBuildBall(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "ball.yaml", testContext())
	require.NoError(t, err)

	name, ok := ecs.Get(w, e, component.NameComponent)
	require.True(t, ok)
	assert.Equal(t, "ball", name.Value)

	tr, ok := ecs.Get(w, e, component.TransformComponent)
	require.True(t, ok)
	assert.Equal(t, component.Transform{X: 400, Y: 0, ScaleX: 1, ScaleY: 1}, tr)

	sprite, ok := ecs.Get(w, e, component.SpriteComponent)
	require.True(t, ok)
	assert.Equal(t, 120.0, sprite.OriginX)
	assert.Equal(t, 120.0, sprite.OriginY)

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
	require.True(t, ok)
	assert.Equal(t, 0.8, body.Bounce.Y)
	assert.Equal(t, 0.0, body.Bounce.X)
	assert.True(t, body.CollideWorldBounds)
	assert.True(t, body.AllowGravity)
	assert.False(t, body.Immovable)
	assert.Equal(t, 240.0, body.Width)
	assert.Equal(t, 240.0, body.Height)
	assert.Equal(t, 1.0, body.Mass)
}

func TestBuildFloor(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "floor.yaml", testContext())
	require.NoError(t, err)

	tr, ok := ecs.Get(w, e, component.TransformComponent)
	require.True(t, ok)
	assert.Equal(t, 400.0, tr.X)
	assert.Equal(t, 580.0, tr.Y)

	tile, ok := ecs.Get(w, e, component.TileSpriteComponent)
	require.True(t, ok)
	assert.Equal(t, "shroom", tile.Key)
	assert.Equal(t, 800.0, tile.Width)
	assert.Equal(t, 40.0, tile.Height)

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
	require.True(t, ok)
	assert.False(t, body.AllowGravity)
	assert.True(t, body.Immovable)
	assert.False(t, body.CollideWorldBounds)
	assert.Equal(t, 800.0, body.Width)
	assert.Equal(t, 40.0, body.Height)
}

func TestBuildEntityFromSpecErrors(t *testing.T) {
	cases := []struct {
		name string
		spec prefabs.EntityBuildSpec
	}{
		{
			name: "no_components",
			spec: prefabs.EntityBuildSpec{Name: "empty"},
		},
		{
			name: "unknown_component",
			spec: prefabs.EntityBuildSpec{Name: "x", Components: map[string]any{
				"transform": map[string]any{"x": 1},
				"jetpack":   map[string]any{},
			}},
		},
		{
			name: "texture_not_preloaded",
			spec: prefabs.EntityBuildSpec{Name: "x", Components: map[string]any{
				"transform": map[string]any{},
				"sprite":    map[string]any{"key": "missing"},
			}},
		},
		{
			name: "tile_sprite_without_size",
			spec: prefabs.EntityBuildSpec{Name: "x", Components: map[string]any{
				"transform":   map[string]any{},
				"tile_sprite": map[string]any{"key": "shroom"},
			}},
		},
		{
			name: "body_without_transform",
			spec: prefabs.EntityBuildSpec{Name: "x", Components: map[string]any{
				"physics_body": map[string]any{"width": 10, "height": 10},
			}},
		},
		{
			name: "body_without_size",
			spec: prefabs.EntityBuildSpec{Name: "x", Components: map[string]any{
				"transform":    map[string]any{},
				"physics_body": map[string]any{},
			}},
		},
		{
			name: "negative_bounce",
			spec: prefabs.EntityBuildSpec{Name: "x", Components: map[string]any{
				"transform":    map[string]any{},
				"physics_body": map[string]any{"width": 10, "height": 10, "bounce": map[string]any{"y": -1}},
			}},
		},
		{
			name: "unknown_shape",
			spec: prefabs.EntityBuildSpec{Name: "x", Components: map[string]any{
				"transform":    map[string]any{},
				"physics_body": map[string]any{"shape": "capsule", "width": 10, "height": 10},
			}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			_, err := BuildEntityFromSpec(w, c.spec, testContext())
			require.Error(t, err)
			assert.Empty(t, w.Entities(), "failed build must not leave entities behind")
		})
	}
}

func TestBuildCircleBodyTakesRadiusFromSprite(t *testing.T) {
	w := ecs.NewWorld()
	spec := prefabs.EntityBuildSpec{Name: "ball", Components: map[string]any{
		"transform":    map[string]any{"scale_x": 0.5, "scale_y": 0.5},
		"sprite":       map[string]any{"key": "ball"},
		"physics_body": map[string]any{"shape": "circle"},
	}}

	e, err := BuildEntityFromSpec(w, spec, testContext())
	require.NoError(t, err)

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
	require.True(t, ok)
	assert.Equal(t, component.BodyShapeCircle, body.Collider)
	assert.Equal(t, 60.0, body.Radius)
}
