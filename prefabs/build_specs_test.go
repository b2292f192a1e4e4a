package prefabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPrefabs(t *testing.T) {
	ball, err := LoadEntityBuildSpec("ball.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ball", ball.Name)

	body, err := DecodeComponentSpec[PhysicsBodyComponentSpec](ball.Components["physics_body"])
	require.NoError(t, err)
	assert.True(t, body.CollideWorldBounds)
	assert.Equal(t, 0.8, body.Bounce.Y)
	assert.Equal(t, 0.0, body.Bounce.X)
	assert.Nil(t, body.AllowGravity)

	tr, err := DecodeComponentSpec[TransformComponentSpec](ball.Components["transform"])
	require.NoError(t, err)
	assert.Equal(t, 400.0, tr.X)
	assert.Equal(t, 0.0, tr.Y)

	floor, err := LoadEntityBuildSpec("prefabs/floor.yaml")
	require.NoError(t, err)
	assert.Equal(t, "floor", floor.Name)

	body, err = DecodeComponentSpec[PhysicsBodyComponentSpec](floor.Components["physics_body"])
	require.NoError(t, err)
	require.NotNil(t, body.AllowGravity)
	assert.False(t, *body.AllowGravity)
	assert.True(t, body.Immovable)

	tile, err := DecodeComponentSpec[TileSpriteComponentSpec](floor.Components["tile_sprite"])
	require.NoError(t, err)
	assert.Equal(t, TileSpriteComponentSpec{Key: "shroom", Width: 800, Height: 40}, tile)
}

func TestDecodeComponentSpecNil(t *testing.T) {
	got, err := DecodeComponentSpec[RenderLayerComponentSpec](nil)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestLoadSpecMissingFile(t *testing.T) {
	_, err := LoadEntityBuildSpec("missing.yaml")
	assert.ErrorContains(t, err, "missing.yaml")
}
