package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/bounce/assets"
	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
	"github.com/milk9111/bounce/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var textureSizes = map[string]int{
	"images/240px-Soccerball.svg.png": 240,
	"images/shroomRedMid.png":         70,
}

// stubLoader reports texture sizes without uploading anything to the GPU.
func stubLoader(path string) (assets.Texture, error) {
	size, ok := textureSizes[path]
	if !ok {
		return assets.Texture{}, errors.New("missing " + path)
	}
	return assets.Texture{Width: size, Height: size}, nil
}

func startScene(t *testing.T, name string) *Scene {
	t.Helper()
	s, err := New(name, WithLoader(stubLoader), WithTPS(60))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(s.Teardown)
	return s
}

func writePrefabs(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	prev := prefabs.Dir
	prefabs.Dir = dir
	t.Cleanup(func() { prefabs.Dir = prev })
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func TestSceneCreatesBallFloorAndOneCollider(t *testing.T) {
	s := startScene(t, "scene.yaml")

	ball, ok := s.Entity("ball")
	require.True(t, ok)
	floor, ok := s.Entity("floor")
	require.True(t, ok)

	assert.Equal(t, [][2]ecs.Entity{{ball, floor}}, s.Colliders())

	pairs := s.World().Query(component.ColliderPairComponent.Kind())
	assert.Len(t, pairs, 1)

	w, h := s.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	require.NotNil(t, s.Physics())
	assert.Equal(t, 200.0, s.Physics().Gravity().Y)
	assert.Equal(t, 0.0, s.Physics().Gravity().X)
	assert.True(t, s.Debug())
	assert.NotEmpty(t, s.ID())
}

func TestSceneSimulation(t *testing.T) {
	s := startScene(t, "scene.yaml")
	ball, _ := s.Entity("ball")
	floor, _ := s.Entity("floor")

	floorStart, ok := ecs.Get(s.World(), floor, component.TransformComponent)
	require.True(t, ok)
	assert.Equal(t, 580.0, floorStart.Y)

	for i := 0; i < 10*60; i++ {
		s.Update()

		ft, _ := ecs.Get(s.World(), floor, component.TransformComponent)
		require.Equal(t, floorStart.X, ft.X, "floor moved on tick %d", i)
		require.Equal(t, floorStart.Y, ft.Y, "floor moved on tick %d", i)

		bt, _ := ecs.Get(s.World(), ball, component.TransformComponent)
		require.GreaterOrEqual(t, bt.Y-120, 0.0, "ball above the world on tick %d", i)
		require.LessOrEqual(t, bt.Y+120, 600.0, "ball below the world on tick %d", i)
		require.GreaterOrEqual(t, bt.X-120, 0.0)
		require.LessOrEqual(t, bt.X+120, 800.0)
	}

	assert.GreaterOrEqual(t, s.Bounces(), 2)
	assert.True(t, s.Physics().Collides(ball, floor))
}

func TestSceneRestart(t *testing.T) {
	s := startScene(t, "scene.yaml")
	for i := 0; i < 30; i++ {
		s.Update()
	}
	require.NoError(t, s.Create())

	ball, ok := s.Entity("ball")
	require.True(t, ok)
	tr, _ := ecs.Get(s.World(), ball, component.TransformComponent)
	assert.Equal(t, 0.0, tr.Y, "a fresh scene starts from the prefab position")
	assert.Len(t, s.Colliders(), 1)
}

func TestSceneTeardown(t *testing.T) {
	s := startScene(t, "scene.yaml")
	s.Teardown()

	assert.Nil(t, s.World())
	assert.Nil(t, s.Physics())
	assert.Empty(t, s.Colliders())
	_, ok := s.Entity("ball")
	assert.False(t, ok)
	assert.NotPanics(t, s.Update)
}

func TestSceneCreateBeforePreload(t *testing.T) {
	s, err := New("scene.yaml", WithLoader(stubLoader))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Create(), ErrNotPreloaded)
}

func TestScenePreloadError(t *testing.T) {
	s, err := New("scene.yaml", WithLoader(func(string) (assets.Texture, error) {
		return assets.Texture{}, errors.New("boom")
	}))
	require.NoError(t, err)
	assert.ErrorContains(t, s.Start(), "boom")
	assert.Nil(t, s.World())
}

const testBall = `name: ball
components:
  transform: {x: 400, y: 100}
  sprite: {key: ball}
  physics_body: {collide_world_bounds: true, bounce: {y: 0.8}}
`

func TestSceneCreateErrors(t *testing.T) {
	cases := []struct {
		name    string
		scene   string
		wantErr error
	}{
		{
			name: "unknown_collider_entity",
			scene: `width: 800
height: 600
physics: {default: arcade}
preload: [{key: ball, path: images/240px-Soccerball.svg.png}]
entities: [ball.yaml]
colliders: [[ball, floor]]
`,
			wantErr: ErrUnknownEntity,
		},
		{
			name: "duplicate_entity",
			scene: `width: 800
height: 600
physics: {default: arcade}
preload: [{key: ball, path: images/240px-Soccerball.svg.png}]
entities: [ball.yaml, ball.yaml]
`,
			wantErr: ErrDuplicateEntity,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			writePrefabs(t, map[string]string{"scene.yaml": c.scene, "ball.yaml": testBall})
			s, err := New("scene.yaml", WithLoader(stubLoader))
			require.NoError(t, err)
			assert.ErrorIs(t, s.Start(), c.wantErr)
			assert.Nil(t, s.World(), "a failed create must tear the scene down")
		})
	}
}

func TestSceneInvalidSpec(t *testing.T) {
	writePrefabs(t, map[string]string{"scene.yaml": "width: 800\nheight: 600\nphysics: {default: matter}\nentities: [ball.yaml]\n"})
	_, err := New("scene.yaml")
	assert.ErrorIs(t, err, prefabs.ErrUnknownBackend)
}

func TestSceneNoneBackend(t *testing.T) {
	writePrefabs(t, map[string]string{
		"scene.yaml": `width: 800
height: 600
physics: {default: none}
preload: [{key: ball, path: images/240px-Soccerball.svg.png}]
entities: [ball.yaml]
`,
		"ball.yaml": testBall,
	})
	s := startScene(t, "scene.yaml")
	assert.Nil(t, s.Physics())

	for i := 0; i < 60; i++ {
		s.Update()
	}
	ball, _ := s.Entity("ball")
	tr, _ := ecs.Get(s.World(), ball, component.TransformComponent)
	assert.Equal(t, 100.0, tr.Y)
}

func TestSceneUpdateScript(t *testing.T) {
	writePrefabs(t, map[string]string{
		"scene.yaml": `width: 800
height: 600
physics: {default: none}
preload: [{key: ball, path: images/240px-Soccerball.svg.png}]
entities: [ball.yaml]
update_script: scripts/kick.tengo
`,
		"ball.yaml": testBall,
		"scripts/kick.tengo": `update := func(engine) {
	engine.set_velocity("ball", 0, -50)
}
`,
	})
	s := startScene(t, "scene.yaml")
	s.Update()

	ball, _ := s.Entity("ball")
	body, ok := ecs.Get(s.World(), ball, component.PhysicsBodyComponent)
	require.True(t, ok)
	assert.Equal(t, -50.0, body.VelocityY)
}

func TestDebugOptionsFromSpec(t *testing.T) {
	s, err := New("scene.yaml", WithLoader(stubLoader))
	require.NoError(t, err)

	opts := s.DebugOptions()
	assert.True(t, opts.ShowBody)
	assert.True(t, opts.ShowStaticBody)
	assert.True(t, opts.ShowVelocity)
	r, g, b, _ := opts.VelocityColor.RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0}, []uint32{r, g, b})
	assert.Contains(t, s.Describe(), "800x600")
}

func TestSceneFailedRestartDropsOldState(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"scene.yaml", "ball.yaml", "floor.yaml", "scripts/update.tengo"} {
		var (
			data []byte
			err  error
		)
		if filepath.Dir(name) == "scripts" {
			data, err = prefabs.LoadScript(name)
		} else {
			data, err = prefabs.Load(name)
		}
		require.NoError(t, err, name)
		files[name] = string(data)
	}
	writePrefabs(t, files)

	s := startScene(t, "scene.yaml")
	for i := 0; i < 5*60; i++ {
		s.Update()
	}
	require.Positive(t, s.Bounces())

	broken := filepath.Join(prefabs.Dir, "scripts", "update.tengo")
	require.NoError(t, os.WriteFile(broken, []byte("update := func(engine {"), 0o644))

	require.Error(t, s.Start())
	assert.Nil(t, s.World())
	assert.Zero(t, s.Bounces(), "bounce count must not survive a failed restart")
	assert.NotPanics(t, func() { s.Update() })
}

func TestSceneTeardownResetsBounces(t *testing.T) {
	s := startScene(t, "scene.yaml")
	for i := 0; i < 5*60; i++ {
		s.Update()
	}
	require.Positive(t, s.Bounces())

	s.Teardown()
	assert.Zero(t, s.Bounces())
}
