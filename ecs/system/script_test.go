package system

import (
	"testing"

	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScriptWorld(t *testing.T) (*ecs.World, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	ball := w.CreateEntity()
	require.NoError(t, ecs.Add(w, ball, component.NameComponent, component.Name{Value: "ball"}))
	require.NoError(t, ecs.Add(w, ball, component.TransformComponent, component.Transform{X: 12, Y: 34}))
	require.NoError(t, ecs.Add(w, ball, component.PhysicsBodyComponent, component.PhysicsBody{Collider: component.BodyShapeBox, Width: 1, Height: 1}))
	return w, ball
}

func TestScriptSystemEngineFunctions(t *testing.T) {
	src := `
update := func(engine) {
	if engine.frame() == 2 {
		pos := engine.get_position("ball")
		engine.set_velocity("ball", pos[0], pos[1])
	}
}
`
	w, ball := newScriptWorld(t)
	ss, err := NewScriptSystem("test.tengo", []byte(src))
	require.NoError(t, err)

	ss.Update(w)
	body, _ := ecs.Get(w, ball, component.PhysicsBodyComponent)
	assert.Zero(t, body.VelocityX, "frame 1 must not touch the body")

	ss.Update(w)
	body, _ = ecs.Get(w, ball, component.PhysicsBodyComponent)
	assert.Equal(t, 12.0, body.VelocityX)
	assert.Equal(t, 34.0, body.VelocityY)
	assert.Equal(t, 2, ss.Frame())
}

func TestScriptSystemEmptySourceCountsFrames(t *testing.T) {
	w, _ := newScriptWorld(t)
	ss, err := NewScriptSystem("empty.tengo", nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ss.Update(w)
	}
	assert.Equal(t, 3, ss.Frame())
}

func TestScriptSystemCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"syntax", "update := func(engine {"},
		{"missing_update", "x := 1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewScriptSystem(c.name, []byte(c.src))
			assert.Error(t, err)
		})
	}
}

func TestScriptSystemRuntimeErrorDisablesHook(t *testing.T) {
	src := `
update := func(engine) {
	engine.set_velocity("ball", 1, 1)
	engine.missing()
}
`
	w, ball := newScriptWorld(t)
	ss, err := NewScriptSystem("broken.tengo", []byte(src))
	require.NoError(t, err)

	require.NotPanics(t, func() { ss.Update(w) })
	assert.True(t, ss.disabled)

	require.NoError(t, ecs.Add(w, ball, component.PhysicsBodyComponent, component.PhysicsBody{}))
	ss.Update(w)
	body, _ := ecs.Get(w, ball, component.PhysicsBodyComponent)
	assert.Zero(t, body.VelocityX, "disabled hook must not run again")
	assert.Equal(t, 2, ss.Frame())
}

func TestFindByName(t *testing.T) {
	w, ball := newScriptWorld(t)

	e, ok := FindByName(w, "ball")
	require.True(t, ok)
	assert.Equal(t, ball, e)

	_, ok = FindByName(w, "floor")
	assert.False(t, ok)
}
