package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
)

const updateDispatchScript = `
update(__engine)
`

// ScriptSystem runs the scene's per-frame update hook. The script defines
// update(engine); engine exposes frame(), get_position(name),
// get_velocity(name) and set_velocity(name, x, y).
type ScriptSystem struct {
	name     string
	compiled *tengo.Compiled
	frame    int
	disabled bool
}

// NewScriptSystem compiles src, which must define update. An empty source
// yields a system that only counts frames.
func NewScriptSystem(name string, src []byte) (*ScriptSystem, error) {
	ss := &ScriptSystem{name: name}
	if strings.TrimSpace(string(src)) == "" {
		return ss, nil
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + updateDispatchScript))
	if err := script.Add("__engine", map[string]any{}); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script %s: compile: %w", name, err)
	}
	ss.compiled = compiled
	return ss, nil
}

// Frame returns how many updates have run.
func (ss *ScriptSystem) Frame() int {
	if ss == nil {
		return 0
	}
	return ss.frame
}

func (ss *ScriptSystem) Update(w *ecs.World) {
	if ss == nil || w == nil {
		return
	}
	ss.frame++
	if ss.compiled == nil || ss.disabled {
		return
	}

	if err := ss.compiled.Set("__engine", ss.buildEngine(w)); err != nil {
		ss.disable(err)
		return
	}
	if err := ss.compiled.Run(); err != nil {
		ss.disable(err)
	}
}

func (ss *ScriptSystem) disable(err error) {
	log.Printf("script %s: update failed, hook disabled: %v", ss.name, err)
	ss.disabled = true
}

func (ss *ScriptSystem) buildEngine(w *ecs.World) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["frame"] = &tengo.UserFunction{Name: "frame", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(ss.frame)}, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		e, ok := entityArg(w, args)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return floatPair(t.X, t.Y), nil
	}}

	values["get_velocity"] = &tengo.UserFunction{Name: "get_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		e, ok := entityArg(w, args)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return floatPair(body.VelocityX, body.VelocityY), nil
	}}

	values["set_velocity"] = &tengo.UserFunction{Name: "set_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		e, ok := entityArg(w, args)
		if !ok {
			return tengo.FalseValue, nil
		}
		x, okX := tengo.ToFloat64(args[1])
		y, okY := tengo.ToFloat64(args[2])
		if !okX || !okY {
			return nil, tengo.ErrInvalidArgumentType{Name: "velocity", Expected: "float", Found: args[1].TypeName()}
		}
		body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok {
			return tengo.FalseValue, nil
		}
		body.VelocityX, body.VelocityY = x, y
		if body.Body != nil {
			body.Body.SetVelocity(x, y)
		}
		if err := ecs.Add(w, e, component.PhysicsBodyComponent, body); err != nil {
			return nil, err
		}
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func entityArg(w *ecs.World, args []tengo.Object) (ecs.Entity, bool) {
	if len(args) < 1 {
		return 0, false
	}
	name, ok := tengo.ToString(args[0])
	if !ok {
		return 0, false
	}
	return FindByName(w, name)
}

// FindByName returns the first live entity whose Name matches.
func FindByName(w *ecs.World, name string) (ecs.Entity, bool) {
	for _, e := range w.Query(component.NameComponent.Kind()) {
		if n, ok := ecs.Get(w, e, component.NameComponent); ok && n.Value == name {
			return e, true
		}
	}
	return 0, false
}

func floatPair(x, y float64) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}
