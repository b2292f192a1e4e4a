package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
	// velocityLineScale matches the half-length velocity vectors of arcade debug views.
	velocityLineScale = 0.5
)

// PhysicsDebugOptions selects what the physics overlay draws and in which colors.
type PhysicsDebugOptions struct {
	ShowBody        bool
	ShowStaticBody  bool
	ShowVelocity    bool
	BodyColor       color.Color
	StaticBodyColor color.Color
	VelocityColor   color.Color
}

// DrawPhysicsDebug outlines every body the physics system owns. World bounds are not drawn.
func DrawPhysicsDebug(ps *PhysicsSystem, screen *ebiten.Image, opts PhysicsDebugOptions) {
	if ps == nil || ps.space == nil || screen == nil {
		return
	}

	drawer := &physicsDebugDrawer{screen: screen}
	for _, info := range ps.entities {
		if info.shape == nil {
			continue
		}
		static := info.static || (info.body != nil && info.body.GetType() == cp.BODY_STATIC)
		switch {
		case static && opts.ShowStaticBody:
			drawer.color = opts.StaticBodyColor
		case !static && opts.ShowBody:
			drawer.color = opts.BodyColor
		default:
			continue
		}
		cp.DrawShape(info.shape, drawer)
	}

	if !opts.ShowVelocity {
		return
	}
	drawer.color = opts.VelocityColor
	for _, info := range ps.entities {
		if info.static || info.body == nil {
			continue
		}
		pos := info.body.Position()
		vel := info.body.Velocity()
		drawer.drawLine(pos, pos.Add(vel.Mult(velocityLineScale)))
	}
}

// DrawPhysicsStats prints the movable bodies' positions and velocities in the top left corner.
func DrawPhysicsStats(w *ecs.World, screen *ebiten.Image, bounces int) {
	if w == nil || screen == nil {
		return
	}
	text := fmt.Sprintf("TPS: %.1f  FPS: %.1f  bounces: %d", ebiten.ActualTPS(), ebiten.ActualFPS(), bounces)
	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		if body.Static || body.Immovable {
			continue
		}
		t, _ := ecs.Get(w, e, component.TransformComponent)
		name := e.String()
		if n, ok := ecs.Get(w, e, component.NameComponent); ok {
			name = n.Value
		}
		text += fmt.Sprintf("\n%s: pos=(%.1f, %.1f) vel=(%.1f, %.1f)", name, t.X, t.Y, body.VelocityX, body.VelocityY)
	}
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	color  color.Color
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b)
	if radius > 0 {
		d.drawCircle(a, radius)
		d.drawCircle(b, radius)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count])
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y})
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half})
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return toFColor(d.color)
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return toFColor(d.color)
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return toFColor(d.color)
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return toFColor(d.color)
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector) {
	if d.color == nil {
		return
	}
	ebitenutil.DrawLine(d.screen, a.X, a.Y, b.X, b.Y, d.color)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)])
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points)
}

func toFColor(c color.Color) cp.FColor {
	if c == nil {
		return cp.FColor{}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return cp.FColor{R: float32(n.R) / 255, G: float32(n.G) / 255, B: float32(n.B) / 255, A: float32(n.A) / 255}
}
