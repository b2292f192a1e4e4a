package system

import (
	"image"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
)

type RenderSystem struct{}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

// Drawables returns every entity with a transform and either a sprite or a
// tile sprite, ordered by render layer and then by entity id.
func (r *RenderSystem) Drawables(w *ecs.World) []ecs.Entity {
	entities := w.Query(component.TransformComponent.Kind(), component.SpriteComponent.Kind())
	for _, e := range w.Query(component.TransformComponent.Kind(), component.TileSpriteComponent.Kind()) {
		if !ecs.Has(w, e, component.SpriteComponent) {
			entities = append(entities, e)
		}
	}
	sort.SliceStable(entities, func(i, j int) bool {
		li := 0
		if layer, ok := ecs.Get(w, entities[i], component.RenderLayerComponent); ok {
			li = layer.Index
		}
		lj := 0
		if layer, ok := ecs.Get(w, entities[j], component.RenderLayerComponent); ok {
			lj = layer.Index
		}
		if li != lj {
			return li < lj
		}
		return uint64(entities[i]) < uint64(entities[j])
	})
	return entities
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	for _, e := range r.Drawables(w) {
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		if s, ok := ecs.Get(w, e, component.SpriteComponent); ok && s.Image != nil {
			drawSprite(screen, t, s)
		}
		if ts, ok := ecs.Get(w, e, component.TileSpriteComponent); ok && ts.Image != nil {
			drawTileSprite(screen, t, ts)
		}
	}
}

func drawSprite(screen *ebiten.Image, t component.Transform, s component.Sprite) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-s.OriginX, -s.OriginY)

	sx := t.ScaleX
	if sx == 0 {
		sx = 1
	}
	sy := t.ScaleY
	if sy == 0 {
		sy = 1
	}

	op.GeoM.Scale(sx, sy)
	op.GeoM.Rotate(t.Rotation)
	op.GeoM.Translate(t.X, t.Y)
	screen.DrawImage(s.Image, op)
}

// drawTileSprite repeats the tile from the top-left corner of the area,
// cropping the last row and column.
func drawTileSprite(screen *ebiten.Image, t component.Transform, ts component.TileSprite) {
	tw := ts.Image.Bounds().Dx()
	th := ts.Image.Bounds().Dy()
	if tw <= 0 || th <= 0 || ts.Width <= 0 || ts.Height <= 0 {
		return
	}
	left := t.X - ts.Width/2
	top := t.Y - ts.Height/2
	areaW := int(ts.Width)
	areaH := int(ts.Height)

	for y := 0; y < areaH; y += th {
		for x := 0; x < areaW; x += tw {
			w := min(tw, areaW-x)
			h := min(th, areaH-y)
			tile, ok := ts.Image.SubImage(image.Rect(0, 0, w, h).Add(ts.Image.Bounds().Min)).(*ebiten.Image)
			if !ok {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(left+float64(x), top+float64(y))
			screen.DrawImage(tile, op)
		}
	}
}
