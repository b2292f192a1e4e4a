package component

import "github.com/hajimehoshi/ebiten/v2"

// TileSprite repeats Image over a Width x Height area centered on the transform.
type TileSprite struct {
	Key    string
	Image  *ebiten.Image
	Width  float64
	Height float64
}

var TileSpriteComponent = NewComponent[TileSprite]()
