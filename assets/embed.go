package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed images/*.png
var assetsFS embed.FS

// Texture is a decoded image plus its pixel size. Image is nil for textures
// that were only decoded, not uploaded.
type Texture struct {
	Image  *ebiten.Image
	Width  int
	Height int
}

// Loader resolves an assets-relative path to a texture.
type Loader func(path string) (Texture, error)

// DecodeImage decodes an embedded asset by assets-relative path.
func DecodeImage(path string) (image.Image, error) {
	clean := cleanAssetPath(path)
	b, err := assetsFS.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", clean, err)
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", clean, err)
	}
	return img, nil
}

// LoadImage loads an embedded asset by assets-relative path.
func LoadImage(path string) (*ebiten.Image, error) {
	img, err := DecodeImage(path)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}

// LoadTexture is the Loader used by the game.
func LoadTexture(path string) (Texture, error) {
	img, err := DecodeImage(path)
	if err != nil {
		return Texture{}, err
	}
	b := img.Bounds()
	return Texture{Image: ebiten.NewImageFromImage(img), Width: b.Dx(), Height: b.Dy()}, nil
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if filepath.IsAbs(path) {
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return "images/" + filepath.Base(path)
	}
	return strings.TrimPrefix(s, "assets/")
}
