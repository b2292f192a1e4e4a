package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImage(t *testing.T) {
	cases := []struct {
		path          string
		width, height int
	}{
		{"images/240px-Soccerball.svg.png", 240, 240},
		{"assets/images/shroomRedMid.png", 70, 70},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			img, err := DecodeImage(c.path)
			require.NoError(t, err)
			assert.Equal(t, c.width, img.Bounds().Dx())
			assert.Equal(t, c.height, img.Bounds().Dy())
		})
	}
}

func TestDecodeImageMissing(t *testing.T) {
	_, err := DecodeImage("images/missing.png")
	assert.ErrorContains(t, err, "images/missing.png")
}

func TestCleanAssetPath(t *testing.T) {
	cases := map[string]string{
		"":                              "",
		"images/ball.png":               "images/ball.png",
		"assets/images/ball.png":        "images/ball.png",
		"/home/me/game/assets/images/a": "images/a",
		"/tmp/b.png":                    "images/b.png",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanAssetPath(in), in)
	}
}
