package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendArcade = "arcade"
	BackendNone   = "none"
)

var (
	ErrUnknownBackend  = errors.New("prefabs: unknown physics backend")
	ErrInvalidSize     = errors.New("prefabs: canvas size must be positive")
	ErrDuplicateAsset  = errors.New("prefabs: duplicate preload key")
	ErrInvalidCollider = errors.New("prefabs: invalid collider pair")
	ErrNoEntities      = errors.New("prefabs: scene has no entities")
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec is the static configuration of a scene: canvas, physics, the
// assets to preload, the entities to create and the collider pairs to register.
type SceneSpec struct {
	Width        int         `yaml:"width"`
	Height       int         `yaml:"height"`
	Physics      PhysicsSpec `yaml:"physics"`
	Preload      []AssetSpec `yaml:"preload"`
	Entities     []string    `yaml:"entities"`
	Colliders    [][]string  `yaml:"colliders"`
	UpdateScript string      `yaml:"update_script"`
	Background   *YAMLColor  `yaml:"background"`
}

type PhysicsSpec struct {
	Default string     `yaml:"default"`
	Arcade  ArcadeSpec `yaml:"arcade"`
}

type ArcadeSpec struct {
	Gravity              VectorSpec `yaml:"gravity"`
	Debug                bool       `yaml:"debug"`
	DebugShowBody        bool       `yaml:"debug_show_body"`
	DebugShowStaticBody  bool       `yaml:"debug_show_static_body"`
	DebugShowVelocity    bool       `yaml:"debug_show_velocity"`
	DebugVelocityColor   *YAMLColor `yaml:"debug_velocity_color"`
	DebugBodyColor       *YAMLColor `yaml:"debug_body_color"`
	DebugStaticBodyColor *YAMLColor `yaml:"debug_static_body_color"`
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type AssetSpec struct {
	Key  string `yaml:"key"`
	Path string `yaml:"path"`
}

func LoadSceneSpec(filename string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

// Validate checks the parts of the scene that can be checked without building it.
// Collider names are resolved against built entities by the scene itself.
func (s *SceneSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	switch s.Physics.Default {
	case BackendArcade, BackendNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, s.Physics.Default)
	}
	seen := make(map[string]struct{}, len(s.Preload))
	for _, a := range s.Preload {
		if a.Key == "" || a.Path == "" {
			return fmt.Errorf("prefabs: preload entry needs key and path: %+v", a)
		}
		if _, dup := seen[a.Key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateAsset, a.Key)
		}
		seen[a.Key] = struct{}{}
	}
	if len(s.Entities) == 0 {
		return ErrNoEntities
	}
	for _, pair := range s.Colliders {
		if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
			return fmt.Errorf("%w: %v", ErrInvalidCollider, pair)
		}
		if pair[0] == pair[1] {
			return fmt.Errorf("%w: %q collides with itself", ErrInvalidCollider, pair[0])
		}
	}
	return nil
}

// YAMLColor accepts "#RRGGBB", "#RRGGBBAA", "0xRRGGBB" or a plain integer RGB value.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a scalar")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}

// ParseColor parses a hex color string. Strings without a prefix that are all
// digits are read as a decimal RGB integer.
func ParseColor(raw string) (color.Color, error) {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	default:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil || v > 0xffffff {
			return nil, fmt.Errorf("invalid color format: %s", raw)
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}

	if len(s) != 6 && len(s) != 8 {
		return nil, fmt.Errorf("invalid color format: %s", raw)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return nil, err
	}
	g, err := parse(2)
	if err != nil {
		return nil, err
	}
	b, err := parse(4)
	if err != nil {
		return nil, err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return nil, err
		}
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// ColorOr returns c's color, or fallback when c is unset.
func ColorOr(c *YAMLColor, fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
