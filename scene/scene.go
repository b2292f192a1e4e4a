package scene

import (
	"errors"
	"fmt"
	"image/color"
	"log"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/bounce/assets"
	"github.com/milk9111/bounce/common"
	"github.com/milk9111/bounce/ecs"
	"github.com/milk9111/bounce/ecs/component"
	"github.com/milk9111/bounce/ecs/entity"
	"github.com/milk9111/bounce/ecs/system"
	"github.com/milk9111/bounce/prefabs"
	"golang.org/x/image/colornames"
)

var (
	ErrNotPreloaded    = errors.New("scene: create called before preload")
	ErrUnknownEntity   = errors.New("scene: unknown entity")
	ErrSelfCollider    = errors.New("scene: entity cannot collide with itself")
	ErrDuplicateEntity = errors.New("scene: duplicate entity name")
)

// Scene runs one scene prefab through preload, create, update and teardown.
type Scene struct {
	id       string
	specName string
	spec     *prefabs.SceneSpec
	loader   assets.Loader
	tps      int

	textures map[string]assets.Texture
	world    *ecs.World
	named    map[string]ecs.Entity
	pairs    [][2]ecs.Entity

	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	render    *system.RenderSystem
	script    *system.ScriptSystem
	bounces   *system.BounceCounter

	debug bool
}

type Option func(*Scene)

// WithLoader replaces the texture loader, e.g. to avoid GPU uploads in tests.
func WithLoader(loader assets.Loader) Option {
	return func(s *Scene) {
		if loader != nil {
			s.loader = loader
		}
	}
}

// WithTPS sets the tick rate the physics step is derived from.
func WithTPS(tps int) Option {
	return func(s *Scene) {
		if tps > 0 {
			s.tps = tps
		}
	}
}

// New loads and validates the scene prefab. Nothing is created until Start.
func New(specName string, opts ...Option) (*Scene, error) {
	spec, err := prefabs.LoadSceneSpec(specName)
	if err != nil {
		return nil, err
	}
	s := &Scene{
		id:       uuid.NewString(),
		specName: specName,
		spec:     spec,
		loader:   assets.LoadTexture,
		tps:      ebiten.DefaultTPS,
		debug:    spec.Physics.Arcade.Debug,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scene) ID() string {
	return s.id
}

func (s *Scene) Spec() *prefabs.SceneSpec {
	return s.spec
}

func (s *Scene) World() *ecs.World {
	return s.world
}

func (s *Scene) Physics() *system.PhysicsSystem {
	return s.physics
}

func (s *Scene) Debug() bool {
	return s.debug
}

func (s *Scene) SetDebug(on bool) {
	s.debug = on
}

func (s *Scene) Bounces() int {
	return s.bounces.Count()
}

// Size returns the canvas size in pixels.
func (s *Scene) Size() (int, int) {
	return s.spec.Width, s.spec.Height
}

// Entity returns a created entity by prefab name.
func (s *Scene) Entity(name string) (ecs.Entity, bool) {
	e, ok := s.named[name]
	return e, ok
}

// Colliders returns the registered collider pairs in registration order.
func (s *Scene) Colliders() [][2]ecs.Entity {
	return append([][2]ecs.Entity(nil), s.pairs...)
}

// Start runs preload and create.
func (s *Scene) Start() error {
	if err := s.Preload(); err != nil {
		return err
	}
	return s.Create()
}

// Preload loads every declared texture.
func (s *Scene) Preload() error {
	textures := make(map[string]assets.Texture, len(s.spec.Preload))
	for _, a := range s.spec.Preload {
		tex, err := s.loader(a.Path)
		if err != nil {
			return fmt.Errorf("scene: preload %q: %w", a.Key, err)
		}
		textures[a.Key] = tex
	}
	s.textures = textures
	log.Printf("scene %s: preloaded %d textures", s.id, len(textures))
	return nil
}

// Create builds the world: world bounds, the prefab entities, the collider
// pairs and the systems. A failed create leaves the scene torn down.
func (s *Scene) Create() error {
	if s.textures == nil {
		return ErrNotPreloaded
	}
	s.Teardown()
	s.world = ecs.NewWorld()
	s.named = make(map[string]ecs.Entity, len(s.spec.Entities))

	if err := s.create(); err != nil {
		s.Teardown()
		return err
	}
	log.Printf("scene %s: created %d entities, %d colliders, backend=%s", s.id, len(s.named), len(s.pairs), s.spec.Physics.Default)
	return nil
}

func (s *Scene) create() error {
	bounds := s.world.CreateEntity()
	if err := ecs.Add(s.world, bounds, component.WorldBoundsComponent, component.WorldBounds{
		Width:  float64(s.spec.Width),
		Height: float64(s.spec.Height),
	}); err != nil {
		return fmt.Errorf("scene: add world bounds: %w", err)
	}

	ctx := entity.BuildContext{
		Textures:     s.textures,
		CanvasWidth:  float64(s.spec.Width),
		CanvasHeight: float64(s.spec.Height),
	}
	for _, prefab := range s.spec.Entities {
		ctx.PrefabPath = prefab
		spec, err := prefabs.LoadEntityBuildSpec(prefab)
		if err != nil {
			return fmt.Errorf("scene: %w", err)
		}
		if _, dup := s.named[spec.Name]; dup && spec.Name != "" {
			return fmt.Errorf("%w: %q in %s", ErrDuplicateEntity, spec.Name, prefab)
		}
		e, err := entity.BuildEntityFromSpec(s.world, spec, ctx)
		if err != nil {
			return fmt.Errorf("scene: %w", err)
		}
		if spec.Name != "" {
			s.named[spec.Name] = e
		}
	}

	for _, pair := range s.spec.Colliders {
		a, ok := s.named[pair[0]]
		if !ok {
			return fmt.Errorf("%w: collider names %q", ErrUnknownEntity, pair[0])
		}
		b, ok := s.named[pair[1]]
		if !ok {
			return fmt.Errorf("%w: collider names %q", ErrUnknownEntity, pair[1])
		}
		if err := s.AddCollider(a, b); err != nil {
			return err
		}
	}

	return s.buildSystems()
}

// AddCollider registers a collision response between a and b.
func (s *Scene) AddCollider(a, b ecs.Entity) error {
	if s.world == nil {
		return ErrNotPreloaded
	}
	if a == b {
		return ErrSelfCollider
	}
	if !s.world.IsAlive(a) || !s.world.IsAlive(b) {
		return fmt.Errorf("scene: add collider %s/%s: %w", a, b, component.ErrEntityNotAlive)
	}
	e := s.world.CreateEntity()
	if err := ecs.Add(s.world, e, component.ColliderPairComponent, component.ColliderPair{A: uint64(a), B: uint64(b)}); err != nil {
		return fmt.Errorf("scene: add collider: %w", err)
	}
	s.pairs = append(s.pairs, [2]ecs.Entity{a, b})
	return nil
}

func (s *Scene) buildSystems() error {
	var src []byte
	if s.spec.UpdateScript != "" {
		var err error
		src, err = prefabs.LoadScript(s.spec.UpdateScript)
		if err != nil {
			return fmt.Errorf("scene: load update script %q: %w", s.spec.UpdateScript, err)
		}
	}
	script, err := system.NewScriptSystem(s.spec.UpdateScript, src)
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	s.script = script
	s.render = system.NewRenderSystem()
	s.bounces = system.NewBounceCounter()
	s.physics = nil
	if s.spec.Physics.Default == prefabs.BackendArcade {
		g := s.spec.Physics.Arcade.Gravity
		s.physics = system.NewPhysicsSystem(g.X, g.Y, 1/float64(s.tps))
	}

	s.scheduler = ecs.NewScheduler()
	if s.physics != nil {
		s.scheduler.Add(s.physics)
	}
	s.scheduler.Add(s.script)
	s.scheduler.Add(s.bounces)
	return nil
}

// Update advances the scene by one tick. It is a no-op before Create.
func (s *Scene) Update() {
	if s.world == nil || s.scheduler == nil {
		return
	}
	s.scheduler.Update(s.world)
}

// Teardown destroys every entity and drops the systems.
func (s *Scene) Teardown() {
	if s.world != nil {
		for _, e := range s.world.Entities() {
			s.world.DestroyEntity(e)
		}
		log.Printf("scene %s: torn down", s.id)
	}
	s.world = nil
	s.named = nil
	s.pairs = nil
	s.scheduler = nil
	s.physics = nil
	s.script = nil
	s.render = nil
	s.bounces = nil
}

// Draw renders the scene and, when debug is on, the physics overlay.
func (s *Scene) Draw(screen *ebiten.Image) {
	screen.Fill(prefabs.ColorOr(s.spec.Background, color.Black))
	if s.world == nil {
		return
	}
	s.render.Draw(s.world, screen)
	if !s.debug {
		return
	}
	if s.physics != nil {
		system.DrawPhysicsDebug(s.physics, screen, s.DebugOptions())
	}
	system.DrawPhysicsStats(s.world, screen, s.bounces.Count())
}

// DebugOptions returns the overlay configuration from the scene prefab.
func (s *Scene) DebugOptions() system.PhysicsDebugOptions {
	arcade := s.spec.Physics.Arcade
	return system.PhysicsDebugOptions{
		ShowBody:        arcade.DebugShowBody,
		ShowStaticBody:  arcade.DebugShowStaticBody,
		ShowVelocity:    arcade.DebugShowVelocity,
		BodyColor:       prefabs.ColorOr(arcade.DebugBodyColor, colornames.Magenta),
		StaticBodyColor: prefabs.ColorOr(arcade.DebugStaticBodyColor, colornames.White),
		VelocityColor:   prefabs.ColorOr(arcade.DebugVelocityColor, colornames.Yellow),
	}
}

// Describe is a one-line summary for logs.
func (s *Scene) Describe() string {
	return fmt.Sprintf("%s (%s, %dx%d @%d tps, %s)", s.specName, s.id, s.spec.Width, s.spec.Height, s.tps, common.Version)
}
