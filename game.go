package main

import (
	"log"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/bounce/prefabs"
	"github.com/milk9111/bounce/scene"
	"github.com/milk9111/bounce/settings"
)

type Game struct {
	sceneName  string
	scene      *scene.Scene
	settings   *settings.Store
	watcher    *prefabs.Watcher
	forceDebug bool

	pauseUI *ebitenui.UI
	paused  bool
	quit    bool
}

type GameConfig struct {
	SceneName string
	Debug     bool
	Watch     bool
	Settings  *settings.Store
}

func NewGame(cfg GameConfig) (*Game, error) {
	g := &Game{
		sceneName:  cfg.SceneName,
		settings:   cfg.Settings,
		forceDebug: cfg.Debug,
	}
	if g.settings == nil {
		g.settings = settings.NewStore(nil)
	}

	sc, err := g.startScene()
	if err != nil {
		return nil, err
	}
	g.scene = sc
	log.Printf("game: running %s", sc.Describe())

	if cfg.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			log.Printf("game: prefab watcher disabled: %v", err)
		} else {
			g.watcher = w
		}
	}

	g.pauseUI = NewPauseUI(g)
	return g, nil
}

func (g *Game) startScene() (*scene.Scene, error) {
	sc, err := scene.New(g.sceneName)
	if err != nil {
		return nil, err
	}
	if err := sc.Start(); err != nil {
		return nil, err
	}
	debug := g.settings.Debug(sc.Debug())
	if g.forceDebug {
		debug = true
	}
	sc.SetDebug(debug)
	return sc, nil
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.toggleDebug()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
	}

	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.scene.Size()
}

func (g *Game) Close() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			log.Printf("game: close watcher: %v", err)
		}
	}
	if g.scene != nil {
		g.scene.Teardown()
	}
}

func (g *Game) restart() {
	if err := g.scene.Start(); err != nil {
		log.Printf("game: restart failed: %v", err)
	}
}

func (g *Game) toggleDebug() {
	on := !g.scene.Debug()
	g.scene.SetDebug(on)
	g.settings.SetDebug(on)
	if err := g.settings.Save(); err != nil {
		log.Printf("game: %v", err)
	}
}

// pollWatcher swaps in a freshly built scene when a prefab changes on disk.
// A scene that fails to build is logged and the running one is kept.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	changed, err := g.watcher.Poll()
	if err != nil {
		log.Printf("game: prefab watcher: %v", err)
	}
	if len(changed) == 0 {
		return
	}
	log.Printf("game: reloading after change to %v", changed)

	debug := g.scene.Debug()
	sc, err := scene.New(g.sceneName)
	if err == nil {
		err = sc.Start()
	}
	if err != nil {
		log.Printf("game: reload failed, keeping current scene: %v", err)
		return
	}
	sc.SetDebug(debug)
	g.scene.Teardown()
	g.scene = sc
}
