package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/bounce/common"
	"github.com/milk9111/bounce/settings"
)

func main() {
	sceneName := flag.String("scene", common.DefaultScene, "scene prefab in prefabs/ (embedded copy used when not on disk)")
	debug := flag.Bool("debug", false, "force the physics debug overlay on")
	watch := flag.Bool("watch", false, "reload the scene when files in prefabs/ change")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	store, err := settings.Open(common.SettingsApp)
	if err != nil {
		log.Printf("%v (settings will not persist)", err)
	}

	game, err := NewGame(GameConfig{
		SceneName: *sceneName,
		Debug:     *debug,
		Watch:     *watch,
		Settings:  store,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	w, h := game.scene.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(common.WindowTitle)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
