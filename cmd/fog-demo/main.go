package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Fog-Sense/internal/config"
	"github.com/Garsondee/Fog-Sense/internal/fogview"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "scenario TOML file (default: built-in scenario)")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	ebiten.SetWindowTitle("Fog Sense")
	ebiten.SetWindowSize(cfg.Grid.Width*cfg.Surface.Upscale*3, cfg.Grid.Height*cfg.Surface.Upscale*3)
	if err := ebiten.RunGame(fogview.New(cfg)); err != nil {
		log.Fatal(err)
	}
}
