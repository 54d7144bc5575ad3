// Command boids runs the flock in an ebiten window.
//
//	boids [config_file]
//
// The optional argument is a JSON or TOML config file. Click the canvas
// to move the target. Space pauses, R resets, C clears the target.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/view"
)

const usage = `Usage: boids [config_file]

The first argument is optional and is the path to a JSON or TOML config file.
`

func main() {
	var cfg *simulation.Config
	var err error
	switch len(os.Args) {
	case 1:
		cfg = simulation.DefaultConfig()
	case 2:
		cfg, err = simulation.LoadConfig(os.Args[1])
	default:
		err = fmt.Errorf("%d arguments provided (0 required, 1 optional)\n\n%s", len(os.Args)-1, usage)
	}
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	system, err := simulation.StartSystem(ctx, cfg, os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
	defer system.Stop(ctx)

	game, err := view.GetNewGame(ctx, cfg, system)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(int(cfg.Width), int(cfg.Height))
	ebiten.SetWindowTitle("Boids: follow the target")
	ebiten.SetTPS(cfg.TPS)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
