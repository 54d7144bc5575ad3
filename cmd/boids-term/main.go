// Command boids-term runs the flock in a terminal.
//
//	boids-term [config_file]
//
// Click to move the target. Space pauses, r resets, c clears the target,
// g toggles the grid, q or Esc quits. Logs go to boids-term.log in the
// temp directory.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/termview"
	"github.com/tochemey/goakt/v3/actor"
)

const usage = `Usage: boids-term [config_file]

The first argument is optional and is the path to a JSON or TOML config file.
`

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
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
		return err
	}

	logFile, err := os.Create(filepath.Join(os.TempDir(), "boids-term.log"))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	ctx := context.Background()
	system, err := simulation.StartSystem(ctx, cfg, logFile)
	if err != nil {
		return err
	}
	defer system.Stop(ctx)

	frames := make(chan *simulation.Frame, 1)
	pid, err := simulation.SpawnFlock(ctx, system, cfg, frames)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	v := termview.New(screen, cfg)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(cfg.TPS))
	defer ticker.Stop()

	running := true
	last := &simulation.Frame{}
	for {
		select {
		case ev := <-events:
			msg, action := v.HandleEvent(ev)
			switch action {
			case termview.Quit:
				return nil
			case termview.ToggleRunning:
				running = !running
			case termview.ToggleGrid:
				v.ShowGrid = !v.ShowGrid
			}
			if msg != nil {
				if err := actor.Tell(ctx, pid, msg); err != nil {
					return fmt.Errorf("failed to send %s: %w", simulation.MessageName(msg), err)
				}
			}
			if !running {
				v.Draw(last, termview.Status(last, running))
			}

		case f := <-frames:
			last = f
			v.Draw(last, termview.Status(last, running))

		case <-ticker.C:
			if running {
				if err := actor.Tell(ctx, pid, simulation.NewTick()); err != nil {
					return fmt.Errorf("failed to send tick: %w", err)
				}
			}
		}
	}
}
