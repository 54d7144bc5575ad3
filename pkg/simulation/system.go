package simulation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
)

// FlockActorName is the name the flock actor is spawned under.
const FlockActorName = "flock"

// StartSystem creates and starts the actor system with a logger at the
// configured level. Logs go to out, or to stderr when out is nil.
func StartSystem(ctx context.Context, cfg *Config, out io.Writer) (actor.ActorSystem, error) {
	if out == nil {
		out = os.Stderr
	}
	logger := log.New(cfg.Level(), out)

	system, err := actor.NewActorSystem("boids", actor.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}
	return system, nil
}

// SpawnFlock starts the flock actor. Frames are pushed on frames after
// every Tick when the channel has room.
func SpawnFlock(ctx context.Context, system actor.ActorSystem, cfg *Config, frames chan<- *Frame) (*actor.PID, error) {
	pid, err := system.Spawn(ctx, FlockActorName, NewFlockActor(cfg, frames))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn flock: %w", err)
	}
	return pid, nil
}
