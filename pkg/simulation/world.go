package simulation

import (
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-boids-target/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
)

// Frame is what the renderer receives after every step.
type Frame struct {
	Agents    []flock.Agent
	Target    geometry.Vector2D
	HasTarget bool
	Occupied  []flock.Cell // non-empty grid cells, for the grid overlay
	Stats     flock.StepStats

	// Grid geometry, so renderers draw the cells the step actually used.
	CellSize   float64
	Cols, Rows int
}

// FlockActor owns the authoritative flock. Its mailbox serialises target
// commands, resets and steps, so the target has a single writer and a
// command received before a Tick is applied before that Tick's physics.
type FlockActor struct {
	cfg    *Config
	flock  *flock.Flock
	frames chan<- *Frame

	// --- Benchmark Stats ---
	stepCount    int
	msgRecvCount int
	stepTime     time.Duration
	lastLogTime  time.Time
}

var _ actor.Actor = (*FlockActor)(nil)

// NewFlockActor creates the actor; the flock itself is built in PreStart.
// frames may be nil when nobody renders.
func NewFlockActor(cfg *Config, frames chan<- *Frame) *FlockActor {
	return &FlockActor{
		cfg:         cfg,
		frames:      frames,
		lastLogTime: time.Now(),
	}
}

func (w *FlockActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	opts := []flock.Option{flock.WithLogger(logger)}
	if w.cfg.Seed != 0 {
		opts = append(opts, flock.WithSeed(w.cfg.Seed))
	}
	f, err := flock.New(w.cfg.Settings(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create flock: %w", err)
	}
	w.flock = f
	logger.Infof("Flock of %d boids ready on a %.0fx%.0f canvas (cell size %.0f)",
		w.cfg.AgentCount, w.cfg.Width, w.cfg.Height, w.cfg.Settings().CellSize())
	return nil
}

func (w *FlockActor) Receive(ctx *actor.ReceiveContext) {
	if _, ok := ctx.Message().(*goaktpb.PostStart); ok {
		ctx.Logger().Info("Flock started")
		return
	}

	msg := ctx.Message()
	w.msgRecvCount++
	switch MessageName(msg) {

	// The Main Simulation Step (Driven by Game Loop)
	case TickName:
		w.step()
		w.logBenchmarks(ctx)

	case SetTargetName:
		pos, err := TargetFromMessage(msg)
		if err != nil {
			ctx.Err(err)
			return
		}
		w.flock.SetTarget(pos.X, pos.Y)

	case ClearTargetName:
		w.flock.ClearTarget()

	case ResetName:
		w.flock.Reset()
		ctx.Logger().Infof("Flock reset: %d boids", w.cfg.AgentCount)

	case GetSnapshotName:
		ctx.Response(NewSnapshot(w.flock))

	default:
		ctx.Unhandled()
	}
}

func (w *FlockActor) step() {
	agents := w.flock.Step()
	stats := w.flock.Stats()
	w.stepCount++
	w.stepTime += stats.Duration

	target, ok := w.flock.Target()
	grid := w.flock.Grid()
	w.pushFrame(&Frame{
		Agents:    agents,
		Target:    target,
		HasTarget: ok,
		Occupied:  grid.Occupied(),
		Stats:     stats,
		CellSize:  grid.CellSize(),
		Cols:      grid.Cols(),
		Rows:      grid.Rows(),
	})
}

func (w *FlockActor) pushFrame(f *Frame) {
	select {
	case w.frames <- f:
	default:
		// UI busy, skip frame
	}
}

func (w *FlockActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	var avg time.Duration
	if w.stepCount > 0 {
		avg = w.stepTime / time.Duration(w.stepCount)
	}
	ctx.Logger().Infof("📊 STEPS: %d/sec | MSG: %d/sec | avg step %s | %s",
		w.stepCount, w.msgRecvCount, avg, w.flock.Stats())
	w.stepCount = 0
	w.msgRecvCount = 0
	w.stepTime = 0
	w.lastLogTime = time.Now()
}

func (w *FlockActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("Flock is shutdown...")
	return nil
}
