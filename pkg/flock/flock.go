package flock

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
)

// StepStats describes the last completed step.
type StepStats struct {
	Frame         uint64
	Agents        int
	OccupiedCells int
	MeanNeighbors float64
	Duration      time.Duration
}

// targetCommand is a target change waiting for the next step.
type targetCommand struct {
	pos   geometry.Vector2D
	clear bool
}

// Flock is the simulation context: the population, the shared target and
// the grid reused from frame to frame. It is not safe for concurrent use;
// the owner (an actor or a game loop) serialises commands and steps.
type Flock struct {
	settings Settings
	agents   []Agent
	next     []Agent // write buffer swapped with agents after each step
	grid     *Grid

	target    geometry.Vector2D
	hasTarget bool
	pending   *targetCommand

	rng    *rand.Rand
	frame  uint64
	stats  StepStats
	logger log.Logger
}

// Option configures a Flock at construction.
type Option func(*Flock)

// WithSeed makes the random population reproducible.
func WithSeed(seed uint64) Option {
	return func(f *Flock) {
		f.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l log.Logger) Option {
	return func(f *Flock) {
		f.logger = l
	}
}

// WithAgents starts from the given population instead of a random one.
// Reset still regenerates Settings.AgentCount random agents.
func WithAgents(agents []Agent) Option {
	return func(f *Flock) {
		f.agents = make([]Agent, len(agents))
		copy(f.agents, agents)
	}
}

// WithoutTarget starts the flock with no target set. By default the
// target sits in the middle of the canvas.
func WithoutTarget() Option {
	return func(f *Flock) {
		f.hasTarget = false
	}
}

// New validates the settings and creates a populated flock.
func New(s Settings, opts ...Option) (*Flock, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	f := &Flock{
		settings:  s,
		grid:      NewGrid(s.Width, s.Height, s.CellSize()),
		target:    geometry.Vector2D{X: s.Width / 2, Y: s.Height / 2},
		hasTarget: true,
		logger:    log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if f.agents == nil {
		f.agents = f.spawn()
	}
	f.next = make([]Agent, len(f.agents))
	return f, nil
}

func (f *Flock) center() geometry.Vector2D {
	return geometry.Vector2D{X: f.settings.Width / 2, Y: f.settings.Height / 2}
}

func (f *Flock) spawn() []Agent {
	agents := make([]Agent, f.settings.AgentCount)
	for i := range agents {
		agents[i] = randomAgent(f.rng, f.settings.Width, f.settings.Height)
	}
	return agents
}

// SetTarget queues a new target position, applied before the physics
// pass of the next step. The last command before a step wins.
func (f *Flock) SetTarget(x, y float64) {
	f.pending = &targetCommand{pos: geometry.Vector2D{X: x, Y: y}}
}

// ClearTarget queues the removal of the target.
func (f *Flock) ClearTarget() {
	f.pending = &targetCommand{clear: true}
}

// Reset replaces the whole population with AgentCount fresh random agents
// and puts the target back in the middle of the canvas. Target commands
// still waiting for a step are dropped.
func (f *Flock) Reset() {
	f.agents = f.spawn()
	f.target = f.center()
	f.hasTarget = true
	f.pending = nil
	f.next = make([]Agent, len(f.agents))
	f.frame = 0
	f.stats = StepStats{}
	f.logger.Debugf("flock reset with %d agents", len(f.agents))
}

// Step advances every agent by one tick and returns a copy of the new
// population. Forces are computed from the population as it stood when
// the step began; results go to a separate buffer that replaces it only
// once every agent is done.
func (f *Flock) Step() []Agent {
	start := time.Now()
	f.applyPending()

	// 1. Spatial index of the pre-step positions
	f.grid.Rebuild(f.agents)

	var target *geometry.Vector2D
	if f.hasTarget {
		t := f.target
		target = &t
	}

	// 2. Forces + integration, read from f.agents, write to f.next
	neighbors := 0
	workers := f.settings.Workers
	if workers <= 1 || len(f.agents) < 2*workers {
		neighbors = f.advance(0, len(f.agents), target)
	} else {
		partial := make([]int, workers)
		chunk := (len(f.agents) + workers - 1) / workers
		var g errgroup.Group
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := min(lo+chunk, len(f.agents))
			if lo >= hi {
				break
			}
			g.Go(func() error {
				partial[w] = f.advance(lo, hi, target)
				return nil
			})
		}
		// barrier: nobody returns an error, Wait is only the join point
		_ = g.Wait()
		for _, n := range partial {
			neighbors += n
		}
	}

	// 3. Publish
	f.agents, f.next = f.next, f.agents
	f.frame++
	f.stats = StepStats{
		Frame:         f.frame,
		Agents:        len(f.agents),
		OccupiedCells: len(f.grid.Occupied()),
		Duration:      time.Since(start),
	}
	if len(f.agents) > 0 {
		f.stats.MeanNeighbors = float64(neighbors) / float64(len(f.agents))
	}
	return f.Agents()
}

// advance computes agents[lo:hi] into next[lo:hi] and returns the number
// of neighbor interactions seen.
func (f *Flock) advance(lo, hi int, target *geometry.Vector2D) int {
	var candidates []int
	total := 0
	for i := lo; i < hi; i++ {
		a := f.agents[i]
		candidates = f.grid.QueryInto(candidates[:0], f.grid.CellOf(a.Pos))
		forces := ComputeForces(i, f.agents, candidates, target, f.settings)
		total += forces.Neighbors
		f.next[i] = Integrate(a, forces.Sum(), f.settings)
	}
	return total
}

func (f *Flock) applyPending() {
	if f.pending == nil {
		return
	}
	if f.pending.clear {
		f.hasTarget = false
		f.logger.Debug("target cleared")
	} else {
		f.target = f.pending.pos
		f.hasTarget = true
		f.logger.Debugf("target moved to %s", f.target)
	}
	f.pending = nil
}

// Agents returns a copy of the current population.
func (f *Flock) Agents() []Agent {
	return append([]Agent(nil), f.agents...)
}

// Target returns the applied target and whether one is set.
func (f *Flock) Target() (geometry.Vector2D, bool) {
	return f.target, f.hasTarget
}

// Grid is the spatial index built during the last step.
func (f *Flock) Grid() *Grid { return f.grid }

// Stats describes the last step.
func (f *Flock) Stats() StepStats { return f.stats }

// Frame is the number of steps since creation or the last Reset.
func (f *Flock) Frame() uint64 { return f.frame }

// Settings returns the configuration the flock was built with.
func (f *Flock) Settings() Settings { return f.settings }

func (s StepStats) String() string {
	return fmt.Sprintf("frame=%d agents=%d cells=%d neighbors=%.1f took=%s",
		s.Frame, s.Agents, s.OccupiedCells, s.MeanNeighbors, s.Duration)
}
