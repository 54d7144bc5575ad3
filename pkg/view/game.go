// Package view renders the flock in an ebiten window and turns mouse and
// keyboard input into commands for the flock actor.
package view

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/ui"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/proto"
)

const (
	toolbarHeight     = 32
	tapIndicatorSize  = 40
	tapIndicatorFade  = 3 * time.Second
	boidLength        = 6.0
	boidWingLength    = 5.0
	boidWingAngle     = 2.5
	maxBufferedFrames = 10
)

// Pre-rendered source image for fast batched triangles
var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

type tap struct {
	pos  geometry.Vector2D
	born time.Time
}

type Game struct {
	ctx      context.Context
	System   actor.ActorSystem
	flockPID *actor.PID
	frames   chan *simulation.Frame
	last     *simulation.Frame
	logger   log.Logger
	cfg      *simulation.Config

	running bool
	lastTap *tap

	// UI Controls
	toolbar    *ui.Toolbar
	runButton  *ui.Button
	showGrid   *ui.Checkbox
	showTarget *ui.Checkbox

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

// GetNewGame spawns the flock actor on system and builds the window UI.
func GetNewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem) (*Game, error) {
	// Buffer to avoid blocking the actor
	frames := make(chan *simulation.Frame, maxBufferedFrames)

	pid, err := simulation.SpawnFlock(ctx, system, cfg, frames)
	if err != nil {
		return nil, err
	}

	g := &Game{
		ctx:      ctx,
		System:   system,
		flockPID: pid,
		frames:   frames,
		last:     &simulation.Frame{}, // Avoid nil pointer
		logger:   system.Logger(),
		cfg:      cfg,
		running:  true,
	}

	g.toolbar = ui.NewToolbar(0, 0, cfg.Width, toolbarHeight)
	g.runButton = g.toolbar.AddButton("Stop", 70, g.toggleRunning)
	g.toolbar.AddButton("Reset", 70, g.reset)
	g.toolbar.AddButton("Clear target", 90, func() { g.tell(simulation.NewClearTarget()) })
	g.showGrid = g.toolbar.AddCheckbox("Grid", cfg.ShowGrid)
	g.showTarget = g.toolbar.AddCheckbox("Target", true)
	return g, nil
}

func (g *Game) tell(msg proto.Message) {
	if err := actor.Tell(g.ctx, g.flockPID, msg); err != nil {
		g.logger.Warnf("failed to send %s: %v", simulation.MessageName(msg), err)
	}
}

func (g *Game) toggleRunning() {
	g.running = !g.running
	if g.running {
		g.runButton.Label = "Stop"
	} else {
		g.runButton.Label = "Start"
	}
}

func (g *Game) reset() {
	g.tell(simulation.NewReset())
	g.lastTap = nil
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// 1. Controls
	g.toolbar.Update()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.toggleRunning()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.tell(simulation.NewClearTarget())
	}

	// 2. Taps on the canvas move the target, only while running
	if g.running && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		x, y := float64(mx), float64(my)
		if !g.toolbar.Contains(x, y) {
			g.tell(simulation.NewSetTarget(x, y))
			g.lastTap = &tap{pos: geometry.Vector2D{X: x, Y: y}, born: time.Now()}
		}
	}

	// 3. Latest frame, non-blocking
	select {
	case f := <-g.frames:
		g.last = f
	default:
		// Use previous frame if new one isn't ready
	}

	// 4. Trigger Simulation Step
	if g.running {
		g.tell(simulation.NewTick())
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})

	if g.showGrid.Value {
		g.drawGrid(screen)
	}
	for i := range g.last.Agents {
		drawBoid(screen, &g.last.Agents[i])
	}
	if g.showTarget.Value && g.last.HasTarget {
		t := g.last.Target
		vector.StrokeCircle(screen, float32(t.X), float32(t.Y), 6, 2,
			color.RGBA{R: 255, G: 80, B: 80, A: 255}, true)
	}
	g.drawTapIndicator(screen)

	g.toolbar.Draw(screen)

	st := g.last.Stats
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nBoids: %d\nCells: %d\nNeighbors: %.1f\nStep:   %.2fms\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		st.Agents,
		st.OccupiedCells,
		st.MeanNeighbors,
		float64(st.Duration.Microseconds())/1000.0,
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.Width)-150, toolbarHeight+10)
}

// drawGrid outlines every cell and highlights the ones holding boids.
func (g *Game) drawGrid(screen *ebiten.Image) {
	f := g.last
	if f.CellSize <= 0 {
		return // no step yet
	}
	cell := float32(f.CellSize)
	w, h := float32(g.cfg.Width), float32(g.cfg.Height)
	line := color.RGBA{R: 255, G: 255, B: 255, A: 40}
	active := color.RGBA{R: 255, G: 255, B: 0, A: 25}

	for _, c := range f.Occupied {
		vector.FillRect(screen, float32(c.X)*cell, float32(c.Y)*cell, cell, cell, active, false)
	}
	for i := 0; i <= f.Cols; i++ {
		x := min(float32(i)*cell, w)
		vector.StrokeLine(screen, x, 0, x, h, 1, line, false)
	}
	for i := 0; i <= f.Rows; i++ {
		y := min(float32(i)*cell, h)
		vector.StrokeLine(screen, 0, y, w, y, 1, line, false)
	}
}

// drawTapIndicator fades the last tap ring out over tapIndicatorFade.
func (g *Game) drawTapIndicator(screen *ebiten.Image) {
	if g.lastTap == nil {
		return
	}
	age := time.Since(g.lastTap.born)
	if age > tapIndicatorFade {
		g.lastTap = nil
		return
	}
	alpha := 0.8 - 0.4*float64(age)/float64(tapIndicatorFade)
	clr := color.RGBA{R: 255, G: 255, B: 255, A: uint8(alpha * 255)}
	vector.StrokeCircle(screen,
		float32(g.lastTap.pos.X), float32(g.lastTap.pos.Y),
		tapIndicatorSize/2, 2, clr, true)
}

func drawBoid(screen *ebiten.Image, b *flock.Agent) {
	angle := b.Heading

	tipX := b.Pos.X + math.Cos(angle)*boidLength
	tipY := b.Pos.Y + math.Sin(angle)*boidLength
	rightX := b.Pos.X + math.Cos(angle+boidWingAngle)*boidWingLength
	rightY := b.Pos.Y + math.Sin(angle+boidWingAngle)*boidWingLength
	leftX := b.Pos.X + math.Cos(angle-boidWingAngle)*boidWingLength
	leftY := b.Pos.Y + math.Sin(angle-boidWingAngle)*boidWingLength

	vertices := []ebiten.Vertex{
		{DstX: float32(tipX), DstY: float32(tipY), SrcX: 1, SrcY: 1, ColorR: 0.4, ColorG: 0.8, ColorB: 1, ColorA: 1},
		{DstX: float32(rightX), DstY: float32(rightY), SrcX: 1, SrcY: 1, ColorR: 0.4, ColorG: 0.8, ColorB: 1, ColorA: 1},
		{DstX: float32(leftX), DstY: float32(leftY), SrcX: 1, SrcY: 1, ColorR: 0.4, ColorG: 0.8, ColorB: 1, ColorA: 1},
	}
	indices := []uint16{0, 1, 2}

	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.Width), int(g.cfg.Height) }
