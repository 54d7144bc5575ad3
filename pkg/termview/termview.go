// Package termview draws flock frames into a terminal with tcell and maps
// terminal input back to canvas coordinates.
package termview

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/simulation"
	"google.golang.org/protobuf/proto"
)

// Action is a local UI action that does not go to the flock actor.
type Action int

const (
	NoAction Action = iota
	Quit
	ToggleRunning
	ToggleGrid
)

// Arrows indexed by heading in eighths of a turn. Screen y grows
// downwards, so a positive heading points down.
var arrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

var (
	boidStyle   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	targetStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	cellStyle   = tcell.StyleDefault.Background(tcell.NewRGBColor(40, 40, 0))
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// View renders the canvas scaled to the terminal, keeping the last row
// for a status line.
type View struct {
	screen   tcell.Screen
	width    float64
	height   float64
	ShowGrid bool

	pressed bool // Button1 held since the last mouse event
}

func New(screen tcell.Screen, cfg *simulation.Config) *View {
	return &View{
		screen:   screen,
		width:    cfg.Width,
		height:   cfg.Height,
		ShowGrid: cfg.ShowGrid,
	}
}

// area is the number of terminal columns and rows used for the canvas.
func (v *View) area() (cols, rows int) {
	cols, rows = v.screen.Size()
	if rows > 1 {
		rows--
	}
	return max(cols, 1), max(rows, 1)
}

// ToScreen maps a canvas position to a terminal cell.
func (v *View) ToScreen(p geometry.Vector2D) (col, row int) {
	cols, rows := v.area()
	col = int(p.X / v.width * float64(cols))
	row = int(p.Y / v.height * float64(rows))
	return min(max(col, 0), cols-1), min(max(row, 0), rows-1)
}

// ToCanvas maps a terminal cell to the canvas position at its center.
func (v *View) ToCanvas(col, row int) (x, y float64) {
	cols, rows := v.area()
	x = (float64(col) + 0.5) * v.width / float64(cols)
	y = (float64(row) + 0.5) * v.height / float64(rows)
	return x, y
}

// Arrow picks the glyph closest to heading.
func Arrow(heading float64) rune {
	i := int(math.Round(heading/(math.Pi/4))) % len(arrows)
	if i < 0 {
		i += len(arrows)
	}
	return arrows[i]
}

// Draw renders f and a status line, then shows the screen.
func (v *View) Draw(f *simulation.Frame, status string) {
	v.screen.Clear()

	if v.ShowGrid && f.CellSize > 0 {
		for _, c := range f.Occupied {
			v.fillCell(c, f.CellSize)
		}
	}
	for i := range f.Agents {
		a := &f.Agents[i]
		col, row := v.ToScreen(a.Pos)
		_, _, style, _ := v.screen.GetContent(col, row)
		_, bg, _ := style.Decompose()
		v.screen.SetContent(col, row, Arrow(a.Heading), nil, boidStyle.Background(bg))
	}
	if f.HasTarget {
		col, row := v.ToScreen(f.Target)
		v.screen.SetContent(col, row, '◎', nil, targetStyle)
	}

	cols, rows := v.screen.Size()
	if rows > 1 {
		line := []rune(status)
		for x := 0; x < cols; x++ {
			r := ' '
			if x < len(line) {
				r = line[x]
			}
			v.screen.SetContent(x, rows-1, r, nil, statusStyle)
		}
	}
	v.screen.Show()
}

// fillCell shades the terminal cells covering grid cell c.
func (v *View) fillCell(c flock.Cell, size float64) {
	x0 := float64(c.X) * size
	y0 := float64(c.Y) * size
	c0, r0 := v.ToScreen(geometry.Vector2D{X: x0, Y: y0})
	c1, r1 := v.ToScreen(geometry.Vector2D{
		X: math.Min(x0+size, v.width) - geometry.Epsilon,
		Y: math.Min(y0+size, v.height) - geometry.Epsilon,
	})
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			v.screen.SetContent(col, row, ' ', nil, cellStyle)
		}
	}
}

// HandleEvent turns a terminal event into a flock command, a local
// action, or both as nil/NoAction when the event is irrelevant.
func (v *View) HandleEvent(ev tcell.Event) (proto.Message, Action) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return nil, Quit
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return nil, Quit
			case ' ':
				return nil, ToggleRunning
			case 'g':
				return nil, ToggleGrid
			case 'r':
				return simulation.NewReset(), NoAction
			case 'c':
				return simulation.NewClearTarget(), NoAction
			}
		}

	case *tcell.EventMouse:
		// Like a tap, the target moves when the button is released.
		if ev.Buttons()&tcell.Button1 != 0 {
			v.pressed = true
			return nil, NoAction
		}
		if !v.pressed {
			return nil, NoAction
		}
		v.pressed = false
		col, row := ev.Position()
		if _, rows := v.area(); row >= rows {
			return nil, NoAction // status line
		}
		return simulation.NewSetTarget(v.ToCanvas(col, row)), NoAction

	case *tcell.EventResize:
		v.screen.Sync()
	}
	return nil, NoAction
}

// Status formats the status line for a frame.
func Status(f *simulation.Frame, running bool) string {
	state := "running"
	if !running {
		state = "paused"
	}
	return fmt.Sprintf(" %s | %s | [space] pause [r] reset [c] clear [g] grid [q] quit", state, f.Stats)
}
