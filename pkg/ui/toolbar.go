package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	Contains(x, y float64) bool
	GetWidth() float64
}

// Toolbar lays widgets out left to right in a strip.
type Toolbar struct {
	X, Y          float64
	Width, Height float64
	Spacing       float64
	Widgets       []UIWidget

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewToolbar creates an empty toolbar
func NewToolbar(x, y, width, height float64) *Toolbar {
	return &Toolbar{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Spacing:     10,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

func (t *Toolbar) nextX() float64 {
	x := t.X + t.Spacing
	for _, w := range t.Widgets {
		x += w.GetWidth() + t.Spacing
	}
	return x
}

// AddButton appends a button sized to the toolbar height.
func (t *Toolbar) AddButton(label string, width float64, onClick func()) *Button {
	b := NewButton(t.nextX(), t.Y+4, width, t.Height-8, label, onClick)
	t.Widgets = append(t.Widgets, b)
	return b
}

// AddCheckbox appends a checkbox vertically centered in the toolbar.
func (t *Toolbar) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(t.nextX(), 0, label, value)
	c.Y = t.Y + (t.Height-c.Size)/2
	t.Widgets = append(t.Widgets, c)
	return c
}

// Contains reports whether the point falls on the toolbar strip, so
// callers can ignore clicks meant for the controls.
func (t *Toolbar) Contains(x, y float64) bool {
	return x >= t.X && x <= t.X+t.Width && y >= t.Y && y <= t.Y+t.Height
}

// Update forwards input to every widget
func (t *Toolbar) Update() {
	for _, w := range t.Widgets {
		w.Update()
	}
}

// Draw renders the strip and its widgets
func (t *Toolbar) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(t.X), float32(t.Y),
		float32(t.Width), float32(t.Height),
		t.BGColor, true)
	vector.StrokeRect(screen,
		float32(t.X), float32(t.Y),
		float32(t.Width), float32(t.Height),
		1, t.BorderColor, true)

	for _, w := range t.Widgets {
		w.Draw(screen)
	}
}
