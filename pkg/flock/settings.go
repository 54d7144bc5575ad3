package flock

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSettings is wrapped by every error returned from Settings.Validate.
var ErrInvalidSettings = errors.New("invalid flock settings")

// Settings controls the physics constants for the simulation.
// They are fixed when the Flock is created.
type Settings struct {
	Width  float64 // canvas extent
	Height float64

	AgentCount int
	MaxSpeed   float64

	SeparationDistance float64 // Personal space radius
	AlignmentDistance  float64 // Heading matching radius
	CohesionDistance   float64 // How far can they see the group?

	SeparationStrength float64
	AlignmentStrength  float64
	CohesionStrength   float64
	TargetStrength     float64

	// Workers > 1 splits each step across that many goroutines.
	Workers int
}

// DefaultSettings returns the tuning used by the mobile version of the game.
func DefaultSettings() Settings {
	return Settings{
		Width:              800,
		Height:             600,
		AgentCount:         200,
		MaxSpeed:           5,
		SeparationDistance: 40,
		AlignmentDistance:  50,
		CohesionDistance:   70,
		SeparationStrength: 2.5,
		AlignmentStrength:  1,
		CohesionStrength:   1,
		TargetStrength:     2,
		Workers:            1,
	}
}

// CellSize is the largest interaction radius, so a 3x3 block of cells
// covers every neighbor an agent can react to.
func (s Settings) CellSize() float64 {
	return math.Max(s.SeparationDistance, math.Max(s.AlignmentDistance, s.CohesionDistance))
}

// Validate reports the first setting that would make the simulation meaningless.
func (s Settings) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"width", s.Width},
		{"height", s.Height},
		{"maxSpeed", s.MaxSpeed},
		{"separationDistance", s.SeparationDistance},
		{"alignmentDistance", s.AlignmentDistance},
		{"cohesionDistance", s.CohesionDistance},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s must be a positive finite number, got %v", ErrInvalidSettings, p.name, p.value)
		}
	}

	strengths := []struct {
		name  string
		value float64
	}{
		{"separationStrength", s.SeparationStrength},
		{"alignmentStrength", s.AlignmentStrength},
		{"cohesionStrength", s.CohesionStrength},
		{"targetStrength", s.TargetStrength},
	}
	for _, p := range strengths {
		if !(p.value >= 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s must be zero or positive, got %v", ErrInvalidSettings, p.name, p.value)
		}
	}

	if s.AgentCount < 0 {
		return fmt.Errorf("%w: agentCount must not be negative, got %d", ErrInvalidSettings, s.AgentCount)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidSettings, s.Workers)
	}
	return nil
}
