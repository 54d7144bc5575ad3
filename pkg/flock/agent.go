// Package flock implements the boids physics: neighbor lookup through a
// uniform grid, the four steering forces and the per-frame integration.
//
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// https://en.wikipedia.org/wiki/Boids
package flock

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
)

// InitialSpeed is the speed every agent has when it is created.
const InitialSpeed = 2.0

// Agent is a single boid. Heading is derived from the velocity after each
// step and only matters to renderers.
type Agent struct {
	Pos     geometry.Vector2D
	Vel     geometry.Vector2D
	Heading float64
}

// NewAgent creates an agent at pos moving at InitialSpeed along heading.
func NewAgent(pos geometry.Vector2D, heading float64) Agent {
	return Agent{
		Pos:     pos,
		Vel:     geometry.NewVectorPolar(InitialSpeed, heading),
		Heading: heading,
	}
}

// randomAgent places an agent uniformly on the canvas with a uniform heading.
func randomAgent(rng *rand.Rand, width, height float64) Agent {
	pos := geometry.Vector2D{
		X: rng.Float64() * width,
		Y: rng.Float64() * height,
	}
	return NewAgent(pos, rng.Float64()*2*math.Pi)
}

// Speed is the magnitude of the agent velocity.
func (a Agent) Speed() float64 {
	return a.Vel.Len()
}
