package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
)

// Integrate advances one agent by one tick: the force is added to the
// velocity (no time delta), the speed is capped, the agent moves, wraps
// around the canvas and its heading follows the new velocity.
func Integrate(a Agent, force geometry.Vector2D, s Settings) Agent {
	vel := a.Vel.Add(force).Limit(s.MaxSpeed)
	pos := a.Pos.Add(vel)
	pos.X = wrap(pos.X, s.Width)
	pos.Y = wrap(pos.Y, s.Height)
	return Agent{
		Pos:     pos,
		Vel:     vel,
		Heading: vel.Angle(),
	}
}

// wrap teleports a coordinate that left [0, extent) to the opposite edge.
// The overshoot is dropped: an agent leaving on the right reappears at
// exactly 0, one leaving on the left at the last representable value
// below extent.
func wrap(v, extent float64) float64 {
	if v >= extent {
		return 0
	}
	if v < 0 {
		return math.Nextafter(extent, 0)
	}
	return v
}
