package flock

import "github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"

// Forces holds the steering contributions acting on one agent for one step.
type Forces struct {
	Separation geometry.Vector2D
	Alignment  geometry.Vector2D
	Cohesion   geometry.Vector2D
	Target     geometry.Vector2D

	// Neighbors counts candidates within at least one interaction radius.
	Neighbors int
}

// Sum is the total force applied to the velocity.
func (f Forces) Sum() geometry.Vector2D {
	return f.Separation.Add(f.Alignment).Add(f.Cohesion).Add(f.Target)
}

// ComputeForces calculates the boids rules for agents[self] against the
// candidate indices returned by the grid. Candidates are filtered by exact
// distance, so the grid only has to over-approximate the neighborhood.
// A nil target contributes no force.
func ComputeForces(self int, agents []Agent, candidates []int, target *geometry.Vector2D, s Settings) Forces {
	me := agents[self]

	sepSq := s.SeparationDistance * s.SeparationDistance
	aliSq := s.AlignmentDistance * s.AlignmentDistance
	cohSq := s.CohesionDistance * s.CohesionDistance

	// Initialize force accumulators
	var separation, alignment, cohesion geometry.Vector2D
	sepCount, aliCount, cohCount := 0, 0, 0
	neighbors := 0

	for _, j := range candidates {
		if j == self {
			continue
		}
		other := agents[j]
		distSq := me.Pos.DistanceSquaredTo(other.Pos)

		near := false
		// 1. Separation
		if distSq < sepSq {
			separation = separation.Add(me.Pos.Sub(other.Pos))
			sepCount++
			near = true
		}
		// 2. Alignment
		if distSq < aliSq {
			alignment = alignment.Add(other.Vel)
			aliCount++
			near = true
		}
		// 3. Cohesion
		if distSq < cohSq {
			cohesion = cohesion.Add(other.Pos)
			cohCount++
			near = true
		}
		if near {
			neighbors++
		}
	}

	var f Forces
	f.Neighbors = neighbors
	if sepCount > 0 {
		f.Separation = separation.Mul(1 / float64(sepCount)).ScaleTo(s.SeparationStrength)
	}
	if aliCount > 0 {
		f.Alignment = alignment.Mul(1 / float64(aliCount)).ScaleTo(s.AlignmentStrength)
	}
	if cohCount > 0 {
		center := cohesion.Mul(1 / float64(cohCount))
		f.Cohesion = center.Sub(me.Pos).ScaleTo(s.CohesionStrength)
	}
	if target != nil {
		f.Target = target.Sub(me.Pos).ScaleTo(s.TargetStrength)
	}
	return f
}
