package flock

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
)

const eps = 1e-9

func forceSettings() Settings {
	s := DefaultSettings()
	s.SeparationDistance = 40
	s.AlignmentDistance = 50
	s.CohesionDistance = 70
	s.SeparationStrength = 2.5
	s.AlignmentStrength = 1
	s.CohesionStrength = 1
	s.TargetStrength = 2
	return s
}

func all(agents []Agent) []int {
	idx := make([]int, len(agents))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func TestComputeForces_Separation(t *testing.T) {
	// Me at 0,0, friend at 10,0: pushed towards negative X.
	s := forceSettings()
	agents := []Agent{at(0, 0), at(10, 0)}

	f := ComputeForces(0, agents, all(agents), nil, s)

	if f.Separation.X >= 0 {
		t.Errorf("Expected negative separation X, got %v", f.Separation)
	}
	if f.Separation.Y != 0 {
		t.Errorf("Expected 0 separation Y, got %v", f.Separation)
	}
	if math.Abs(f.Separation.Len()-s.SeparationStrength) > eps {
		t.Errorf("|separation| = %v; want %v", f.Separation.Len(), s.SeparationStrength)
	}
}

func TestComputeForces_Cohesion(t *testing.T) {
	// Friend at 60,0 is outside separation and alignment but inside cohesion.
	s := forceSettings()
	agents := []Agent{at(0, 0), at(60, 0)}

	f := ComputeForces(0, agents, all(agents), nil, s)

	if f.Cohesion.X <= 0 || math.Abs(f.Cohesion.Len()-s.CohesionStrength) > eps {
		t.Errorf("cohesion = %v; want %v along +X", f.Cohesion, s.CohesionStrength)
	}
	if f.Separation != geometry.Zero || f.Alignment != geometry.Zero {
		t.Errorf("only cohesion expected, got separation %v alignment %v", f.Separation, f.Alignment)
	}
}

func TestComputeForces_Alignment(t *testing.T) {
	// Friend at 45,0 moving along +Y.
	s := forceSettings()
	friend := at(45, 0)
	friend.Vel = geometry.Vector2D{X: 0, Y: 3}
	agents := []Agent{at(0, 0), friend}

	f := ComputeForces(0, agents, all(agents), nil, s)

	want := geometry.Vector2D{X: 0, Y: s.AlignmentStrength}
	if !f.Alignment.Eq(want) {
		t.Errorf("alignment = %v; want %v", f.Alignment, want)
	}
}

func TestComputeForces_AveragesBeforeScaling(t *testing.T) {
	// Two symmetric neighbors cancel out: the zero average yields no force.
	s := forceSettings()
	agents := []Agent{at(100, 100), at(90, 100), at(110, 100)}

	f := ComputeForces(0, agents, all(agents), nil, s)

	if f.Separation.Len() > eps {
		t.Errorf("symmetric separation should vanish, got %v", f.Separation)
	}
	if f.Cohesion.Len() > eps {
		t.Errorf("symmetric cohesion should vanish, got %v", f.Cohesion)
	}
	if f.Neighbors != 2 {
		t.Errorf("Neighbors = %d; want 2", f.Neighbors)
	}
}

func TestComputeForces_LoneAgentSeeksTarget(t *testing.T) {
	s := forceSettings()
	agents := []Agent{at(0, 0)}
	g := BuildGrid(agents, s)
	target := geometry.Vector2D{X: 100, Y: 100}

	f := ComputeForces(0, agents, g.Query(g.CellOf(agents[0].Pos)), &target, s)

	want := geometry.Vector2D{X: 1, Y: 1}.Normalize().Mul(s.TargetStrength)
	if !f.Sum().Eq(want) {
		t.Errorf("force sum = %v; want target force %v", f.Sum(), want)
	}
	if !f.Sum().Eq(f.Target) {
		t.Errorf("force sum %v differs from target force %v", f.Sum(), f.Target)
	}
}

func TestComputeForces_NoTargetNoNeighbors(t *testing.T) {
	s := forceSettings()
	agents := []Agent{at(0, 0), at(500, 500)}

	f := ComputeForces(0, agents, all(agents), nil, s)

	if f.Sum() != geometry.Zero {
		t.Errorf("expected zero force, got %v", f.Sum())
	}
}

func TestComputeForces_TargetOnAgent(t *testing.T) {
	// Target exactly on the agent: zero-length direction, zero force.
	s := forceSettings()
	agents := []Agent{at(30, 30)}
	target := geometry.Vector2D{X: 30, Y: 30}

	f := ComputeForces(0, agents, all(agents), &target, s)

	if f.Target != geometry.Zero {
		t.Errorf("target force = %v; want zero", f.Target)
	}
}

func TestComputeForces_DistanceGatesAreStrict(t *testing.T) {
	// A neighbor exactly at separationDistance does not count.
	s := forceSettings()
	agents := []Agent{at(0, 0), at(s.SeparationDistance, 0)}

	f := ComputeForces(0, agents, all(agents), nil, s)

	if f.Separation != geometry.Zero {
		t.Errorf("separation = %v; want zero at the exact threshold", f.Separation)
	}
	if f.Alignment.Len() > 0 {
		// the neighbor has zero velocity, the averaged velocity is zero
		t.Errorf("alignment = %v; want zero", f.Alignment)
	}
}
