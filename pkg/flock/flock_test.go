package flock

import (
	"errors"
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
)

func TestNew_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero width", func(s *Settings) { s.Width = 0 }},
		{"negative height", func(s *Settings) { s.Height = -1 }},
		{"zero max speed", func(s *Settings) { s.MaxSpeed = 0 }},
		{"zero separation distance", func(s *Settings) { s.SeparationDistance = 0 }},
		{"NaN cohesion distance", func(s *Settings) { s.CohesionDistance = math.NaN() }},
		{"negative strength", func(s *Settings) { s.TargetStrength = -2 }},
		{"negative agent count", func(s *Settings) { s.AgentCount = -1 }},
		{"negative workers", func(s *Settings) { s.Workers = -4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			f, err := New(s)
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("New() error = %v; want ErrInvalidSettings", err)
			}
			if f != nil {
				t.Error("New() returned a flock alongside an error")
			}
		})
	}
}

func TestReset_RegeneratesPopulation(t *testing.T) {
	s := DefaultSettings()
	s.AgentCount = 150
	f, err := New(s, WithSeed(42))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		f.Step()
	}

	f.Reset()

	agents := f.Agents()
	if len(agents) != s.AgentCount {
		t.Fatalf("Reset produced %d agents; want %d", len(agents), s.AgentCount)
	}
	for i, a := range agents {
		if a.Pos.X < 0 || a.Pos.X >= s.Width || a.Pos.Y < 0 || a.Pos.Y >= s.Height {
			t.Errorf("agent %d spawned outside the canvas at %v", i, a.Pos)
		}
		if math.Abs(a.Speed()-InitialSpeed) > 1e-6 {
			t.Errorf("agent %d spawned with speed %v; want %v", i, a.Speed(), InitialSpeed)
		}
	}
	if f.Frame() != 0 {
		t.Errorf("Frame() = %d after reset; want 0", f.Frame())
	}
}

func TestReset_RestoresCenterTarget(t *testing.T) {
	s := DefaultSettings()
	s.AgentCount = 10
	center := geometry.Vector2D{X: s.Width / 2, Y: s.Height / 2}

	tests := []struct {
		name  string
		setup func(f *Flock)
	}{
		{"moved target", func(f *Flock) { f.SetTarget(10, 10); f.Step() }},
		{"cleared target", func(f *Flock) { f.ClearTarget(); f.Step() }},
		{"command queued before reset", func(f *Flock) { f.SetTarget(50, 50) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(s, WithSeed(3))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			tt.setup(f)

			f.Reset()
			if pos, ok := f.Target(); !ok || !pos.Eq(center) {
				t.Errorf("Target() after Reset = %v, %v; want %v, true", pos, ok, center)
			}
			f.Step()
			if pos, ok := f.Target(); !ok || !pos.Eq(center) {
				t.Errorf("Target() after first step = %v, %v; want %v, true", pos, ok, center)
			}
		})
	}
}

func TestStep_KeepsInvariants(t *testing.T) {
	s := DefaultSettings()
	s.AgentCount = 300
	f, err := New(s, WithSeed(7))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for step := 0; step < 200; step++ {
		if step == 50 {
			f.SetTarget(10, 590)
		}
		if step == 120 {
			f.ClearTarget()
		}
		for i, a := range f.Step() {
			if a.Speed() > s.MaxSpeed+1e-9 {
				t.Fatalf("step %d agent %d speed %v exceeds %v", step, i, a.Speed(), s.MaxSpeed)
			}
			if a.Pos.X < 0 || a.Pos.X >= s.Width || a.Pos.Y < 0 || a.Pos.Y >= s.Height {
				t.Fatalf("step %d agent %d left the canvas: %v", step, i, a.Pos)
			}
			if math.Abs(a.Heading-a.Vel.Angle()) > 1e-12 {
				t.Fatalf("step %d agent %d heading %v does not follow velocity %v", step, i, a.Heading, a.Vel)
			}
		}
	}
}

func TestStep_ReadsPreStepSnapshot(t *testing.T) {
	s := DefaultSettings()
	start := []Agent{
		{Pos: geometry.Vector2D{X: 100, Y: 100}, Vel: geometry.Vector2D{X: 2, Y: 0}},
		{Pos: geometry.Vector2D{X: 110, Y: 105}, Vel: geometry.Vector2D{X: 0, Y: -2}},
		{Pos: geometry.Vector2D{X: 95, Y: 120}, Vel: geometry.Vector2D{X: 1, Y: 1}},
	}
	f, err := New(s, WithAgents(start), WithoutTarget())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := f.Step()

	for i := range start {
		forces := ComputeForces(i, start, all(start), nil, s)
		want := Integrate(start[i], forces.Sum(), s)
		if !got[i].Pos.Eq(want.Pos) || !got[i].Vel.Eq(want.Vel) {
			t.Errorf("agent %d = %+v; want %+v computed from the pre-step state", i, got[i], want)
		}
	}
}

func TestStep_LoneAgentWraps(t *testing.T) {
	s := DefaultSettings()
	start := []Agent{{Pos: geometry.Vector2D{X: s.Width - 1, Y: 0}, Vel: geometry.Vector2D{X: 5, Y: 0}}}
	f, err := New(s, WithAgents(start), WithoutTarget())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := f.Step()

	if got[0].Pos.X != 0 {
		t.Errorf("pos.X = %v; want 0", got[0].Pos.X)
	}
}

func TestStep_TargetCommandAppliedOnNextStep(t *testing.T) {
	s := DefaultSettings()
	start := []Agent{{Pos: geometry.Vector2D{X: 0, Y: 0}}}
	f, err := New(s, WithAgents(start), WithoutTarget())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f.SetTarget(100, 100)
	if _, ok := f.Target(); ok {
		t.Fatal("target applied before the step")
	}

	got := f.Step()

	want := geometry.Vector2D{X: 1, Y: 1}.Normalize().Mul(s.TargetStrength)
	if !got[0].Vel.Eq(want) {
		t.Errorf("vel = %v; want %v pulled towards the target", got[0].Vel, want)
	}
	if pos, ok := f.Target(); !ok || !pos.Eq(geometry.Vector2D{X: 100, Y: 100}) {
		t.Errorf("Target() = %v, %v; want (100,100), true", pos, ok)
	}

	f.ClearTarget()
	f.Step()
	if _, ok := f.Target(); ok {
		t.Error("target still set after ClearTarget and a step")
	}
}

func TestStep_LastTargetCommandWins(t *testing.T) {
	f, err := New(DefaultSettings(), WithAgents(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.SetTarget(1, 1)
	f.ClearTarget()
	f.SetTarget(3, 4)
	f.Step()

	if pos, ok := f.Target(); !ok || !pos.Eq(geometry.Vector2D{X: 3, Y: 4}) {
		t.Errorf("Target() = %v, %v; want (3,4), true", pos, ok)
	}
}

func TestStep_ParallelMatchesSequential(t *testing.T) {
	s := DefaultSettings()
	s.AgentCount = 400
	seq, err := New(s, WithSeed(99))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Workers = 4
	par, err := New(s, WithSeed(99))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for step := 0; step < 30; step++ {
		a, b := seq.Step(), par.Step()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("step %d agent %d: sequential %+v, parallel %+v", step, i, a[i], b[i])
			}
		}
	}
	if seq.Stats().MeanNeighbors != par.Stats().MeanNeighbors {
		t.Errorf("neighbor stats differ: %v vs %v", seq.Stats().MeanNeighbors, par.Stats().MeanNeighbors)
	}
}

func TestStep_Stats(t *testing.T) {
	s := DefaultSettings()
	start := []Agent{
		{Pos: geometry.Vector2D{X: 10, Y: 10}},
		{Pos: geometry.Vector2D{X: 20, Y: 10}},
		{Pos: geometry.Vector2D{X: 500, Y: 500}},
	}
	f, err := New(s, WithAgents(start), WithoutTarget())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f.Step()
	st := f.Stats()

	if st.Frame != 1 || st.Agents != 3 {
		t.Errorf("Stats() = %+v; want frame 1 with 3 agents", st)
	}
	if st.OccupiedCells != 2 {
		t.Errorf("OccupiedCells = %d; want 2", st.OccupiedCells)
	}
	// agents 0 and 1 see each other, agent 2 is alone
	if math.Abs(st.MeanNeighbors-2.0/3.0) > 1e-12 {
		t.Errorf("MeanNeighbors = %v; want 2/3", st.MeanNeighbors)
	}
}

func BenchmarkFlock_Step(b *testing.B) {
	s := DefaultSettings()
	s.AgentCount = 1000
	f, err := New(s, WithSeed(1))
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Step()
	}
}

func BenchmarkFlock_StepParallel(b *testing.B) {
	s := DefaultSettings()
	s.AgentCount = 1000
	s.Workers = 4
	f, err := New(s, WithSeed(1))
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Step()
	}
}
