package services

import (
	"errors"
	"slices"
	"testing"

	"projectsync/models"
)

func depTask(id string, duration int, deps ...string) models.ScheduleTask {
	return models.ScheduleTask{ID: id, Duration: duration, Dependencies: deps}
}

// A(3) -> B(2) -> D(4)
// A(3) -> C(5) -> D(4)
// E(1) stands alone.
func diamond() []models.ScheduleTask {
	return []models.ScheduleTask{
		depTask("A", 3),
		depTask("B", 2, "A"),
		depTask("C", 5, "A"),
		depTask("D", 4, "B", "C"),
		depTask("E", 1),
	}
}

func TestSuccessors(t *testing.T) {
	g := BuildDependencyGraph(diamond())

	tests := []struct {
		id     string
		expect []string
	}{
		{"A", []string{"B", "C", "D"}},
		{"B", []string{"D"}},
		{"D", nil},
		{"E", nil},
		{"missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := g.Successors(tt.id)
			if !slices.Equal(got, tt.expect) {
				t.Errorf("Successors(%q) = %v, want %v", tt.id, got, tt.expect)
			}
		})
	}
}

func TestBuildDependencyGraph_IgnoresUnknownPredecessors(t *testing.T) {
	g := BuildDependencyGraph([]models.ScheduleTask{depTask("A", 1, "ghost"), depTask("B", 1, "A", "A")})
	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder() error: %v", err)
	}
	if !slices.Equal(order, []string{"A", "B"}) {
		t.Errorf("order = %v, want [A B]", order)
	}
}

func TestCriticalPath(t *testing.T) {
	got, err := BuildDependencyGraph(diamond()).CriticalPath()
	if err != nil {
		t.Fatalf("CriticalPath() error: %v", err)
	}
	if got.Duration != 12 {
		t.Errorf("Duration = %d, want 12", got.Duration)
	}
	if !slices.Equal(got.Path, []string{"A", "C", "D"}) {
		t.Errorf("Path = %v, want [A C D]", got.Path)
	}
	if got.Timings["B"].Slack != 3 {
		t.Errorf("B slack = %d, want 3", got.Timings["B"].Slack)
	}
	if got.Timings["E"].Slack != 11 {
		t.Errorf("E slack = %d, want 11", got.Timings["E"].Slack)
	}
	if got.Timings["D"].ES != 8 || got.Timings["D"].LF != 12 {
		t.Errorf("D timing = %+v", got.Timings["D"])
	}
}

func TestCriticalPath_Cycle(t *testing.T) {
	g := BuildDependencyGraph([]models.ScheduleTask{depTask("A", 1, "C"), depTask("B", 1, "A"), depTask("C", 1, "B")})
	if _, err := g.CriticalPath(); !errors.Is(err, ErrDependencyCycle) {
		t.Errorf("expected ErrDependencyCycle, got %v", err)
	}
}

func TestWouldCycle(t *testing.T) {
	g := BuildDependencyGraph(diamond())
	if !g.WouldCycle("A", []string{"D"}) {
		t.Error("A depending on D should close a cycle")
	}
	if !g.WouldCycle("A", []string{"A"}) {
		t.Error("self dependency should be a cycle")
	}
	if g.WouldCycle("E", []string{"D"}) {
		t.Error("E depending on D is acyclic")
	}
}
