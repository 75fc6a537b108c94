package services

import (
	"errors"
	"fmt"
	"slices"

	"projectsync/models"
)

// ErrDependencyCycle is returned when task dependencies do not form a DAG.
var ErrDependencyCycle = errors.New("dependency cycle")

// DependencyGraph is the precedence graph of a project's tasks. Edges point
// from a predecessor to the tasks that depend on it.
type DependencyGraph struct {
	order     []string
	durations map[string]int
	adj       map[string][]string
	revAdj    map[string][]string
}

// BuildDependencyGraph indexes tasks by ID. Dependencies on IDs that are not
// in tasks are ignored.
func BuildDependencyGraph(tasks []models.ScheduleTask) *DependencyGraph {
	g := &DependencyGraph{
		order:     make([]string, 0, len(tasks)),
		durations: make(map[string]int, len(tasks)),
		adj:       make(map[string][]string),
		revAdj:    make(map[string][]string),
	}
	for _, t := range tasks {
		g.order = append(g.order, t.ID)
		g.durations[t.ID] = max(t.Duration, 0)
	}
	for _, t := range tasks {
		for _, pred := range t.Dependencies {
			if _, ok := g.durations[pred]; !ok || slices.Contains(g.revAdj[t.ID], pred) {
				continue
			}
			g.adj[pred] = append(g.adj[pred], t.ID)
			g.revAdj[t.ID] = append(g.revAdj[t.ID], pred)
		}
	}
	return g
}

// Successors returns every task that transitively depends on id, in
// breadth-first order.
func (g *DependencyGraph) Successors(id string) []string {
	seen := map[string]bool{id: true}
	var out []string
	queue := []string{id}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, succ := range g.adj[node] {
			if seen[succ] {
				continue
			}
			seen[succ] = true
			out = append(out, succ)
			queue = append(queue, succ)
		}
	}
	return out
}

// TopologicalOrder sorts the tasks with Kahn's algorithm, breaking ties by
// insertion order.
func (g *DependencyGraph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.order))
	var queue []string
	for _, id := range g.order {
		inDegree[id] = len(g.revAdj[id])
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, succ := range g.adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(g.order) {
		return nil, fmt.Errorf("%w: %d of %d tasks sorted", ErrDependencyCycle, len(order), len(g.order))
	}
	return order, nil
}

// TaskTiming is the critical path schedule of one task, in days from the
// project start.
type TaskTiming struct {
	ES, EF     int
	LS, LF     int
	Slack      int
	IsCritical bool
}

type CriticalPathResult struct {
	Path     []string              `json:"path"`
	Duration int                   `json:"duration"`
	Timings  map[string]TaskTiming `json:"timings"`
}

// CriticalPath runs the forward and backward passes over the graph.
func (g *DependencyGraph) CriticalPath() (CriticalPathResult, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return CriticalPathResult{}, err
	}

	timings := make(map[string]TaskTiming, len(order))
	total := 0
	for _, id := range order {
		es := 0
		for _, pred := range g.revAdj[id] {
			es = max(es, timings[pred].EF)
		}
		ef := es + g.durations[id]
		timings[id] = TaskTiming{ES: es, EF: ef}
		total = max(total, ef)
	}

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		tt := timings[id]
		lf := total
		for _, succ := range g.adj[id] {
			lf = min(lf, timings[succ].LS)
		}
		tt.LF = lf
		tt.LS = lf - g.durations[id]
		tt.Slack = tt.LS - tt.ES
		tt.IsCritical = tt.Slack == 0
		timings[id] = tt
	}

	result := CriticalPathResult{Duration: total, Timings: timings}
	for _, id := range order {
		if timings[id].IsCritical {
			result.Path = append(result.Path, id)
		}
	}
	return result, nil
}

// WouldCycle reports whether giving task id the predecessors deps would
// close a cycle.
func (g *DependencyGraph) WouldCycle(id string, deps []string) bool {
	downstream := g.Successors(id)
	for _, d := range deps {
		if d == id || slices.Contains(downstream, d) {
			return true
		}
	}
	return false
}
