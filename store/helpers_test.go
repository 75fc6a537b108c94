package store

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"projectsync/config"
	"projectsync/models"
	"projectsync/services"
	"projectsync/standards"
)

var errDiskFull = errors.New("disk full")

// testClock is a settable time source shared by a store and its integrator.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakePersister records committed changes and fails while err is set.
type fakePersister struct {
	mu      sync.Mutex
	err     error
	commits []Change
}

func (p *fakePersister) Commit(_ string, change Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.commits = append(p.commits, change)
	return nil
}

func (p *fakePersister) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

var day0 = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *testClock, *fakePersister) {
	t.Helper()
	clock := &testClock{now: day0}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	integrator := services.NewIntegrator(config.Default(), logger).WithClock(clock.Now)
	persister := &fakePersister{}
	s := New("p1", Options{Integrator: integrator, Persister: persister, Logger: logger, Workers: 2})
	return s, clock, persister
}

func floatClose(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func concreteItem(id string) models.BOQItem {
	return models.BOQItem{
		ID:          id,
		Code:        "C-01",
		Description: "Reinforced concrete for slabs",
		Category:    "أعمال خرسانية",
		Quantity:    150,
		Unit:        "m³",
		FinancialIntegration: models.FinancialIntegration{
			UnitPrice: 320,
		},
		EngineeringStandards: models.EngineeringStandards{
			Parameters: standards.ComplianceParams{CompressiveStrength: 30, WaterCementRatio: 0.45},
		},
	}
}

// addConcrete stores the concrete item and returns it with its task.
func addConcrete(t *testing.T, s *Store, id string) (models.BOQItem, models.ScheduleTask) {
	t.Helper()
	item, result, err := s.AddBOQItem(concreteItem(id))
	if err != nil {
		t.Fatalf("AddBOQItem(%s) error: %v", id, err)
	}
	if !result.OK() {
		t.Fatalf("AddBOQItem(%s) sync errors: %v", id, result.Errors)
	}
	task, err := s.Task(item.ScheduleIntegration.LinkedTaskID)
	if err != nil {
		t.Fatalf("linked task of %s: %v", id, err)
	}
	return item, task
}
