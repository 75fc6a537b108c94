// Package store is the authoritative per-project collection of BOQ items and
// schedule tasks. Every write goes through a Store method that holds the
// project lock, computes the full change, persists it and only then updates
// memory. Reads return copies.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"projectsync/config"
	"projectsync/metrics"
	"projectsync/models"
	"projectsync/services"
)

var (
	ErrBOQItemNotFound     = errors.New("boq item not found")
	ErrTaskNotFound        = errors.New("schedule task not found")
	ErrNoPendingReSchedule = errors.New("no pending re-schedule proposal")
	ErrDuplicateID         = errors.New("duplicate id")
)

// Options configure a Store. A nil Integrator uses the default configuration
// and a nil Persister keeps the store in memory only.
type Options struct {
	Integrator *services.Integrator
	Persister  Persister
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Workers    int
}

type Store struct {
	projectID  string
	integrator *services.Integrator
	persister  Persister
	metrics    *metrics.Metrics
	logger     *slog.Logger
	workers    int

	mu        sync.Mutex
	items     map[string]models.BOQItem
	tasks     map[string]models.ScheduleTask
	itemOrder []string
	taskOrder []string
}

// New returns an empty store for projectID.
func New(projectID string, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	integrator := opts.Integrator
	if integrator == nil {
		integrator = services.NewIntegrator(config.Default(), logger)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = integrator.Config().SyncWorkers
	}
	return &Store{
		projectID:  projectID,
		integrator: integrator,
		persister:  opts.Persister,
		metrics:    opts.Metrics,
		logger:     logger.With(slog.String("project", projectID)),
		workers:    max(workers, 1),
		items:      make(map[string]models.BOQItem),
		tasks:      make(map[string]models.ScheduleTask),
	}
}

// Restore fills a store with previously persisted entities without syncing
// or persisting them.
func (s *Store) Restore(items []models.BOQItem, tasks []models.ScheduleTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(Change{UpsertItems: items, UpsertTasks: tasks})
}

func (s *Store) ProjectID() string {
	return s.projectID
}

func (s *Store) BOQItem(id string) (models.BOQItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return models.BOQItem{}, fmt.Errorf("%w: %s", ErrBOQItemNotFound, id)
	}
	return item.Clone(), nil
}

func (s *Store) Task(id string) (models.ScheduleTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return models.ScheduleTask{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return task.Clone(), nil
}

// BOQItems returns copies of every item in insertion order.
func (s *Store) BOQItems() []models.BOQItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BOQItem, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// Tasks returns copies of every task in insertion order.
func (s *Store) Tasks() []models.ScheduleTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskList()
}

func (s *Store) taskList() []models.ScheduleTask {
	out := make([]models.ScheduleTask, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		out = append(out, s.tasks[id].Clone())
	}
	return out
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.integrator.Now()
}

// commit persists change and then applies it. Callers hold s.mu.
func (s *Store) commit(change Change) error {
	if change.Empty() {
		return nil
	}
	if s.persister != nil {
		if err := s.persister.Commit(s.projectID, change); err != nil {
			return fmt.Errorf("store: persist project %s: %w", s.projectID, err)
		}
	}
	s.apply(change)
	return nil
}

func (s *Store) apply(change Change) {
	for _, item := range change.UpsertItems {
		if _, ok := s.items[item.ID]; !ok {
			s.itemOrder = append(s.itemOrder, item.ID)
		}
		s.items[item.ID] = item.Clone()
	}
	for _, task := range change.UpsertTasks {
		if _, ok := s.tasks[task.ID]; !ok {
			s.taskOrder = append(s.taskOrder, task.ID)
		}
		s.tasks[task.ID] = task.Clone()
	}
	for _, id := range change.DeleteItemIDs {
		delete(s.items, id)
		s.itemOrder = slices.DeleteFunc(s.itemOrder, func(v string) bool { return v == id })
	}
	for _, id := range change.DeleteTaskIDs {
		delete(s.tasks, id)
		s.taskOrder = slices.DeleteFunc(s.taskOrder, func(v string) bool { return v == id })
	}
}

// linkedTask returns the task shadowing item, found through the item's back
// reference or the task's primary BOQ link. A back reference to a task that
// already belongs to another item is ignored.
func (s *Store) linkedTask(item models.BOQItem) (models.ScheduleTask, bool) {
	if id := item.ScheduleIntegration.LinkedTaskID; id != "" {
		task, ok := s.tasks[id]
		if owner := task.BOQIntegration.PrimaryBOQItemID(); ok && (owner == "" || owner == item.ID) {
			return task, true
		}
	}
	for _, id := range s.taskOrder {
		if task := s.tasks[id]; task.BOQIntegration.PrimaryBOQItemID() == item.ID {
			return task, true
		}
	}
	return models.ScheduleTask{}, false
}

// linkedItem returns the BOQ item a task was materialized from.
func (s *Store) linkedItem(task models.ScheduleTask) (models.BOQItem, bool) {
	id := task.BOQIntegration.PrimaryBOQItemID()
	if id == "" {
		return models.BOQItem{}, false
	}
	item, ok := s.items[id]
	return item, ok
}

func (s *Store) graph() *services.DependencyGraph {
	tasks := make([]models.ScheduleTask, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		tasks = append(tasks, s.tasks[id])
	}
	return services.BuildDependencyGraph(tasks)
}

func newID() string {
	return uuid.NewString()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
