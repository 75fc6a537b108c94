package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"projectsync/models"
)

// SyncReport summarizes a full resync. Errors are keyed by entity ID.
type SyncReport struct {
	ItemsSynced  int                 `json:"itemsSynced"`
	TasksSynced  int                 `json:"tasksSynced"`
	Materialized int                 `json:"materialized"`
	Failed       int                 `json:"failed"`
	Errors       map[string][]string `json:"errors,omitempty"`
}

// SyncAll re-runs the integration over every item and task. Entities are
// synced in parallel on copies, bounded by the worker count; a failing
// entity is reported and does not stop the batch. The results are committed
// as one change. Running it twice without edits in between gives the same
// derived figures.
func (s *Store) SyncAll(ctx context.Context) (SyncReport, error) {
	started := time.Now()
	defer s.metrics.SyncAllFinished(started)

	s.mu.Lock()
	defer s.mu.Unlock()

	report := SyncReport{Errors: map[string][]string{}}
	now := s.Now()

	items := make([]models.BOQItem, len(s.itemOrder))
	itemErrs := make([][]string, len(s.itemOrder))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range s.itemOrder {
		item := s.items[id]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			synced, result := s.integrator.SyncBOQItem(item)
			s.metrics.BOQSynced(result.OK())
			items[i] = synced
			itemErrs[i] = result.Errors
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SyncReport{}, fmt.Errorf("store: sync items: %w", err)
	}

	// Tasks are replanned from the freshly synced items before their own
	// sync; items without a task get one materialized.
	byID := make(map[string]models.BOQItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	tasks := make([]models.ScheduleTask, 0, len(s.taskOrder)+len(items))
	owned := make(map[string]bool, len(items))
	for _, id := range s.taskOrder {
		task := s.tasks[id]
		if item, ok := byID[task.BOQIntegration.PrimaryBOQItemID()]; ok {
			task = s.integrator.ReplanFromBOQItem(task, item)
			owned[item.ID] = true
		}
		tasks = append(tasks, task)
	}
	claimed := make(map[string]bool)
	for i, item := range items {
		if owned[item.ID] || item.ScheduleIntegration.SyncStatus != models.SyncStatusSynced {
			continue
		}
		taskID := s.freeTaskID(item.ScheduleIntegration.LinkedTaskID)
		if claimed[taskID] {
			taskID = newID()
		}
		claimed[taskID] = true
		items[i].ScheduleIntegration.LinkedTaskID = taskID
		tasks = append(tasks, s.integrator.MaterializeTask(items[i], taskID, startOfDay(now)))
		report.Materialized++
	}

	taskErrs := make([][]string, len(tasks))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			synced, result := s.integrator.SyncScheduleTask(tasks[i], now)
			s.metrics.TaskSynced(result.OK())
			tasks[i] = synced
			taskErrs[i] = result.Errors
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SyncReport{}, fmt.Errorf("store: sync tasks: %w", err)
	}

	for i, item := range items {
		if len(itemErrs[i]) > 0 {
			report.Failed++
			report.Errors[item.ID] = itemErrs[i]
			continue
		}
		report.ItemsSynced++
	}
	for i, task := range tasks {
		if len(taskErrs[i]) > 0 {
			report.Failed++
			report.Errors[task.ID] = taskErrs[i]
			continue
		}
		report.TasksSynced++
	}

	if err := s.commit(Change{UpsertItems: items, UpsertTasks: tasks}); err != nil {
		return SyncReport{}, err
	}
	s.logger.Info("project synced",
		slog.Int("items", report.ItemsSynced),
		slog.Int("tasks", report.TasksSynced),
		slog.Int("materialized", report.Materialized),
		slog.Int("failed", report.Failed),
		slog.Duration("took", time.Since(started)),
	)
	return report, nil
}

// freeTaskID returns want when no task uses it, otherwise a fresh ID.
func (s *Store) freeTaskID(want string) string {
	if _, taken := s.tasks[want]; want != "" && !taken {
		return want
	}
	return newID()
}
