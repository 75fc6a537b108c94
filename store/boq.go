package store

import (
	"fmt"
	"log/slog"
	"slices"

	"projectsync/models"
	"projectsync/services"
	"projectsync/standards"
)

// AddBOQItem syncs a new item and materializes its schedule task. A failed
// sync still stores the item, marked with syncStatus=error, but no task is
// materialized until a later sync succeeds.
func (s *Store) AddBOQItem(item models.BOQItem) (models.BOQItem, services.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item = item.Clone()
	item.ProjectID = s.projectID
	if item.ID == "" {
		item.ID = newID()
	}
	if _, ok := s.items[item.ID]; ok {
		return models.BOQItem{}, services.SyncResult{}, fmt.Errorf("%w: boq item %s", ErrDuplicateID, item.ID)
	}
	if err := validateBOQItem(item); err != nil {
		return models.BOQItem{}, services.SyncResult{}, err
	}

	synced, result, change := s.integrate(item)
	if err := s.commit(change); err != nil {
		return models.BOQItem{}, services.SyncResult{}, err
	}
	return synced.Clone(), result, nil
}

// Patch lists the user-editable fields of a BOQ item. Nil fields are left
// unchanged.
type Patch struct {
	Code          *string                     `json:"code,omitempty"`
	Description   *string                     `json:"description,omitempty"`
	Category      *string                     `json:"category,omitempty"`
	Quantity      *float64                    `json:"quantity,omitempty"`
	Unit          *string                     `json:"unit,omitempty"`
	UnitPrice     *float64                    `json:"unitPrice,omitempty"`
	Materials     *models.MaterialList        `json:"materials,omitempty"`
	Suppliers     *[]models.Supplier          `json:"suppliers,omitempty"`
	PaymentStatus *models.PaymentStatus       `json:"paymentStatus,omitempty"`
	Parameters    *standards.ComplianceParams `json:"parameters,omitempty"`
}

func (p Patch) apply(item *models.BOQItem) {
	if p.Code != nil {
		item.Code = *p.Code
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.UnitPrice != nil {
		item.FinancialIntegration.UnitPrice = *p.UnitPrice
	}
	if p.Materials != nil {
		item.ScheduleIntegration.Resources.Materials = slices.Clone(*p.Materials)
	}
	if p.Suppliers != nil {
		item.FinancialIntegration.Suppliers = slices.Clone(*p.Suppliers)
	}
	if p.PaymentStatus != nil {
		item.FinancialIntegration.PaymentStatus = *p.PaymentStatus
	}
	if p.Parameters != nil {
		item.EngineeringStandards.Parameters = *p.Parameters
	}
}

// UpdateBOQItem merges patch into the item and re-syncs it together with its
// schedule task.
func (s *Store) UpdateBOQItem(id string, patch Patch) (models.BOQItem, services.SyncResult, error) {
	return s.WithBOQItem(id, func(item *models.BOQItem) error {
		patch.apply(item)
		return nil
	})
}

// WithBOQItem runs fn on a copy of the item. When fn returns nil the copy is
// validated, re-synced and committed; otherwise nothing changes.
func (s *Store) WithBOQItem(id string, fn func(*models.BOQItem) error) (models.BOQItem, services.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return models.BOQItem{}, services.SyncResult{}, fmt.Errorf("%w: %s", ErrBOQItemNotFound, id)
	}
	item := current.Clone()
	if err := fn(&item); err != nil {
		return models.BOQItem{}, services.SyncResult{}, err
	}
	item.ID = id
	item.ProjectID = s.projectID
	if err := validateBOQItem(item); err != nil {
		return models.BOQItem{}, services.SyncResult{}, err
	}

	synced, result, change := s.integrate(item)
	if err := s.commit(change); err != nil {
		return models.BOQItem{}, services.SyncResult{}, err
	}
	return synced.Clone(), result, nil
}

// integrate syncs item and brings its schedule task in line: an existing
// task is replanned, a missing one is materialized. Callers hold s.mu.
func (s *Store) integrate(item models.BOQItem) (models.BOQItem, services.SyncResult, Change) {
	synced, result := s.integrator.SyncBOQItem(item)
	s.metrics.BOQSynced(result.OK())
	change := Change{}

	task, exists := s.linkedTask(synced)
	switch {
	case exists:
		synced.ScheduleIntegration.LinkedTaskID = task.ID
		task = s.integrator.ReplanFromBOQItem(task, synced)
	case result.OK():
		taskID := s.freeTaskID(synced.ScheduleIntegration.LinkedTaskID)
		synced.ScheduleIntegration.LinkedTaskID = taskID
		task = s.integrator.MaterializeTask(synced, taskID, startOfDay(s.Now()))
		s.logger.Info("schedule task materialized",
			slog.String("item", synced.ID),
			slog.String("task", taskID),
			slog.Int("duration", task.Duration),
		)
	default:
		change.UpsertItems = append(change.UpsertItems, synced)
		return synced, result, change
	}

	task = s.syncTask(task)
	change.UpsertItems = append(change.UpsertItems, synced)
	change.UpsertTasks = append(change.UpsertTasks, task)
	return synced, result, change
}

// DeleteBOQItem removes an item together with its schedule task. The task is
// also dropped from the dependencies of every other task.
func (s *Store) DeleteBOQItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBOQItemNotFound, id)
	}
	change := Change{DeleteItemIDs: []string{id}}

	if task, ok := s.linkedTask(item); ok {
		change.DeleteTaskIDs = append(change.DeleteTaskIDs, task.ID)
		for _, otherID := range s.taskOrder {
			other := s.tasks[otherID]
			if otherID == task.ID || !slices.Contains(other.Dependencies, task.ID) {
				continue
			}
			other = other.Clone()
			other.Dependencies = slices.DeleteFunc(other.Dependencies, func(d string) bool { return d == task.ID })
			change.UpsertTasks = append(change.UpsertTasks, other)
		}
		s.logger.Info("cascade delete",
			slog.String("item", id),
			slog.String("task", task.ID),
			slog.Int("unlinkedDependents", len(change.UpsertTasks)),
		)
	}
	return s.commit(change)
}

// ImportResult is the outcome of one promoted financial line.
type ImportResult struct {
	Source models.FinancialItem `json:"source"`
	Item   models.BOQItem       `json:"item"`
	Sync   services.SyncResult  `json:"sync"`
	Error  string               `json:"error,omitempty"`
}

// ImportFinancialItems promotes priced lines from an external import to BOQ
// items under category and adds each one. A rejected line is reported and
// does not stop the rest.
func (s *Store) ImportFinancialItems(lines []models.FinancialItem, category string) []ImportResult {
	results := make([]ImportResult, 0, len(lines))
	for _, fi := range lines {
		res := ImportResult{Source: fi}
		item, sync, err := s.AddBOQItem(s.integrator.PromoteFinancialItem(fi, s.projectID, category))
		if err != nil {
			res.Error = err.Error()
			s.logger.Warn("financial line rejected",
				slog.String("code", fi.Code),
				slog.String("error", err.Error()),
			)
		} else {
			res.Item = item
			res.Sync = sync
		}
		results = append(results, res)
	}
	return results
}
