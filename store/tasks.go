package store

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"projectsync/models"
	"projectsync/services"
)

const systemApprover = "system"

// syncTask refreshes a task's derived blocks as of now. Callers hold s.mu.
func (s *Store) syncTask(task models.ScheduleTask) models.ScheduleTask {
	synced, result := s.integrator.SyncScheduleTask(task, s.Now())
	s.metrics.TaskSynced(result.OK())
	return synced
}

// AddScheduleTask stores a task created directly rather than materialized
// from a BOQ item. Such tasks carry no BOQ link.
func (s *Store) AddScheduleTask(task models.ScheduleTask) (models.ScheduleTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task = task.Clone()
	task.ProjectID = s.projectID
	if task.ID == "" {
		task.ID = newID()
	}
	if _, ok := s.tasks[task.ID]; ok {
		return models.ScheduleTask{}, fmt.Errorf("%w: task %s", ErrDuplicateID, task.ID)
	}
	task.BOQIntegration.LinkedBOQItems = nil
	if task.Duration == 0 && task.EndDate.After(task.StartDate) {
		task.Duration = int(math.Ceil(task.EndDate.Sub(task.StartDate).Hours() / 24))
	}
	task.EndDate = task.StartDate.AddDate(0, 0, task.Duration)
	if task.Status == "" {
		task.Status = models.TaskNotStarted
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Dependencies == nil {
		task.Dependencies = []string{}
	}
	if err := validateTask(task); err != nil {
		return models.ScheduleTask{}, err
	}
	if err := s.checkDependencies(task.ID, task.Dependencies); err != nil {
		return models.ScheduleTask{}, err
	}

	task = s.syncTask(task)
	if err := s.commit(Change{UpsertTasks: []models.ScheduleTask{task}}); err != nil {
		return models.ScheduleTask{}, err
	}
	return task.Clone(), nil
}

// checkDependencies rejects unknown predecessors and edges that would close
// a cycle. Callers hold s.mu.
func (s *Store) checkDependencies(taskID string, deps []string) error {
	for _, d := range deps {
		if _, ok := s.tasks[d]; !ok {
			return validation.Errors{"dependencies": fmt.Errorf("unknown task %s", d)}
		}
	}
	if s.graph().WouldCycle(taskID, deps) {
		return fmt.Errorf("task %s: %w", taskID, services.ErrDependencyCycle)
	}
	return nil
}

// WithTask runs fn on a copy of the task. When fn returns nil the copy is
// validated, re-synced and committed; otherwise nothing changes.
func (s *Store) WithTask(id string, fn func(*models.ScheduleTask) error) (models.ScheduleTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[id]
	if !ok {
		return models.ScheduleTask{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	task := current.Clone()
	if err := fn(&task); err != nil {
		return models.ScheduleTask{}, err
	}
	task.ID = id
	task.ProjectID = s.projectID
	if err := validateTask(task); err != nil {
		return models.ScheduleTask{}, err
	}
	if !slices.Equal(task.Dependencies, current.Dependencies) {
		if err := s.checkDependencies(id, task.Dependencies); err != nil {
			return models.ScheduleTask{}, err
		}
	}

	task = s.syncTask(task)
	if err := s.commit(Change{UpsertTasks: []models.ScheduleTask{task}}); err != nil {
		return models.ScheduleTask{}, err
	}
	return task.Clone(), nil
}

// UpdateProgress appends a field report to the task, re-assesses its risk and
// copies the completed quantity to the linked BOQ item.
func (s *Store) UpdateProgress(update ProgressUpdate) (models.ScheduleTask, error) {
	if err := update.Validate(); err != nil {
		return models.ScheduleTask{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[update.TaskID]
	if !ok {
		return models.ScheduleTask{}, fmt.Errorf("%w: %s", ErrTaskNotFound, update.TaskID)
	}
	now := s.Now()
	task := current.Clone()
	task.ActualProgress.DailyProgress = append(task.ActualProgress.DailyProgress, models.DailyProgress{
		Date:              now,
		Progress:          update.ProgressPercent,
		QuantityCompleted: update.CompletedQuantity,
		UpdatedBy:         update.UpdatedBy,
		SiteConditions:    update.SiteConditions,
	})
	task.ActualProgress.PercentageComplete = update.ProgressPercent
	task = s.syncTask(s.assessProgress(task, now))

	change := Change{UpsertTasks: []models.ScheduleTask{task}}
	if item, ok := s.linkedItem(task); ok {
		item = item.Clone()
		item.ApplyProgress(update.CompletedQuantity)
		item.ActualProgress.Updates = append(item.ActualProgress.Updates, models.SiteUpdate{
			Date:              now,
			CompletedQuantity: update.CompletedQuantity,
			UpdatedBy:         update.UpdatedBy,
			Notes:             update.SiteConditions.Notes,
		})
		change.UpsertItems = append(change.UpsertItems, item)
	}

	if err := s.commit(change); err != nil {
		return models.ScheduleTask{}, err
	}
	return task.Clone(), nil
}

// assessProgress updates status, prediction and early warning after a
// progress report, and raises a re-scheduling proposal for a predicted delay.
// Small delays are applied immediately. Callers hold s.mu.
func (s *Store) assessProgress(task models.ScheduleTask, now time.Time) models.ScheduleTask {
	pct := task.ActualProgress.PercentageComplete
	task.ActualProgress.Prediction = services.PredictCompletion(task, pct, now)

	if pct >= 100 {
		task.Status = models.TaskCompleted
		if task.ActualEndDate == nil {
			end := now
			task.ActualEndDate = &end
		}
		task.EarlyWarning = nil
		return task
	}
	if task.Status == models.TaskCompleted {
		task.ActualEndDate = nil
	}

	warning := services.AnalyzeProgress(task, pct, now)
	if !warning.Active {
		task.EarlyWarning = nil
		if task.Status != models.TaskOnHold && (pct > 0 || task.Status != models.TaskNotStarted) {
			task.Status = models.TaskInProgress
		}
		return task
	}

	s.metrics.WarningRaised(string(warning.RiskLevel))
	s.logger.Warn("early warning raised",
		slog.String("task", task.ID),
		slog.String("risk", string(warning.RiskLevel)),
		slog.Int("predictedDelay", warning.PredictedDelay),
		slog.Float64("costOverrun", warning.CostOverrun),
	)
	task.EarlyWarning = &warning
	if task.Status != models.TaskOnHold {
		task.Status = models.TaskDelayed
	}

	proposal := services.ProposeReSchedule(task, warning.PredictedDelay,
		s.graph().Successors(task.ID), s.integrator.Config().AutoApproveMaxDelay, now)
	s.metrics.ReScheduleProposed(string(proposal.Approval.Status))
	if !proposal.Approval.AutoApply {
		task.ReScheduling = &proposal
		return task
	}

	s.logger.Info("re-schedule auto-approved",
		slog.String("task", task.ID),
		slog.Int("delay", proposal.Delay),
		slog.Float64("additionalCost", proposal.RevisedPlan.AdditionalCost),
	)
	return services.ApplyReSchedule(task, proposal, models.ApprovalAutoApproved, systemApprover,
		"delay within auto-approval threshold", now)
}

// pendingProposal returns the task and its outstanding proposal. Callers hold
// s.mu.
func (s *Store) pendingProposal(taskID string) (models.ScheduleTask, models.ReSchedulingProposal, error) {
	task, ok := s.tasks[taskID]
	if !ok {
		return models.ScheduleTask{}, models.ReSchedulingProposal{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.ReScheduling == nil || task.ReScheduling.Approval.Status != models.ApprovalPending {
		return models.ScheduleTask{}, models.ReSchedulingProposal{}, fmt.Errorf("%w: task %s", ErrNoPendingReSchedule, taskID)
	}
	return task, *task.ReScheduling, nil
}

// ApproveReSchedule moves the task onto its pending revised plan.
func (s *Store) ApproveReSchedule(taskID, decidedBy, comment string) (models.ScheduleTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, proposal, err := s.pendingProposal(taskID)
	if err != nil {
		return models.ScheduleTask{}, err
	}
	task = services.ApplyReSchedule(task, proposal, models.ApprovalApproved, decidedBy, comment, s.Now())
	task = s.syncTask(task)
	if err := s.commit(Change{UpsertTasks: []models.ScheduleTask{task}}); err != nil {
		return models.ScheduleTask{}, err
	}
	s.logger.Info("re-schedule approved", slog.String("task", taskID), slog.String("by", decidedBy))
	return task.Clone(), nil
}

// RejectReSchedule records the rejection and keeps the current plan.
func (s *Store) RejectReSchedule(taskID, decidedBy, comment string) (models.ScheduleTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, proposal, err := s.pendingProposal(taskID)
	if err != nil {
		return models.ScheduleTask{}, err
	}
	task = services.RejectReSchedule(task, proposal, decidedBy, comment, s.Now())
	task = s.syncTask(task)
	if err := s.commit(Change{UpsertTasks: []models.ScheduleTask{task}}); err != nil {
		return models.ScheduleTask{}, err
	}
	return task.Clone(), nil
}

// RecordActualCosts replaces the task's actual spend and flows the material,
// labor and equipment figures back into the linked BOQ item's comparison.
func (s *Store) RecordActualCosts(taskID string, costs models.ActualCosts) (models.ScheduleTask, error) {
	if err := validateActualCosts(costs); err != nil {
		return models.ScheduleTask{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[taskID]
	if !ok {
		return models.ScheduleTask{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	task := current.Clone()
	task.FinancialIntegration.ActualCosts = costs
	task = s.syncTask(task)

	change := Change{UpsertTasks: []models.ScheduleTask{task}}
	if item, ok := s.linkedItem(task); ok {
		item = item.Clone()
		item.FinancialIntegration.Comparison.Actual = models.CostBreakdown{
			MaterialCost:  costs.Materials,
			LaborCost:     costs.Labor,
			EquipmentCost: costs.Equipment,
		}
		synced, result := s.integrator.SyncBOQItem(item)
		s.metrics.BOQSynced(result.OK())
		change.UpsertItems = append(change.UpsertItems, synced)
	}

	if err := s.commit(change); err != nil {
		return models.ScheduleTask{}, err
	}
	return task.Clone(), nil
}

// RecordPayment adds an entry to the task's cash-flow ledger and updates the
// payment status of the linked BOQ item.
func (s *Store) RecordPayment(taskID string, payment models.Payment, planned bool) (models.ScheduleTask, error) {
	if err := validatePayment(payment); err != nil {
		return models.ScheduleTask{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[taskID]
	if !ok {
		return models.ScheduleTask{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	task := current.Clone()
	cf := &task.FinancialIntegration.CashFlow
	if planned {
		cf.PlannedPayments = append(cf.PlannedPayments, payment)
	} else {
		cf.ActualPayments = append(cf.ActualPayments, payment)
	}
	task = s.syncTask(task)

	change := Change{UpsertTasks: []models.ScheduleTask{task}}
	if item, ok := s.linkedItem(task); ok {
		item = item.Clone()
		item.FinancialIntegration.PaymentStatus = paymentStatus(task.FinancialIntegration.CashFlow)
		change.UpsertItems = append(change.UpsertItems, item)
	}

	if err := s.commit(change); err != nil {
		return models.ScheduleTask{}, err
	}
	return task.Clone(), nil
}

func paymentStatus(cf models.CashFlow) models.PaymentStatus {
	var planned, paid float64
	for _, p := range cf.PlannedPayments {
		planned += p.Amount
	}
	for _, p := range cf.ActualPayments {
		paid += p.Amount
	}
	switch {
	case paid <= 0:
		return models.PaymentPending
	case planned > 0 && paid >= planned:
		return models.PaymentPaid
	default:
		return models.PaymentPartial
	}
}
