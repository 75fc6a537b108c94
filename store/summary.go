package store

import (
	"log/slog"

	"projectsync/models"
	"projectsync/services"
)

// FinancialSummary rolls up estimated and actual cost across all BOQ items.
type FinancialSummary struct {
	services.ProjectTotals
	Currency    string `json:"currency"`
	ItemCount   int    `json:"itemCount"`
	FailedSyncs int    `json:"failedSyncs"`
}

func (s *Store) FinancialSummary() FinancialSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := FinancialSummary{
		Currency:  s.integrator.Config().Currency,
		ItemCount: len(s.itemOrder),
	}
	totals := make([]services.ItemCostTotals, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		item := s.items[id]
		cmp := item.FinancialIntegration.Comparison
		totals = append(totals, services.ItemCostTotals{
			Estimated: cmp.Estimated.TotalCost,
			Actual:    cmp.Actual.TotalCost,
		})
		if item.ScheduleIntegration.SyncStatus == models.SyncStatusError {
			summary.FailedSyncs++
		}
	}
	summary.ProjectTotals = services.CalcProjectTotals(totals)
	return summary
}

// ScheduleSummary describes the project schedule. TotalDuration is the plain
// sum of task durations; CriticalPathDuration accounts for dependencies.
type ScheduleSummary struct {
	TotalDuration        int      `json:"totalDuration"`
	CriticalPathDuration int      `json:"criticalPathDuration"`
	CriticalPath         []string `json:"criticalPath"`
	TaskCount            int      `json:"taskCount"`
	Completed            int      `json:"completed"`
	InProgress           int      `json:"inProgress"`
	Delayed              int      `json:"delayed"`
	PendingReSchedules   int      `json:"pendingReSchedules"`
}

func (s *Store) ScheduleSummary() ScheduleSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := ScheduleSummary{TaskCount: len(s.taskOrder), CriticalPath: []string{}}
	for _, id := range s.taskOrder {
		task := s.tasks[id]
		summary.TotalDuration += task.Duration
		switch task.Status {
		case models.TaskCompleted:
			summary.Completed++
		case models.TaskInProgress, models.TaskDelayed:
			summary.InProgress++
		}
		if w := task.EarlyWarning; w != nil && w.Active && w.PredictedDelay > 0 {
			summary.Delayed++
		}
		if p := task.ReScheduling; p != nil && p.Approval.Status == models.ApprovalPending {
			summary.PendingReSchedules++
		}
	}

	cp, err := s.graph().CriticalPath()
	if err != nil {
		s.logger.Error("critical path", slog.String("error", err.Error()))
		return summary
	}
	summary.CriticalPathDuration = cp.Duration
	if cp.Path != nil {
		summary.CriticalPath = cp.Path
	}
	return summary
}

// ItemVariance compares an item's estimate with what has been spent on the
// quantity completed so far.
func (s *Store) ItemVariance(id string) (services.VarianceReport, error) {
	item, err := s.BOQItem(id)
	if err != nil {
		return services.VarianceReport{}, err
	}

	cmp := item.FinancialIntegration.Comparison
	completed := item.ActualProgress.CompletedQuantity
	actual := services.LineCost{
		Quantity:  completed,
		TotalCost: cmp.Actual.TotalCost,
	}
	if completed > 0 {
		actual.UnitPrice = cmp.Actual.TotalCost / completed
	}
	estimated := services.LineCost{
		Quantity:  item.Quantity,
		UnitPrice: item.FinancialIntegration.UnitPrice,
		TotalCost: cmp.Estimated.TotalCost,
	}
	return services.CompareEstimatedVsActual(estimated, actual), nil
}
