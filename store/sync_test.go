package store

import (
	"context"
	"errors"
	"testing"

	"projectsync/models"
)

func TestSyncAll_Idempotent(t *testing.T) {
	s, clock, _ := newTestStore(t)
	addConcrete(t, s, "boq-1")
	addConcrete(t, s, "boq-2")
	clock.Set(assessAt)

	first, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("first SyncAll error: %v", err)
	}
	if first.ItemsSynced != 2 || first.TasksSynced != 2 || first.Failed != 0 {
		t.Errorf("first report = %+v", first)
	}
	itemsAfterFirst := s.BOQItems()
	tasksAfterFirst := s.Tasks()

	second, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("second SyncAll error: %v", err)
	}
	if second.Materialized != 0 {
		t.Errorf("second run materialized %d tasks", second.Materialized)
	}
	for i, item := range s.BOQItems() {
		prev := itemsAfterFirst[i]
		if item.ScheduleIntegration.CalculatedDuration != prev.ScheduleIntegration.CalculatedDuration {
			t.Errorf("%s duration changed", item.ID)
		}
		if !floatClose(item.FinancialIntegration.Comparison.Estimated.TotalCost, prev.FinancialIntegration.Comparison.Estimated.TotalCost) {
			t.Errorf("%s estimated cost changed", item.ID)
		}
		if len(item.ScheduleIntegration.Resources.Equipment) != len(prev.ScheduleIntegration.Resources.Equipment) {
			t.Errorf("%s equipment lines changed", item.ID)
		}
		for j, eq := range item.ScheduleIntegration.Resources.Equipment {
			if eq.ID != prev.ScheduleIntegration.Resources.Equipment[j].ID {
				t.Errorf("%s equipment line %d got a new ID", item.ID, j)
			}
		}
	}
	for i, task := range s.Tasks() {
		prev := tasksAfterFirst[i]
		if task.Duration != prev.Duration {
			t.Errorf("%s duration %d -> %d", task.ID, prev.Duration, task.Duration)
		}
		if !floatClose(task.FinancialIntegration.PlannedCosts.Total, prev.FinancialIntegration.PlannedCosts.Total) {
			t.Errorf("%s planned total changed", task.ID)
		}
		if !floatClose(task.EarnedValue.PlannedValue, prev.EarnedValue.PlannedValue) {
			t.Errorf("%s planned value changed", task.ID)
		}
	}
}

func TestSyncAll_TotalsAreAdditive(t *testing.T) {
	s, _, _ := newTestStore(t)
	addConcrete(t, s, "boq-1")
	single := s.FinancialSummary().TotalEstimated

	addConcrete(t, s, "boq-2")
	if _, err := s.SyncAll(context.Background()); err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if got := s.FinancialSummary().TotalEstimated; !floatClose(got, 2*single) {
		t.Errorf("TotalEstimated = %v, want %v", got, 2*single)
	}
}

func TestSyncAll_MaterializesMissingTasks(t *testing.T) {
	s, _, _ := newTestStore(t)
	item := concreteItem("boq-1")
	item.ProjectID = "p1"
	synced, result := s.integrator.SyncBOQItem(item)
	if !result.OK() {
		t.Fatalf("SyncBOQItem errors: %v", result.Errors)
	}
	s.Restore([]models.BOQItem{synced}, nil)

	report, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if report.Materialized != 1 {
		t.Errorf("Materialized = %d, want 1", report.Materialized)
	}
	stored, _ := s.BOQItem("boq-1")
	task, err := s.Task(stored.ScheduleIntegration.LinkedTaskID)
	if err != nil {
		t.Fatalf("materialized task missing: %v", err)
	}
	if task.BOQIntegration.PrimaryBOQItemID() != "boq-1" {
		t.Errorf("task links to %q", task.BOQIntegration.PrimaryBOQItemID())
	}
}

func TestSyncAll_ReportsFailedItems(t *testing.T) {
	s, _, _ := newTestStore(t)
	addConcrete(t, s, "boq-1")
	bad := concreteItem("boq-bad")
	bad.ScheduleIntegration.Resources.Materials = models.MaterialList{{Name: "cement", Quantity: -1}}
	if _, _, err := s.AddBOQItem(bad); err != nil {
		t.Fatalf("AddBOQItem error: %v", err)
	}

	report, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if report.Failed != 1 || len(report.Errors["boq-bad"]) == 0 {
		t.Errorf("report = %+v, want boq-bad failed", report)
	}
	if report.ItemsSynced != 1 || report.TasksSynced != 1 {
		t.Errorf("report = %+v, want one item and one task synced", report)
	}
}

func TestSyncAll_CancelledContext(t *testing.T) {
	s, _, persister := newTestStore(t)
	addConcrete(t, s, "boq-1")
	commits := len(persister.commits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.SyncAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(persister.commits) != commits {
		t.Error("cancelled sync was committed")
	}
}
