package services

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"projectsync/config"
	"projectsync/models"
	"projectsync/standards"
)

func floatClose(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestIntegrator(t *testing.T) *Integrator {
	t.Helper()
	in := NewIntegrator(config.Default(), discardLogger())
	in.now = func() time.Time { return testNow }
	return in
}

// concreteItem returns the 150 m³ concrete line used across the tests.
func concreteItem() models.BOQItem {
	return models.BOQItem{
		ID:          "boq-1",
		ProjectID:   "p1",
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

// plannedTask returns a task of the given duration starting on start with a
// planned total of 10,000 split across the five components.
func plannedTask(id string, start time.Time, duration int) models.ScheduleTask {
	planned := models.PlannedCosts{Labor: 4000, Equipment: 2000, Materials: 2500, Overhead: 1000, Contingency: 500}
	planned.Total = planned.Sum()
	return models.ScheduleTask{
		ID:        id,
		ProjectID: "p1",
		Name:      id,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, duration),
		Duration:  duration,
		Status:    models.TaskInProgress,
		FinancialIntegration: models.TaskFinancialIntegration{
			PlannedCosts: planned,
		},
	}
}
