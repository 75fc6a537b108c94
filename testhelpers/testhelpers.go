// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"projectsync/collections"
	"projectsync/config"
	"projectsync/metrics"
	"projectsync/models"
	"projectsync/services"
	"projectsync/store"
)

// TestNow is the fixed clock reading used by every test registry.
var TestNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// DiscardLogger returns a structured logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestRegistry returns a project registry persisted in app, with the
// default configuration and a clock fixed at TestNow. m may be nil.
func NewTestRegistry(t *testing.T, app core.App, m *metrics.Metrics) *store.Registry {
	t.Helper()

	logger := DiscardLogger()
	integrator := services.NewIntegrator(config.Default(), logger).
		WithClock(func() time.Time { return TestNow })
	repo := collections.NewRepository(app)
	return store.NewRegistry(repo, store.Options{
		Integrator: integrator,
		Persister:  repo,
		Metrics:    m,
		Logger:     logger,
		Workers:    2,
	})
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app core.App, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("status", "active")
	record.Set("currency", "SAR")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// NewTestBOQItem returns an unsynced BOQ item.
func NewTestBOQItem(code, category string, quantity, unitPrice float64, unit string) models.BOQItem {
	return models.BOQItem{
		Code:        code,
		Description: "Test item " + code,
		Category:    category,
		Quantity:    quantity,
		Unit:        unit,
		FinancialIntegration: models.FinancialIntegration{
			UnitPrice: unitPrice,
		},
	}
}

// NewTestConcreteItem returns the 150 m³ concrete line whose synced task
// runs six days with a planned total of 85,560.
func NewTestConcreteItem(code string) models.BOQItem {
	return NewTestBOQItem(code, "أعمال خرسانية", 150, 320, "m³")
}

// CreateTestBOQItem adds an item to the project's store and fails the test
// on any error.
func CreateTestBOQItem(t *testing.T, registry *store.Registry, projectID string, item models.BOQItem) models.BOQItem {
	t.Helper()

	s, err := registry.Get(projectID)
	if err != nil {
		t.Fatalf("failed to open project store: %v", err)
	}
	stored, result, err := s.AddBOQItem(item)
	if err != nil {
		t.Fatalf("failed to add test BOQ item: %v", err)
	}
	if !result.OK() {
		t.Fatalf("test BOQ item did not sync: %v", result.Errors)
	}
	return stored
}

// CreateTestTask adds a directly created task to the project's store.
func CreateTestTask(t *testing.T, registry *store.Registry, projectID, name string, duration int, deps ...string) models.ScheduleTask {
	t.Helper()

	s, err := registry.Get(projectID)
	if err != nil {
		t.Fatalf("failed to open project store: %v", err)
	}
	task, err := s.AddScheduleTask(models.ScheduleTask{
		Name:         name,
		StartDate:    TestNow,
		Duration:     duration,
		Dependencies: deps,
	})
	if err != nil {
		t.Fatalf("failed to add test task: %v", err)
	}
	return task
}

// DecodeJSON unmarshals a response body into v.
func DecodeJSON(t *testing.T, body []byte, v any) {
	t.Helper()

	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("failed to decode JSON body: %v\nbody (first 500 chars): %s", err, truncate(string(body), 500))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
