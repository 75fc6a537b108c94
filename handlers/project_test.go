package handlers

import (
	"net/http"
	"testing"

	"projectsync/store"
	"projectsync/testhelpers"
)

func TestHandleProjectSummary(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Summary Project")
	item := testhelpers.CreateTestBOQItem(t, registry, proj.Id, testhelpers.NewTestConcreteItem("C-01"))
	testhelpers.CreateTestTask(t, registry, proj.Id, "Handover", 2, item.ScheduleIntegration.LinkedTaskID)

	rec := serveProject(t, app, registry, proj.Id, HandleProjectSummary(), http.MethodGet, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp projectSummary
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.ProjectID != proj.Id {
		t.Errorf("projectId = %q, want %q", resp.ProjectID, proj.Id)
	}
	if resp.Financial.ItemCount != 1 || resp.Financial.Currency != "SAR" {
		t.Errorf("financial = %+v", resp.Financial)
	}
	if resp.Financial.TotalEstimated <= 0 {
		t.Errorf("estimated total = %v, want > 0", resp.Financial.TotalEstimated)
	}
	if resp.Schedule.TaskCount != 2 {
		t.Errorf("task count = %d, want 2", resp.Schedule.TaskCount)
	}
	if resp.Schedule.CriticalPathDuration != 8 || len(resp.Schedule.CriticalPath) != 2 {
		t.Errorf("critical path = %v (%d days), want 2 tasks over 8 days",
			resp.Schedule.CriticalPath, resp.Schedule.CriticalPathDuration)
	}
}

func TestHandleProjectSync(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Sync Project")
	testhelpers.CreateTestBOQItem(t, registry, proj.Id, testhelpers.NewTestConcreteItem("C-01"))
	testhelpers.CreateTestBOQItem(t, registry, proj.Id, testhelpers.NewTestBOQItem("BW-01", "blockwork", 600, 48, "m²"))

	rec := serveProject(t, app, registry, proj.Id, HandleProjectSync(), http.MethodPost, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report store.SyncReport
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &report)
	if report.ItemsSynced != 2 || report.TasksSynced != 2 {
		t.Errorf("report = %+v, want 2 items and 2 tasks", report)
	}
	if report.Failed != 0 || report.Materialized != 0 {
		t.Errorf("report = %+v, want no failures or new tasks", report)
	}
	if toast := toastFromHeader(t, rec); toast["type"] != "success" {
		t.Errorf("expected a success toast, got %v", toast)
	}
}
