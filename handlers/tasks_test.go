package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"projectsync/models"
	"projectsync/testhelpers"
)

func TestHandleTaskCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Task Create Project")

	body := `{"name":"  Site mobilization ","startDate":"2026-03-01T00:00:00Z","duration":3}`
	rec := serveProject(t, app, registry, proj.Id, HandleTaskCreate(), http.MethodPost, "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var task models.ScheduleTask
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &task)
	if task.Name != "Site mobilization" {
		t.Errorf("name = %q, want trimmed", task.Name)
	}
	if task.Status != models.TaskNotStarted {
		t.Errorf("status = %q, want %q", task.Status, models.TaskNotStarted)
	}
	if task.EndDate.Day() != 4 {
		t.Errorf("end date = %v, want 2026-03-04", task.EndDate)
	}
	if task.BOQIntegration.PrimaryBOQItemID() != "" {
		t.Error("a directly created task must not link a BOQ item")
	}
}

func TestHandleTaskCreate_Invalid(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Task Invalid Project")

	tests := []struct {
		name       string
		body       string
		expectCode int
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest},
		{"missing name", `{"startDate":"2026-03-01T00:00:00Z","duration":3}`, http.StatusBadRequest},
		{"zero duration", `{"name":"x","startDate":"2026-03-01T00:00:00Z"}`, http.StatusBadRequest},
		{"unknown dependency", `{"name":"x","startDate":"2026-03-01T00:00:00Z","duration":1,"dependencies":["nope"]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveProject(t, app, registry, proj.Id, HandleTaskCreate(), http.MethodPost, "", tt.body)
			if rec.Code != tt.expectCode {
				t.Errorf("expected %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleTaskUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Task Update Project")
	first := testhelpers.CreateTestTask(t, registry, proj.Id, "Excavation", 2)
	second := testhelpers.CreateTestTask(t, registry, proj.Id, "Footings", 3, first.ID)

	body := `{"name":"Footings and ties","priority":"high","startDate":"2026-03-03T00:00:00Z"}`
	rec := serveProject(t, app, registry, proj.Id, HandleTaskUpdate(), http.MethodPatch, second.ID, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var task models.ScheduleTask
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &task)
	if task.Name != "Footings and ties" || task.Priority != models.PriorityHigh {
		t.Errorf("task = %q/%q", task.Name, task.Priority)
	}
	if task.EndDate.Day() != 6 {
		t.Errorf("end date = %v, want 2026-03-06", task.EndDate)
	}
	if len(task.Dependencies) != 1 || task.Dependencies[0] != first.ID {
		t.Errorf("dependencies changed: %v", task.Dependencies)
	}

	// Making the first task depend on the second closes a cycle.
	rec = serveProject(t, app, registry, proj.Id, HandleTaskUpdate(), http.MethodPatch, first.ID,
		fmt.Sprintf(`{"dependencies":[%q]}`, second.ID))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for a cycle, got %d", rec.Code)
	}

	rec = serveProject(t, app, registry, proj.Id, HandleTaskUpdate(), http.MethodPatch, first.ID, `{"status":"paused"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown status, got %d", rec.Code)
	}

	rec = serveProject(t, app, registry, proj.Id, HandleTaskUpdate(), http.MethodPatch, first.ID, `{"dependencies":["nope"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown dependency, got %d", rec.Code)
	}
	var resp ErrorResponse
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if _, ok := resp.Fields["dependencies"]; !ok {
		t.Errorf("fields = %v, want a dependencies entry", resp.Fields)
	}
}

func TestHandleTaskListAndView(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Task List Project")
	testhelpers.CreateTestBOQItem(t, registry, proj.Id, testhelpers.NewTestConcreteItem("C-01"))
	direct := testhelpers.CreateTestTask(t, registry, proj.Id, "Handover", 2)

	rec := serveProject(t, app, registry, proj.Id, HandleTaskList(), http.MethodGet, "", "")
	var tasks []models.ScheduleTask
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &tasks)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	rec = serveProject(t, app, registry, proj.Id, HandleTaskView(), http.MethodGet, direct.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = serveProject(t, app, registry, proj.Id, HandleTaskView(), http.MethodGet, "missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleProgressUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Progress Project")
	item := testhelpers.CreateTestBOQItem(t, registry, proj.Id, testhelpers.NewTestConcreteItem("C-01"))
	taskID := item.ScheduleIntegration.LinkedTaskID

	body := `{"progressPercent":20,"completedQuantity":30,"updatedBy":"site engineer"}`
	rec := serveProject(t, app, registry, proj.Id, HandleProgressUpdate(), http.MethodPost, taskID, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var task models.ScheduleTask
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &task)
	if task.ActualProgress.PercentageComplete != 20 {
		t.Errorf("progress = %v, want 20", task.ActualProgress.PercentageComplete)
	}
	if len(task.ActualProgress.DailyProgress) != 1 {
		t.Errorf("expected 1 daily entry, got %d", len(task.ActualProgress.DailyProgress))
	}

	s, _ := registry.Get(proj.Id)
	stored, _ := s.BOQItem(item.ID)
	if stored.ActualProgress.CompletedQuantity != 30 {
		t.Errorf("item completed quantity = %v, want 30", stored.ActualProgress.CompletedQuantity)
	}

	rec = serveProject(t, app, registry, proj.Id, HandleProgressUpdate(), http.MethodPost, taskID, `{"progressPercent":120}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for progress over 100, got %d", rec.Code)
	}
}

func TestHandleActualCostsAndPayment(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Costs Project")
	task := testhelpers.CreateTestTask(t, registry, proj.Id, "Mobilization", 3)

	rec := serveProject(t, app, registry, proj.Id, HandleActualCosts(), http.MethodPut, task.ID,
		`{"labor":1000,"equipment":500,"materials":250,"overhead":50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.ScheduleTask
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &got)
	if got.FinancialIntegration.ActualCosts.Total != 1800 {
		t.Errorf("actual total = %v, want 1800", got.FinancialIntegration.ActualCosts.Total)
	}

	rec = serveProject(t, app, registry, proj.Id, HandleActualCosts(), http.MethodPut, task.ID, `{"labor":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative costs, got %d", rec.Code)
	}

	rec = serveProject(t, app, registry, proj.Id, HandlePayment(), http.MethodPost, task.ID,
		`{"date":"2026-03-02T00:00:00Z","amount":1200,"description":"advance","planned":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &got)
	if n := len(got.FinancialIntegration.CashFlow.PlannedPayments); n != 1 {
		t.Errorf("planned payments = %d, want 1", n)
	}

	rec = serveProject(t, app, registry, proj.Id, HandlePayment(), http.MethodPost, task.ID,
		`{"date":"2026-03-02T00:00:00Z","amount":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a zero payment, got %d", rec.Code)
	}
}

func TestHandleReScheduleDecisions_NoProposal(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	registry := testhelpers.NewTestRegistry(t, app, nil)
	proj := testhelpers.CreateTestProject(t, app, "Decision Project")
	task := testhelpers.CreateTestTask(t, registry, proj.Id, "Mobilization", 3)

	tests := []struct {
		name       string
		handler    func() int
		expectCode int
	}{
		{"approve without decider", func() int {
			return serveProject(t, app, registry, proj.Id, HandleReScheduleApprove(), http.MethodPost, task.ID, `{"comment":"ok"}`).Code
		}, http.StatusBadRequest},
		{"approve without proposal", func() int {
			return serveProject(t, app, registry, proj.Id, HandleReScheduleApprove(), http.MethodPost, task.ID, `{"decidedBy":"pm"}`).Code
		}, http.StatusConflict},
		{"reject without proposal", func() int {
			return serveProject(t, app, registry, proj.Id, HandleReScheduleReject(), http.MethodPost, task.ID, `{"decidedBy":"pm"}`).Code
		}, http.StatusConflict},
		{"reject unknown task", func() int {
			return serveProject(t, app, registry, proj.Id, HandleReScheduleReject(), http.MethodPost, "missing", `{"decidedBy":"pm"}`).Code
		}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.handler(); got != tt.expectCode {
				t.Errorf("expected %d, got %d", tt.expectCode, got)
			}
		})
	}
}
