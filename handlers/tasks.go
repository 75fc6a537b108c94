package handlers

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/models"
	"projectsync/store"
)

// HandleTaskList returns every schedule task of the project.
func HandleTaskList() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		return e.JSON(http.StatusOK, s.Tasks())
	})
}

// HandleTaskView returns a single schedule task.
func HandleTaskView() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		task, err := s.Task(e.Request.PathValue("id"))
		if err != nil {
			return respondStoreError(e, "tasks", err)
		}
		return e.JSON(http.StatusOK, task)
	})
}

// HandleTaskCreate adds a task that is not backed by a BOQ item.
func HandleTaskCreate() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var task models.ScheduleTask
		if err := e.BindBody(&task); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		task.Name = strings.TrimSpace(task.Name)

		created, err := s.AddScheduleTask(task)
		if err != nil {
			return respondStoreError(e, "tasks: create", err)
		}
		return e.JSON(http.StatusCreated, created)
	})
}

type taskPatch struct {
	Name         *string            `json:"name,omitempty"`
	Description  *string            `json:"description,omitempty"`
	StartDate    *time.Time         `json:"startDate,omitempty"`
	Status       *models.TaskStatus `json:"status,omitempty"`
	Priority     *models.Priority   `json:"priority,omitempty"`
	Dependencies *[]string          `json:"dependencies,omitempty"`
}

// HandleTaskUpdate edits the planning fields of a task. Moving the start
// date moves the end date with it.
func HandleTaskUpdate() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var patch taskPatch
		if err := e.BindBody(&patch); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		updated, err := s.WithTask(e.Request.PathValue("id"), func(t *models.ScheduleTask) error {
			if patch.Name != nil {
				t.Name = strings.TrimSpace(*patch.Name)
			}
			if patch.Description != nil {
				t.Description = *patch.Description
			}
			if patch.StartDate != nil {
				t.StartDate = *patch.StartDate
				t.EndDate = t.StartDate.AddDate(0, 0, t.Duration)
			}
			if patch.Status != nil {
				t.Status = *patch.Status
			}
			if patch.Priority != nil {
				t.Priority = *patch.Priority
			}
			if patch.Dependencies != nil {
				t.Dependencies = slices.Clone(*patch.Dependencies)
			}
			return nil
		})
		if err != nil {
			return respondStoreError(e, "tasks: update", err)
		}
		return e.JSON(http.StatusOK, updated)
	})
}

// HandleProgressUpdate records a field progress report against a task.
func HandleProgressUpdate() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var update store.ProgressUpdate
		if err := e.BindBody(&update); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		update.TaskID = e.Request.PathValue("id")

		task, err := s.UpdateProgress(update)
		if err != nil {
			return respondStoreError(e, "tasks: progress", err)
		}
		if w := task.EarlyWarning; w != nil && w.Active && len(w.Recommendations) > 0 {
			SetToast(e, "warning", w.Recommendations[0].Description)
		}
		return e.JSON(http.StatusOK, task)
	})
}

// HandleActualCosts replaces a task's recorded actual spend.
func HandleActualCosts() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var costs models.ActualCosts
		if err := e.BindBody(&costs); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		task, err := s.RecordActualCosts(e.Request.PathValue("id"), costs)
		if err != nil {
			return respondStoreError(e, "tasks: costs", err)
		}
		return e.JSON(http.StatusOK, task)
	})
}

type paymentRequest struct {
	models.Payment
	Planned bool `json:"planned"`
}

// HandlePayment adds a planned or actual payment to a task's cash flow.
func HandlePayment() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var req paymentRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		task, err := s.RecordPayment(e.Request.PathValue("id"), req.Payment, req.Planned)
		if err != nil {
			return respondStoreError(e, "tasks: payment", err)
		}
		return e.JSON(http.StatusCreated, task)
	})
}

type decisionRequest struct {
	DecidedBy string `json:"decidedBy"`
	Comment   string `json:"comment"`
}

// HandleReScheduleApprove applies the task's pending re-schedule proposal.
func HandleReScheduleApprove() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var req decisionRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(req.DecidedBy) == "" {
			return e.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Validation failed",
				Fields:  map[string]string{"decidedBy": "cannot be blank"},
			})
		}

		task, err := s.ApproveReSchedule(e.Request.PathValue("id"), req.DecidedBy, req.Comment)
		if err != nil {
			return respondStoreError(e, "tasks: approve", err)
		}
		SetToast(e, "success", "Re-schedule approved")
		return e.JSON(http.StatusOK, task)
	})
}

// HandleReScheduleReject records the rejection of the pending proposal.
func HandleReScheduleReject() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var req decisionRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(req.DecidedBy) == "" {
			return e.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Validation failed",
				Fields:  map[string]string{"decidedBy": "cannot be blank"},
			})
		}

		task, err := s.RejectReSchedule(e.Request.PathValue("id"), req.DecidedBy, req.Comment)
		if err != nil {
			return respondStoreError(e, "tasks: reject", err)
		}
		return e.JSON(http.StatusOK, task)
	})
}
