package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/store"
)

type projectSummary struct {
	ProjectID string                 `json:"projectId"`
	Financial store.FinancialSummary `json:"financial"`
	Schedule  store.ScheduleSummary  `json:"schedule"`
}

// HandleProjectSummary returns the financial and schedule roll-up of the
// project.
func HandleProjectSummary() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		return e.JSON(http.StatusOK, projectSummary{
			ProjectID: s.ProjectID(),
			Financial: s.FinancialSummary(),
			Schedule:  s.ScheduleSummary(),
		})
	})
}

// HandleProjectSync re-runs the integration over the whole project.
func HandleProjectSync() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		report, err := s.SyncAll(e.Request.Context())
		if err != nil {
			return respondStoreError(e, "project: sync", err)
		}
		if report.Failed > 0 {
			SetToast(e, "warning", fmt.Sprintf("Sync finished with %d failed item(s)", report.Failed))
		} else {
			SetToast(e, "success", "Project synced")
		}
		return e.JSON(http.StatusOK, report)
	})
}
