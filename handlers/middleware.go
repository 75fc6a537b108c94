package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/store"
)

type contextKey string

const ProjectStoreKey contextKey = "projectStore"

// GetProjectStore extracts the project store from the request context.
func GetProjectStore(r *http.Request) *store.Store {
	if val, ok := r.Context().Value(ProjectStoreKey).(*store.Store); ok {
		return val
	}
	return nil
}

// ProjectStoreMiddleware resolves the {projectId} path value to a project
// record, opens its store through the registry and stores it in the request
// context so the project-scoped handlers can use it.
func ProjectStoreMiddleware(app core.App, registry *store.Registry) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "Missing project ID")
		}
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return respondError(e, http.StatusNotFound, "Project not found")
		}

		s, err := registry.Get(projectID)
		if err != nil {
			log.Printf("middleware: failed to open project %s: %v", projectID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		e.Request = e.Request.WithContext(context.WithValue(e.Request.Context(), ProjectStoreKey, s))
		return e.Next()
	}
}

// withStore adapts a handler that needs the project store placed in the
// request context by ProjectStoreMiddleware.
func withStore(h func(e *core.RequestEvent, s *store.Store) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s := GetProjectStore(e.Request)
		if s == nil {
			log.Printf("middleware: no project store in context for %s", e.Request.URL.Path)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return h(e, s)
	}
}
