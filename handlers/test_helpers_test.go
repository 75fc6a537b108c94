package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/store"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app core.App, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// serveProject runs a project-scoped handler with the project's store already
// in the request context, the way ProjectStoreMiddleware leaves it. id, when
// set, is the {id} path value.
func serveProject(t *testing.T, app core.App, registry *store.Registry, projectID string, handler func(*core.RequestEvent) error, method, id, body string) *httptest.ResponseRecorder {
	t.Helper()

	s, err := registry.Get(projectID)
	if err != nil {
		t.Fatalf("failed to open project store: %v", err)
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/projects/"+projectID, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetPathValue("projectId", projectID)
	if id != "" {
		req.SetPathValue("id", id)
	}
	req = req.WithContext(context.WithValue(req.Context(), ProjectStoreKey, s))

	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}
