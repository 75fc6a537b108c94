package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"projectsync/services"
	"projectsync/testhelpers"
)

func toastFromHeader(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	header := rec.Header().Get("HX-Trigger")
	if header == "" {
		return nil
	}
	var payload struct {
		ShowToast map[string]string `json:"showToast"`
	}
	if err := json.Unmarshal([]byte(header), &payload); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	return payload.ShowToast
}

func TestSetToast_MergesExistingTrigger(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	rec.Header().Set("HX-Trigger", `{"refreshSummary":true}`)
	e := newTestRequestEvent(app, req, rec)

	SetToast(e, "success", "Saved")

	var got map[string]any
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("invalid HX-Trigger: %v", err)
	}
	if got["refreshSummary"] != true {
		t.Error("existing trigger was dropped")
	}
	toast := toastFromHeader(t, rec)
	if toast["message"] != "Saved" || toast["type"] != "success" {
		t.Errorf("toast = %v", toast)
	}
}

func TestSyncToast(t *testing.T) {
	tests := []struct {
		name        string
		result      services.SyncResult
		expectType  string
		expectInMsg string
	}{
		{"clean sync sets nothing", services.SyncResult{}, "", ""},
		{"error wins", services.SyncResult{Errors: []string{"bad quantity"}, Warnings: []string{"w"}}, "error", "bad quantity"},
		{"single warning", services.SyncResult{Warnings: []string{"category defaulted"}}, "warning", "category defaulted"},
		{"several warnings", services.SyncResult{Warnings: []string{"a", "b", "c"}}, "warning", "(+2 more)"},
	}

	app := testhelpers.NewTestApp(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			syncToast(newTestRequestEvent(app, req, rec), tt.result)

			toast := toastFromHeader(t, rec)
			if tt.expectType == "" {
				if toast != nil {
					t.Errorf("expected no toast, got %v", toast)
				}
				return
			}
			if toast["type"] != tt.expectType {
				t.Errorf("toast type = %q, want %q", toast["type"], tt.expectType)
			}
			if !strings.Contains(toast["message"], tt.expectInMsg) {
				t.Errorf("toast message %q does not contain %q", toast["message"], tt.expectInMsg)
			}
		})
	}
}
