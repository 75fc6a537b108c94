package handlers

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/services"
)

// SetToast sets the HX-Trigger response header so an HTMX client shows a
// toast notification. If an HX-Trigger header already exists, the toast
// payload is merged into the existing JSON object.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	toast := map[string]any{
		"showToast": map[string]string{
			"message": message,
			"type":    toastType,
		},
	}

	existing := e.Response.Header().Get("HX-Trigger")
	if existing != "" {
		var merged map[string]any
		if err := json.Unmarshal([]byte(existing), &merged); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
		} else {
			merged["showToast"] = toast["showToast"]
			toast = merged
		}
	}

	data, err := json.Marshal(toast)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// syncToast surfaces the outcome of a BOQ item sync: errors first, then
// warnings such as a category falling back to the default activity.
func syncToast(e *core.RequestEvent, result services.SyncResult) {
	switch {
	case len(result.Errors) > 0:
		SetToast(e, "error", fmt.Sprintf("Sync failed: %s", result.Errors[0]))
	case len(result.Warnings) == 1:
		SetToast(e, "warning", result.Warnings[0])
	case len(result.Warnings) > 1:
		SetToast(e, "warning", fmt.Sprintf("%s (+%d more)", result.Warnings[0], len(result.Warnings)-1))
	}
}
