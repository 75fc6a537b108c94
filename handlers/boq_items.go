package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/models"
	"projectsync/services"
	"projectsync/store"
)

type boqItemResponse struct {
	Item models.BOQItem      `json:"item"`
	Sync services.SyncResult `json:"sync"`
}

// HandleBOQItemList returns every BOQ item of the project.
func HandleBOQItemList() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		return e.JSON(http.StatusOK, s.BOQItems())
	})
}

// HandleBOQItemView returns a single BOQ item.
func HandleBOQItemView() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		item, err := s.BOQItem(e.Request.PathValue("id"))
		if err != nil {
			return respondStoreError(e, "boq_items", err)
		}
		return e.JSON(http.StatusOK, item)
	})
}

// HandleBOQItemCreate adds a BOQ item, syncs it and materializes its task.
// A sync failure still stores the item and is reported in the response.
func HandleBOQItemCreate() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var item models.BOQItem
		if err := e.BindBody(&item); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		item.Code = strings.TrimSpace(item.Code)
		item.Description = strings.TrimSpace(item.Description)

		created, result, err := s.AddBOQItem(item)
		if err != nil {
			return respondStoreError(e, "boq_items: create", err)
		}
		syncToast(e, result)
		return e.JSON(http.StatusCreated, boqItemResponse{Item: created, Sync: result})
	})
}

// HandleBOQItemUpdate applies a partial update and re-syncs the item and its
// task.
func HandleBOQItemUpdate() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var patch store.Patch
		if err := e.BindBody(&patch); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		updated, result, err := s.UpdateBOQItem(e.Request.PathValue("id"), patch)
		if err != nil {
			return respondStoreError(e, "boq_items: update", err)
		}
		syncToast(e, result)
		return e.JSON(http.StatusOK, boqItemResponse{Item: updated, Sync: result})
	})
}

// HandleBOQItemDelete removes an item and its schedule task.
func HandleBOQItemDelete() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		if err := s.DeleteBOQItem(e.Request.PathValue("id")); err != nil {
			return respondStoreError(e, "boq_items: delete", err)
		}
		SetToast(e, "success", "BOQ item deleted")
		return e.NoContent(http.StatusNoContent)
	})
}

type financialImportRequest struct {
	Category string                 `json:"category"`
	Items    []models.FinancialItem `json:"items"`
}

// HandleFinancialItemImport promotes priced lines from a spreadsheet or
// extraction import into BOQ items.
func HandleFinancialItemImport() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		var req financialImportRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if len(req.Items) == 0 {
			return respondError(e, http.StatusBadRequest, "No items to import")
		}

		results := s.ImportFinancialItems(req.Items, strings.TrimSpace(req.Category))
		imported := 0
		for _, r := range results {
			if r.Error == "" {
				imported++
			}
		}
		status := http.StatusCreated
		if imported == 0 {
			status = http.StatusUnprocessableEntity
		}
		return e.JSON(status, map[string]any{
			"imported": imported,
			"rejected": len(results) - imported,
			"results":  results,
		})
	})
}

// HandleBOQItemVariance compares an item's estimate with its spend so far.
func HandleBOQItemVariance() func(*core.RequestEvent) error {
	return withStore(func(e *core.RequestEvent, s *store.Store) error {
		report, err := s.ItemVariance(e.Request.PathValue("id"))
		if err != nil {
			return respondStoreError(e, "boq_items: variance", err)
		}
		return e.JSON(http.StatusOK, report)
	})
}
