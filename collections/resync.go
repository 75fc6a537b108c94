package collections

import (
	"context"
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/store"
)

// ResyncStaleProjects finds every project holding BOQ items that are still
// pending or failed their last sync, and runs a full sync over each one.
// Safe to call on every startup -- returns early if nothing is stale.
func ResyncStaleProjects(ctx context.Context, app core.App, registry *store.Registry) error {
	stale, err := app.FindRecordsByFilter(
		boqItemsCollection,
		"sync_status = 'pending' || sync_status = 'error' || sync_status = ''",
		"",
		0,
		0,
	)
	if err != nil {
		return fmt.Errorf("resync: could not query stale BOQ items: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var projectIDs []string
	for _, rec := range stale {
		id := rec.GetString("project")
		if !seen[id] {
			seen[id] = true
			projectIDs = append(projectIDs, id)
		}
	}

	log.Printf("resync: found %d stale BOQ item(s) across %d project(s) -- resyncing...\n", len(stale), len(projectIDs))
	resyncProjects(ctx, registry, projectIDs)
	log.Println("resync: stale project resync complete.")
	return nil
}

// ResyncAllProjects runs a full sync over every stored project.
func ResyncAllProjects(ctx context.Context, app core.App, registry *store.Registry) error {
	ids, err := ProjectIDs(app)
	if err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	resyncProjects(ctx, registry, ids)
	return nil
}

// resyncProjects syncs each project in turn. A failing project is logged and
// does not stop the others.
func resyncProjects(ctx context.Context, registry *store.Registry, projectIDs []string) {
	for _, id := range projectIDs {
		if ctx.Err() != nil {
			log.Printf("resync: stopped before project %s: %v\n", id, ctx.Err())
			return
		}
		s, err := registry.Get(id)
		if err != nil {
			log.Printf("resync: failed to open project %s: %v\n", id, err)
			continue
		}
		report, err := s.SyncAll(ctx)
		if err != nil {
			log.Printf("resync: failed to sync project %s: %v\n", id, err)
			continue
		}
		log.Printf("resync: project %s -> %d item(s), %d task(s), %d materialized, %d failed\n",
			id, report.ItemsSynced, report.TasksSynced, report.Materialized, report.Failed)
	}
}
