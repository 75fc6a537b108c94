package collections

import (
	"log"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/store"
)

// BindProjectHooks keeps the registry in step with the projects collection.
// A deleted project's store is dropped so it is neither served nor resynced.
func BindProjectHooks(app core.App, registry *store.Registry) {
	app.OnRecordAfterDeleteSuccess("projects").BindFunc(func(e *core.RecordEvent) error {
		registry.Forget(e.Record.Id)
		log.Printf("projects: dropped store for deleted project %s", e.Record.Id)
		return e.Next()
	})
}
