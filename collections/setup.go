package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the projects, boq_items and
// schedule_tasks collections exist. Entities are stored whole in the "data"
// JSON column; the scalar columns beside it exist for filtering and indexes.
func Setup(app core.App) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "on_hold", "completed"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "currency", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, boqItemsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "entity_id", Required: true})
		c.Fields.Add(&core.NumberField{Name: "position", Required: false})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "category", Required: false})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "sync_status",
			Required:  false,
			Values:    []string{"synced", "pending", "conflict", "error"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "linked_task", Required: false})
		c.Fields.Add(&core.JSONField{Name: "data", Required: true, MaxSize: maxEntitySize})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_boq_items_entity", true, "project, entity_id", "")
	})

	ensureCollection(app, scheduleTasksCollection, func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "entity_id", Required: true})
		c.Fields.Add(&core.NumberField{Name: "position", Required: false})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"not-started", "in-progress", "completed", "delayed", "on-hold"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.DateField{Name: "start_date", Required: false})
		c.Fields.Add(&core.NumberField{Name: "duration", Required: false})
		c.Fields.Add(&core.TextField{Name: "boq_item", Required: false})
		c.Fields.Add(&core.JSONField{Name: "data", Required: true, MaxSize: maxEntitySize})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_schedule_tasks_entity", true, "project, entity_id", "")
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
