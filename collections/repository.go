package collections

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/models"
	"projectsync/store"
)

const (
	boqItemsCollection      = "boq_items"
	scheduleTasksCollection = "schedule_tasks"

	maxEntitySize = 2 << 20
)

// Repository persists project stores in PocketBase. It implements both
// store.Loader and store.Persister.
type Repository struct {
	app core.App
}

func NewRepository(app core.App) *Repository {
	return &Repository{app: app}
}

// Load reads every BOQ item and schedule task of a project in insertion
// order.
func (r *Repository) Load(projectID string) ([]models.BOQItem, []models.ScheduleTask, error) {
	if _, err := r.app.FindRecordById("projects", projectID); err != nil {
		return nil, nil, fmt.Errorf("repository: project %s: %w", projectID, err)
	}

	itemRecords, err := findByProject(r.app, boqItemsCollection, projectID)
	if err != nil {
		return nil, nil, err
	}
	items := make([]models.BOQItem, 0, len(itemRecords))
	for _, rec := range itemRecords {
		var item models.BOQItem
		if err := rec.UnmarshalJSONField("data", &item); err != nil {
			return nil, nil, fmt.Errorf("repository: decode boq item %s: %w", rec.GetString("entity_id"), err)
		}
		items = append(items, item)
	}

	taskRecords, err := findByProject(r.app, scheduleTasksCollection, projectID)
	if err != nil {
		return nil, nil, err
	}
	tasks := make([]models.ScheduleTask, 0, len(taskRecords))
	for _, rec := range taskRecords {
		var task models.ScheduleTask
		if err := rec.UnmarshalJSONField("data", &task); err != nil {
			return nil, nil, fmt.Errorf("repository: decode schedule task %s: %w", rec.GetString("entity_id"), err)
		}
		tasks = append(tasks, task)
	}
	return items, tasks, nil
}

// Commit applies a store change in a single transaction.
func (r *Repository) Commit(projectID string, change store.Change) error {
	return r.app.RunInTransaction(func(txApp core.App) error {
		itemsCol, err := txApp.FindCollectionByNameOrId(boqItemsCollection)
		if err != nil {
			return fmt.Errorf("repository: could not find %s collection: %w", boqItemsCollection, err)
		}
		tasksCol, err := txApp.FindCollectionByNameOrId(scheduleTasksCollection)
		if err != nil {
			return fmt.Errorf("repository: could not find %s collection: %w", scheduleTasksCollection, err)
		}

		nextItem, err := nextPosition(txApp, itemsCol, projectID)
		if err != nil {
			return err
		}
		for _, item := range change.UpsertItems {
			rec, created, err := findOrNew(txApp, itemsCol, projectID, item.ID)
			if err != nil {
				return err
			}
			if created {
				rec.Set("position", nextItem)
				nextItem++
			}
			rec.Set("code", item.Code)
			rec.Set("category", item.Category)
			rec.Set("quantity", item.Quantity)
			rec.Set("unit", item.Unit)
			rec.Set("sync_status", string(item.ScheduleIntegration.SyncStatus))
			rec.Set("linked_task", item.ScheduleIntegration.LinkedTaskID)
			rec.Set("data", item)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("repository: save boq item %s: %w", item.ID, err)
			}
		}

		nextTask, err := nextPosition(txApp, tasksCol, projectID)
		if err != nil {
			return err
		}
		for _, task := range change.UpsertTasks {
			rec, created, err := findOrNew(txApp, tasksCol, projectID, task.ID)
			if err != nil {
				return err
			}
			if created {
				rec.Set("position", nextTask)
				nextTask++
			}
			rec.Set("name", task.Name)
			rec.Set("status", string(task.Status))
			rec.Set("start_date", task.StartDate)
			rec.Set("duration", task.Duration)
			rec.Set("boq_item", task.BOQIntegration.PrimaryBOQItemID())
			rec.Set("data", task)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("repository: save schedule task %s: %w", task.ID, err)
			}
		}

		if err := deleteEntities(txApp, itemsCol, projectID, change.DeleteItemIDs); err != nil {
			return err
		}
		return deleteEntities(txApp, tasksCol, projectID, change.DeleteTaskIDs)
	})
}

func findByProject(app core.App, collection, projectID string) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(
		collection,
		"project = {:project}",
		"position",
		0,
		0,
		map[string]any{"project": projectID},
	)
	if err != nil {
		return nil, fmt.Errorf("repository: query %s for project %s: %w", collection, projectID, err)
	}
	return records, nil
}

// findOrNew returns the record holding entityID, or a new unsaved record
// bound to the project.
func findOrNew(app core.App, col *core.Collection, projectID, entityID string) (*core.Record, bool, error) {
	rec, err := findEntity(app, col, projectID, entityID)
	if err != nil {
		return nil, false, err
	}
	if rec != nil {
		return rec, false, nil
	}
	rec = core.NewRecord(col)
	rec.Set("project", projectID)
	rec.Set("entity_id", entityID)
	return rec, true, nil
}

func findEntity(app core.App, col *core.Collection, projectID, entityID string) (*core.Record, error) {
	rec, err := app.FindFirstRecordByFilter(
		col,
		"project = {:project} && entity_id = {:entity}",
		map[string]any{"project": projectID, "entity": entityID},
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find %s %s: %w", col.Name, entityID, err)
	}
	return rec, nil
}

func nextPosition(app core.App, col *core.Collection, projectID string) (int, error) {
	last, err := app.FindRecordsByFilter(
		col,
		"project = {:project}",
		"-position",
		1,
		0,
		map[string]any{"project": projectID},
	)
	if err != nil {
		return 0, fmt.Errorf("repository: last position in %s: %w", col.Name, err)
	}
	if len(last) == 0 {
		return 1, nil
	}
	return last[0].GetInt("position") + 1, nil
}

func deleteEntities(app core.App, col *core.Collection, projectID string, ids []string) error {
	for _, id := range ids {
		rec, err := findEntity(app, col, projectID, id)
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}
		if err := app.Delete(rec); err != nil {
			return fmt.Errorf("repository: delete %s %s: %w", col.Name, id, err)
		}
	}
	return nil
}

// ProjectIDs returns the IDs of every stored project.
func ProjectIDs(app core.App) ([]string, error) {
	records, err := app.FindAllRecords("projects")
	if err != nil {
		return nil, fmt.Errorf("repository: list projects: %w", err)
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.Id)
	}
	return ids, nil
}
