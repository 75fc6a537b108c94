package store

import "projectsync/models"

// Change is the complete set of writes produced by one store operation. It is
// handed to the Persister before being applied in memory.
type Change struct {
	UpsertItems   []models.BOQItem
	UpsertTasks   []models.ScheduleTask
	DeleteItemIDs []string
	DeleteTaskIDs []string
}

func (c Change) Empty() bool {
	return len(c.UpsertItems) == 0 && len(c.UpsertTasks) == 0 &&
		len(c.DeleteItemIDs) == 0 && len(c.DeleteTaskIDs) == 0
}

// Persister durably applies a Change. A store only updates its in-memory
// state after Commit returns nil.
type Persister interface {
	Commit(projectID string, change Change) error
}

// Loader reads the persisted state of a project.
type Loader interface {
	Load(projectID string) ([]models.BOQItem, []models.ScheduleTask, error)
}
