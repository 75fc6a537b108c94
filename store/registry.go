package store

import (
	"fmt"
	"slices"
	"sync"
)

// Registry owns one Store per project and loads each lazily on first use.
type Registry struct {
	loader Loader
	opts   Options

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry returns a registry whose stores share opts. A nil loader
// starts every project empty.
func NewRegistry(loader Loader, opts Options) *Registry {
	return &Registry{
		loader: loader,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// Get returns the store for projectID, loading it if needed.
func (r *Registry) Get(projectID string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[projectID]; ok {
		return s, nil
	}
	s := New(projectID, r.opts)
	if r.loader != nil {
		items, tasks, err := r.loader.Load(projectID)
		if err != nil {
			return nil, fmt.Errorf("store: load project %s: %w", projectID, err)
		}
		s.Restore(items, tasks)
	}
	r.stores[projectID] = s
	return s, nil
}

// Loaded returns the IDs of the projects currently held, sorted.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Forget drops a project so the next Get reloads it.
func (r *Registry) Forget(projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, projectID)
}
