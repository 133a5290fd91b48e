package workflow

import "sync"

// Registry hands out one Controller per school code.
type Registry struct {
	mu          sync.Mutex
	catalog     Catalog
	committer   Committer
	controllers map[string]*Controller
}

// NewRegistry creates an empty registry. Controllers it hands out share
// catalog and committer.
func NewRegistry(catalog Catalog, committer Committer) *Registry {
	return &Registry{
		catalog:     catalog,
		committer:   committer,
		controllers: make(map[string]*Controller),
	}
}

// Get returns the controller of school, creating it on first use. The same
// controller is returned until Drop is called.
func (r *Registry) Get(school string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[school]; ok {
		return c
	}
	c := NewController(school, r.catalog, r.committer)
	r.controllers[school] = c
	return c
}

// Drop forgets the controller of a school, discarding its build.
func (r *Registry) Drop(school string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, school)
}
