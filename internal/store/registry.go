package store

import (
	"sync"

	"github.com/vgetd/vgetd/internal/data"
)

// Registry tracks jobs whose task is still running. The owning task adds
// its entry before starting and removes it as its very last action, so a
// job never appears in List after its task has exited.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]data.Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]data.Job)}
}

func (r *Registry) Add(j data.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// List returns a point-in-time copy of the active jobs. The lock is
// released before callers do anything with the result.
func (r *Registry) List() data.Jobs {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := make(data.Jobs, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	return jobs
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
