package jobs

import (
	"errors"
	"sync"

	"adforge/types"
)

// ErrNotFound is returned when a job id is unknown to the store.
var ErrNotFound = errors.New("job not found")

// Store is the injectable registry of render jobs. One writer (the
// pipeline goroutine owning the job) mutates a job; any number of readers
// poll snapshots.
type Store interface {
	Create(job types.RenderJob) error
	Get(id string) (types.RenderJob, error)

	// Update applies fn to the stored job under the store's write lock.
	Update(id string, fn func(*types.RenderJob)) error
}

// MemoryStore keeps jobs in a mutex-guarded map. It is the default store
// for single-process deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]types.RenderJob
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]types.RenderJob)}
}

func (s *MemoryStore) Create(job types.RenderJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
	return nil
}

func (s *MemoryStore) Get(id string) (types.RenderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return types.RenderJob{}, ErrNotFound
	}
	return job, nil
}

func (s *MemoryStore) Update(id string, fn func(*types.RenderJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	fn(&job)
	s.jobs[id] = job
	return nil
}
