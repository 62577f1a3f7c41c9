package storage

import (
	"context"
	"sync"

	"trendintel/internal/domain/insight"
)

// JobStore keeps insight generation job state in memory, keyed by job id.
// Job state is advisory and does not need to survive a restart.
type JobStore struct {
	mu     sync.RWMutex
	jobs   map[string]insight.Job
	latest string
}

// NewJobStore creates an empty in-memory job store
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]insight.Job),
	}
}

// SaveJob stores or replaces the job with the given id
func (s *JobStore) SaveJob(_ context.Context, job insight.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[job.ID]; !ok || job.StartedAt.After(existing.StartedAt) || job.ID == s.latest {
		s.latest = job.ID
	}
	s.jobs[job.ID] = job

	return nil
}

// GetJob returns the job with the given id
func (s *JobStore) GetJob(_ context.Context, id string) (*insight.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, insight.ErrNotFound
	}

	return &job, nil
}

// LatestJob returns the most recently started job
func (s *JobStore) LatestJob(_ context.Context) (*insight.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[s.latest]
	if !ok {
		return nil, insight.ErrNotFound
	}

	return &job, nil
}
