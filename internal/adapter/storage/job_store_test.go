package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"trendintel/internal/domain/insight"
)

func TestJobStoreRoundTrip(t *testing.T) {
	s := NewJobStore()
	ctx := context.Background()

	if _, err := s.GetJob(ctx, "missing"); !errors.Is(err, insight.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	job := insight.Job{
		ID:        "job-1",
		Status:    insight.JobStatusRunning,
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != insight.JobStatusRunning {
		t.Errorf("status = %q, want running", got.Status)
	}
}

func TestJobStoreLatestTracksNewestStart(t *testing.T) {
	s := NewJobStore()
	ctx := context.Background()

	first := insight.Job{ID: "a", Status: insight.JobStatusCompleted, StartedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	second := insight.Job{ID: "b", Status: insight.JobStatusRunning, StartedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)}

	if err := s.SaveJob(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveJob(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	latest, err := s.LatestJob(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != "b" {
		t.Errorf("latest job = %q, want b", latest.ID)
	}

	// Completing the running job must not change which job is latest.
	second.Status = insight.JobStatusCompleted
	second.CompletedAt = time.Date(2026, 3, 1, 11, 5, 0, 0, time.UTC)
	if err := s.SaveJob(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	latest, err = s.LatestJob(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != "b" || latest.Status != insight.JobStatusCompleted {
		t.Errorf("latest = %+v, want completed job b", latest)
	}
}
