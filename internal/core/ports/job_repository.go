package ports

import (
	"context"

	"github.com/LouieCads/proofwork/internal/core/domain"
)

// ListJobsFilter carries query parameters for listing jobs.
type ListJobsFilter struct {
	Status     string // optional: filter by lifecycle status
	Client     string // optional: jobs posted by this client
	Freelancer string // optional: jobs claimed by this freelancer
	Page       int    // 1-based
	Limit      int    // max rows per page (capped at 100 by service)
}

// JobRepository defines persistence operations for the job registry.
// Ids issued by NextID are monotonically increasing and never reused.
type JobRepository interface {
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, job *domain.Job) error
	FindByID(ctx context.Context, id int64) (*domain.Job, error)
	// Update replaces the stored record for job.ID. It is also used to
	// restore a pre-operation snapshot when a transfer fails.
	Update(ctx context.Context, job *domain.Job) error
	// List returns a page of jobs matching filter and the total count.
	List(ctx context.Context, filter ListJobsFilter) ([]*domain.Job, int64, error)
}
