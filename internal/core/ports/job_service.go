package ports

import (
	"context"
	"time"
)

// PostJobInput carries all data needed to post a new job.
// Deposit is the value attached to the call, in minor currency units.
type PostJobInput struct {
	Caller      string
	Title       string
	Description string
	Deadline    time.Time
	Deposit     int64
}

// UpdateJobInput overwrites the metadata of an Open job. AdditionalDeposit,
// when positive, is added to the escrowed amount; value is never removed here.
type UpdateJobInput struct {
	Caller            string
	JobID             int64
	Title             string
	Description       string
	Deadline          time.Time
	AdditionalDeposit int64
}

// SubmitWorkInput carries a freelancer's claim on an Open job.
type SubmitWorkInput struct {
	Caller    string
	JobID     int64
	ProofHash string
}

// JobView is the read model returned by GetJob and ListJobs.
type JobView struct {
	ID          int64
	Client      string
	Freelancer  string
	Title       string
	Description string
	Amount      int64
	Deadline    time.Time
	ProofHash   string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListJobsInput carries all parameters for the list endpoint.
type ListJobsInput struct {
	Status     string
	Client     string
	Freelancer string
	Page       int
	Limit      int
}

// ListJobsResult is returned by ListJobs.
type ListJobsResult struct {
	Items      []JobView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// JobService defines the lifecycle operations of the escrowed job ledger.
// Every mutating operation resolves the caller's role first and fails with
// domain.ErrUnauthorized before any job state is read.
type JobService interface {
	PostJob(ctx context.Context, input PostJobInput) (int64, error)
	UpdateJob(ctx context.Context, input UpdateJobInput) error
	CancelJob(ctx context.Context, caller string, jobID int64) error
	SubmitWork(ctx context.Context, input SubmitWorkInput) error
	ApproveWork(ctx context.Context, caller string, jobID int64) error
	RejectWork(ctx context.Context, caller string, jobID int64) error
	GetJob(ctx context.Context, jobID int64) (*JobView, error)
	ListJobs(ctx context.Context, input ListJobsInput) (*ListJobsResult, error)
}
