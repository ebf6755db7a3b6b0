package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LouieCads/proofwork/internal/core/domain"
	"github.com/LouieCads/proofwork/internal/core/ports"
)

const maxListLimit = 100

// JobService implements the escrowed job lifecycle. Operations follow a
// strict validate-then-mutate ordering: every check that can reject the call
// runs before the first write, and the two value-moving operations
// (CancelJob, ApproveWork) commit their record mutations before invoking the
// treasury, restoring the pre-operation snapshot if the transfer fails.
type JobService struct {
	repo     ports.JobRepository
	authz    ports.Authorizer
	treasury ports.Treasury
	audit    ports.AuditLog
	clock    ports.Clock
	logger   zerolog.Logger

	// inflight holds the ids of jobs with a value-moving operation in
	// progress. A treasury implementation that calls back into the service
	// for the same job gets ErrOperationInFlight instead of a second pass
	// over half-committed state.
	inflight sync.Map
}

func NewJobService(
	repo ports.JobRepository,
	authz ports.Authorizer,
	treasury ports.Treasury,
	audit ports.AuditLog,
	clock ports.Clock,
	logger zerolog.Logger,
) *JobService {
	return &JobService{
		repo:     repo,
		authz:    authz,
		treasury: treasury,
		audit:    audit,
		clock:    clock,
		logger:   logger,
	}
}

// PostJob opens a new job funded with input.Deposit and returns its id.
func (s *JobService) PostJob(ctx context.Context, input ports.PostJobInput) (int64, error) {
	if err := s.requireRole(ctx, input.Caller, domain.RoleClient); err != nil {
		return 0, err
	}
	if input.Title == "" || input.Deadline.IsZero() {
		return 0, domain.ErrEmptyField
	}
	now := s.clock.Now()
	if !input.Deadline.After(now) {
		return 0, domain.ErrInvalidDeadline
	}
	if input.Deposit <= 0 {
		return 0, domain.ErrNoValueDeposited
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("post job: allocate id: %w", err)
	}

	job := &domain.Job{
		ID:          id,
		Client:      input.Caller,
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Deposit,
		Deadline:    input.Deadline,
		Status:      domain.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, job); err != nil {
		return 0, fmt.Errorf("post job: %w", err)
	}

	s.emit(ctx, domain.LedgerEvent{
		Type:   domain.EventJobPosted,
		JobID:  id,
		Actor:  input.Caller,
		Amount: input.Deposit,
		At:     now,
	})

	s.logger.Info().
		Int64("job_id", id).
		Str("client", input.Caller).
		Int64("amount", input.Deposit).
		Msg("job posted")

	return id, nil
}

// UpdateJob overwrites the metadata of an Open job owned by the caller and
// adds AdditionalDeposit (if positive) to escrow. Value is never removed.
func (s *JobService) UpdateJob(ctx context.Context, input ports.UpdateJobInput) error {
	if err := s.requireRole(ctx, input.Caller, domain.RoleClient); err != nil {
		return err
	}
	if input.Title == "" || input.Deadline.IsZero() {
		return domain.ErrEmptyField
	}
	if !input.Deadline.After(s.clock.Now()) {
		return domain.ErrInvalidDeadline
	}

	job, err := s.repo.FindByID(ctx, input.JobID)
	if err != nil {
		return fmt.Errorf("update job %d: %w", input.JobID, err)
	}
	if job.Client != input.Caller {
		return domain.ErrUnauthorized
	}
	if job.Status != domain.StatusOpen {
		return domain.ErrJobNotOpen
	}

	job.Title = input.Title
	job.Description = input.Description
	job.Deadline = input.Deadline
	if input.AdditionalDeposit > 0 {
		job.Amount += input.AdditionalDeposit
	}
	job.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("update job %d: %w", input.JobID, err)
	}

	s.emit(ctx, domain.LedgerEvent{
		Type:   domain.EventJobUpdated,
		JobID:  job.ID,
		Actor:  input.Caller,
		Amount: input.AdditionalDeposit,
		At:     job.UpdatedAt,
	})
	return nil
}

// CancelJob moves an Open job to Cancelled and refunds the escrowed amount
// to the client. The Cancelled status and the zeroed amount are committed
// before the treasury is invoked; if the transfer fails the pre-operation
// snapshot is restored and the call returns ErrTransferFailed.
func (s *JobService) CancelJob(ctx context.Context, caller string, jobID int64) error {
	if err := s.requireRole(ctx, caller, domain.RoleClient); err != nil {
		return err
	}
	if err := s.begin(jobID); err != nil {
		return err
	}
	defer s.end(jobID)

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("cancel job %d: %w", jobID, err)
	}
	if job.Client != caller {
		return domain.ErrUnauthorized
	}
	if job.Status != domain.StatusOpen {
		return domain.ErrJobNotOpen
	}

	snapshot := *job
	refund := job.Amount
	job.Status = domain.StatusCancelled
	job.Amount = 0
	job.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("cancel job %d: %w", jobID, err)
	}

	if refund > 0 {
		if err := s.treasury.Transfer(ctx, job.Client, refund); err != nil {
			s.rollback(ctx, &snapshot)
			return fmt.Errorf("cancel job %d: refund %d to %s: %w: %v",
				jobID, refund, job.Client, domain.ErrTransferFailed, err)
		}
	}

	s.emit(ctx, domain.LedgerEvent{
		Type:   domain.EventJobCancelled,
		JobID:  jobID,
		Actor:  caller,
		Amount: refund,
		At:     job.UpdatedAt,
	})

	s.logger.Info().
		Int64("job_id", jobID).
		Int64("refund", refund).
		Str("client", caller).
		Msg("job cancelled")
	return nil
}

// SubmitWork claims an Open job for the calling freelancer before its
// deadline. Submitting against an id that was never created is rejected with
// ErrJobNotFound rather than treated as a default-initialized record.
func (s *JobService) SubmitWork(ctx context.Context, input ports.SubmitWorkInput) error {
	if err := s.requireRole(ctx, input.Caller, domain.RoleFreelancer); err != nil {
		return err
	}

	job, err := s.repo.FindByID(ctx, input.JobID)
	if err != nil {
		return fmt.Errorf("submit work for job %d: %w", input.JobID, err)
	}
	if job.Status != domain.StatusOpen {
		return domain.ErrJobNotOpen
	}
	if s.clock.Now().After(job.Deadline) {
		return domain.ErrInvalidDeadline
	}
	if input.ProofHash == "" {
		return domain.ErrEmptyField
	}

	job.Freelancer = input.Caller
	job.ProofHash = input.ProofHash
	job.Status = domain.StatusSubmitted
	job.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("submit work for job %d: %w", input.JobID, err)
	}

	s.emit(ctx, domain.LedgerEvent{
		Type:      domain.EventWorkSubmitted,
		JobID:     job.ID,
		Actor:     input.Caller,
		ProofHash: input.ProofHash,
		At:        job.UpdatedAt,
	})
	return nil
}

// ApproveWork accepts a submission, moves the job to Completed and releases
// the escrowed amount to the freelancer, with the same commit-then-transfer
// and rollback discipline as CancelJob.
func (s *JobService) ApproveWork(ctx context.Context, caller string, jobID int64) error {
	if err := s.requireRole(ctx, caller, domain.RoleClient); err != nil {
		return err
	}
	if err := s.begin(jobID); err != nil {
		return err
	}
	defer s.end(jobID)

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("approve work for job %d: %w", jobID, err)
	}
	if job.Client != caller {
		return domain.ErrUnauthorized
	}
	if job.Status != domain.StatusSubmitted {
		return domain.ErrNoWorkSubmitted
	}

	snapshot := *job
	payout := job.Amount
	freelancer := job.Freelancer
	job.Status = domain.StatusCompleted
	job.Amount = 0
	job.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("approve work for job %d: %w", jobID, err)
	}

	if err := s.treasury.Transfer(ctx, freelancer, payout); err != nil {
		s.rollback(ctx, &snapshot)
		return fmt.Errorf("approve work for job %d: pay %d to %s: %w: %v",
			jobID, payout, freelancer, domain.ErrTransferFailed, err)
	}

	s.emit(ctx, domain.LedgerEvent{
		Type:   domain.EventPaymentReleased,
		JobID:  jobID,
		Actor:  caller,
		Amount: payout,
		At:     job.UpdatedAt,
	})

	s.logger.Info().
		Int64("job_id", jobID).
		Int64("amount", payout).
		Str("freelancer", freelancer).
		Msg("payment released")
	return nil
}

// RejectWork turns a submission down: the freelancer and proof are cleared
// and the job reopens for resubmission. No value moves.
func (s *JobService) RejectWork(ctx context.Context, caller string, jobID int64) error {
	if err := s.requireRole(ctx, caller, domain.RoleClient); err != nil {
		return err
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("reject work for job %d: %w", jobID, err)
	}
	if job.Client != caller {
		return domain.ErrUnauthorized
	}
	if job.Status != domain.StatusSubmitted {
		return domain.ErrNoWorkSubmitted
	}

	job.Freelancer = ""
	job.ProofHash = ""
	job.Status = domain.StatusOpen
	job.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("reject work for job %d: %w", jobID, err)
	}

	s.emit(ctx, domain.LedgerEvent{
		Type:  domain.EventWorkRejected,
		JobID: jobID,
		Actor: caller,
		At:    job.UpdatedAt,
	})
	return nil
}

// GetJob returns the full view of a single job.
func (s *JobService) GetJob(ctx context.Context, jobID int64) (*ports.JobView, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", jobID, err)
	}
	view := toJobView(job)
	return &view, nil
}

// ListJobs returns a page of jobs matching the given filters.
func (s *JobService) ListJobs(ctx context.Context, input ports.ListJobsInput) (*ports.ListJobsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	jobs, total, err := s.repo.List(ctx, ports.ListJobsFilter{
		Status:     input.Status,
		Client:     input.Client,
		Freelancer: input.Freelancer,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	items := make([]ports.JobView, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, toJobView(job))
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &ports.ListJobsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// requireRole fails the whole operation with ErrUnauthorized before any job
// state is read when the caller lacks the role.
func (s *JobService) requireRole(ctx context.Context, identity, role string) error {
	ok, err := s.authz.HasRole(ctx, identity, role)
	if err != nil {
		return fmt.Errorf("role check for %s: %w", identity, err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// begin marks a value-moving operation on jobID as in flight.
func (s *JobService) begin(jobID int64) error {
	if _, busy := s.inflight.LoadOrStore(jobID, struct{}{}); busy {
		return domain.ErrOperationInFlight
	}
	return nil
}

func (s *JobService) end(jobID int64) {
	s.inflight.Delete(jobID)
}

// rollback restores the pre-operation snapshot after a failed transfer. A
// failure here leaves the registry inconsistent with the treasury, so it is
// logged at error level with the full snapshot for operator intervention.
func (s *JobService) rollback(ctx context.Context, snapshot *domain.Job) {
	if err := s.repo.Update(ctx, snapshot); err != nil {
		s.logger.Error().Err(err).
			Int64("job_id", snapshot.ID).
			Int64("amount", snapshot.Amount).
			Str("status", string(snapshot.Status)).
			Msg("rollback after failed transfer did not apply")
	}
}

// emit appends to the audit stream; a sink failure never fails the operation.
func (s *JobService) emit(ctx context.Context, event domain.LedgerEvent) {
	if err := s.audit.Append(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Int64("job_id", event.JobID).
			Str("event", string(event.Type)).
			Msg("failed to append audit event")
	}
}

func toJobView(job *domain.Job) ports.JobView {
	return ports.JobView{
		ID:          job.ID,
		Client:      job.Client,
		Freelancer:  job.Freelancer,
		Title:       job.Title,
		Description: job.Description,
		Amount:      job.Amount,
		Deadline:    job.Deadline,
		ProofHash:   job.ProofHash,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

// realClock is the production Clock.
type realClock struct{}

// NewClock returns a Clock backed by time.Now in UTC.
func NewClock() ports.Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now().UTC() }
