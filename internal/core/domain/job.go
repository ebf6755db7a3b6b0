package domain

import (
	"errors"
	"time"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	StatusOpen      JobStatus = "open"
	StatusSubmitted JobStatus = "submitted"
	// StatusInReview is reserved for a future review flow. No current
	// operation produces or consumes it.
	StatusInReview  JobStatus = "in_review"
	StatusCompleted JobStatus = "completed"
	StatusCancelled JobStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// Completed and Cancelled are terminal; InReview has no inbound edges yet.
var validTransitions = map[JobStatus][]JobStatus{
	StatusOpen:      {StatusSubmitted, StatusCancelled},
	StatusSubmitted: {StatusCompleted, StatusOpen},
}

var ErrUnauthorized = errors.New("unauthorized")
var ErrJobNotFound = errors.New("job not found")
var ErrJobNotOpen = errors.New("job is not open")
var ErrNoWorkSubmitted = errors.New("no work submitted")
var ErrEmptyField = errors.New("required field is empty")
var ErrInvalidDeadline = errors.New("invalid deadline")
var ErrNoValueDeposited = errors.New("no value deposited")
var ErrTransferFailed = errors.New("escrow transfer failed")
var ErrOperationInFlight = errors.New("operation already in flight")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s JobStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Job is the core aggregate root: a unit of commissioned work together with
// the value currently held in escrow for it.
//
// Amount is expressed in minor currency units. It equals everything deposited
// minus everything paid out or refunded, and is zero exactly when the job has
// left escrow (Completed or Cancelled).
type Job struct {
	ID          int64     `json:"id" bson:"_id"`
	Client      string    `json:"client" bson:"client"`
	Freelancer  string    `json:"freelancer,omitempty" bson:"freelancer,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Amount      int64     `json:"amount" bson:"amount"`
	Deadline    time.Time `json:"deadline" bson:"deadline"`
	ProofHash   string    `json:"proof_hash,omitempty" bson:"proof_hash,omitempty"`
	Status      JobStatus `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
