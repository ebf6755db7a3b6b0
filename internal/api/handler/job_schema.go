package handler

import (
	"time"

	"github.com/LouieCads/proofwork/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type postJobRequest struct {
	Title       string    `json:"title"       validate:"required"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"    validate:"required"`
	// Deposit is the escrowed value attached to the job, in minor units.
	Deposit int64 `json:"deposit"`
}

type updateJobRequest struct {
	Title             string    `json:"title"       validate:"required"`
	Description       string    `json:"description"`
	Deadline          time.Time `json:"deadline"    validate:"required"`
	AdditionalDeposit int64     `json:"additional_deposit"`
}

type submitWorkRequest struct {
	ProofHash string `json:"proof_hash" validate:"required"`
}

type grantRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=client freelancer"`
}

// --- Response types ---
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type postJobResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type jobResponse struct {
	ID          int64     `json:"id"`
	Client      string    `json:"client"`
	Freelancer  string    `json:"freelancer,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Deadline    time.Time `json:"deadline"`
	ProofHash   string    `json:"proof_hash,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listJobsResponse struct {
	Data       []jobResponse      `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

func toJobResponse(v ports.JobView) jobResponse {
	return jobResponse{
		ID:          v.ID,
		Client:      v.Client,
		Freelancer:  v.Freelancer,
		Title:       v.Title,
		Description: v.Description,
		Amount:      v.Amount,
		Deadline:    v.Deadline.UTC(),
		ProofHash:   v.ProofHash,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt.UTC(),
		UpdatedAt:   v.UpdatedAt.UTC(),
	}
}
