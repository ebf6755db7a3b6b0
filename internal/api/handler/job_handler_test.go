package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LouieCads/proofwork/internal/core/domain"
	"github.com/LouieCads/proofwork/internal/core/ports"
)

// stubJobService records inputs and returns canned results. Domain error
// mapping lives in the api package's error handler, so these tests assert on
// the returned error instead of the response status.
type stubJobService struct {
	postFn    func(ctx context.Context, input ports.PostJobInput) (int64, error)
	updateFn  func(ctx context.Context, input ports.UpdateJobInput) error
	cancelFn  func(ctx context.Context, caller string, jobID int64) error
	submitFn  func(ctx context.Context, input ports.SubmitWorkInput) error
	approveFn func(ctx context.Context, caller string, jobID int64) error
	rejectFn  func(ctx context.Context, caller string, jobID int64) error
	getFn     func(ctx context.Context, jobID int64) (*ports.JobView, error)
	listFn    func(ctx context.Context, input ports.ListJobsInput) (*ports.ListJobsResult, error)
}

func (s *stubJobService) PostJob(ctx context.Context, input ports.PostJobInput) (int64, error) {
	return s.postFn(ctx, input)
}

func (s *stubJobService) UpdateJob(ctx context.Context, input ports.UpdateJobInput) error {
	return s.updateFn(ctx, input)
}

func (s *stubJobService) CancelJob(ctx context.Context, caller string, jobID int64) error {
	return s.cancelFn(ctx, caller, jobID)
}

func (s *stubJobService) SubmitWork(ctx context.Context, input ports.SubmitWorkInput) error {
	return s.submitFn(ctx, input)
}

func (s *stubJobService) ApproveWork(ctx context.Context, caller string, jobID int64) error {
	return s.approveFn(ctx, caller, jobID)
}

func (s *stubJobService) RejectWork(ctx context.Context, caller string, jobID int64) error {
	return s.rejectFn(ctx, caller, jobID)
}

func (s *stubJobService) GetJob(ctx context.Context, jobID int64) (*ports.JobView, error) {
	return s.getFn(ctx, jobID)
}

func (s *stubJobService) ListJobs(ctx context.Context, input ports.ListJobsInput) (*ports.ListJobsResult, error) {
	return s.listFn(ctx, input)
}

func openJobView(id int64) *ports.JobView {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &ports.JobView{
		ID:          id,
		Client:      "alice",
		Title:       "build landing page",
		Description: "single page, responsive",
		Amount:      100,
		Deadline:    now.Add(24 * time.Hour),
		Status:      string(domain.StatusOpen),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// newJobContext builds an echo context with the identity the Auth middleware
// would have injected.
func newJobContext(t *testing.T, method, target, body, identity string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != "" {
		c.Set("identity", identity)
	}
	return c, rec
}

func TestJobHandler_Post_Success(t *testing.T) {
	stub := &stubJobService{
		postFn: func(ctx context.Context, input ports.PostJobInput) (int64, error) {
			if input.Caller != "alice" {
				t.Fatalf("unexpected caller: %s", input.Caller)
			}
			if input.Title != "build landing page" || input.Deposit != 100 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return 7, nil
		},
	}
	h := NewJobHandler(stub)

	body := `{"title":"build landing page","description":"single page","deadline":"2025-06-02T12:00:00Z","deposit":100}`
	c, rec := newJobContext(t, http.MethodPost, "/v1/jobs", body, "alice")

	if err := h.Post(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != float64(7) || resp["status"] != "open" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestJobHandler_Post_MissingIdentity(t *testing.T) {
	stub := &stubJobService{
		postFn: func(ctx context.Context, input ports.PostJobInput) (int64, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	h := NewJobHandler(stub)

	c, _ := newJobContext(t, http.MethodPost, "/v1/jobs", `{"title":"x","deadline":"2025-06-02T12:00:00Z"}`, "")

	err := h.Post(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestJobHandler_Post_MissingTitle(t *testing.T) {
	stub := &stubJobService{
		postFn: func(ctx context.Context, input ports.PostJobInput) (int64, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	h := NewJobHandler(stub)

	c, _ := newJobContext(t, http.MethodPost, "/v1/jobs", `{"deadline":"2025-06-02T12:00:00Z","deposit":100}`, "alice")

	err := h.Post(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestJobHandler_Post_ServiceErrorPassesThrough(t *testing.T) {
	stub := &stubJobService{
		postFn: func(ctx context.Context, input ports.PostJobInput) (int64, error) {
			return 0, domain.ErrUnauthorized
		},
	}
	h := NewJobHandler(stub)

	body := `{"title":"x","deadline":"2025-06-02T12:00:00Z","deposit":100}`
	c, _ := newJobContext(t, http.MethodPost, "/v1/jobs", body, "bob")

	if err := h.Post(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestJobHandler_Update_Success(t *testing.T) {
	updated := false
	stub := &stubJobService{
		updateFn: func(ctx context.Context, input ports.UpdateJobInput) error {
			updated = true
			if input.JobID != 7 || input.Caller != "alice" || input.AdditionalDeposit != 50 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return nil
		},
		getFn: func(ctx context.Context, jobID int64) (*ports.JobView, error) {
			return openJobView(jobID), nil
		},
	}
	h := NewJobHandler(stub)

	body := `{"title":"new title","deadline":"2025-06-03T12:00:00Z","additional_deposit":50}`
	c, rec := newJobContext(t, http.MethodPatch, "/v1/jobs/7", body, "alice")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !updated {
		t.Fatalf("service not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJobHandler_Submit_Success(t *testing.T) {
	stub := &stubJobService{
		submitFn: func(ctx context.Context, input ports.SubmitWorkInput) error {
			if input.Caller != "bob" || input.JobID != 7 || input.ProofHash != "sha256:abc" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return nil
		},
		getFn: func(ctx context.Context, jobID int64) (*ports.JobView, error) {
			view := openJobView(jobID)
			view.Freelancer = "bob"
			view.ProofHash = "sha256:abc"
			view.Status = string(domain.StatusSubmitted)
			return view, nil
		},
	}
	h := NewJobHandler(stub)

	c, rec := newJobContext(t, http.MethodPost, "/v1/jobs/7/submission", `{"proof_hash":"sha256:abc"}`, "bob")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "submitted" || resp["freelancer"] != "bob" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestJobHandler_Approve_TransferFailurePassesThrough(t *testing.T) {
	stub := &stubJobService{
		approveFn: func(ctx context.Context, caller string, jobID int64) error {
			return domain.ErrTransferFailed
		},
	}
	h := NewJobHandler(stub)

	c, _ := newJobContext(t, http.MethodPost, "/v1/jobs/7/approval", "", "alice")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Approve(c); !errors.Is(err, domain.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
}

func TestJobHandler_Cancel_Success(t *testing.T) {
	stub := &stubJobService{
		cancelFn: func(ctx context.Context, caller string, jobID int64) error {
			if caller != "alice" || jobID != 7 {
				t.Fatalf("unexpected args: %s %d", caller, jobID)
			}
			return nil
		},
		getFn: func(ctx context.Context, jobID int64) (*ports.JobView, error) {
			view := openJobView(jobID)
			view.Amount = 0
			view.Status = string(domain.StatusCancelled)
			return view, nil
		},
	}
	h := NewJobHandler(stub)

	c, rec := newJobContext(t, http.MethodDelete, "/v1/jobs/7", "", "alice")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Cancel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "cancelled" || resp["amount"] != float64(0) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestJobHandler_Get_NotFound(t *testing.T) {
	stub := &stubJobService{
		getFn: func(ctx context.Context, jobID int64) (*ports.JobView, error) {
			return nil, domain.ErrJobNotFound
		},
	}
	h := NewJobHandler(stub)

	c, _ := newJobContext(t, http.MethodGet, "/v1/jobs/99", "", "alice")
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := h.Get(c); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJobHandler_Get_InvalidID(t *testing.T) {
	h := NewJobHandler(&stubJobService{})

	c, _ := newJobContext(t, http.MethodGet, "/v1/jobs/abc", "", "alice")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestJobHandler_List_MapsQueryParams(t *testing.T) {
	stub := &stubJobService{
		listFn: func(ctx context.Context, input ports.ListJobsInput) (*ports.ListJobsResult, error) {
			if input.Status != "open" || input.Client != "alice" || input.Page != 2 || input.Limit != 5 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.ListJobsResult{
				Items:      []ports.JobView{*openJobView(1)},
				Total:      6,
				Page:       2,
				Limit:      5,
				TotalPages: 2,
			}, nil
		},
	}
	h := NewJobHandler(stub)

	c, rec := newJobContext(t, http.MethodGet, "/v1/jobs?status=open&client=alice&page=2&limit=5", "", "alice")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data       []map[string]any `json:"data"`
		Pagination map[string]any   `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Data))
	}
	if resp.Pagination["total"] != float64(6) || resp.Pagination["total_pages"] != float64(2) {
		t.Fatalf("unexpected pagination: %+v", resp.Pagination)
	}
}
