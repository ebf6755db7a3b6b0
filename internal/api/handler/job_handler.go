package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LouieCads/proofwork/internal/api/metrics"
	"github.com/LouieCads/proofwork/internal/core/domain"
	"github.com/LouieCads/proofwork/internal/core/ports"
)

// JobHandler handles HTTP requests for job lifecycle operations.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// Post handles POST /v1/jobs.
//
// @Summary      Post a new escrowed job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      postJobRequest  true  "Job details and deposit"
// @Success      201   {object}  postJobResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/jobs [post]
func (h *JobHandler) Post(c echo.Context) error {
	defer observe("post", time.Now())

	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req postJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.PostJob(c.Request().Context(), ports.PostJobInput{
		Caller:      caller,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Deposit:     req.Deposit,
	})
	if err != nil {
		return err
	}

	metrics.JobsPostedTotal.Inc()
	return c.JSON(http.StatusCreated, postJobResponse{ID: id, Status: string(domain.StatusOpen)})
}

// Update handles PATCH /v1/jobs/:id.
//
// @Summary      Update an open job's metadata and optionally add escrow
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Job id"
// @Param        body  body      updateJobRequest  true  "New metadata"
// @Success      200   {object}  jobResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/jobs/{id} [patch]
func (h *JobHandler) Update(c echo.Context) error {
	defer observe("update", time.Now())

	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := jobID(c)
	if err != nil {
		return err
	}

	var req updateJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.UpdateJob(c.Request().Context(), ports.UpdateJobInput{
		Caller:            caller,
		JobID:             id,
		Title:             req.Title,
		Description:       req.Description,
		Deadline:          req.Deadline,
		AdditionalDeposit: req.AdditionalDeposit,
	}); err != nil {
		return err
	}

	return h.respondWithJob(c, id)
}

// Cancel handles DELETE /v1/jobs/:id — cancels an open job and refunds the client.
//
// @Summary      Cancel an open job and refund its escrow
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      int  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/jobs/{id} [delete]
func (h *JobHandler) Cancel(c echo.Context) error {
	defer observe("cancel", time.Now())

	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := jobID(c)
	if err != nil {
		return err
	}

	if err := h.service.CancelJob(c.Request().Context(), caller, id); err != nil {
		if errors.Is(err, domain.ErrTransferFailed) {
			metrics.TransferFailuresTotal.WithLabelValues("cancel").Inc()
		}
		return err
	}

	metrics.RefundsTotal.Inc()
	return h.respondWithJob(c, id)
}

// Submit handles POST /v1/jobs/:id/submission.
//
// @Summary      Submit proof of completed work for an open job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Job id"
// @Param        body  body      submitWorkRequest  true  "Proof reference"
// @Success      200   {object}  jobResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/jobs/{id}/submission [post]
func (h *JobHandler) Submit(c echo.Context) error {
	defer observe("submit", time.Now())

	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := jobID(c)
	if err != nil {
		return err
	}

	var req submitWorkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.SubmitWork(c.Request().Context(), ports.SubmitWorkInput{
		Caller:    caller,
		JobID:     id,
		ProofHash: req.ProofHash,
	}); err != nil {
		return err
	}

	return h.respondWithJob(c, id)
}

// Approve handles POST /v1/jobs/:id/approval — releases escrow to the freelancer.
//
// @Summary      Approve a submission and release escrow to the freelancer
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      int  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/jobs/{id}/approval [post]
func (h *JobHandler) Approve(c echo.Context) error {
	defer observe("approve", time.Now())

	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := jobID(c)
	if err != nil {
		return err
	}

	if err := h.service.ApproveWork(c.Request().Context(), caller, id); err != nil {
		if errors.Is(err, domain.ErrTransferFailed) {
			metrics.TransferFailuresTotal.WithLabelValues("approve").Inc()
		}
		return err
	}

	metrics.PaymentsReleasedTotal.Inc()
	return h.respondWithJob(c, id)
}

// Reject handles POST /v1/jobs/:id/rejection — reopens the job.
//
// @Summary      Reject a submission, clearing the claimant and reopening the job
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      int  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/jobs/{id}/rejection [post]
func (h *JobHandler) Reject(c echo.Context) error {
	defer observe("reject", time.Now())

	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := jobID(c)
	if err != nil {
		return err
	}

	if err := h.service.RejectWork(c.Request().Context(), caller, id); err != nil {
		return err
	}

	return h.respondWithJob(c, id)
}

// Get handles GET /v1/jobs/:id.
//
// @Summary      Get a job by id
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      int  true  "Job id"
// @Success      200  {object}  jobResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	id, err := jobID(c)
	if err != nil {
		return err
	}
	return h.respondWithJob(c, id)
}

// List handles GET /v1/jobs.
//
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Filter by lifecycle status"
// @Param        client      query     string  false  "Filter by posting client"
// @Param        freelancer  query     string  false  "Filter by claiming freelancer"
// @Param        page        query     int     false  "Page (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200  {object}  listJobsResponse
// @Router       /v1/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListJobs(c.Request().Context(), ports.ListJobsInput{
		Status:     c.QueryParam("status"),
		Client:     c.QueryParam("client"),
		Freelancer: c.QueryParam("freelancer"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	data := make([]jobResponse, 0, len(result.Items))
	for _, item := range result.Items {
		data = append(data, toJobResponse(item))
	}

	return c.JSON(http.StatusOK, listJobsResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

func (h *JobHandler) respondWithJob(c echo.Context, id int64) error {
	view, err := h.service.GetJob(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(*view))
}

// observe records the duration of one ledger operation.
func observe(operation string, start time.Time) {
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// jobID parses the :id path parameter.
func jobID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid job id")
	}
	return id, nil
}
