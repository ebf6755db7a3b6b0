package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/LouieCads/proofwork/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound, "job not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, domain.ErrEmptyField):
		return http.StatusBadRequest, "required field is empty"
	case errors.Is(err, domain.ErrNoValueDeposited):
		return http.StatusBadRequest, "no value deposited"
	case errors.Is(err, domain.ErrInvalidDeadline):
		return http.StatusUnprocessableEntity, "invalid deadline"
	case errors.Is(err, domain.ErrJobNotOpen):
		return http.StatusUnprocessableEntity, "job is not open"
	case errors.Is(err, domain.ErrNoWorkSubmitted):
		return http.StatusUnprocessableEntity, "no work submitted"
	case errors.Is(err, domain.ErrOperationInFlight):
		return http.StatusConflict, "operation already in flight"
	case errors.Is(err, domain.ErrTransferFailed):
		return http.StatusBadGateway, "escrow transfer failed"
	case errors.Is(err, domain.ErrRoleNotSelfGrantable):
		return http.StatusForbidden, "role is not self-grantable"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
