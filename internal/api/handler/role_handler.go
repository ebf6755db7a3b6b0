package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LouieCads/proofwork/internal/core/ports"
)

// RoleHandler exposes the self-service role grant.
type RoleHandler struct {
	authz ports.Authorizer
}

func NewRoleHandler(authz ports.Authorizer) *RoleHandler {
	return &RoleHandler{authz: authz}
}

// GrantSelf handles POST /v1/roles/self. Any authenticated identity may take
// on the client or freelancer role; admin is never self-grantable.
//
// @Summary      Self-grant a marketplace role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      grantRoleRequest  true  "Role to assume"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/roles/self [post]
func (h *RoleHandler) GrantSelf(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req grantRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authz.GrantSelfRole(c.Request().Context(), identity, req.Role); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"identity": identity,
		"role":     req.Role,
	})
}
