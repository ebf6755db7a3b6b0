package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// BalanceReader reports the credited balance of an identity. Satisfied by the
// account treasury adapter.
type BalanceReader interface {
	Balance(ctx context.Context, identity string) (int64, error)
}

type balanceResponse struct {
	Identity string `json:"identity"`
	Balance  int64  `json:"balance"`
}

// AccountHandler exposes the caller's credited balance.
type AccountHandler struct {
	accounts BalanceReader
}

func NewAccountHandler(accounts BalanceReader) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Balance handles GET /v1/accounts/balance.
//
// @Summary      Get the caller's credited balance
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  balanceResponse
// @Router       /v1/accounts/balance [get]
func (h *AccountHandler) Balance(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}

	balance, err := h.accounts.Balance(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, balanceResponse{Identity: identity, Balance: balance})
}
