package ports

import (
	"context"

	"github.com/LouieCads/proofwork/internal/core/domain"
)

// AuthService issues the authenticated identities the ledger core consumes.
// Register creates the account and self-grants the requested marketplace
// role (client or freelancer) through the Authorizer.
type AuthService interface {
	Register(ctx context.Context, username, password, email, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
