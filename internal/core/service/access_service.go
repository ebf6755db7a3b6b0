package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/LouieCads/proofwork/internal/core/domain"
	"github.com/LouieCads/proofwork/internal/core/ports"
)

// AccessService maintains role memberships and answers the role checks that
// gate every ledger operation. Client and Freelancer standing is self-service;
// admin standing exists only through Bootstrap.
type AccessService struct {
	roles  ports.RoleRepository
	logger zerolog.Logger
}

func NewAccessService(roles ports.RoleRepository, logger zerolog.Logger) *AccessService {
	return &AccessService{roles: roles, logger: logger}
}

// HasRole reports whether identity holds role.
func (s *AccessService) HasRole(ctx context.Context, identity, role string) (bool, error) {
	return s.roles.Has(ctx, identity, role)
}

// GrantSelfRole grants the caller Client or Freelancer standing. Granting a
// role already held is a no-op; any other role is refused.
func (s *AccessService) GrantSelfRole(ctx context.Context, identity, role string) error {
	if identity == "" {
		return domain.ErrUnauthorized
	}
	if !domain.SelfGrantable(role) {
		return domain.ErrRoleNotSelfGrantable
	}
	if err := s.roles.Grant(ctx, identity, role); err != nil {
		return fmt.Errorf("grant %s to %s: %w", role, identity, err)
	}
	s.logger.Info().Str("identity", identity).Str("role", role).Msg("role granted")
	return nil
}

// Bootstrap seeds admin standing for the initializing identity. Called once
// at startup so at least one admin exists for the system's lifetime.
func (s *AccessService) Bootstrap(ctx context.Context, adminIdentity string) error {
	if adminIdentity == "" {
		return fmt.Errorf("bootstrap: %w", domain.ErrEmptyField)
	}
	if err := s.roles.Grant(ctx, adminIdentity, domain.RoleAdmin); err != nil {
		return fmt.Errorf("bootstrap admin %s: %w", adminIdentity, err)
	}
	s.logger.Info().Str("identity", adminIdentity).Msg("admin bootstrapped")
	return nil
}
