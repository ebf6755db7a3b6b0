package ports

import "context"

// Authorizer gates every state-mutating ledger operation on role membership.
// GrantSelfRole accepts only the self-service roles (client, freelancer);
// admin standing is seeded through a separate bootstrap path.
type Authorizer interface {
	HasRole(ctx context.Context, identity, role string) (bool, error)
	GrantSelfRole(ctx context.Context, identity, role string) error
}

// RoleRepository persists (identity, role) memberships.
// Grant is idempotent; granting a role already held is a no-op.
type RoleRepository interface {
	Grant(ctx context.Context, identity, role string) error
	Has(ctx context.Context, identity, role string) (bool, error)
}
