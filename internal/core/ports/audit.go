package ports

import (
	"context"

	"github.com/LouieCads/proofwork/internal/core/domain"
)

// AuditLog is the append-only, externally-observable event sink. Appends are
// emitted only for operations that committed; a failed append never fails the
// operation that produced the event.
type AuditLog interface {
	Append(ctx context.Context, event domain.LedgerEvent) error
}
