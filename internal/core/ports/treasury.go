package ports

import "context"

// Treasury is the external value-transfer primitive. The core calls it only
// with previously-escrowed, already-debited amounts; a non-nil error forces
// the enclosing operation to roll back every mutation it has staged.
type Treasury interface {
	Transfer(ctx context.Context, recipient string, amount int64) error
}
