package ports

import "time"

// Clock supplies the current logical time used for deadline comparisons,
// abstracted so lifecycle tests can pin it.
type Clock interface {
	Now() time.Time
}
