package domain

import "time"

// EventType identifies a ledger audit event.
type EventType string

const (
	EventJobPosted       EventType = "job_posted"
	EventJobUpdated      EventType = "job_updated"
	EventJobCancelled    EventType = "job_cancelled"
	EventWorkSubmitted   EventType = "work_submitted"
	EventPaymentReleased EventType = "payment_released"
	EventWorkRejected    EventType = "work_rejected"
)

// LedgerEvent is a single entry in the append-only audit stream. Amount and
// ProofHash are populated only where the event type carries them.
type LedgerEvent struct {
	Type      EventType
	JobID     int64
	Actor     string
	Amount    int64
	ProofHash string
	At        time.Time
}
