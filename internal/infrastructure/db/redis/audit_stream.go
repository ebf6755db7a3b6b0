package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/LouieCads/proofwork/internal/core/domain"
)

const auditStreamKey = "proofwork:ledger"

// AuditStream implements ports.AuditLog on a Redis Stream, giving external
// observers an append-only, replayable view of every committed ledger event.
type AuditStream struct {
	client *redis.Client
}

// NewAuditStream creates an AuditStream wrapping the given Redis client.
func NewAuditStream(client *redis.Client) *AuditStream {
	return &AuditStream{client: client}
}

// Append writes one event to the stream. Entry ids are assigned by Redis, so
// stream order is append order.
func (a *AuditStream) Append(ctx context.Context, event domain.LedgerEvent) error {
	values := map[string]interface{}{
		"type":   string(event.Type),
		"job_id": strconv.FormatInt(event.JobID, 10),
		"actor":  event.Actor,
		"at":     event.At.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if event.Amount != 0 {
		values["amount"] = strconv.FormatInt(event.Amount, 10)
	}
	if event.ProofHash != "" {
		values["proof_hash"] = event.ProofHash
	}

	err := a.client.XAdd(ctx, &redis.XAddArgs{
		Stream: auditStreamKey,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	return nil
}
