package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/LouieCads/proofwork/internal/api/metrics"
	"github.com/LouieCads/proofwork/internal/core/domain"
	"github.com/LouieCads/proofwork/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher decouples audit emission from the request path. It
// implements ports.AuditLog itself: Append enqueues, and a fixed set of
// workers flushes to the underlying sink. Events are sharded by job id with
// consistent hashing, so per-job event ordering is preserved.
type AuditDispatcher struct {
	workers []chan domain.LedgerEvent
	sink    ports.AuditLog
	log     zerolog.Logger
}

// NewAuditDispatcher creates an AuditDispatcher with numWorkers sharded
// workers. If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, sink ports.AuditLog, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.LedgerEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LedgerEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Append enqueues an event for its job's worker. Non-blocking up to
// channelBuffer capacity.
func (d *AuditDispatcher) Append(_ context.Context, event domain.LedgerEvent) error {
	i := d.shardIndex(event.JobID)
	d.workers[i] <- event
	metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	return nil
}

// shardIndex maps a job id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(jobID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(jobID, 10)))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.LedgerEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.sink.Append(ctx, event); err != nil {
				d.log.Error().Err(err).
					Int64("job_id", event.JobID).
					Str("event", string(event.Type)).
					Int("worker_id", id).
					Msg("audit append failed")
				continue
			}
			metrics.AuditEventsTotal.WithLabelValues(string(event.Type)).Inc()
		}
	}
}
