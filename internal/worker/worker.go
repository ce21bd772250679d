package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/queue"
	"github.com/coachhub/coachapi/internal/repository"
)

// Worker is a single goroutine that continuously pulls audit records from
// the queue and persists them, retrying transient store failures.
type Worker struct {
	id      int
	q       *queue.AuditQueue
	repo    repository.AuditRepository
	backoff []time.Duration
	logger  *zap.Logger

	// Hooks for metrics, injected by the pool so the worker stays metrics-agnostic.
	onWritten func()
	onFailed  func()
}

// NewWorker constructs a worker. onWritten and onFailed are optional (nil = no-op).
func NewWorker(
	id int,
	q *queue.AuditQueue,
	repo repository.AuditRepository,
	backoff []time.Duration,
	logger *zap.Logger,
	onWritten func(),
	onFailed func(),
) *Worker {
	if onWritten == nil {
		onWritten = func() {}
	}
	if onFailed == nil {
		onFailed = func() {}
	}
	return &Worker{
		id: id, q: q, repo: repo, backoff: backoff, logger: logger,
		onWritten: onWritten, onFailed: onFailed,
	}
}

// Run blocks until ctx is cancelled, persisting one record per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("audit worker started", zap.Int("id", w.id))
	for {
		entry, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("audit worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, entry)
	}
}

// process writes entry, retrying after each backoff delay:
//
//	attempt 1 → immediately
//	attempt 2 → after backoff[0]
//	attempt N → after backoff[N-2]
//
// The record is dropped (and counted as failed) once every delay is used.
func (w *Worker) process(ctx context.Context, entry domain.AccessAudit) {
	log := w.logger.With(
		zap.String("audit_id", entry.ID),
		zap.String("resource_id", entry.ResourceID),
		zap.String("correlation_id", entry.CorrelationID),
	)

	for attempt := 0; ; attempt++ {
		err := w.repo.Record(ctx, &entry)
		if err == nil {
			w.onWritten()
			return
		}
		if attempt >= len(w.backoff) {
			log.Error("dropping access audit record", zap.Error(err), zap.Int("attempts", attempt+1))
			w.onFailed()
			return
		}

		log.Warn("audit write failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", w.backoff[attempt]),
		)

		timer := time.NewTimer(w.backoff[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			// Hand the record back so Pool.Drain can flush it.
			if w.q.Enqueue(entry) == nil {
				log.Info("audit retry interrupted by shutdown, record requeued")
				return
			}
			log.Error("shutdown interrupted audit retry", zap.Error(err))
			w.onFailed()
			return
		case <-timer.C:
		}
	}
}
