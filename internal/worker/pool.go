package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/config"
	"github.com/coachhub/coachapi/internal/queue"
	"github.com/coachhub/coachapi/internal/repository"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean.
type MetricHooks struct {
	OnWritten func()
	OnFailed  func()
}

// Pool manages the lifecycle of all audit workers. They share one queue.
type Pool struct {
	workers []*Worker
	q       *queue.AuditQueue
	repo    repository.AuditRepository
	logger  *zap.Logger
	hooks   MetricHooks
	wg      sync.WaitGroup
}

// NewPool creates cfg.AuditWorkers identical workers.
func NewPool(
	cfg *config.Config,
	q *queue.AuditQueue,
	repo repository.AuditRepository,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	workers := make([]*Worker, cfg.AuditWorkers)
	for i := range workers {
		workers[i] = NewWorker(
			i, q, repo,
			cfg.AuditRetryBackoff,
			logger.With(zap.Int("worker_id", i)),
			hooks.OnWritten,
			hooks.OnFailed,
		)
	}
	return &Pool{workers: workers, q: q, repo: repo, logger: logger, hooks: hooks}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Drain writes whatever is still buffered once the workers have stopped,
// one attempt per record, bounded by ctx.
func (p *Pool) Drain(ctx context.Context) int {
	written := 0
	for ctx.Err() == nil {
		entry, ok := p.q.TryDequeue()
		if !ok {
			break
		}
		if err := p.repo.Record(ctx, &entry); err != nil {
			p.logger.Error("failed to drain audit record", zap.String("audit_id", entry.ID), zap.Error(err))
			if p.hooks.OnFailed != nil {
				p.hooks.OnFailed()
			}
			continue
		}
		if p.hooks.OnWritten != nil {
			p.hooks.OnWritten()
		}
		written++
	}
	if n := p.q.Depth(); n > 0 {
		p.logger.Warn("audit records left unwritten at shutdown", zap.Int("count", n))
	}
	return written
}
