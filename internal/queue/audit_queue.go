package queue

import (
	"context"

	"github.com/coachhub/coachapi/internal/domain"
)

// AuditQueue buffers access audit records between the HTTP handlers that
// produce them and the workers that persist them.
//
// Enqueue never blocks: a request must not wait on the audit store, so a
// full buffer is reported to the caller instead.
type AuditQueue struct {
	items chan domain.AccessAudit
}

func New(size int) *AuditQueue {
	return &AuditQueue{items: make(chan domain.AccessAudit, size)}
}

// Enqueue places an entry on the queue or returns ErrQueueFull.
func (q *AuditQueue) Enqueue(entry domain.AccessAudit) error {
	select {
	case q.items <- entry:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an entry is available or ctx is cancelled.
// Returns (AccessAudit{}, false) when ctx is cancelled (graceful shutdown signal).
func (q *AuditQueue) Dequeue(ctx context.Context) (domain.AccessAudit, bool) {
	select {
	case entry := <-q.items:
		return entry, true
	case <-ctx.Done():
		return domain.AccessAudit{}, false
	}
}

// TryDequeue returns a waiting entry without blocking. Used to drain the
// buffer on shutdown.
func (q *AuditQueue) TryDequeue() (domain.AccessAudit, bool) {
	select {
	case entry := <-q.items:
		return entry, true
	default:
		return domain.AccessAudit{}, false
	}
}

// Depth returns the number of entries waiting.
func (q *AuditQueue) Depth() int {
	return len(q.items)
}

// Capacity returns the buffer size.
func (q *AuditQueue) Capacity() int {
	return cap(q.items)
}
