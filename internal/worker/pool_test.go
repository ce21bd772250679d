package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/config"
	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/queue"
	"github.com/coachhub/coachapi/internal/repository"
	"github.com/coachhub/coachapi/internal/worker"
)

func testConfig(workers int, backoff ...time.Duration) *config.Config {
	cfg := config.Defaults()
	cfg.AuditWorkers = workers
	cfg.AuditRetryBackoff = backoff
	return cfg
}

type counter struct{ written, failed chan struct{} }

func newCounter() *counter {
	return &counter{written: make(chan struct{}, 16), failed: make(chan struct{}, 16)}
}

func (c *counter) hooks() worker.MetricHooks {
	return worker.MetricHooks{
		OnWritten: func() { c.written <- struct{}{} },
		OnFailed:  func() { c.failed <- struct{}{} },
	}
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestPool_WritesQueuedRecords(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := queue.New(8)
	repo := repository.NewMockAuditRepository()
	c := newCounter()
	pool := worker.NewPool(testConfig(2, time.Millisecond), q, repo, zap.NewNop(), c.hooks())

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	require.NoError(t, q.Enqueue(domain.AccessAudit{ID: "a1", ResourceID: "r1", Reason: "session prep"}))
	require.NoError(t, q.Enqueue(domain.AccessAudit{ID: "a2", ResourceID: "r1", Reason: "session prep"}))

	waitFor(t, c.written, "first write")
	waitFor(t, c.written, "second write")

	cancel()
	pool.Wait()

	assert.Len(t, repo.Entries(), 2)
}

func TestPool_RetriesThenSucceeds(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := queue.New(8)
	repo := repository.NewMockAuditRepository()
	repo.RecordErrs = []error{errors.New("conn reset"), errors.New("conn reset")}
	c := newCounter()
	pool := worker.NewPool(testConfig(1, time.Millisecond, time.Millisecond), q, repo, zap.NewNop(), c.hooks())

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	require.NoError(t, q.Enqueue(domain.AccessAudit{ID: "a1", ResourceID: "r1"}))
	waitFor(t, c.written, "write after retries")

	cancel()
	pool.Wait()

	assert.Equal(t, 3, repo.Calls())
	assert.Len(t, repo.Entries(), 1)
}

func TestPool_DropsAfterBackoffExhausted(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := queue.New(8)
	repo := repository.NewMockAuditRepository()
	boom := errors.New("store down")
	repo.RecordErrs = []error{boom, boom}
	c := newCounter()
	pool := worker.NewPool(testConfig(1, time.Millisecond), q, repo, zap.NewNop(), c.hooks())

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	require.NoError(t, q.Enqueue(domain.AccessAudit{ID: "a1", ResourceID: "r1"}))
	waitFor(t, c.failed, "drop")

	cancel()
	pool.Wait()

	assert.Equal(t, 2, repo.Calls())
	assert.Empty(t, repo.Entries())
}

func TestPool_DrainAfterStop(t *testing.T) {
	q := queue.New(8)
	repo := repository.NewMockAuditRepository()
	pool := worker.NewPool(testConfig(1, time.Millisecond), q, repo, zap.NewNop(), worker.MetricHooks{})

	require.NoError(t, q.Enqueue(domain.AccessAudit{ID: "a1", ResourceID: "r1"}))
	require.NoError(t, q.Enqueue(domain.AccessAudit{ID: "a2", ResourceID: "r1"}))

	written := pool.Drain(context.Background())
	assert.Equal(t, 2, written)
	assert.Equal(t, 0, q.Depth())
}

func TestPool_ShutdownRequeuesPendingRetry(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := queue.New(8)
	repo := repository.NewMockAuditRepository()
	repo.RecordErrs = []error{errors.New("conn reset")}
	c := newCounter()
	pool := worker.NewPool(testConfig(1, time.Hour), q, repo, zap.NewNop(), c.hooks())

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	require.NoError(t, q.Enqueue(domain.AccessAudit{ID: "a1", ResourceID: "r1"}))
	require.Eventually(t, func() bool { return repo.Calls() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	pool.Wait()

	assert.Equal(t, 1, q.Depth(), "interrupted record goes back on the queue")
	assert.Equal(t, 1, pool.Drain(context.Background()))
	assert.Len(t, repo.Entries(), 1)
	assert.Empty(t, c.failed)
}
