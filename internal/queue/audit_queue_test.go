package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/queue"
)

func entry(id string) domain.AccessAudit {
	return domain.AccessAudit{ID: id, ResourceID: "r1", Reason: "weekly review"}
}

func TestAuditQueue_BasicEnqueueDequeue(t *testing.T) {
	q := queue.New(4)
	ctx := context.Background()

	if err := q.Enqueue(entry("1")); err != nil {
		t.Fatal(err)
	}
	if q.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", q.Depth())
	}

	got, ok := q.Dequeue(ctx)
	if !ok {
		t.Fatal("expected item, got nothing")
	}
	if got.ID != "1" {
		t.Fatalf("expected id=1, got %s", got.ID)
	}
}

func TestAuditQueue_FIFO(t *testing.T) {
	q := queue.New(4)
	for _, id := range []string{"a", "b", "c"} {
		_ = q.Enqueue(entry(id))
	}
	for _, want := range []string{"a", "b", "c"} {
		got, _ := q.TryDequeue()
		if got.ID != want {
			t.Fatalf("expected %q, got %q", want, got.ID)
		}
	}
	if _, ok := q.TryDequeue(); ok {
		t.Fatal("expected empty queue")
	}
}

// TestAuditQueue_ContextCancellation verifies Dequeue returns (_, false)
// when the context is cancelled while blocking.
func TestAuditQueue_ContextCancellation(t *testing.T) {
	q := queue.New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(ctx)
		done <- ok
	}()

	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after context cancellation")
	}
}

// TestAuditQueue_ErrQueueFull verifies the non-blocking Enqueue returns
// ErrQueueFull when the buffer is saturated.
func TestAuditQueue_ErrQueueFull(t *testing.T) {
	q := queue.New(2)
	_ = q.Enqueue(entry("1"))
	_ = q.Enqueue(entry("2"))

	if err := q.Enqueue(entry("3")); err != domain.ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if q.Capacity() != 2 {
		t.Fatalf("expected capacity 2, got %d", q.Capacity())
	}
}
