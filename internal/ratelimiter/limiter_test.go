package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestClientLimiters_BurstThenDeny(t *testing.T) {
	cl := New(1, 2)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cl.now = func() time.Time { return fixed }

	assert.True(t, cl.Allow("10.0.0.1"))
	assert.True(t, cl.Allow("10.0.0.1"))
	assert.False(t, cl.Allow("10.0.0.1"), "burst exhausted")

	assert.True(t, cl.Allow("10.0.0.2"), "clients are independent")
}

func TestClientLimiters_Refills(t *testing.T) {
	cl := New(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cl.now = func() time.Time { return now }

	assert.True(t, cl.Allow("a"))
	assert.False(t, cl.Allow("a"))

	now = now.Add(time.Second)
	assert.True(t, cl.Allow("a"))
}

func TestClientLimiters_Sweep(t *testing.T) {
	cl := New(10, 10)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cl.now = func() time.Time { return now }

	cl.Allow("old")
	now = now.Add(5 * time.Minute)
	cl.Allow("fresh")

	removed := cl.Sweep(time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, cl.Len())
}

func TestClientLimiters_RunSweeperStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	cl := New(10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cl.RunSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
