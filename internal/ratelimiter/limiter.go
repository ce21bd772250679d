package ratelimiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiters holds one token bucket per client key (usually an IP).
// Buckets are created lazily and dropped by Sweep once idle.
type ClientLimiters struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*client
	now     func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates ClientLimiters allowing ratePerSec steady-state requests per
// client with the given burst.
func New(ratePerSec, burst int) *ClientLimiters {
	return &ClientLimiters{
		limit:   rate.Limit(ratePerSec),
		burst:   burst,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Allow reports whether key may make a request now, consuming a token if so.
func (cl *ClientLimiters) Allow(key string) bool {
	cl.mu.Lock()
	c, ok := cl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[key] = c
	}
	now := cl.now()
	c.lastSeen = now
	cl.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// Sweep drops buckets not used within idle and returns how many were removed.
func (cl *ClientLimiters) Sweep(idle time.Duration) int {
	cutoff := cl.now().Add(-idle)

	cl.mu.Lock()
	defer cl.mu.Unlock()

	removed := 0
	for key, c := range cl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(cl.clients, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (cl *ClientLimiters) Len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}

// RunSweeper calls Sweep every idle interval until ctx is cancelled.
func (cl *ClientLimiters) RunSweeper(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cl.Sweep(idle)
		}
	}
}
