package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/logging"
)

const HeaderResponseTime = "X-Response-Time"

const (
	DefaultAPISlowThreshold    = 500 * time.Millisecond
	DefaultUploadSlowThreshold = 2000 * time.Millisecond
)

// TimingOptions configures ResponseTime. A zero Threshold means
// DefaultAPISlowThreshold.
type TimingOptions struct {
	Threshold      time.Duration
	DisableSlowLog bool
	// Observe, when set, receives every measurement.
	Observe func(r *http.Request, elapsed time.Duration, slow bool)
}

// ResponseTime measures how long the rest of the chain takes. The elapsed
// time is written as X-Response-Time when the header is committed (or when
// the handler returns without writing), so every completed response carries
// it. Requests slower than the threshold are logged at warn level.
func ResponseTime(opts TimingOptions) func(http.Handler) http.Handler {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultAPISlowThreshold
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := context.WithValue(r.Context(), requestStartKey, start)

			rw := newResponseWriter(w)
			rw.beforeWrite = func(h http.Header) {
				h.Set(HeaderResponseTime, formatMillis(time.Since(start)))
			}

			// Deferred so a panicking handler is still measured; the panic is
			// re-raised for the recoverer further out.
			defer func() {
				rec := recover()

				elapsed := time.Since(start)
				if !rw.wroteHeader {
					w.Header().Set(HeaderResponseTime, formatMillis(elapsed))
				}

				slow := elapsed > threshold
				if opts.Observe != nil {
					opts.Observe(r, elapsed, slow)
				}
				if slow && !opts.DisableSlowLog {
					logging.FromContext(ctx).Warn("slow request",
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Float64("duration_ms", millis(elapsed)),
						zap.Float64("threshold_ms", millis(threshold)),
					)
				}

				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}

func APIResponseTime() func(http.Handler) http.Handler {
	return ResponseTime(TimingOptions{Threshold: DefaultAPISlowThreshold})
}

func UploadResponseTime() func(http.Handler) http.Handler {
	return ResponseTime(TimingOptions{Threshold: DefaultUploadSlowThreshold})
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// formatMillis renders d as "12.34ms".
func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(millis(d), 'f', 2, 64) + "ms"
}
