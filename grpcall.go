// Package grpcall adapts gRPC client-call failures into a single typed
// error and transparently retries one narrow class of transient transport
// failures.
//
// This package contains:
//   - Error: typed service-call error with a stable local identity
//   - IsServiceError / FromError: structural predicate and re-typer
//   - Execute: call wrapper with bounded retry of transient stream resets
//   - Await: passthrough for calls already in flight
//   - Code: status-code accessor that never panics
package grpcall

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/vietddude/grpcall/metrics"
	"google.golang.org/grpc/codes"
)

// transientResetPrefix marks the one retried failure: an Internal status
// whose details report a mid-stream reset. The literal is tied to the
// upstream transport's message for that condition; if the library changes
// the wording, this is the only line to touch.
const transientResetPrefix = "Received RST_STREAM"

// DefaultInternalErrorRetryMax is the number of retries applied to
// transient stream resets when no CallOption overrides it (3 total
// attempts).
const DefaultInternalErrorRetryMax = 2

// Operation represents a remote call to execute.
// Invoke must start a fresh attempt each time it is called, typically by
// wrapping a generated client method.
type Operation struct {
	// Name identifies the operation in logs and metrics
	// (e.g., "grpc.health.v1.Health/Check").
	Name string

	// Invoke performs one attempt of the call.
	Invoke func(ctx context.Context) (any, error)
}

// Result carries the outcome of a call that is already in flight.
type Result struct {
	Value any
	Err   error
}

type callSettings struct {
	internalErrorRetryMax int
}

// CallOption adjusts how Execute runs a single call.
type CallOption func(*callSettings)

// WithInternalErrorRetryMax sets the retry budget for transient stream
// resets. Negative values are ignored; 0 disables retries.
func WithInternalErrorRetryMax(n int) CallOption {
	return func(s *callSettings) {
		if n >= 0 {
			s.internalErrorRetryMax = n
		}
	}
}

// Execute invokes op, re-typing failures via FromError. When the failure is
// an Internal status whose details begin with the stream-reset marker, the
// call is retried sequentially up to the configured budget; every other
// failure propagates on first occurrence. Failures that do not carry a gRPC
// status pass through unchanged.
func Execute(ctx context.Context, op Operation, opts ...CallOption) (any, error) {
	settings := callSettings{internalErrorRetryMax: DefaultInternalErrorRetryMax}
	for _, o := range opts {
		o(&settings)
	}

	retries := 0
	for {
		start := time.Now()
		result, err := op.Invoke(ctx)
		metrics.CallLatency.WithLabelValues(op.Name).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.CallsTotal.WithLabelValues(op.Name, "ok").Inc()
			return result, nil
		}

		serr, adaptErr := FromError(err)
		if adaptErr != nil {
			// Not produced by the wrapped call surface; surface as-is.
			metrics.CallsTotal.WithLabelValues(op.Name, "error").Inc()
			metrics.ErrorsTotal.WithLabelValues(op.Name, "unrecognized").Inc()
			return nil, err
		}

		metrics.CallsTotal.WithLabelValues(op.Name, "error").Inc()
		metrics.ErrorsTotal.WithLabelValues(op.Name, serr.Code.String()).Inc()

		if !isTransientReset(serr) || retries >= settings.internalErrorRetryMax {
			return nil, serr
		}

		retries++
		metrics.RetriesTotal.WithLabelValues(op.Name).Inc()
		slog.Debug("Retrying transient stream reset",
			"operation", op.Name,
			"attempt", retries,
			"max", settings.internalErrorRetryMax,
			"details", serr.Details,
		)

		// Honor server-suggested pacing when present; otherwise retry
		// immediately.
		if delay, ok := serr.retryDelay(); ok {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
}

// Await drains the result of a call that was already started. Failures are
// re-typed like Execute's, but never retried: an in-flight operation cannot
// be restarted. Success passes through unchanged.
func Await(ctx context.Context, done <-chan Result) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.Err == nil {
			return r.Value, nil
		}
		if serr, err := FromError(r.Err); err == nil {
			return nil, serr
		}
		return nil, r.Err
	}
}

func isTransientReset(e *Error) bool {
	return e.Code == codes.Internal && strings.HasPrefix(e.Details, transientResetPrefix)
}
