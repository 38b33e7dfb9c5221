// Package probe periodically checks a gRPC endpoint's health service,
// routing every call through the grpcall wrapper so transient stream
// resets are retried and failures carry a status code.
package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/grpcall"
	"github.com/vietddude/grpcall/config"
	"github.com/vietddude/grpcall/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Status summarizes the last probe outcome.
type Status string

const (
	StatusServing     Status = "serving"
	StatusNotServing  Status = "not_serving"
	StatusUnreachable Status = "unreachable"
)

// Report is the last observed probe outcome.
type Report struct {
	Status    Status    `json:"status"`
	Code      string    `json:"code,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Prober dials one gRPC target and checks its health on an interval.
type Prober struct {
	cfg    config.ProbeConfig
	opts   []grpcall.CallOption
	runID  string
	conn   *grpc.ClientConn
	health grpc_health_v1.HealthClient

	mu   sync.RWMutex
	last Report
}

// New dials the configured target and returns a ready Prober.
func New(ctx context.Context, cfg *config.AppConfig) (*Prober, error) {
	conn, err := dial(ctx, cfg.Probe)
	if err != nil {
		return nil, err
	}

	return &Prober{
		cfg:    cfg.Probe,
		opts:   []grpcall.CallOption{grpcall.WithInternalErrorRetryMax(cfg.Retry.MaxCount())},
		runID:  uuid.NewString(),
		conn:   conn,
		health: grpc_health_v1.NewHealthClient(conn),
	}, nil
}

func dial(ctx context.Context, cfg config.ProbeConfig) (*grpc.ClientConn, error) {
	// Parse endpoint to determine if TLS is needed
	target := cfg.Target
	var opts []grpc.DialOption

	if strings.HasPrefix(target, "https://") || strings.HasSuffix(target, ":443") {
		creds := credentials.NewTLS(&tls.Config{})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		target = strings.TrimPrefix(target, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		target = strings.TrimPrefix(target, "http://")
	}

	opts = append(opts, grpc.WithBlock()) // Wait for connection

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial grpc endpoint %s: %w", target, err)
	}
	return conn, nil
}

// Run checks the target until ctx is canceled.
func (p *Prober) Run(ctx context.Context) error {
	slog.Info("Prober started",
		"target", p.cfg.Target,
		"interval", p.cfg.Interval,
		"run_id", p.runID,
	)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check performs a single health check and records its outcome.
func (p *Prober) Check(ctx context.Context) Report {
	op := grpcall.Operation{
		Name: "grpc.health.v1.Health/Check",
		Invoke: func(ctx context.Context) (any, error) {
			return p.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: p.cfg.Service})
		},
	}

	result, err := grpcall.Execute(ctx, op, p.opts...)

	report := Report{CheckedAt: time.Now()}
	if err != nil {
		report.Status = StatusUnreachable
		report.Error = err.Error()
		if code, ok := grpcall.Code(err); ok {
			report.Code = code.String()
		}
		slog.Warn("Health check failed",
			"target", p.cfg.Target,
			"error", err,
			"run_id", p.runID,
		)
	} else {
		resp := result.(*grpc_health_v1.HealthCheckResponse)
		if resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			report.Status = StatusServing
		} else {
			report.Status = StatusNotServing
		}
		slog.Debug("Health check completed",
			"target", p.cfg.Target,
			"status", report.Status,
			"run_id", p.runID,
		)
	}

	metrics.ProbeChecksTotal.WithLabelValues(p.cfg.Target, string(report.Status)).Inc()

	p.mu.Lock()
	p.last = report
	p.mu.Unlock()

	return report
}

// LastReport returns the most recent probe outcome.
func (p *Prober) LastReport() Report {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Close cleans up resources.
func (p *Prober) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
