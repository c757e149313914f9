package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/ppiankov/trustie/internal/metrics"
	"github.com/ppiankov/trustie/internal/model"
)

// Waiter blocks until an outbound call for key may proceed
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// Guarded wraps a Backend with rate limiting, a per-call deadline,
// metrics and debug logging. Failures come back as *model.BackendError.
type Guarded struct {
	backend Backend
	limiter Waiter // nil disables rate limiting
	timeout time.Duration
	logger  *slog.Logger
}

// NewGuarded wraps backend. A zero timeout leaves deadlines to the caller.
func NewGuarded(backend Backend, limiter Waiter, timeout time.Duration, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{
		backend: backend,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// Name returns the wrapped provider name
func (g *Guarded) Name() string {
	return g.backend.Name()
}

// Complete waits for the limiter, then calls the wrapped backend under the per-call deadline
func (g *Guarded) Complete(ctx context.Context, req Request) (*Response, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, g.backend.Name()); err != nil {
			return nil, &model.BackendError{Op: req.Purpose, Err: err}
		}
	}

	start := time.Now()
	resp, err := g.backend.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.RecordBackendCall(g.backend.Name(), req.Purpose, err, elapsed.Seconds())

	if err != nil {
		g.logger.Warn("backend call failed",
			"provider", g.backend.Name(),
			"purpose", req.Purpose,
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
		return nil, &model.BackendError{Op: req.Purpose, Err: err}
	}

	g.logger.Debug("backend call",
		"provider", g.backend.Name(),
		"purpose", req.Purpose,
		"web_search", req.WebSearch,
		"tokens", resp.TokensUsed,
		"duration_ms", elapsed.Milliseconds())

	return resp, nil
}
