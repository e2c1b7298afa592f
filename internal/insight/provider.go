// Package insight adapts the Anthropic client into the text-insight
// provider the classification pipeline consumes. Every call is bounded
// by a per-call timeout and a shared rate limiter, retried once on
// transient failures, and mapped onto the provider error taxonomy so
// callers can fall back deterministically.
package insight

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/caledonia-energy/engage-cli/internal/resilience"
	"github.com/caledonia-energy/engage-cli/pkg/anthropic"
)

// Provider generates free text from a structured prompt. It may be
// unreachable or slow at any time; callers must treat ErrUnavailable
// and ErrTimeout identically and fall back to deterministic rules.
type Provider interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int64) (string, error)
}

// Sentinel errors for the two provider failure modes. Both are fully
// recovered by callers; neither ever aborts a batch.
var (
	ErrUnavailable = errors.New("insight: provider unavailable")
	ErrTimeout     = errors.New("insight: provider timeout")
)

// Options configures the Anthropic-backed provider.
type Options struct {
	Model          string
	Timeout        time.Duration
	RequestsPerSec float64
}

// anthropicProvider implements Provider over the messages API.
type anthropicProvider struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// New wraps an Anthropic client as a Provider. A nil client yields a
// provider that always reports ErrUnavailable, which keeps the
// provider-absent mode on the same code path as a provider outage.
func New(client anthropic.Client, opts Options) Provider {
	if client == nil {
		return unavailableProvider{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 2
	}
	return &anthropicProvider{
		client:  client,
		model:   opts.Model,
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
	}
}

func (p *anthropicProvider) Generate(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(ErrUnavailable, err.Error())
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	}
	if system != "" {
		req.System = anthropic.BuildCachedSystemBlocks(system)
	}

	resp, err := resilience.RetryVal(callCtx, 2, 500*time.Millisecond, "insight.generate",
		func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return p.client.CreateMessage(ctx, req)
		})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			zap.L().Warn("insight call timed out",
				zap.Duration("timeout", p.timeout),
			)
			return "", eris.Wrap(ErrTimeout, err.Error())
		}
		return "", eris.Wrap(ErrUnavailable, err.Error())
	}

	resp.Usage.LogCost(p.model, "insight")
	return resp.Text(), nil
}

// unavailableProvider is the provider-absent mode: every call fails
// with ErrUnavailable so the deterministic fallback carries the run.
type unavailableProvider struct{}

func (unavailableProvider) Generate(context.Context, string, string, int64) (string, error) {
	return "", ErrUnavailable
}

// Unavailable returns a Provider that always fails with ErrUnavailable.
func Unavailable() Provider {
	return unavailableProvider{}
}

// IsProviderError reports whether err belongs to the provider failure
// taxonomy (unavailable or timeout); callers treat both identically.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}
