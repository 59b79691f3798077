package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/raphaelgruber/srsbot/internal/models"
)

// RetryPolicy bounds how long and how often a model call is attempted.
type RetryPolicy struct {
	// Timeout applies to each attempt. Zero disables the per-attempt deadline.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialInterval is the first backoff delay; later delays grow exponentially.
	InitialInterval time.Duration

	// MaxInterval caps a single backoff delay.
	MaxInterval time.Duration
}

// DefaultRetryPolicy returns the policy used when nothing is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout:         60 * time.Second,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// Resilient decorates a Client with per-attempt timeouts and exponential
// backoff retries. Fatal API errors, caller cancellation and exhausted
// retries end the call.
type Resilient struct {
	next   Client
	policy RetryPolicy
	logger *slog.Logger
}

// Compile-time check that Resilient implements Client.
var _ Client = (*Resilient)(nil)

// NewResilient wraps next with policy.
func NewResilient(next Client, policy RetryPolicy, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &Resilient{next: next, policy: policy, logger: logger}
}

// Chat implements Client.
func (r *Resilient) Chat(ctx context.Context, system string, history []models.Turn, input string) (string, error) {
	return r.do(ctx, "chat", func(ctx context.Context) (string, error) {
		return r.next.Chat(ctx, system, history, input)
	})
}

// Generate implements Client.
func (r *Resilient) Generate(ctx context.Context, prompt string) (string, error) {
	return r.do(ctx, "generate", func(ctx context.Context) (string, error) {
		return r.next.Generate(ctx, prompt)
	})
}

func (r *Resilient) do(ctx context.Context, op string, call func(context.Context) (string, error)) (string, error) {
	var (
		result  string
		attempt int
	)

	operation := func() error {
		attempt++

		callCtx, cancel := r.attemptContext(ctx)
		defer cancel()

		text, err := call(callCtx)
		switch {
		case err == nil && strings.TrimSpace(text) == "":
			return ErrEmptyResponse
		case err == nil:
			result = text
			return nil
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case errors.Is(callCtx.Err(), context.DeadlineExceeded):
			return fmt.Errorf("%w after %s: %w", ErrTimeout, r.policy.Timeout, err)
		case isFatalAPIError(err):
			return backoff.Permanent(wrapFatalError(err))
		default:
			return err
		}
	}

	notify := func(err error, wait time.Duration) {
		r.logger.Warn("model call failed, retrying",
			"op", op, "attempt", attempt, "wait_ms", wait.Milliseconds(), "error", err)
	}

	if err := backoff.RetryNotify(operation, r.backoff(ctx), notify); err != nil {
		return "", fmt.Errorf("%s failed after %d attempt(s): %w", op, attempt, err)
	}
	return result, nil
}

func (r *Resilient) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.policy.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.policy.Timeout)
}

func (r *Resilient) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}
	b.MaxElapsedTime = 0 // bounded by MaxRetries instead
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.MaxRetries)), ctx)
}
