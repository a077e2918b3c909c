package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
)

const (
	// DefaultMaxAttempts is the number of calls made before giving up
	DefaultMaxAttempts = 3

	// QuotaBackoffUnit is multiplied by the attempt number when the backend reports quota exhaustion
	QuotaBackoffUnit = 10 * time.Second

	// DefaultBackoff is the fixed wait before retrying any other failure
	DefaultBackoff = 2 * time.Second
)

// State is a step of the retry state machine
type State int

const (
	StateAttempting State = iota
	StateSuccess
	StateRetryableFailure
	StateTerminalFailure
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateSuccess:
		return "success"
	case StateRetryableFailure:
		return "retryable_failure"
	case StateTerminalFailure:
		return "terminal_failure"
	default:
		return "unknown"
	}
}

// BackoffFunc returns how long to wait after the given (1-based) attempt failed with err
type BackoffFunc func(attempt int, err error) time.Duration

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy parameterizes Do
type Policy struct {
	MaxAttempts int
	Backoff     BackoffFunc
	Sleep       SleepFunc
	// Retryable decides whether a failure may be retried. Nil means every error except context cancellation.
	Retryable func(err error) bool
}

// DefaultPolicy returns the policy used for LLM calls: 3 attempts, quota-aware backoff, real sleep
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     QuotaBackoff,
		Sleep:       Sleep,
	}
}

// IsQuotaExceeded reports whether err looks like rate limiting or quota exhaustion
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// QuotaBackoff waits attempt*10s on quota errors and 2s on anything else
func QuotaBackoff(attempt int, err error) time.Duration {
	if IsQuotaExceeded(err) {
		return time.Duration(attempt) * QuotaBackoffUnit
	}
	return DefaultBackoff
}

// Sleep is the SleepFunc backed by a real timer
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p Policy) normalize() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Backoff == nil {
		p.Backoff = QuotaBackoff
	}
	if p.Sleep == nil {
		p.Sleep = Sleep
	}
	if p.Retryable == nil {
		p.Retryable = func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
	}
	return p
}

// Do calls fn until it succeeds, fails with a non-retryable error, or MaxAttempts is reached.
// The returned error wraps the last failure.
func Do[T any](ctx context.Context, policy Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	p := policy.normalize()
	logger := logging.From(ctx)

	var (
		zero    T
		result  T
		lastErr error
		// interrupted holds the wait error when the backoff sleep was cut short
		interrupted error
		attempt     = 1
		state       = StateAttempting
	)

	for {
		switch state {
		case StateAttempting:
			v, err := fn(ctx, attempt)
			if err == nil {
				result = v
				state = StateSuccess
				continue
			}
			lastErr = err
			logger.Warn("attempt failed",
				"attempt", attempt,
				"max_attempts", p.MaxAttempts,
				"error", err.Error(),
			)
			if attempt >= p.MaxAttempts || !p.Retryable(err) {
				state = StateTerminalFailure
			} else {
				state = StateRetryableFailure
			}

		case StateRetryableFailure:
			wait := p.Backoff(attempt, lastErr)
			if IsQuotaExceeded(lastErr) {
				logger.Warn("quota limit detected, backing off", "wait", wait.String(), "attempt", attempt)
			}
			if err := p.Sleep(ctx, wait); err != nil {
				interrupted = err
				state = StateTerminalFailure
				continue
			}
			attempt++
			state = StateAttempting

		case StateSuccess:
			return result, nil

		case StateTerminalFailure:
			opts := []goerr.Option{
				goerr.V("attempts", attempt),
				goerr.V("max_attempts", p.MaxAttempts),
			}
			if interrupted != nil {
				opts = append(opts, goerr.V("interrupted", interrupted.Error()))
			}
			return zero, goerr.Wrap(lastErr, "all attempts failed", opts...)
		}
	}
}
