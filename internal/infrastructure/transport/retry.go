package transport

import (
	"context"
	"log/slog"
	"time"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

// Backoff returns the pause before the retry that follows the given 1-based attempt.
type Backoff func(attempt int) time.Duration

// LinearBackoff waits step, 2*step, 3*step...
func LinearBackoff(step time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// Retrying decorates a TextFetcher with a bounded number of attempts.
type Retrying struct {
	next     ports.TextFetcher
	attempts int
	backoff  Backoff
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
}

var _ ports.TextFetcher = (*Retrying)(nil)

// NewRetrying wraps next; attempts below 1 are raised to 1.
func NewRetrying(next ports.TextFetcher, attempts int, backoff Backoff, logger *slog.Logger) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if backoff == nil {
		backoff = LinearBackoff(500 * time.Millisecond)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Retrying{
		next:     next,
		attempts: attempts,
		backoff:  backoff,
		sleep:    sleepContext,
		logger:   logger,
	}
}

// FetchText calls the wrapped fetcher until it succeeds or attempts run out.
// Exhaustion yields a *domain.TransportError carrying the last failure.
func (r *Retrying) FetchText(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.next.FetchText(ctx, url)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		r.logger.Warn("request failed", "attempt", attempt, "max_attempts", r.attempts, "url", url, "error", err)
		if attempt < r.attempts {
			if err := r.sleep(ctx, r.backoff(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	return "", &domain.TransportError{URL: url, Attempts: r.attempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
