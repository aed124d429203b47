package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/besserbahn/internal/metrics"
	"github.com/dharmasatrya/besserbahn/internal/models"
	"github.com/dharmasatrya/besserbahn/internal/providers"
	"github.com/dharmasatrya/besserbahn/internal/stations"
)

// call runs fn under the per-call deadline, waiting on the endpoint's rate
// limit first and retrying transient failures with the configured delays.
func call[T any](ctx context.Context, cfg Config, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		if attempt > 0 && len(cfg.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(cfg.RetryDelays) {
				delayIdx = len(cfg.RetryDelays) - 1
			}
			delay := cfg.RetryDelays[delayIdx]

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		if err := cfg.RateLimiter.Wait(ctx, op); err != nil {
			return zero, err
		}

		result, err := attemptCall(ctx, cfg.CallTimeout, op, fn)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !retryable(err) {
			return zero, err
		}
		log.Debug().Err(err).Str("op", op).Int("attempt", attempt+1).Msg("Provider call failed")
	}

	return zero, lastErr
}

func attemptCall[T any](ctx context.Context, timeout time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := fn(callCtx)
	metrics.ObserveProviderCall(op, err, time.Since(start))
	return result, err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var nf *stations.NotFoundError
	if errors.As(err, &nf) {
		return false
	}

	var ve models.ValidationError
	if errors.As(err, &ve) {
		return false
	}

	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}

	return true
}
