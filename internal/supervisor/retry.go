package supervisor

import (
	"context"
	"log"
	"time"

	"github.com/voyagent/voyagent/internal/provider"
	"github.com/voyagent/voyagent/pkg/models"
)

// RetryPolicy bounds provider retries. Only transient failures (timeouts,
// rate limits) are retried; invalid responses fail immediately.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries per provider call.
	MaxAttempts int
	// Backoff is the initial delay between attempts; it doubles each retry.
	Backoff time.Duration
	// Timeout bounds each individual attempt. Zero means no per-attempt
	// deadline beyond the caller's context.
	Timeout time.Duration
}

// DefaultRetryPolicy mirrors the configuration defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 500 * time.Millisecond, Timeout: 20 * time.Second}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// invokeWithRetry runs one provider call under the policy and returns the
// result with attempt count and elapsed time filled in. On exhaustion the
// returned result carries ResultFailed and the last error.
func (s *Supervisor) invokeWithRetry(ctx context.Context, prov provider.Provider, params provider.Params) *models.ProviderResult {
	policy := s.policy.normalized()
	id := prov.ID()
	start := time.Now()

	var lastErr error
	attempts := 0
	backoff := policy.Backoff
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		attempts = attempt
		res, err := s.invokeOnce(ctx, prov, params, policy.Timeout)
		if err == nil {
			res.Attempts = attempt
			res.Elapsed = time.Since(start)
			return res
		}
		lastErr = err

		if !provider.IsTransient(err) || attempt == policy.MaxAttempts || ctx.Err() != nil {
			break
		}
		log.Printf("[supervisor] provider %s: attempt %d failed (%v), retrying in %s", id, attempt, err, backoff)
		s.emitter.Emit(Event{Type: EventProviderRetrying, Provider: id, Attempt: attempt, Err: err})

		select {
		case <-ctx.Done():
			lastErr = provider.ErrTimeout
		case <-time.After(backoff):
			backoff *= 2
			continue
		}
		break
	}

	return &models.ProviderResult{
		Provider: id,
		Status:   models.ResultFailed,
		Err:      lastErr,
		Attempts: attempts,
		Elapsed:  time.Since(start),
	}
}

func (s *Supervisor) invokeOnce(ctx context.Context, prov provider.Provider, params provider.Params, timeout time.Duration) (*models.ProviderResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return prov.Invoke(ctx, params)
}
