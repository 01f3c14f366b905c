package backend

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tellbrandz/tbz/internal/logging"
)

// refreshBackoff is replaced in tests.
var refreshBackoff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// StartRefresher renews the access token leeway before it expires. It blocks
// until ctx is cancelled or the client is closed. A refresh rejected by the
// backend ends the session with a SignedOut event; transient failures are
// retried with exponential backoff and then again after leeway.
func (c *HTTPClient) StartRefresher(ctx context.Context, leeway time.Duration, log logging.Logger) {
	var retryAfter time.Time

	for {
		c.mu.RLock()
		g := c.grant
		expiresAt := c.expiresAt
		epoch := c.epoch
		c.mu.RUnlock()

		var fire <-chan time.Time
		var timer *time.Timer
		if g != nil && g.RefreshToken != "" {
			wait := expiresAt.Sub(c.now()) - leeway
			if until := retryAfter.Sub(c.now()); until > wait {
				wait = until
			}
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return
		case <-c.done:
			stopTimer(timer)
			return
		case <-c.wake:
			stopTimer(timer)
			retryAfter = time.Time{}
			continue
		case <-fire:
		}

		op := func() error {
			err := c.RefreshSession(ctx, g.RefreshToken)
			if err != nil && !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		err := backoff.Retry(op, backoff.WithContext(refreshBackoff(), ctx))
		if err == nil || errors.Is(err, ErrSessionEnded) {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if IsTransient(err) {
			log.Warn(ctx, "token refresh failed, will retry", "error", err)
			retryAfter = c.now().Add(leeway)
			continue
		}

		log.Warn(ctx, "token refresh rejected, signing out", "error", err)
		c.endSession(ctx, epoch)
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
