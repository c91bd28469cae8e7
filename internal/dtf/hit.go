package dtf

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	minHitID = 100000
	maxHitID = 165971

	defaultHitAttempts  = 10
	defaultHitBaseDelay = 334 * time.Millisecond
	defaultHitMaxDelay  = 5 * time.Second
)

// HitPolicy bounds the HitRandomPost retry loop.
type HitPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultHitPolicy returns ten attempts with backoff from 334ms up to 5s.
func DefaultHitPolicy() HitPolicy {
	return HitPolicy{
		MaxAttempts: defaultHitAttempts,
		BaseDelay:   defaultHitBaseDelay,
		MaxDelay:    defaultHitMaxDelay,
	}
}

func (p HitPolicy) normalized() HitPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultHitAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultHitBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultHitMaxDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// calculateBackoff doubles base per consecutive failure, capped at ceiling.
func calculateBackoff(failures int, base, ceiling time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= ceiling {
			return ceiling
		}
	}
	return backoff
}

// HitRandomPost registers a view on a random post, retrying with a fresh id
// after any failure until one succeeds or the policy is exhausted. It
// returns the post id that was hit.
func (c *Client) HitRandomPost(ctx context.Context) (int, error) {
	var lastErr error
	for attempt := 0; attempt < c.hit.MaxAttempts; attempt++ {
		id := minHitID + rand.IntN(maxHitID-minHitID)
		c.logger.Debug("hitting post", "id", id, "attempt", attempt+1)
		err := c.hitPost(ctx, id)
		if err == nil {
			return id, nil
		}
		lastErr = err
		c.logger.Warn("failed to hit post, retrying", "id", id, "error", err)

		if attempt == c.hit.MaxAttempts-1 {
			break
		}
		timer := time.NewTimer(calculateBackoff(attempt, c.hit.BaseDelay, c.hit.MaxDelay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
	}
	return 0, fmt.Errorf("hit random post: %d attempts exhausted: %w", c.hit.MaxAttempts, lastErr)
}

func (c *Client) hitPost(ctx context.Context, id int) error {
	form := url.Values{"mode": {"raw"}}
	_, status, err := c.do(ctx, http.MethodPost, pathHit+strconv.Itoa(id), nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return transportError(status, fmt.Errorf("api %s%d returned status %d", pathHit, id, status))
	}
	return nil
}
