package client

import (
	"sync"
	"time"
)

// authCache holds the last auth-state fetch, success or failure. Failures
// are cached too: within one staleness cycle the client reports the same
// error instead of retrying.
type authCache struct {
	mu        sync.Mutex
	state     *AuthState
	err       error
	fetchedAt time.Time
}

func (c *authCache) fresh(now time.Time, staleAfter time.Duration) (*AuthState, error, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchedAt.IsZero() || now.Sub(c.fetchedAt) >= staleAfter {
		return nil, nil, false
	}
	return c.state, c.err, true
}

func (c *authCache) store(state *AuthState, err error, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.err = err
	c.fetchedAt = now
}

func (c *authCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = nil
	c.err = nil
	c.fetchedAt = time.Time{}
}
