package service

import (
	"context"
	"sync"
	"time"

	"mpesa-push-relay/internal/core/domain"
	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// credentialCache implements ports.CredentialProvider. It holds the single
// shared bearer credential and refreshes it from the gateway only when absent
// or expired. Concurrent refreshes collapse into one gateway fetch through a
// singleflight group; a failed fetch leaves the cached entry untouched.
type credentialCache struct {
	gateway ports.GatewayClient
	margin  time.Duration
	log     zerolog.Logger

	sf  singleflight.Group
	mu  sync.RWMutex
	cur domain.Credential

	now func() time.Time
}

// NewCredentialCache creates a credential cache. margin is subtracted from the
// gateway-advertised lifetime so a served credential cannot expire mid-flight.
func NewCredentialCache(gateway ports.GatewayClient, margin time.Duration, log zerolog.Logger) ports.CredentialProvider {
	return &credentialCache{
		gateway: gateway,
		margin:  margin,
		log:     log,
		now:     time.Now,
	}
}

// Credential returns the cached credential while it is still valid, otherwise
// blocks on a refresh.
func (c *credentialCache) Credential(ctx context.Context) (domain.Credential, error) {
	c.mu.RLock()
	cur := c.cur
	c.mu.RUnlock()

	if cur.Valid(c.now()) {
		return cur, nil
	}

	v, err, _ := c.sf.Do("token", func() (interface{}, error) {
		// A waiter may arrive just after the winner stored a fresh entry.
		c.mu.RLock()
		cur := c.cur
		c.mu.RUnlock()
		if cur.Valid(c.now()) {
			return cur, nil
		}

		fetched, err := c.gateway.Authenticate(ctx)
		if err != nil {
			return nil, apperror.ErrCredentialFetch(err)
		}

		fetched.ExpiresAt = fetched.ExpiresAt.Add(-c.margin)

		c.mu.Lock()
		c.cur = fetched
		c.mu.Unlock()

		c.log.Debug().Time("expires_at", fetched.ExpiresAt).Msg("gateway access token refreshed")
		return fetched, nil
	})
	if err != nil {
		return domain.Credential{}, err
	}
	return v.(domain.Credential), nil
}

// Invalidate drops the cached credential so the next call fetches fresh.
func (c *credentialCache) Invalidate() {
	c.mu.Lock()
	c.cur = domain.Credential{}
	c.mu.Unlock()
}
