// Package profileclient talks to the external user-profile service that
// owns account data. Responses are cached with a short TTL because the
// teacher attendance view resolves the same uids repeatedly.
package profileclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"companion/internal/identity"
)

// Client resolves profiles from the remote profile service. With Skip set
// it answers every lookup with identity.ErrNotFound so the caller's
// unknown-profile fallback applies; useful when the service is not
// deployed.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool

	cache *ttlcache.Cache[string, identity.Profile]
}

// New creates a client with a lookup cache of the given TTL.
func New(baseURL string, skip bool, cacheTTL time.Duration) *Client {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cache := ttlcache.New[string, identity.Profile](
		ttlcache.WithTTL[string, identity.Profile](cacheTTL),
	)
	go cache.Start()
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		cache:   cache,
	}
}

// Close stops the cache janitor.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Stop()
	}
}

// Lookup implements identity.Directory against the remote service.
func (c *Client) Lookup(ctx context.Context, uid string) (identity.Profile, error) {
	if c.Skip {
		return identity.Profile{}, identity.ErrNotFound
	}
	if uid == "" {
		return identity.Profile{}, fmt.Errorf("uid required")
	}
	if item := c.cache.Get(uid); item != nil {
		return item.Value(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/profiles/"+uid, nil)
	if err != nil {
		return identity.Profile{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return identity.Profile{}, fmt.Errorf("profile service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return identity.Profile{}, identity.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return identity.Profile{}, fmt.Errorf("profile service error %s: %s", resp.Status, string(bodyBytes))
	}

	var out identity.Profile
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return identity.Profile{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.UID == "" {
		out.UID = uid
	}
	c.cache.Set(uid, out, ttlcache.DefaultTTL)
	return out, nil
}

// Health checks if the profile service is available.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("profile service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("profile service unhealthy: %s", resp.Status)
	}

	return nil
}
