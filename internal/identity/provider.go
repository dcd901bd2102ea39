// Package identity exchanges bearer tokens for external identities via the
// remote identity provider and maps them to internal user records.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bastionworks/bastion/internal/shared"
)

// ErrTokenRejected indicates the provider answered but did not accept the
// token. Call sites translate it: invalid-token on registration,
// user-not-found everywhere else.
var ErrTokenRejected = errors.New("identity: token rejected by provider")

// Identity is the stable external subject returned by the provider.
type Identity struct {
	ExternalID string
}

// Provider exchanges a bearer token for an external identity.
type Provider interface {
	Exchange(ctx context.Context, token string) (Identity, error)
}

// HTTPProvider calls the provider's token-info endpoint. This is the only
// network dependency in the core; every call is bounded by the client
// timeout so a slow provider fails the request instead of hanging it.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
	group    singleflight.Group
}

// NewHTTPProvider constructs a provider client with a hard timeout.
func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Exchange resolves a token to an external identity. Concurrent exchanges
// of the same token are collapsed into one provider call.
func (p *HTTPProvider) Exchange(ctx context.Context, token string) (Identity, error) {
	resultChan := p.group.DoChan(token, func() (any, error) {
		return p.exchange(ctx, token)
	})
	select {
	case <-ctx.Done():
		return Identity{}, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, ctx.Err())
	case res := <-resultChan:
		if res.Err != nil {
			return Identity{}, res.Err
		}
		return res.Val.(Identity), nil
	}
}

func (p *HTTPProvider) exchange(ctx context.Context, token string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Identity{}, ErrTokenRejected
	}

	// The subject may arrive as a JSON string or number depending on the
	// provider; keep the raw form and strip quotes.
	var payload struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Identity{}, fmt.Errorf("%w: decode response: %v", shared.ErrProviderUnavailable, err)
	}
	subject := strings.Trim(string(payload.ID), `"`)
	if subject == "" || subject == "null" {
		return Identity{}, ErrTokenRejected
	}
	return Identity{ExternalID: subject}, nil
}
