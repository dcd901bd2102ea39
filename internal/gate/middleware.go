// Package gate authenticates inbound requests. It is a pure identity gate:
// per-project rights stay the business of each handler.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bastionworks/bastion/internal/identity"
	"github.com/bastionworks/bastion/internal/platform/httpx"
	"github.com/bastionworks/bastion/internal/shared"
)

// TokenResolver resolves bearer tokens to internal users.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (identity.Identity, error)
	LookupUser(ctx context.Context, externalID string) (int64, error)
}

// Middleware is the request gate. Requests to public paths, or any request
// when authentication is disabled by configuration, pass through without an
// identity. Everything else must carry a resolvable bearer token.
type Middleware struct {
	Resolver TokenResolver
	Logger   *slog.Logger
	Disabled bool
	public   map[string]struct{}
}

// New constructs the gate with the given public allow-list.
func New(resolver TokenResolver, logger *slog.Logger, disabled bool, publicPaths []string) Middleware {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}
	return Middleware{Resolver: resolver, Logger: logger, Disabled: disabled, public: public}
}

// Handler wraps next with the authentication check.
func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Disabled {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := m.public[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		token := BearerToken(r)
		if token == "" {
			httpx.RespondError(w, shared.ErrAuthRequired)
			return
		}

		id, err := m.Resolver.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrTokenRejected) {
				httpx.RespondError(w, shared.ErrUserNotFound)
				return
			}
			if m.Logger != nil {
				m.Logger.Error("token exchange", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}

		userID, err := m.Resolver.LookupUser(r.Context(), id.ExternalID)
		if err != nil {
			if !errors.Is(err, shared.ErrUserNotFound) && m.Logger != nil {
				m.Logger.Error("user lookup", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}

		ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from the Authorization header. Accepts a
// bare token as well as the OAuth and Bearer prefixes.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, prefix := range []string{"OAuth ", "Bearer "} {
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
	}
	return header
}
