package gate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bastionworks/bastion/internal/gate"
	"github.com/bastionworks/bastion/internal/identity"
	"github.com/bastionworks/bastion/internal/shared"
	_ "github.com/bastionworks/bastion/testing"
)

type fakeResolver struct {
	subjects map[string]string // token -> external id
	users    map[string]int64  // external id -> user id
	down     bool
}

func (f *fakeResolver) Resolve(ctx context.Context, token string) (identity.Identity, error) {
	if f.down {
		return identity.Identity{}, shared.ErrProviderUnavailable
	}
	subject, ok := f.subjects[token]
	if !ok {
		return identity.Identity{}, identity.ErrTokenRejected
	}
	return identity.Identity{ExternalID: subject}, nil
}

func (f *fakeResolver) LookupUser(ctx context.Context, externalID string) (int64, error) {
	id, ok := f.users[externalID]
	if !ok {
		return 0, shared.ErrUserNotFound
	}
	return id, nil
}

func newGate(resolver gate.TokenResolver, disabled bool) gate.Middleware {
	return gate.New(resolver, nil, disabled, []string{"/ping", "/user"})
}

// echoPrincipal reports the principal the gate bound, or 0.
func echoPrincipal() (http.Handler, *int64) {
	var seen int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := shared.PrincipalFromContext(r.Context()); p != nil {
			seen = p.UserID
		}
		w.WriteHeader(http.StatusOK)
	})
	return handler, &seen
}

func errorMessage(t *testing.T, res *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body.Message
}

func TestGatePublicPathPassesWithoutToken(t *testing.T) {
	next, seen := echoPrincipal()
	mw := newGate(&fakeResolver{}, false)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	res := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Zero(t, *seen)
}

func TestGateDisabledPassesEverything(t *testing.T) {
	next, seen := echoPrincipal()
	mw := newGate(&fakeResolver{}, true)

	req := httptest.NewRequest(http.MethodPost, "/project", nil)
	res := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Zero(t, *seen)
}

func TestGateMissingTokenUnauthorized(t *testing.T) {
	next, _ := echoPrincipal()
	mw := newGate(&fakeResolver{}, false)

	req := httptest.NewRequest(http.MethodPost, "/project", nil)
	res := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "authorization-required", errorMessage(t, res))
}

func TestGateRejectedTokenNotFound(t *testing.T) {
	next, _ := echoPrincipal()
	mw := newGate(&fakeResolver{subjects: map[string]string{}}, false)

	req := httptest.NewRequest(http.MethodPost, "/project", nil)
	req.Header.Set("Authorization", "OAuth unknown-token")
	res := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "user-not-found", errorMessage(t, res))
}

func TestGateUnregisteredUserNotFound(t *testing.T) {
	next, _ := echoPrincipal()
	resolver := &fakeResolver{
		subjects: map[string]string{"tok": "ext-1"},
		users:    map[string]int64{},
	}
	mw := newGate(resolver, false)

	req := httptest.NewRequest(http.MethodPost, "/project", nil)
	req.Header.Set("Authorization", "OAuth tok")
	res := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "user-not-found", errorMessage(t, res))
}

func TestGateProviderOutageIsServerError(t *testing.T) {
	next, _ := echoPrincipal()
	mw := newGate(&fakeResolver{down: true}, false)

	req := httptest.NewRequest(http.MethodPost, "/project", nil)
	req.Header.Set("Authorization", "OAuth tok")
	res := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.Equal(t, "server-error", errorMessage(t, res))
}

func TestGateBindsPrincipal(t *testing.T) {
	next, seen := echoPrincipal()
	resolver := &fakeResolver{
		subjects: map[string]string{"tok": "ext-1"},
		users:    map[string]int64{"ext-1": 7},
	}
	mw := newGate(resolver, false)

	req := httptest.NewRequest(http.MethodPost, "/project", nil)
	req.Header.Set("Authorization", "OAuth tok")
	res := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, int64(7), *seen)
}

func TestBearerTokenForms(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"OAuth abc", "abc"},
		{"Bearer abc", "abc"},
		{"oauth abc", "abc"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		require.Equal(t, tc.want, gate.BearerToken(req), "header %q", tc.header)
	}
}
