package grants

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/bastionworks/bastion/internal/rights"
	"github.com/bastionworks/bastion/internal/shared"
	_ "github.com/bastionworks/bastion/testing"
)

func TestRightsFromQuery(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		want    rights.Rights
		wantErr bool
	}{
		{"absent defaults false", "", rights.Rights{}, false},
		{"all true", "read=true&write=true&grant=true", rights.FullRights(), false},
		{"numeric forms", "read=1&write=0", rights.Rights{Read: true}, false},
		{"single bit", "grant=true", rights.Rights{Grant: true}, false},
		{"garbage value", "read=yes", rights.Rights{}, true},
		{"empty value ignored", "read=&write=true", rights.Rights{Write: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/project/alpha?"+tc.query, nil)
			parsed, err := rightsFromQuery(req)
			if tc.wantErr {
				require.ErrorIs(t, err, shared.ErrBadParameters)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, parsed)
		})
	}
}

func newPatchRouter(state *memState, grantorID int64) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(state, state, logger))
	router := chi.NewRouter()
	router.Route("/project", func(r chi.Router) { handler.MountRoutes(r) })
	if grantorID == 0 {
		return router
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{UserID: grantorID})
		router.ServeHTTP(w, r.WithContext(ctx))
	})
}

func doPatch(t *testing.T, handler http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func wireMessage(t *testing.T, res *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body.Message
}

func TestPatchRightsSuccess(t *testing.T) {
	state, _ := grantFixture()
	handler := newPatchRouter(state, 1)

	res := doPatch(t, handler, "/project/alpha?read=true&write=true",
		`{"target_token": "tok-target"}`)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, updateSuccess, wireMessage(t, res))
	require.Equal(t, rights.Rights{Read: true, Write: true}, state.accesses[accessKey{2, 10}])
}

func TestPatchRightsNoPrincipal(t *testing.T) {
	state, _ := grantFixture()
	handler := newPatchRouter(state, 0)

	res := doPatch(t, handler, "/project/alpha?read=true", `{"target_token": "tok-target"}`)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "authorization-required", wireMessage(t, res))
}

func TestPatchRightsMissingTargetToken(t *testing.T) {
	state, _ := grantFixture()
	handler := newPatchRouter(state, 1)

	res := doPatch(t, handler, "/project/alpha?read=true", `{}`)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "bad-parameters", wireMessage(t, res))
}

func TestPatchRightsBadQueryValue(t *testing.T) {
	state, _ := grantFixture()
	handler := newPatchRouter(state, 1)

	res := doPatch(t, handler, "/project/alpha?read=maybe", `{"target_token": "tok-target"}`)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "bad-parameters", wireMessage(t, res))
}

func TestPatchRightsForbidden(t *testing.T) {
	state, _ := grantFixture()
	state.setAccess(1, 10, rights.Rights{Read: true, Write: true})
	handler := newPatchRouter(state, 1)

	res := doPatch(t, handler, "/project/alpha?read=true", `{"target_token": "tok-target"}`)

	require.Equal(t, http.StatusForbidden, res.Code)
	require.Equal(t, "not-enough-rights", wireMessage(t, res))
}

func TestPatchRightsAdminTarget(t *testing.T) {
	state, _ := grantFixture()
	handler := newPatchRouter(state, 1)

	res := doPatch(t, handler, "/project/alpha?read=true", `{"target_token": "tok-admin"}`)

	require.Equal(t, http.StatusForbidden, res.Code)
	require.Equal(t, "admin-can-not-be-target", wireMessage(t, res))
}

func TestPatchRightsStrangerNotFound(t *testing.T) {
	state, _ := grantFixture()
	handler := newPatchRouter(state, 2)

	res := doPatch(t, handler, "/project/alpha?read=true", `{"target_token": "tok-owner"}`)

	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "project-not-found", wireMessage(t, res))
}
