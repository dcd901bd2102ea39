package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bastionworks/bastion/internal/shared"
	_ "github.com/bastionworks/bastion/testing"
)

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{shared.ErrBadParameters, http.StatusBadRequest, MsgBadParameters},
		{shared.ErrInvalidToken, http.StatusBadRequest, MsgInvalidToken},
		{shared.ErrDuplicateIdentity, http.StatusBadRequest, MsgIntegrityError},
		{shared.ErrIntegrity, http.StatusBadRequest, MsgIntegrityError},
		{shared.ErrUpdateRights, http.StatusBadRequest, MsgUpdateError},
		{shared.ErrAuthRequired, http.StatusUnauthorized, MsgAuthRequired},
		{shared.ErrNotEnoughRights, http.StatusForbidden, MsgNotEnoughRights},
		{shared.ErrAdminTarget, http.StatusForbidden, MsgAdminNotTarget},
		{shared.ErrUserNotFound, http.StatusNotFound, MsgUserNotFound},
		{shared.ErrProjectNotFound, http.StatusNotFound, MsgProjectNotFound},
		{shared.ErrDuplicateName, http.StatusConflict, MsgDuplicateName},
		{shared.ErrProviderUnavailable, http.StatusInternalServerError, MsgServerError},
		{errors.New("database exploded"), http.StatusInternalServerError, MsgServerError},
	}
	for _, tc := range cases {
		t.Run(tc.wantMsg+"/"+tc.err.Error(), func(t *testing.T) {
			res := httptest.NewRecorder()
			RespondError(res, tc.err)

			require.Equal(t, tc.wantStatus, res.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
			require.Equal(t, tc.wantMsg, body.Message)
		})
	}
}

func TestRespondErrorWrappedSentinel(t *testing.T) {
	res := httptest.NewRecorder()
	RespondError(res, fmt.Errorf("projects: fetch access: %w", shared.ErrProjectNotFound))

	require.Equal(t, http.StatusNotFound, res.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, MsgProjectNotFound, body.Message)
}

func TestRespondErrorBadParametersDetail(t *testing.T) {
	res := httptest.NewRecorder()
	RespondError(res, fmt.Errorf("%w: read", shared.ErrBadParameters))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, MsgBadParameters, body.Message)
	require.NotEmpty(t, body.Info)
}

func TestRespondErrorInternalsDoNotLeak(t *testing.T) {
	res := httptest.NewRecorder()
	RespondError(res, errors.New("pq: connection refused at 10.0.0.5"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, MsgServerError, body.Message)
	require.Empty(t, body.Info)
	require.NotContains(t, res.Body.String(), "10.0.0.5")
}

func TestMethodNotAllowed(t *testing.T) {
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/project/alpha", nil)
	MethodNotAllowed(res, req)

	require.Equal(t, http.StatusMethodNotAllowed, res.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, MsgMethodNotAllowed, body.Message)
}
