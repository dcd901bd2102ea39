package httpx

import (
	"errors"
	"net/http"

	"github.com/bastionworks/bastion/internal/shared"
)

// Wire messages for the error boundary. Clients match on these strings.
const (
	MsgBadParameters    = "bad-parameters"
	MsgInvalidToken     = "invalid-token"
	MsgIntegrityError   = "integrity-error"
	MsgUpdateError      = "error-during-update"
	MsgAuthRequired     = "authorization-required"
	MsgNotEnoughRights  = "not-enough-rights"
	MsgAdminNotTarget   = "admin-can-not-be-target"
	MsgUserNotFound     = "user-not-found"
	MsgProjectNotFound  = "project-not-found"
	MsgMethodNotAllowed = "method-not-allowed"
	MsgDuplicateName    = "duplicate-name"
	MsgServerError      = "server-error"
)

// RespondError translates a domain error into its wire status and message.
// Anything outside the taxonomy becomes a detail-free 500 so internals
// never leak to clients.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrBadParameters):
		Error(w, http.StatusBadRequest, MsgBadParameters, detailOf(err, shared.ErrBadParameters))
	case errors.Is(err, shared.ErrInvalidToken):
		Error(w, http.StatusBadRequest, MsgInvalidToken, "")
	case errors.Is(err, shared.ErrDuplicateIdentity), errors.Is(err, shared.ErrIntegrity):
		Error(w, http.StatusBadRequest, MsgIntegrityError, "")
	case errors.Is(err, shared.ErrUpdateRights):
		Error(w, http.StatusBadRequest, MsgUpdateError, "")
	case errors.Is(err, shared.ErrAuthRequired):
		Error(w, http.StatusUnauthorized, MsgAuthRequired, "")
	case errors.Is(err, shared.ErrNotEnoughRights):
		Error(w, http.StatusForbidden, MsgNotEnoughRights, "")
	case errors.Is(err, shared.ErrAdminTarget):
		Error(w, http.StatusForbidden, MsgAdminNotTarget, "")
	case errors.Is(err, shared.ErrUserNotFound):
		Error(w, http.StatusNotFound, MsgUserNotFound, "")
	case errors.Is(err, shared.ErrProjectNotFound):
		Error(w, http.StatusNotFound, MsgProjectNotFound, "")
	case errors.Is(err, shared.ErrDuplicateName):
		Error(w, http.StatusConflict, MsgDuplicateName, "")
	default:
		Error(w, http.StatusInternalServerError, MsgServerError, "")
	}
}

// MethodNotAllowed is the router-level 405 handler.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed, "")
}

// detailOf surfaces wrapped detail for validation failures without repeating
// the sentinel text itself.
func detailOf(err, sentinel error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != sentinel.Error() {
		return msg
	}
	return ""
}
