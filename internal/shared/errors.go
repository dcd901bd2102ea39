package shared

import "errors"

var (
	// ErrBadParameters indicates a malformed or incomplete request body.
	ErrBadParameters = errors.New("bad parameters")
	// ErrInvalidToken indicates the identity provider rejected a registration token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrAuthRequired indicates a missing Authorization header on a protected route.
	ErrAuthRequired = errors.New("authorization required")
	// ErrUserNotFound indicates the token resolved to no known user, or the
	// provider rejected the token on an authenticated route.
	ErrUserNotFound = errors.New("user not found")
	// ErrProviderUnavailable indicates the identity provider could not be reached
	// before the exchange deadline.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrNotEnoughRights indicates the caller lacks the right required for the operation.
	ErrNotEnoughRights = errors.New("not enough rights")
	// ErrAdminTarget indicates an attempt to modify the rights of a global admin.
	ErrAdminTarget = errors.New("admin can not be a target")
	// ErrProjectNotFound indicates the project does not exist for this caller.
	// Deliberately also returned when the project exists but the caller has no
	// standing on it, so existence is never confirmed to strangers.
	ErrProjectNotFound = errors.New("project not found")
	// ErrDuplicateName indicates a project name collision.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrDuplicateIdentity indicates the external identity is already registered.
	ErrDuplicateIdentity = errors.New("duplicate identity")
	// ErrUpdateRights indicates the rights update matched no access row.
	ErrUpdateRights = errors.New("error during rights update")
	// ErrIntegrity indicates a store constraint violation outside the named cases.
	ErrIntegrity = errors.New("integrity violation")
)
