package users

// RegisterRequest is the registration payload. Role defaults to a regular
// user; it may also arrive as a query parameter, which the handler merges.
type RegisterRequest struct {
	Token string `json:"token" validate:"required"`
	Role  string `json:"role" validate:"omitempty,oneof=user admin"`
}

// RegisterResponse acknowledges a completed registration.
type RegisterResponse struct {
	Message string `json:"message"`
}

const registrationCompleted = "registration-completed-successfully"
