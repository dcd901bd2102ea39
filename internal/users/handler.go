package users

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bastionworks/bastion/internal/platform/httpx"
	"github.com/bastionworks/bastion/internal/shared"
)

// Handler wires the registration endpoint.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers registration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.register)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", shared.ErrBadParameters))
		return
	}
	// Role is accepted from the query string as well; the body wins.
	if req.Role == "" {
		req.Role = r.URL.Query().Get("role")
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrBadParameters, validationFields(err)))
		return
	}

	userID, err := h.service.Register(r.Context(), req.Token, req.Role)
	if err != nil {
		h.logger.Warn("registration failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("user registered", slog.Int64("user_id", userID), slog.Bool("admin", req.Role == RoleAdmin))
	httpx.JSON(w, http.StatusCreated, RegisterResponse{Message: registrationCompleted})
}

func validationFields(err error) string {
	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range verrs {
			fields = append(fields, fieldErr.Field())
		}
	}
	return strings.Join(fields, ", ")
}
