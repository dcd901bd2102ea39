package projects

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

// Handler wires project registry endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers project routes. The rights-patch route on the same
// subtree is mounted by the grants handler.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{name}", h.info)
	r.Post("/{name}", h.rename)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrAuthRequired)
		return
	}

	var req CreateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", shared.ErrBadParameters))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrBadParameters, validationFields(err)))
		return
	}

	projectID, err := h.service.Create(r.Context(), principal.UserID, req.Name)
	if err != nil {
		h.logger.Warn("create project failed", slog.String("name", req.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("project created", slog.Int64("project_id", projectID), slog.Int64("user_id", principal.UserID))
	httpx.JSON(w, http.StatusCreated, CreateProjectResponse{ProjectID: projectID})
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrAuthRequired)
		return
	}

	var req RenameProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", shared.ErrBadParameters))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrBadParameters, validationFields(err)))
		return
	}

	oldName := chi.URLParam(r, "name")
	if err := h.service.Rename(r.Context(), principal.UserID, oldName, req.Name); err != nil {
		h.logger.Warn("rename project failed", slog.String("name", oldName), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, UpdateResponse{Message: updateSuccess})
}

func (h *Handler) info(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrAuthRequired)
		return
	}

	info, err := h.service.Info(r.Context(), principal.UserID, chi.URLParam(r, "name"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
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
