package grants

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bastionworks/bastion/internal/platform/httpx"
	"github.com/bastionworks/bastion/internal/rights"
	"github.com/bastionworks/bastion/internal/shared"
)

// PatchRightsRequest is the body of PATCH /project/{name}. The token
// identifies the target user, not the caller.
type PatchRightsRequest struct {
	TargetToken string `json:"target_token" validate:"required"`
}

// UpdateResponse acknowledges a successful mutation.
type UpdateResponse struct {
	Message string `json:"message"`
}

const updateSuccess = "update-success"

// Handler wires the rights-patch endpoint.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the patch route alongside the project routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Patch("/{name}", h.patchRights)
}

func (h *Handler) patchRights(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrAuthRequired)
		return
	}

	var req PatchRightsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", shared.ErrBadParameters))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: target_token", shared.ErrBadParameters))
		return
	}

	requested, err := rightsFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	projectName := chi.URLParam(r, "name")
	if err := h.service.Grant(r.Context(), principal.UserID, projectName, req.TargetToken, requested); err != nil {
		h.logger.Warn("grant rights failed",
			slog.String("project", projectName),
			slog.Int64("grantor_id", principal.UserID),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, UpdateResponse{Message: updateSuccess})
}

// rightsFromQuery parses the read/write/grant query parameters. Absent
// parameters default to false: a patch replaces the whole triple, it does
// not merge with the stored one.
func rightsFromQuery(r *http.Request) (rights.Rights, error) {
	var parsed rights.Rights
	for name, bit := range map[string]*bool{
		"read":  &parsed.Read,
		"write": &parsed.Write,
		"grant": &parsed.Grant,
	} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return rights.Rights{}, fmt.Errorf("%w: %s", shared.ErrBadParameters, name)
		}
		*bit = value
	}
	return parsed, nil
}
