package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpilot/internal/domain/audit"
	"hrpilot/internal/domain/auth"
	"hrpilot/internal/transport/http/api"
	"hrpilot/internal/transport/http/middleware"
	"hrpilot/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/audit/events", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorUser:  r.URL.Query().Get("actor"),
	}
	includeDetails := r.URL.Query().Get("details") == "true"
	page := shared.ParsePagination(r, 50, 200)

	total, err := h.Service.Count(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to count audit events", middleware.GetRequestID(r.Context()))
		return
	}
	events, err := h.Service.List(r.Context(), user.TenantID, filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"events": events, "total": total}, middleware.GetRequestID(r.Context()))
}
