package usagehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpilot/internal/costs"
	"hrpilot/internal/domain/auth"
	"hrpilot/internal/transport/http/api"
	"hrpilot/internal/transport/http/middleware"
)

type Handler struct {
	Tracker *costs.Tracker
	Perms   middleware.PermissionStore
}

func NewHandler(tracker *costs.Tracker, perms middleware.PermissionStore) *Handler {
	return &Handler{Tracker: tracker, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermUsageRead, h.Perms)).Get("/usage", h.handleReport)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	report, err := h.Tracker.Report(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "usage_report_failed", "failed to load usage report", middleware.GetRequestID(r.Context()))
		return
	}
	calls, tokens := h.Tracker.Totals()
	api.Success(w, map[string]any{
		"operations": report,
		"session": map[string]any{
			"calls":  calls,
			"tokens": tokens,
		},
	}, middleware.GetRequestID(r.Context()))
}
