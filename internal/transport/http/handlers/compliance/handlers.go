package compliancehandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpilot/internal/agent"
	"hrpilot/internal/domain/auth"
	"hrpilot/internal/domain/compliance"
	"hrpilot/internal/transport/http/api"
	"hrpilot/internal/transport/http/middleware"
	"hrpilot/internal/transport/http/shared"
)

type Handler struct {
	Service *compliance.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *compliance.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/compliance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermComplianceRun, h.Perms)).Post("/scan", h.handleScan)
		r.With(middleware.RequirePermission(auth.PermComplianceRead, h.Perms)).Get("/alerts", h.handleListAlerts)
		r.With(middleware.RequirePermission(auth.PermComplianceRun, h.Perms)).Post("/alerts/{alertID}/resolve", h.handleResolve)
	})
}

type scanPayload struct {
	WorkHours      map[string]float64 `json:"workHours"`
	Contracts      map[string]string  `json:"contracts"`
	LeaveRecordIDs []string           `json:"leaveRecordIds"`
}

func (p scanPayload) empty() bool {
	return len(p.WorkHours) == 0 && len(p.Contracts) == 0 && len(p.LeaveRecordIDs) == 0
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	// The body is optional: with no facts supplied the scan runs over the
	// tenant's stored work hours, contracts and open leave requests.
	var payload scanPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	var alerts []compliance.Alert
	var err error
	if payload.empty() {
		alerts, err = h.Service.Run(r.Context(), user.TenantID, user.UserID)
	} else {
		alerts, err = h.Service.RunWithFacts(r.Context(), user.TenantID, user.UserID, agent.ComplianceFacts{
			WorkHours:      payload.WorkHours,
			Contracts:      payload.Contracts,
			LeaveRecordIDs: payload.LeaveRecordIDs,
		})
	}
	if err != nil {
		var provider *agent.ProviderError
		if errors.As(err, &provider) {
			api.Fail(w, http.StatusBadGateway, "provider_unavailable", "model provider unavailable", middleware.GetRequestID(r.Context()))
			return
		}
		var malformed *agent.MalformedResponseError
		if errors.As(err, &malformed) {
			api.Fail(w, http.StatusBadGateway, "malformed_response", "model response could not be parsed", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "scan_failed", "compliance scan failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"alerts": alerts, "total": len(alerts)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	status := r.URL.Query().Get("status")
	severity := r.URL.Query().Get("severity")
	v.Enum("status", status, []string{compliance.AlertOpen, compliance.AlertResolved}, "must be OPEN or RESOLVED")
	v.Enum("severity", severity, []string{agent.SeverityHigh, agent.SeverityMedium, agent.SeverityLow}, "must be HIGH, MEDIUM or LOW")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	alerts, total, err := h.Service.List(r.Context(), user.TenantID, compliance.Filter{Status: status, Severity: severity}, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "alert_list_failed", "failed to list alerts", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"alerts": alerts, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	alert, err := h.Service.Resolve(r.Context(), user.TenantID, chi.URLParam(r, "alertID"), user.UserID)
	if errors.Is(err, compliance.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "open alert not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "resolve_failed", "failed to resolve alert", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, alert, middleware.GetRequestID(r.Context()))
}
