package onboardinghandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrpilot/internal/agent"
	"hrpilot/internal/domain/auth"
	"hrpilot/internal/domain/hr"
	"hrpilot/internal/domain/onboarding"
	"hrpilot/internal/transport/http/api"
	"hrpilot/internal/transport/http/middleware"
	"hrpilot/internal/transport/http/shared"
)

type Handler struct {
	Service *onboarding.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *onboarding.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/onboarding", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/plans", h.handleGenerate)
		r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/plans/{planID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/plans/{planID}/export", h.handleExport)
		r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/employees/{employeeID}/plans", h.handleListByEmployee)
	})
}

type generatePayload struct {
	EmployeeID   string `json:"employeeId"`
	DurationDays int    `json:"durationDays"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employeeId is required")
	if payload.DurationDays < 0 || payload.DurationDays > 365 {
		v.Add("durationDays", "must be between 1 and 365 when set")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	plan, err := h.Service.Generate(r.Context(), user.TenantID, user.UserID, payload.EmployeeID, payload.DurationDays)
	switch {
	case errors.Is(err, hr.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
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
		api.Fail(w, http.StatusInternalServerError, "plan_generate_failed", "failed to generate onboarding plan", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, plan, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	plan, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "planID"))
	if errors.Is(err, onboarding.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "onboarding plan not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "plan_get_failed", "failed to load onboarding plan", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, plan, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	plans, err := h.Service.ListByEmployee(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "plan_list_failed", "failed to list onboarding plans", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"plans": plans, "total": len(plans)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	planID := chi.URLParam(r, "planID")
	pdf, err := h.Service.ExportPDF(r.Context(), user.TenantID, planID)
	if errors.Is(err, onboarding.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "onboarding plan not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "plan_export_failed", "failed to export onboarding plan", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="onboarding-plan-`+planID+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		return
	}
}
