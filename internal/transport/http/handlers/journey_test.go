package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"hrpilot/internal/app/server"
	"hrpilot/internal/platform/config"
)

func testConfig(dbURL string) config.Config {
	return config.Config{
		Addr:              ":0",
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		Environment:       "development",
		SeedTenantName:    "Test Tenant",
		SeedAdminEmail:    "admin@example.com",
		SeedAdminPassword: "Admin123!",

		LLMProvider:    "fake",
		LLMModel:       "fake-model",
		LLMTimeout:     5 * time.Second,
		LLMMaxTokens:   512,
		LeaveTemp:      0.1,
		ComplianceTemp: 0.0,
		OnboardingTemp: 0.3,
		DemoMode:       true,
		FastTrackDays:  3,
		OnboardingDays: 30,

		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func postJSON(t *testing.T, client *http.Client, url, token string, payload any, wantStatus int) envelope {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", url, resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	env := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if data.Token == "" {
		t.Fatal("expected login token")
	}
	return data.Token
}

// TestLeaveFastTrackAndOverrideJourney drives the full leave flow over HTTP:
// a short request fast-tracks to APPROVED in demo mode without a model call,
// and a high-clearance admin overrides it to DENIED with an audit trail.
func TestLeaveFastTrackAndOverrideJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	createEmp := postJSON(t, client, ts.URL+"/api/v1/employees", adminToken, map[string]any{
		"name":         fmt.Sprintf("Journey Employee %d", time.Now().UnixNano()),
		"role":         "Engineer",
		"department":   "Platform",
		"leaveBalance": 20,
	}, http.StatusCreated)
	var emp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(createEmp.Data, &emp); err != nil || emp.ID == "" {
		t.Fatalf("expected employee id, got %s (err %v)", createEmp.Data, err)
	}

	// 2024-01-02 to 2024-01-03 is two business days, inside the fast-track
	// threshold, so no model call is needed.
	createReq := postJSON(t, client, ts.URL+"/api/v1/leave/requests", adminToken, map[string]any{
		"employeeId": emp.ID,
		"startDate":  "2024-01-02",
		"endDate":    "2024-01-03",
		"reason":     "short trip",
	}, http.StatusCreated)
	var created struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Decision *struct {
			Status      string `json:"status"`
			FastTracked bool   `json:"fastTracked"`
		} `json:"decision"`
	}
	if err := json.Unmarshal(createReq.Data, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Status != "APPROVED" {
		t.Fatalf("status = %q, want APPROVED", created.Status)
	}
	if created.Decision == nil || !created.Decision.FastTracked {
		t.Fatalf("expected fast-tracked decision, got %+v", created.Decision)
	}

	overrideResp := postJSON(t, client, ts.URL+"/api/v1/leave/requests/"+created.ID+"/override", adminToken, map[string]any{
		"status": "DENIED",
		"reason": "coverage conflict",
	}, http.StatusOK)
	var overridden struct {
		Status     string `json:"status"`
		Overridden bool   `json:"overridden"`
	}
	if err := json.Unmarshal(overrideResp.Data, &overridden); err != nil {
		t.Fatalf("decode override response: %v", err)
	}
	if overridden.Status != "DENIED" || !overridden.Overridden {
		t.Fatalf("unexpected override record: %+v", overridden)
	}

	auditResp := getJSON(t, client, ts.URL+"/api/v1/audit/events?action=leave.overridden", adminToken)
	var auditData struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(auditResp.Data, &auditData); err != nil {
		t.Fatalf("decode audit response: %v", err)
	}
	if auditData.Total == 0 {
		t.Fatal("expected at least one override audit event")
	}
}

// TestOnboardingRejectsMalformedModelReply verifies that an unusable model
// reply surfaces as a gateway error instead of a stored plan.
func TestOnboardingRejectsMalformedModelReply(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	createEmp := postJSON(t, client, ts.URL+"/api/v1/employees", adminToken, map[string]any{
		"name":       fmt.Sprintf("Onboarding Employee %d", time.Now().UnixNano()),
		"role":       "Analyst",
		"department": "Finance",
	}, http.StatusCreated)
	var emp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(createEmp.Data, &emp); err != nil || emp.ID == "" {
		t.Fatalf("expected employee id, got %s (err %v)", createEmp.Data, err)
	}

	// The offline fake client returns an empty object, which fails the plan
	// schema.
	env := postJSON(t, client, ts.URL+"/api/v1/onboarding/plans", adminToken, map[string]any{
		"employeeId": emp.ID,
	}, http.StatusBadGateway)
	if env.Error == nil || env.Error.Code != "malformed_response" {
		t.Fatalf("expected malformed_response error, got %+v", env.Error)
	}
}
