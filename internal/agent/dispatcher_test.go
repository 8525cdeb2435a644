package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hrpilot/internal/llm"
)

type recordingCosts struct {
	mu      sync.Mutex
	records []string
	tokens  int
}

func (r *recordingCosts) Record(_ context.Context, model string, tokens int, operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, model+"/"+operation)
	r.tokens += tokens
}

type recordingAudit struct {
	mu       sync.Mutex
	failures []string
}

func (r *recordingAudit) RecordFailure(_ context.Context, operation, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, operation)
}

func testDispatcher(fake *llm.Fake, costs *recordingCosts, audit *recordingAudit) *Dispatcher {
	d := NewDispatcher(fake, costs, audit,
		Settings{Model: "gpt-4o-mini", Temperature: 0.1, MaxTokens: 1024},
		Settings{Model: "gpt-4o-mini", Temperature: 0.0, MaxTokens: 1024},
		Settings{Model: "gpt-4o-mini", Temperature: 0.3, MaxTokens: 1024},
	)
	d.Now = func() time.Time { return time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC) }
	return d
}

func TestEvaluateLeave(t *testing.T) {
	fake := llm.NewFake(`{"status": "APPROVED", "reason": "sufficient balance", "confidence": 0.9}`)
	costs := &recordingCosts{}
	d := testDispatcher(fake, costs, &recordingAudit{})

	decision, err := d.EvaluateLeave(context.Background(), LeaveFacts{
		EmployeeID:   "e-1",
		EmployeeName: "Maya Lindqvist",
		Role:         "Engineer",
		Department:   "Platform",
		LeaveBalance: 12,
		StartDate:    date("2024-02-05"),
		EndDate:      date("2024-02-09"),
		Days:         5,
		Reason:       "family trip",
	})
	if err != nil {
		t.Fatalf("EvaluateLeave: %v", err)
	}
	if decision.Status != StatusApproved {
		t.Fatalf("status = %q, want %q", decision.Status, StatusApproved)
	}
	if decision.ModelName != "gpt-4o-mini" {
		t.Fatalf("modelName = %q, want gpt-4o-mini", decision.ModelName)
	}
	if decision.FastTracked {
		t.Fatal("model-backed decision must not be marked fast-tracked")
	}
	if fake.Calls() != 1 {
		t.Fatalf("model calls = %d, want 1", fake.Calls())
	}
	if len(costs.records) != 1 || costs.records[0] != "gpt-4o-mini/leave_approval" {
		t.Fatalf("cost records = %v", costs.records)
	}
	if costs.tokens == 0 {
		t.Fatal("expected token usage to be recorded")
	}
}

func TestEvaluateLeaveProviderError(t *testing.T) {
	fake := &llm.Fake{Err: errors.New("connection refused")}
	costs := &recordingCosts{}
	audit := &recordingAudit{}
	d := testDispatcher(fake, costs, audit)

	_, err := d.EvaluateLeave(context.Background(), LeaveFacts{EmployeeID: "e-1"})
	var provider *ProviderError
	if !errors.As(err, &provider) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if provider.Operation != string(WorkflowLeaveApproval) {
		t.Fatalf("operation = %q, want %q", provider.Operation, WorkflowLeaveApproval)
	}
	if len(audit.failures) != 1 || audit.failures[0] != string(WorkflowLeaveApproval) {
		t.Fatalf("audit failures = %v", audit.failures)
	}
	if len(costs.records) != 0 {
		t.Fatalf("no cost record expected on failure, got %v", costs.records)
	}
}

func TestEvaluateLeaveMalformedReply(t *testing.T) {
	fake := llm.NewFake("Sure, I'd approve that!")
	d := testDispatcher(fake, &recordingCosts{}, &recordingAudit{})

	_, err := d.EvaluateLeave(context.Background(), LeaveFacts{EmployeeID: "e-1"})
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error type = %T, want *MalformedResponseError", err)
	}
	if malformed.Raw != "Sure, I'd approve that!" {
		t.Fatalf("Raw = %q, want original reply", malformed.Raw)
	}
}

func TestScanCompliance(t *testing.T) {
	fake := llm.NewFake(`{"issues": [{"type": "overtime", "severity": "HIGH", "description": "e-2 logged 60 hours"}]}`)
	d := testDispatcher(fake, &recordingCosts{}, &recordingAudit{})

	alerts, err := d.ScanCompliance(context.Background(), ComplianceFacts{
		WorkHours: map[string]float64{"e-1": 38, "e-2": 60},
		Contracts: map[string]string{"e-1": "standard full-time"},
	})
	if err != nil {
		t.Fatalf("ScanCompliance: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].Status != "OPEN" {
		t.Fatalf("status = %q, want OPEN", alerts[0].Status)
	}
	if alerts[0].Severity != SeverityHigh {
		t.Fatalf("severity = %q, want %q", alerts[0].Severity, SeverityHigh)
	}
}

func TestScanComplianceNoFindings(t *testing.T) {
	fake := llm.NewFake(`{"issues": []}`)
	d := testDispatcher(fake, &recordingCosts{}, &recordingAudit{})

	alerts, err := d.ScanCompliance(context.Background(), ComplianceFacts{WorkHours: map[string]float64{"e-1": 38}})
	if err != nil {
		t.Fatalf("ScanCompliance: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("alerts = %d, want 0", len(alerts))
	}
}

func TestGenerateOnboarding(t *testing.T) {
	fake := llm.NewFake(`{"days": [{"day": 1, "activities": ["setup"], "goals": ["access"]}]}`)
	d := testDispatcher(fake, &recordingCosts{}, &recordingAudit{})

	plan, err := d.GenerateOnboarding(context.Background(), OnboardingFacts{
		EmployeeID:   "e-3",
		EmployeeName: "Jonas Weber",
		Role:         "Analyst",
		Department:   "Finance",
		DurationDays: 30,
	})
	if err != nil {
		t.Fatalf("GenerateOnboarding: %v", err)
	}
	if plan.EmployeeID != "e-3" || plan.DurationDays != 30 {
		t.Fatalf("unexpected plan header: %+v", plan)
	}
	if len(plan.Days) != 1 || plan.Days[0].Day != 1 {
		t.Fatalf("unexpected plan days: %+v", plan.Days)
	}
}

func TestDispatchUnknownWorkflow(t *testing.T) {
	d := testDispatcher(llm.NewFake("{}"), &recordingCosts{}, &recordingAudit{})

	_, err := d.Dispatch(context.Background(), Workflow("payroll_review"), nil)
	if !errors.Is(err, ErrUnknownWorkflow) {
		t.Fatalf("err = %v, want ErrUnknownWorkflow", err)
	}
}

func TestDispatchRejectsMismatchedInput(t *testing.T) {
	d := testDispatcher(llm.NewFake("{}"), &recordingCosts{}, &recordingAudit{})

	_, err := d.Dispatch(context.Background(), WorkflowLeaveApproval, OnboardingFacts{})
	if !errors.Is(err, ErrUnknownWorkflow) {
		t.Fatalf("err = %v, want ErrUnknownWorkflow", err)
	}
}
