package agent

import (
	"errors"
	"testing"
)

func TestParseDecision(t *testing.T) {
	raw := `{"status": "APPROVED", "reason": "balance covers the request", "confidence": 0.92}`
	reply, err := parseDecision(raw)
	if err != nil {
		t.Fatalf("parseDecision: %v", err)
	}
	if reply.Status != StatusApproved {
		t.Fatalf("status = %q, want %q", reply.Status, StatusApproved)
	}
	if reply.Confidence == nil || *reply.Confidence != 0.92 {
		t.Fatalf("confidence = %v, want 0.92", reply.Confidence)
	}
}

func TestParseDecisionWithoutConfidence(t *testing.T) {
	reply, err := parseDecision(`{"status": "PENDING", "reason": "needs manager review"}`)
	if err != nil {
		t.Fatalf("parseDecision: %v", err)
	}
	if reply.Confidence != nil {
		t.Fatalf("confidence = %v, want nil", reply.Confidence)
	}
}

func TestParseDecisionRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I approve this request."},
		{"unknown status", `{"status": "MAYBE", "reason": "unsure"}`},
		{"missing reason", `{"status": "APPROVED"}`},
		{"confidence above one", `{"status": "APPROVED", "reason": "ok", "confidence": 1.5}`},
		{"negative confidence", `{"status": "DENIED", "reason": "no", "confidence": -0.1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseDecision(tc.raw)
			if err == nil {
				t.Fatalf("expected error for %q", tc.raw)
			}
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("error type = %T, want *MalformedResponseError", err)
			}
			if malformed.Raw != tc.raw {
				t.Fatalf("Raw = %q, want original reply text", malformed.Raw)
			}
		})
	}
}

func TestParseIssues(t *testing.T) {
	raw := `{"issues": [
		{"type": "overtime", "severity": "HIGH", "description": "employee e-1 logged 62 hours"},
		{"type": "missing_clause", "severity": "LOW", "description": "contract c-2 lacks a notice period"}
	]}`
	reply, err := parseIssues(raw)
	if err != nil {
		t.Fatalf("parseIssues: %v", err)
	}
	if len(reply.Issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(reply.Issues))
	}
	if reply.Issues[0].Severity != SeverityHigh {
		t.Fatalf("severity = %q, want %q", reply.Issues[0].Severity, SeverityHigh)
	}
}

func TestParseIssuesEmpty(t *testing.T) {
	reply, err := parseIssues(`{"issues": []}`)
	if err != nil {
		t.Fatalf("parseIssues: %v", err)
	}
	if len(reply.Issues) != 0 {
		t.Fatalf("issues = %d, want 0", len(reply.Issues))
	}
}

func TestParseIssuesRejectsBadSeverity(t *testing.T) {
	_, err := parseIssues(`{"issues": [{"type": "overtime", "severity": "CRITICAL", "description": "x"}]}`)
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error type = %T, want *MalformedResponseError", err)
	}
}

func TestParsePlan(t *testing.T) {
	raw := `{"days": [
		{"day": 1, "activities": ["laptop setup", "team intro"], "goals": ["access to all tools"]},
		{"day": 2, "activities": ["codebase walkthrough"], "goals": ["first local build"]}
	]}`
	reply, err := parsePlan(raw)
	if err != nil {
		t.Fatalf("parsePlan: %v", err)
	}
	if len(reply.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(reply.Days))
	}
	if reply.Days[0].Day != 1 || len(reply.Days[0].Activities) != 2 {
		t.Fatalf("unexpected first day: %+v", reply.Days[0])
	}
}

func TestParsePlanRejectsEmptyDays(t *testing.T) {
	_, err := parsePlan(`{"days": []}`)
	if err == nil {
		t.Fatal("expected error for empty plan")
	}
}
