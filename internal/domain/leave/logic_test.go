package leave

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestValidateRequest(t *testing.T) {
	if err := ValidateRequest(date("2024-01-02"), date("2024-01-05"), "family trip"); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidateRequestRejections(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		end    string
		reason string
	}{
		{"end before start", "2024-01-05", "2024-01-02", ""},
		{"weekend only", "2024-01-06", "2024-01-07", ""},
		{"reason too long", "2024-01-02", "2024-01-03", strings.Repeat("x", maxReasonLength+1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequest(date(tc.start), date(tc.end), tc.reason)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestValidateRequestZeroDates(t *testing.T) {
	err := ValidateRequest(time.Time{}, date("2024-01-05"), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestRequestDays(t *testing.T) {
	if got := RequestDays(date("2024-01-01"), date("2024-01-07")); got != 5 {
		t.Fatalf("RequestDays = %v, want 5", got)
	}
}

func TestValidateOverrideStatus(t *testing.T) {
	for _, status := range []string{"APPROVED", "denied", "Flagged", "PENDING"} {
		if err := ValidateOverrideStatus(status); err != nil {
			t.Fatalf("status %q rejected: %v", status, err)
		}
	}
	for _, status := range []string{"ERROR", "CANCELLED", ""} {
		if err := ValidateOverrideStatus(status); !errors.Is(err, ErrValidation) {
			t.Fatalf("status %q: err = %v, want ErrValidation", status, err)
		}
	}
}
