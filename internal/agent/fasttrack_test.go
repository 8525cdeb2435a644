package agent

import (
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

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"single weekday", "2024-01-02", "2024-01-02", 1},
		{"tuesday to wednesday", "2024-01-02", "2024-01-03", 2},
		{"full work week", "2024-01-01", "2024-01-05", 5},
		{"week including weekend", "2024-01-01", "2024-01-07", 5},
		{"weekend only", "2024-01-06", "2024-01-07", 0},
		{"end before start", "2024-01-05", "2024-01-01", 0},
		{"two full weeks", "2024-01-01", "2024-01-14", 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BusinessDays(date(tc.start), date(tc.end))
			if got != tc.want {
				t.Fatalf("BusinessDays(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestFastTrackEligible(t *testing.T) {
	start, end := date("2024-01-02"), date("2024-01-03")

	if FastTrackEligible(start, end, 3, false) {
		t.Fatal("expected ineligible when demo mode is off")
	}
	if !FastTrackEligible(start, end, 3, true) {
		t.Fatal("expected 2 business days within threshold 3 to be eligible")
	}
	if FastTrackEligible(date("2024-01-01"), date("2024-01-05"), 3, true) {
		t.Fatal("expected 5 business days to exceed threshold 3")
	}
	if FastTrackEligible(date("2024-01-06"), date("2024-01-07"), 3, true) {
		t.Fatal("expected weekend-only range to be ineligible")
	}
}

func TestFastTrackDecision(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	d := FastTrackDecision(now)

	if d.Status != StatusApproved {
		t.Fatalf("status = %q, want %q", d.Status, StatusApproved)
	}
	if !d.FastTracked {
		t.Fatal("expected FastTracked to be set")
	}
	if d.Confidence == nil || *d.Confidence != 1.0 {
		t.Fatalf("confidence = %v, want 1.0", d.Confidence)
	}
	if !d.DecidedAt.Equal(now) {
		t.Fatalf("decidedAt = %v, want %v", d.DecidedAt, now)
	}
}
