package agent

import "time"

// BusinessDays counts weekdays between start and end inclusive.
func BusinessDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			days++
		}
	}
	return days
}

// FastTrackEligible reports whether a request may bypass the model pipeline.
// The bypass exists for demos only and must stay behind the explicit flag.
func FastTrackEligible(start, end time.Time, threshold int, demoMode bool) bool {
	if !demoMode {
		return false
	}
	days := BusinessDays(start, end)
	return days > 0 && days <= threshold
}

// FastTrackDecision builds the approval record for the demo bypass.
// Conflict checking is assumed clear on this path.
func FastTrackDecision(now time.Time) Decision {
	confidence := 1.0
	return Decision{
		Status:      StatusApproved,
		Reason:      "fast-tracked: short request within business-day threshold",
		Confidence:  &confidence,
		FastTracked: true,
		DecidedAt:   now.UTC(),
	}
}
