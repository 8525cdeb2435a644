package leave

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hrpilot/internal/agent"
)

var ErrValidation = errors.New("validation failed")

const maxReasonLength = 2000

// ValidateRequest checks a leave request before any model call is made.
// Invalid input must never reach the provider.
func ValidateRequest(start, end time.Time, reason string) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	if len(reason) > maxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrValidation, maxReasonLength)
	}
	if agent.BusinessDays(start, end) == 0 {
		return fmt.Errorf("%w: range contains no business days", ErrValidation)
	}
	return nil
}

// RequestDays returns the business-day length of a request.
func RequestDays(start, end time.Time) float64 {
	return float64(agent.BusinessDays(start, end))
}

var overrideStatuses = map[string]bool{
	agent.StatusApproved: true,
	agent.StatusDenied:   true,
	agent.StatusFlagged:  true,
	agent.StatusPending:  true,
}

// ValidateOverrideStatus restricts overrides to the regular decision
// statuses; ERROR records come only from failed evaluations.
func ValidateOverrideStatus(status string) error {
	if !overrideStatuses[strings.ToUpper(status)] {
		return fmt.Errorf("%w: invalid override status %q", ErrValidation, status)
	}
	return nil
}
