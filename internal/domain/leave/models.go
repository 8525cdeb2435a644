package leave

import "time"

type LeaveRequest struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DecisionRecord is one persisted evaluation outcome. Records are append-only;
// an override adds a new row rather than rewriting history.
type DecisionRecord struct {
	ID             string    `json:"id"`
	LeaveRequestID string    `json:"leaveRequestId"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason"`
	Confidence     *float64  `json:"confidence,omitempty"`
	ModelName      string    `json:"modelName,omitempty"`
	FastTracked    bool      `json:"fastTracked"`
	Overridden     bool      `json:"overridden"`
	DecidedBy      string    `json:"decidedBy,omitempty"`
	DecidedAt      time.Time `json:"decidedAt"`
}

type RequestWithDecision struct {
	LeaveRequest
	Decision *DecisionRecord `json:"decision,omitempty"`
}
