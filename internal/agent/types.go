package agent

import "time"

// Workflow identifies one of the model-backed operations.
type Workflow string

const (
	WorkflowLeaveApproval  Workflow = "leave_approval"
	WorkflowComplianceScan Workflow = "compliance_scan"
	WorkflowOnboardingPlan Workflow = "onboarding_plan"
)

const (
	StatusApproved = "APPROVED"
	StatusDenied   = "DENIED"
	StatusFlagged  = "FLAGGED"
	StatusPending  = "PENDING"
	StatusError    = "ERROR"
)

const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// LeaveFacts is the validated snapshot handed to the leave-approval workflow.
// Callers must validate dates and sanitize free text before building facts.
type LeaveFacts struct {
	EmployeeID      string
	EmployeeName    string
	Role            string
	Department      string
	ExperienceLevel string
	LeaveBalance    float64
	StartDate       time.Time
	EndDate         time.Time
	Days            float64
	Reason          string
}

type ComplianceFacts struct {
	WorkHours      map[string]float64
	Contracts      map[string]string
	LeaveRecordIDs []string
}

type OnboardingFacts struct {
	EmployeeID      string
	EmployeeName    string
	Role            string
	Department      string
	ExperienceLevel string
	DurationDays    int
}

// Decision is the immutable outcome of one leave evaluation.
type Decision struct {
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
	Confidence  *float64  `json:"confidence,omitempty"`
	ModelName   string    `json:"modelName,omitempty"`
	FastTracked bool      `json:"fastTracked"`
	Overridden  bool      `json:"overridden"`
	DecidedAt   time.Time `json:"decidedAt"`
}

// Alert is one finding from a compliance scan. Alerts carry no identity
// beyond detection time; repeated scans may produce duplicates.
type Alert struct {
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DetectedAt  time.Time `json:"detectedAt"`
}

type PlanDay struct {
	Day        int      `json:"day"`
	Activities []string `json:"activities"`
	Goals      []string `json:"goals"`
}

type Plan struct {
	EmployeeID   string    `json:"employeeId"`
	DurationDays int       `json:"durationDays"`
	Days         []PlanDay `json:"days"`
	ModelName    string    `json:"modelName,omitempty"`
	GeneratedAt  time.Time `json:"generatedAt"`
}
