package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"hrpilot/internal/llm"
)

const leaveSystemPrompt = `You are an HR leave-approval assistant. Evaluate the
leave request against these criteria:
- remaining leave balance must cover the requested days
- requests without a stated reason for more than 5 days should be flagged
- overlapping team absences or peak periods warrant a FLAGGED status
- deny only when the balance is insufficient or the request violates policy

Respond with valid JSON only, matching exactly this shape:
{
  "status": "APPROVED|DENIED|FLAGGED|PENDING",
  "reason": "one sentence explaining the decision",
  "confidence": 0.0
}`

const complianceSystemPrompt = `You are a labor-law compliance auditor. Review
the work-hour records, contract excerpts and leave records for violations:
- weekly working time above statutory limits
- missing or expired contract clauses
- untaken statutory leave

Respond with valid JSON only, matching exactly this shape:
{
  "issues": [
    {
      "type": "short machine-readable tag",
      "severity": "HIGH|MEDIUM|LOW",
      "description": "one sentence describing the issue"
    }
  ]
}
Return an empty issues array when nothing is found.`

const onboardingSystemPrompt = `You are an HR onboarding planner. Produce a
day-by-day onboarding plan tailored to the employee's role, department and
experience level. Cover tooling setup, introductions, training and first
deliverables, ramping up over the full duration.

Respond with valid JSON only, matching exactly this shape:
{
  "days": [
    {
      "day": 1,
      "activities": ["..."],
      "goals": ["..."]
    }
  ]
}`

// BuildLeavePrompt renders the fixed instruction block plus the serialized
// request snapshot. Values are interpolated literally; callers validate first.
func BuildLeavePrompt(facts LeaveFacts) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Employee: %s (%s, %s)\n", facts.EmployeeName, facts.Role, facts.Department)
	if facts.ExperienceLevel != "" {
		fmt.Fprintf(&b, "Experience level: %s\n", facts.ExperienceLevel)
	}
	fmt.Fprintf(&b, "Leave balance: %.1f days\n", facts.LeaveBalance)
	fmt.Fprintf(&b, "Requested: %s to %s (%.1f days)\n",
		facts.StartDate.Format("2006-01-02"), facts.EndDate.Format("2006-01-02"), facts.Days)
	if facts.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", facts.Reason)
	} else {
		b.WriteString("Reason: (none given)\n")
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: leaveSystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}

func BuildCompliancePrompt(facts ComplianceFacts) []llm.Message {
	var b strings.Builder
	b.WriteString("Weekly work hours per employee:\n")
	for _, id := range sortedKeys(facts.WorkHours) {
		fmt.Fprintf(&b, "- %s: %.1f hours\n", id, facts.WorkHours[id])
	}
	b.WriteString("\nContract excerpts:\n")
	for _, id := range sortedStringKeys(facts.Contracts) {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", id, facts.Contracts[id])
	}
	if len(facts.LeaveRecordIDs) > 0 {
		fmt.Fprintf(&b, "\nLeave record ids under review: %s\n", strings.Join(facts.LeaveRecordIDs, ", "))
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: complianceSystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}

func BuildOnboardingPrompt(facts OnboardingFacts) []llm.Message {
	payload, _ := json.Marshal(map[string]any{
		"employeeId":      facts.EmployeeID,
		"name":            facts.EmployeeName,
		"role":            facts.Role,
		"department":      facts.Department,
		"experienceLevel": facts.ExperienceLevel,
		"durationDays":    facts.DurationDays,
	})

	return []llm.Message{
		{Role: llm.RoleSystem, Content: onboardingSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Plan %d onboarding days for this employee:\n%s", facts.DurationDays, payload)},
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
