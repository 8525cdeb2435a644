package agent

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type decisionReply struct {
	Status     string   `json:"status"`
	Reason     string   `json:"reason"`
	Confidence *float64 `json:"confidence"`
}

type issueReply struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type issuesReply struct {
	Issues []issueReply `json:"issues"`
}

type planDayReply struct {
	Day        int      `json:"day"`
	Activities []string `json:"activities"`
	Goals      []string `json:"goals"`
}

type planReply struct {
	Days []planDayReply `json:"days"`
}

// validateReply parses raw model text as JSON and checks it against the
// workflow's schema. Shape violations are surfaced, never silently repaired.
func validateReply(op string, schema *jsonschema.Schema, raw string, out any) error {
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return &MalformedResponseError{Operation: op, Raw: raw, Err: err}
	}
	if err := schema.Validate(generic); err != nil {
		return &MalformedResponseError{Operation: op, Raw: raw, Err: err}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &MalformedResponseError{Operation: op, Raw: raw, Err: err}
	}
	return nil
}

func parseDecision(raw string) (decisionReply, error) {
	var reply decisionReply
	if err := validateReply(string(WorkflowLeaveApproval), decisionSchema, raw, &reply); err != nil {
		return decisionReply{}, err
	}
	return reply, nil
}

func parseIssues(raw string) (issuesReply, error) {
	var reply issuesReply
	if err := validateReply(string(WorkflowComplianceScan), issuesSchema, raw, &reply); err != nil {
		return issuesReply{}, err
	}
	return reply, nil
}

func parsePlan(raw string) (planReply, error) {
	var reply planReply
	if err := validateReply(string(WorkflowOnboardingPlan), planSchema, raw, &reply); err != nil {
		return planReply{}, err
	}
	return reply, nil
}
