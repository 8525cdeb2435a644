package agent

import (
	"context"
	"fmt"
	"time"

	"hrpilot/internal/llm"
)

// Settings fixes the model parameters for one workflow. Model selection is
// per-invocation configuration, never process-wide mutable state.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// CostSink receives token consumption per model call.
type CostSink interface {
	Record(ctx context.Context, model string, tokens int, operation string)
}

// AuditSink receives provider failures tagged with the calling operation.
type AuditSink interface {
	RecordFailure(ctx context.Context, operation, detail string)
}

// Dispatcher runs the three stateless model-backed workflows. Invocations
// share no mutable state; concurrent calls need no coordination.
type Dispatcher struct {
	Client     llm.Client
	Costs      CostSink
	Audit      AuditSink
	Leave      Settings
	Compliance Settings
	Onboarding Settings

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewDispatcher(client llm.Client, costs CostSink, audit AuditSink, leave, compliance, onboarding Settings) *Dispatcher {
	return &Dispatcher{
		Client:     client,
		Costs:      costs,
		Audit:      audit,
		Leave:      leave,
		Compliance: compliance,
		Onboarding: onboarding,
		Now:        time.Now,
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Dispatch selects a workflow by kind. Inputs must match the workflow's
// facts type; results are Decision, []Alert or Plan respectively.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Workflow, input any) (any, error) {
	switch kind {
	case WorkflowLeaveApproval:
		facts, ok := input.(LeaveFacts)
		if !ok {
			return nil, fmt.Errorf("%w: leave approval expects LeaveFacts", ErrUnknownWorkflow)
		}
		return d.EvaluateLeave(ctx, facts)
	case WorkflowComplianceScan:
		facts, ok := input.(ComplianceFacts)
		if !ok {
			return nil, fmt.Errorf("%w: compliance scan expects ComplianceFacts", ErrUnknownWorkflow)
		}
		return d.ScanCompliance(ctx, facts)
	case WorkflowOnboardingPlan:
		facts, ok := input.(OnboardingFacts)
		if !ok {
			return nil, fmt.Errorf("%w: onboarding plan expects OnboardingFacts", ErrUnknownWorkflow)
		}
		return d.GenerateOnboarding(ctx, facts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, kind)
	}
}

func (d *Dispatcher) EvaluateLeave(ctx context.Context, facts LeaveFacts) (Decision, error) {
	raw, err := d.invoke(ctx, string(WorkflowLeaveApproval), d.Leave, BuildLeavePrompt(facts))
	if err != nil {
		return Decision{}, err
	}
	reply, err := parseDecision(raw)
	if err != nil {
		return Decision{}, err
	}
	return mapDecision(reply, d.Leave.Model, d.now()), nil
}

func (d *Dispatcher) ScanCompliance(ctx context.Context, facts ComplianceFacts) ([]Alert, error) {
	raw, err := d.invoke(ctx, string(WorkflowComplianceScan), d.Compliance, BuildCompliancePrompt(facts))
	if err != nil {
		return nil, err
	}
	reply, err := parseIssues(raw)
	if err != nil {
		return nil, err
	}
	return mapAlerts(reply, d.now()), nil
}

func (d *Dispatcher) GenerateOnboarding(ctx context.Context, facts OnboardingFacts) (Plan, error) {
	raw, err := d.invoke(ctx, string(WorkflowOnboardingPlan), d.Onboarding, BuildOnboardingPrompt(facts))
	if err != nil {
		return Plan{}, err
	}
	reply, err := parsePlan(raw)
	if err != nil {
		return Plan{}, err
	}
	return mapPlan(reply, facts, d.Onboarding.Model, d.now()), nil
}

// invoke performs the single blocking provider call for one operation,
// reporting usage to the cost sink and failures to the audit sink.
func (d *Dispatcher) invoke(ctx context.Context, op string, settings Settings, messages []llm.Message) (string, error) {
	resp, err := d.Client.Complete(ctx, llm.Request{
		Model:       settings.Model,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
		Messages:    messages,
	})
	if err != nil {
		if d.Audit != nil {
			d.Audit.RecordFailure(ctx, op, err.Error())
		}
		return "", &ProviderError{Operation: op, Err: err}
	}
	if d.Costs != nil {
		d.Costs.Record(ctx, settings.Model, resp.Usage.TotalTokens, op)
	}
	return resp.Text, nil
}
