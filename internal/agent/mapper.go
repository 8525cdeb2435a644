package agent

import "time"

func mapDecision(reply decisionReply, model string, now time.Time) Decision {
	return Decision{
		Status:     reply.Status,
		Reason:     reply.Reason,
		Confidence: reply.Confidence,
		ModelName:  model,
		DecidedAt:  now.UTC(),
	}
}

func mapAlerts(reply issuesReply, now time.Time) []Alert {
	alerts := make([]Alert, 0, len(reply.Issues))
	for _, issue := range reply.Issues {
		alerts = append(alerts, Alert{
			Type:        issue.Type,
			Severity:    issue.Severity,
			Description: issue.Description,
			Status:      "OPEN",
			DetectedAt:  now.UTC(),
		})
	}
	return alerts
}

func mapPlan(reply planReply, facts OnboardingFacts, model string, now time.Time) Plan {
	days := make([]PlanDay, 0, len(reply.Days))
	for _, d := range reply.Days {
		days = append(days, PlanDay{Day: d.Day, Activities: d.Activities, Goals: d.Goals})
	}
	return Plan{
		EmployeeID:   facts.EmployeeID,
		DurationDays: facts.DurationDays,
		Days:         days,
		ModelName:    model,
		GeneratedAt:  now.UTC(),
	}
}
