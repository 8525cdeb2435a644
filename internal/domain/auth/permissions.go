package auth

const (
	PermEmployeesRead   = "core.employees.read"
	PermEmployeesWrite  = "core.employees.write"
	PermLeaveRead       = "leave.read"
	PermLeaveWrite      = "leave.write"
	PermLeaveOverride   = "leave.override"
	PermComplianceRead  = "compliance.read"
	PermComplianceRun   = "compliance.run"
	PermOnboardingRead  = "onboarding.read"
	PermOnboardingWrite = "onboarding.write"
	PermAuditRead       = "audit.read"
	PermUsageRead       = "usage.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveOverride,
	PermComplianceRead,
	PermComplianceRun,
	PermOnboardingRead,
	PermOnboardingWrite,
	PermAuditRead,
	PermUsageRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermLeaveRead,
		PermLeaveWrite,
	},
	RoleManager: {
		PermEmployeesRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveOverride,
		PermComplianceRead,
		PermOnboardingRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveOverride,
		PermComplianceRead,
		PermComplianceRun,
		PermOnboardingRead,
		PermOnboardingWrite,
		PermAuditRead,
		PermUsageRead,
	},
}
