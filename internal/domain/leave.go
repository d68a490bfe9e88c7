package domain

import "strings"

type LeaveType string

const (
	LeaveTypeCasual       LeaveType = "CASUAL"
	LeaveTypeMedical      LeaveType = "MEDICAL"
	LeaveTypeMaternity    LeaveType = "MATERNITY"
	LeaveTypeWinter       LeaveType = "WINTER"
	LeaveTypeSummer       LeaveType = "SUMMER"
	LeaveTypePermission   LeaveType = "PERMISSION"
	LeaveTypeCompensation LeaveType = "COMPENSATION"
)

// BalanceField names one of the per-employee leave balances.
type BalanceField string

const (
	BalanceCasual  BalanceField = "casual"
	BalanceMedical BalanceField = "medical"
	BalanceEarned  BalanceField = "earned"
)

// Column is the employees column holding the balance.
func (f BalanceField) Column() string {
	switch f {
	case BalanceCasual:
		return "casual_leave"
	case BalanceMedical:
		return "medical_leave"
	case BalanceEarned:
		return "earned_leave"
	default:
		return ""
	}
}

type leaveTypeInfo struct {
	label string
	field BalanceField
}

// Every request type is listed explicitly. An empty field means the type
// never consumes a balance.
var leaveTypes = map[LeaveType]leaveTypeInfo{
	LeaveTypeCasual:       {label: "Casual Leave", field: BalanceCasual},
	LeaveTypeMedical:      {label: "Medical Leave", field: BalanceMedical},
	LeaveTypeMaternity:    {label: "Maternity Leave"},
	LeaveTypeWinter:       {label: "Winter Leave"},
	LeaveTypeSummer:       {label: "Summer Leave"},
	LeaveTypePermission:   {label: "Permission Leave"},
	LeaveTypeCompensation: {label: "Compensation Leave"},
}

// ParseLeaveType accepts either the code ("CASUAL") or the display label
// ("Casual Leave"), case-insensitively.
func ParseLeaveType(v string) (LeaveType, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if code := LeaveType(strings.ToUpper(v)); code.Valid() {
		return code, true
	}
	for t, info := range leaveTypes {
		if strings.EqualFold(info.label, v) {
			return t, true
		}
	}
	return "", false
}

func (t LeaveType) Valid() bool {
	_, ok := leaveTypes[t]
	return ok
}

func (t LeaveType) Label() string {
	return leaveTypes[t].label
}

// BalanceField reports which balance t draws from. ok is false for
// non-accruing types.
func (t LeaveType) BalanceField() (BalanceField, bool) {
	info, found := leaveTypes[t]
	if !found || info.field == "" {
		return "", false
	}
	return info.field, true
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

func ParseOutcome(v string) (Outcome, bool) {
	switch Outcome(strings.ToLower(strings.TrimSpace(v))) {
	case OutcomeApproved:
		return OutcomeApproved, true
	case OutcomeRejected:
		return OutcomeRejected, true
	default:
		return "", false
	}
}

// Status is the request status the outcome moves a request to.
func (o Outcome) Status() Status {
	return Status(o)
}

type Role string

const (
	RoleFaculty        Role = "faculty"
	RoleDepartmentHead Role = "department-head"
)

func (r Role) Valid() bool {
	return r == RoleFaculty || r == RoleDepartmentHead
}

// ApprovalTier is the only decision tier; a principal tier does not exist.
const ApprovalTierDepartmentHead = "department-head"

// BalanceView is a point-in-time copy of an employee's balances.
type BalanceView struct {
	Casual  int `json:"casual"`
	Medical int `json:"medical"`
	Earned  int `json:"earned"`
}

func (b BalanceView) Available(f BalanceField) int {
	switch f {
	case BalanceCasual:
		return b.Casual
	case BalanceMedical:
		return b.Medical
	case BalanceEarned:
		return b.Earned
	default:
		return 0
	}
}
