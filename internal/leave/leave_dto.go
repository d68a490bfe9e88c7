package leave

type SubmitLeaveRequest struct {
	LeaveType        string  `json:"leave_type" binding:"required"`
	FromDate         string  `json:"from_date" binding:"required"`
	ToDate           string  `json:"to_date" binding:"required"`
	FromTime         *string `json:"from_time"`
	ToTime           *string `json:"to_time"`
	Reason           string  `json:"reason" binding:"required"`
	AlternateFaculty *string `json:"alternate_faculty"`
}

type DecideLeaveRequest struct {
	Outcome string  `json:"outcome" binding:"required"`
	Remarks *string `json:"remarks"`
}

type LeaveDecisionResponse struct {
	Tier      string  `json:"tier"`
	Outcome   string  `json:"outcome"`
	DecidedBy string  `json:"decided_by"`
	Remarks   *string `json:"remarks,omitempty"`
	DecidedAt string  `json:"decided_at"`
}

type LeaveResponse struct {
	ID               string                 `json:"id"`
	RequesterID      string                 `json:"requester_id"`
	RequesterName    string                 `json:"requester_name,omitempty"`
	LeaveType        string                 `json:"leave_type"`
	LeaveTypeLabel   string                 `json:"leave_type_label"`
	FromDate         string                 `json:"from_date"`
	ToDate           string                 `json:"to_date"`
	FromTime         *string                `json:"from_time,omitempty"`
	ToTime           *string                `json:"to_time,omitempty"`
	Days             int                    `json:"days"`
	Reason           string                 `json:"reason"`
	AlternateFaculty *string                `json:"alternate_faculty,omitempty"`
	Department       string                 `json:"department"`
	Status           string                 `json:"status"`
	HeadStatus       string                 `json:"head_status"`
	SubmittedAt      string                 `json:"submitted_at"`
	Decision         *LeaveDecisionResponse `json:"decision,omitempty"`
}

type DepartmentSummaryResponse struct {
	Department    string `json:"department"`
	PendingCount  int64  `json:"pending_count"`
	TotalFaculty  int64  `json:"total_faculty"`
	ApprovedToday int64  `json:"approved_today"`
	RejectedCount int64  `json:"rejected_count"`
}
