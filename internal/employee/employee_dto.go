package employee

type EmployeeResponse struct {
	ID          string  `json:"id"`
	StaffID     string  `json:"staff_id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Designation string  `json:"designation"`
	Role        string  `json:"role"`
	Department  string  `json:"department"`
	HeadOf      *string `json:"head_of,omitempty"`

	// Balance is read from the same row as the profile.
	Balance *LeaveBalance `json:"balance,omitempty"`
}

type LeaveBalance struct {
	Casual  int `json:"casual"`
	Medical int `json:"medical"`
	Earned  int `json:"earned"`
}

type BalanceResponse struct {
	EmployeeID string `json:"employee_id"`
	Casual     int    `json:"casual"`
	Medical    int    `json:"medical"`
	Earned     int    `json:"earned"`
}
