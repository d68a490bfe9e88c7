package domain

// Actor is the authenticated employee as the authorization guard sees it.
// Department is the department the actor heads, empty for plain faculty.
type Actor struct {
	ID         string
	Role       Role
	Department string
}

// RequestRef carries the fields of a leave request that authorization depends on.
type RequestRef struct {
	ID          string
	RequesterID string
	Department  string
}
