package leave

import (
	"time"

	"go-faculty-leave/internal/domain"
	"go-faculty-leave/internal/employee"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveRequest struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID        `gorm:"type:uuid;not null;index:idx_leave_requests_requester"`
	LeaveType   domain.LeaveType `gorm:"type:varchar(30);not null"`
	StartDate   time.Time        `gorm:"type:date;not null"`
	EndDate     time.Time        `gorm:"type:date;not null"`
	FromTime    *string          `gorm:"type:varchar(5)"`
	ToTime      *string          `gorm:"type:varchar(5)"`
	Reason      string           `gorm:"type:text;not null"`

	AlternateFaculty *string `gorm:"type:varchar(255)"`

	Days int `gorm:"not null"`
	// Department is copied from the requester at submission and never
	// follows later transfers.
	Department string        `gorm:"type:varchar(100);not null;index:idx_leave_requests_department_status"`
	Status     domain.Status `gorm:"type:varchar(20);not null;default:'pending';index:idx_leave_requests_department_status"`

	SubmittedAt time.Time `gorm:"not null"`
	UpdatedAt   time.Time

	Decision  *LeaveDecision     `gorm:"foreignKey:LeaveRequestID"`
	Requester *employee.Employee `gorm:"foreignKey:RequesterID"`
}

func (l *LeaveRequest) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// HeadStatus is the department head's recorded outcome, pending until one exists.
func (l LeaveRequest) HeadStatus() domain.Status {
	if l.Decision == nil {
		return domain.StatusPending
	}
	return l.Decision.Outcome.Status()
}

func (l LeaveRequest) Ref() domain.RequestRef {
	return domain.RequestRef{
		ID:          l.ID.String(),
		RequesterID: l.RequesterID.String(),
		Department:  l.Department,
	}
}

// LeaveDecision is append-only. At most one exists per request.
type LeaveDecision struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	LeaveRequestID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_leave_decisions_request"`
	Tier           string         `gorm:"type:varchar(30);not null;default:'department-head'"`
	Outcome        domain.Outcome `gorm:"type:varchar(20);not null"`
	DecidedBy      uuid.UUID      `gorm:"type:uuid;not null"`
	Remarks        *string        `gorm:"type:text"`
	DecidedAt      time.Time      `gorm:"not null;index"`
}

func (d *LeaveDecision) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
