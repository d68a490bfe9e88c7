package employee

import (
	"time"

	"go-faculty-leave/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	StaffID     string      `gorm:"type:varchar(50);not null;uniqueIndex:uq_employees_staff_id"`
	Email       string      `gorm:"type:varchar(255);not null;uniqueIndex:uq_employees_email"`
	Name        string      `gorm:"type:varchar(255);not null"`
	Designation string      `gorm:"type:varchar(100);not null;default:''"`
	Role        domain.Role `gorm:"type:varchar(30);not null;default:'faculty'"`
	Department  string      `gorm:"type:varchar(100);not null;index:idx_employees_department"`
	HeadOf      *string     `gorm:"type:varchar(100)"`

	CasualLeave  int `gorm:"not null;default:12"`
	MedicalLeave int `gorm:"not null;default:15"`
	EarnedLeave  int `gorm:"not null;default:30"`

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Actor is the employee as seen by the authorization guard. Only the
// headed department counts, never the home department.
func (e Employee) Actor() domain.Actor {
	actor := domain.Actor{ID: e.ID.String(), Role: e.Role}
	if e.HeadOf != nil {
		actor.Department = *e.HeadOf
	}
	return actor
}

func (e Employee) Balance() domain.BalanceView {
	return domain.BalanceView{
		Casual:  e.CasualLeave,
		Medical: e.MedicalLeave,
		Earned:  e.EarnedLeave,
	}
}
