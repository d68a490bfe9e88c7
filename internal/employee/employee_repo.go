package employee

import (
	"context"

	"go-faculty-leave/internal/domain"
	"go-faculty-leave/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindActiveByID(ctx context.Context, id string) (*Employee, error)
	FindFacultyByDepartment(ctx context.Context, department string) ([]Employee, error)
	CountFacultyByDepartment(ctx context.Context, department string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Active()).
		First(&emp, "id = ?", id).Error
	return &emp, err
}

func (r *repository) FindFacultyByDepartment(ctx context.Context, department string) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Department(department), tenant.Active()).
		Where("role = ?", domain.RoleFaculty).
		Order("name ASC").
		Find(&emps).Error
	return emps, err
}

func (r *repository) CountFacultyByDepartment(ctx context.Context, department string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Scopes(tenant.Department(department), tenant.Active()).
		Where("role = ?", domain.RoleFaculty).
		Count(&count).Error
	return count, err
}
