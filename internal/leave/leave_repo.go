package leave

import (
	"context"
	"database/sql"
	"time"

	"go-faculty-leave/internal/domain"
	"go-faculty-leave/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	// Get loads the request row alone, without associations.
	Get(ctx context.Context, id string) (*LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByRequester(ctx context.Context, requesterID string) ([]LeaveRequest, error)
	FindPendingByDepartment(ctx context.Context, department string) ([]LeaveRequest, error)
	FindDecidedByDepartment(ctx context.Context, department string, limit int) ([]LeaveRequest, error)
	// TransitionStatus moves the request from one status to another and
	// reports false when the request was no longer in from.
	TransitionStatus(ctx context.Context, id string, from, to domain.Status) (bool, error)
	CreateDecision(ctx context.Context, d *LeaveDecision) error
	FindDecision(ctx context.Context, leaveID string) (*LeaveDecision, error)
	CountByDepartmentStatus(ctx context.Context, department string, status domain.Status) (int64, error)
	CountDecidedSince(ctx context.Context, department string, outcome domain.Outcome, since time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) withAssociations(ctx context.Context) *gorm.DB {
	return r.conn(ctx).
		Preload("Decision").
		Preload("Requester")
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Omit("Decision", "Requester").Create(l).Error
}

func (r *repository) Get(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.withAssociations(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindByRequester(ctx context.Context, requesterID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.withAssociations(ctx).
		Where("requester_id = ?", requesterID).
		Order("submitted_at DESC").
		Find(&leaves).Error
	return leaves, err
}

// FindPendingByDepartment returns the department's work queue, oldest first.
func (r *repository) FindPendingByDepartment(ctx context.Context, department string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.withAssociations(ctx).
		Scopes(tenant.Department(department)).
		Where("status = ?", domain.StatusPending).
		Order("submitted_at ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindDecidedByDepartment(ctx context.Context, department string, limit int) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.withAssociations(ctx).
		Scopes(tenant.Department(department)).
		Where("status IN ?", []domain.Status{domain.StatusApproved, domain.StatusRejected}).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) TransitionStatus(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateDecision(ctx context.Context, d *LeaveDecision) error {
	return r.conn(ctx).Create(d).Error
}

func (r *repository) FindDecision(ctx context.Context, leaveID string) (*LeaveDecision, error) {
	var d LeaveDecision
	err := r.conn(ctx).First(&d, "leave_request_id = ?", leaveID).Error
	return &d, err
}

func (r *repository) CountByDepartmentStatus(ctx context.Context, department string, status domain.Status) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&LeaveRequest{}).
		Scopes(tenant.Department(department)).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repository) CountDecidedSince(ctx context.Context, department string, outcome domain.Outcome, since time.Time) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&LeaveDecision{}).
		Joins("JOIN leave_requests ON leave_requests.id = leave_decisions.leave_request_id").
		Where("leave_requests.department = ?", department).
		Where("leave_decisions.outcome = ?", outcome).
		Where("leave_decisions.decided_at >= ?", since).
		Count(&count).Error
	return count, err
}
