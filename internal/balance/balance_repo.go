package balance

import (
	"context"
	"database/sql"

	balanceerrors "go-faculty-leave/internal/balance/errors"
	"go-faculty-leave/internal/domain"

	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// Decrement subtracts days from field only when the balance covers it.
	// It reports false when no row matched.
	Decrement(ctx context.Context, employeeID string, field domain.BalanceField, days int) (bool, error)
	Increment(ctx context.Context, employeeID string, field domain.BalanceField, days int) (bool, error)
	Get(ctx context.Context, employeeID string) (domain.BalanceView, error)
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

type balanceRow struct {
	CasualLeave  int
	MedicalLeave int
	EarnedLeave  int
}

func (r *repository) Decrement(ctx context.Context, employeeID string, field domain.BalanceField, days int) (bool, error) {
	col := field.Column()
	if col == "" {
		return false, balanceerrors.ErrUnknownBalanceField
	}
	res := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("is_active = ?", true).
		Where(col+" >= ?", days).
		Update(col, gorm.Expr(col+" - ?", days))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Increment(ctx context.Context, employeeID string, field domain.BalanceField, days int) (bool, error) {
	col := field.Column()
	if col == "" {
		return false, balanceerrors.ErrUnknownBalanceField
	}
	res := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Update(col, gorm.Expr(col+" + ?", days))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Get(ctx context.Context, employeeID string) (domain.BalanceView, error) {
	var row balanceRow
	err := r.conn(ctx).
		Table("employees").
		Select("casual_leave, medical_leave, earned_leave").
		Where("id = ?", employeeID).
		Where("is_active = ?", true).
		Take(&row).Error
	if err != nil {
		return domain.BalanceView{}, err
	}
	return domain.BalanceView{
		Casual:  row.CasualLeave,
		Medical: row.MedicalLeave,
		Earned:  row.EarnedLeave,
	}, nil
}
