package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "go-faculty-leave/internal/balance/errors"
	"go-faculty-leave/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// balanceConstraints are the non-negative CHECKs on the employee balance columns.
var balanceConstraints = map[string]bool{
	"chk_employees_casual_leave":  true,
	"chk_employees_medical_leave": true,
	"chk_employees_earned_leave":  true,
}

// IsBalanceViolation reports whether err is a CHECK failure on a balance column.
func IsBalanceViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514" && balanceConstraints[pgErr.ConstraintName]
}

// Availability is the result of a balance check. Available is nil for
// leave types that do not draw from a balance.
type Availability struct {
	Sufficient bool
	Available  *int
}

//go:generate mockgen -source=balance_ledger.go -destination=mock/balance_ledger_mock.go -package=mock
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	CheckAvailable(view domain.BalanceView, t domain.LeaveType, days int) Availability
	Deduct(ctx context.Context, employeeID string, t domain.LeaveType, days int) error
	Reverse(ctx context.Context, employeeID string, t domain.LeaveType, days int) error
	Get(ctx context.Context, employeeID string) (domain.BalanceView, error)
}

type ledger struct {
	repo   Repository
	logger *zap.Logger
}

func NewLedger(repo Repository, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("balance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.ledger")
	}
	return &ledger{repo: repo, logger: l}
}

func (l *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{repo: l.repo.WithTx(tx), logger: l.logger}
}

func (l *ledger) CheckAvailable(view domain.BalanceView, t domain.LeaveType, days int) Availability {
	field, ok := t.BalanceField()
	if !ok {
		return Availability{Sufficient: true}
	}
	available := view.Available(field)
	return Availability{Sufficient: available >= days, Available: &available}
}

// Deduct is a single conditional decrement. The balance is re-read only to
// explain a rejected decrement.
func (l *ledger) Deduct(ctx context.Context, employeeID string, t domain.LeaveType, days int) error {
	if days <= 0 {
		return balanceerrors.ErrInvalidDays
	}
	field, ok := t.BalanceField()
	if !ok {
		return nil
	}

	l.logger.Debug("deduct balance requested",
		zap.String("employee_id", employeeID),
		zap.String("field", string(field)),
		zap.Int("days", days),
	)

	deducted, err := l.repo.Decrement(ctx, employeeID, field, days)
	if err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, balanceerrors.ErrInsufficientBalance) {
			return l.insufficient(ctx, employeeID, t, field, days)
		}
		l.logger.Error("deduct balance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return mapped
	}
	if !deducted {
		return l.insufficient(ctx, employeeID, t, field, days)
	}

	l.logger.Info("balance deducted",
		zap.String("employee_id", employeeID),
		zap.String("field", string(field)),
		zap.Int("days", days),
	)
	return nil
}

func (l *ledger) insufficient(ctx context.Context, employeeID string, t domain.LeaveType, field domain.BalanceField, days int) error {
	view, err := l.repo.Get(ctx, employeeID)
	if err != nil {
		return mapRepositoryError(err)
	}
	available := view.Available(field)
	l.logger.Warn("deduct balance rejected",
		zap.String("employee_id", employeeID),
		zap.String("field", string(field)),
		zap.Int("available", available),
		zap.Int("requested", days),
	)
	return balanceerrors.InsufficientBalance(t, available, days)
}

func (l *ledger) Reverse(ctx context.Context, employeeID string, t domain.LeaveType, days int) error {
	if days <= 0 {
		return balanceerrors.ErrInvalidDays
	}
	field, ok := t.BalanceField()
	if !ok {
		return nil
	}

	restored, err := l.repo.Increment(ctx, employeeID, field, days)
	if err != nil {
		l.logger.Error("reverse balance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return mapRepositoryError(err)
	}
	if !restored {
		return balanceerrors.ErrEmployeeNotFound
	}

	l.logger.Info("balance restored",
		zap.String("employee_id", employeeID),
		zap.String("field", string(field)),
		zap.Int("days", days),
	)
	return nil
}

func (l *ledger) Get(ctx context.Context, employeeID string) (domain.BalanceView, error) {
	view, err := l.repo.Get(ctx, employeeID)
	if err != nil {
		return domain.BalanceView{}, mapRepositoryError(err)
	}
	return view, nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return balanceerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514":
			if balanceConstraints[pgErr.ConstraintName] {
				return balanceerrors.ErrInsufficientBalance
			}
		case "22P02":
			return balanceerrors.ErrEmployeeNotFound
		}
	}

	return err
}
