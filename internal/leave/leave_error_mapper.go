package leave

import (
	"errors"
	"strings"

	"go-faculty-leave/internal/balance"
	balanceerrors "go-faculty-leave/internal/balance/errors"
	leaveerrors "go-faculty-leave/internal/leave/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	decisionUniqueConstraint = "uq_leave_decisions_request"
	daysCheckConstraint      = "chk_leave_requests_days"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if pgErr.ConstraintName == decisionUniqueConstraint {
				return leaveerrors.ErrAlreadyDecided
			}
		case "23514":
			switch {
			case balance.IsBalanceViolation(err):
				return balanceerrors.ErrInsufficientBalance
			case pgErr.ConstraintName == daysCheckConstraint:
				return leaveerrors.ErrInvalidDays
			}
		case "22P02":
			return leaveerrors.ErrLeaveNotFound
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, decisionUniqueConstraint) {
		return leaveerrors.ErrAlreadyDecided
	}
	if strings.Contains(errMsg, "unique constraint failed: leave_decisions.leave_request_id") {
		return leaveerrors.ErrAlreadyDecided
	}

	return err
}
