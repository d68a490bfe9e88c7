package employee

import (
	"errors"

	balanceerrors "go-faculty-leave/internal/balance/errors"
	employeeerrors "go-faculty-leave/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, balanceerrors.ErrEmployeeNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	// invalid_text_representation: a malformed uuid reached postgres
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return employeeerrors.ErrEmployeeNotFound
	}

	return err
}
