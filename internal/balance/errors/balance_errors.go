package balanceerrors

import (
	"net/http"

	"go-faculty-leave/internal/domain"
	"go-faculty-leave/internal/shared/apperror"
)

var (
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"Insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"days must be at least 1",
		http.StatusBadRequest,
	)
	ErrUnknownBalanceField = apperror.New(
		apperror.CodeInvalidInput,
		"unknown balance field",
		http.StatusBadRequest,
	)
)

// InsufficientBalance reports how far short a request falls.
func InsufficientBalance(t domain.LeaveType, available, requested int) *apperror.AppError {
	return ErrInsufficientBalance.WithDetails(map[string]any{
		"leave_type": string(t),
		"available":  available,
		"requested":  requested,
	})
}
