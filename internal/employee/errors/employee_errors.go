package employeeerrors

import (
	"go-faculty-leave/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrUnknownRole = apperror.New(
		apperror.CodeForbidden,
		"Employee role is not recognised",
		http.StatusForbidden,
	)
	ErrInvalidDepartment = apperror.New(
		apperror.CodeInvalidInput,
		"Department is required",
		http.StatusBadRequest,
	)
)
