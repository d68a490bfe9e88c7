package authzerrors

import (
	"net/http"

	"go-faculty-leave/internal/shared/apperror"
)

var (
	ErrNotDepartmentHead = apperror.New(
		apperror.CodeForbidden,
		"Only a department head can perform this action",
		http.StatusForbidden,
	)
	ErrOutsideDepartment = apperror.New(
		apperror.CodeForbidden,
		"Leave request belongs to another department",
		http.StatusForbidden,
	)
	ErrNotRequester = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to view this leave request",
		http.StatusForbidden,
	)
)
