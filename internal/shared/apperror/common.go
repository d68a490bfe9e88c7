package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"Internal server error",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrTooManyRequests = New(
		CodeTooManyRequests,
		"Too many requests",
		http.StatusTooManyRequests,
	)
)

func RequiredField(field string) *AppError {
	return ErrInvalidInput.WithDetails(map[string]string{"field": field, "rule": "required"}).withMessage(
		fmt.Sprintf("%s is required", field),
	)
}

func InvalidField(field string) *AppError {
	return ErrInvalidInput.WithDetails(map[string]string{"field": field, "rule": "invalid"}).withMessage(
		fmt.Sprintf("%s is invalid", field),
	)
}

func (e *AppError) withMessage(message string) *AppError {
	e.Message = message
	return e
}
