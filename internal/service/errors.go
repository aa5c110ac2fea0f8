package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")

	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductUnavailable = errors.New("product not found")
	ErrEmptyOrder         = errors.New("order has no items")

	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotPending        = errors.New("order is not pending")

	ErrInvalidSignature = errors.New("invalid signature")
	ErrAmountMismatch   = errors.New("payment amount mismatch")

	ErrAlreadyReviewed = errors.New("product already reviewed")
)

// ValidationError reports a problem with a single input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
