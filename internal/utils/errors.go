package utils

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a request fails a business guard: wrong
// status for the action, bid cap reached, price ordering violated, and so on.
// The reason is safe to show to the end user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// NotFoundError is returned when a referenced record does not exist or the
// caller lacks ownership of it. Both cases surface identically so record
// existence is not leaked across users.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found or permission denied"
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

// InsufficientCreditsError signals that the contractor has no credits left.
// Callers route this to the payment-required path instead of a hard failure.
type InsufficientCreditsError struct {
	ContractorID string
}

func (e *InsufficientCreditsError) Error() string {
	return ErrInsufficientCredits
}

// StorageError wraps an unexpected persistence or external-service failure.
// The wrapped cause is logged but never exposed to the end user.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInsufficientCreditsError(err error) bool {
	var ic *InsufficientCreditsError
	return errors.As(err, &ic)
}
