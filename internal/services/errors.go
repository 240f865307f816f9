package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the return request operations. Handlers map
// these onto HTTP statuses; everything else is treated as a server fault.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrDuplicatePending = errors.New("a pending return request already exists for this order")
)

// ValidationError marks user-correctable input problems.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StoreError wraps an infrastructure-level database failure, as opposed to an
// expected record-not-found condition. Callers surface it as a generic server
// fault without leaking the underlying cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
