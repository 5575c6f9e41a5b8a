// Package apperror defines the error taxonomy shared by the matching core and its adapters.
package apperror

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationError rejects a single malformed record.
type ValidationError struct {
	Entity string
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
	}

	return fmt.Sprintf("invalid %s %s: %s %s", e.Entity, e.ID, e.Field, e.Reason)
}

// ConflictError is returned when either side of a pair already has a different active match.
type ConflictError struct {
	TransactionID uuid.UUID
	ReceiptID     uuid.UUID
	ExistingID    uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transaction %s / receipt %s conflicts with active match %s",
		e.TransactionID, e.ReceiptID, e.ExistingID)
}

// NotFoundError is returned for missing entities and for reversing an inactive match.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// VerifierTimeoutError wraps a verifier call that ran past its deadline.
type VerifierTimeoutError struct {
	Provider string
	Timeout  time.Duration
	Err      error
}

func (e *VerifierTimeoutError) Error() string {
	return fmt.Sprintf("verifier %s timed out after %s: %v", e.Provider, e.Timeout, e.Err)
}

func (e *VerifierTimeoutError) Unwrap() error {
	return e.Err
}

// VerifierUnavailableError wraps any other verifier failure.
type VerifierUnavailableError struct {
	Provider string
	Err      error
}

func (e *VerifierUnavailableError) Error() string {
	return fmt.Sprintf("verifier %s unavailable: %v", e.Provider, e.Err)
}

func (e *VerifierUnavailableError) Unwrap() error {
	return e.Err
}

func NotFound(entity string, id fmt.Stringer) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsVerifier reports whether err came from the AI verifier.
func IsVerifier(err error) bool {
	var timeout *VerifierTimeoutError
	if errors.As(err, &timeout) {
		return true
	}

	var unavailable *VerifierUnavailableError

	return errors.As(err, &unavailable)
}
