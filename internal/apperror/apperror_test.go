package apperror_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
)

func TestPredicates(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		err        error
		validation bool
		conflict   bool
		notFound   bool
		verifier   bool
	}{
		{
			name:       "Validation",
			err:        &apperror.ValidationError{Entity: "receipt", Field: "amount", Reason: "must be positive"},
			validation: true,
		},
		{
			name:     "WrappedConflict",
			err:      fmt.Errorf("committing: %w", &apperror.ConflictError{TransactionID: id}),
			conflict: true,
		},
		{
			name:     "NotFound",
			err:      apperror.NotFound("match", id),
			notFound: true,
		},
		{
			name:     "Timeout",
			err:      &apperror.VerifierTimeoutError{Provider: "gemini", Timeout: time.Second, Err: context.DeadlineExceeded},
			verifier: true,
		},
		{
			name:     "Unavailable",
			err:      fmt.Errorf("route: %w", &apperror.VerifierUnavailableError{Provider: "ollama", Err: errors.New("refused")}),
			verifier: true,
		},
		{
			name: "Plain",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, apperror.IsValidation(tt.err))
			assert.Equal(t, tt.conflict, apperror.IsConflict(tt.err))
			assert.Equal(t, tt.notFound, apperror.IsNotFound(tt.err))
			assert.Equal(t, tt.verifier, apperror.IsVerifier(tt.err))
		})
	}
}

func TestVerifierTimeoutError_Unwrap(t *testing.T) {
	err := &apperror.VerifierTimeoutError{Provider: "gemini", Timeout: 10 * time.Second, Err: context.DeadlineExceeded}

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "10s")
}

func TestValidationError_Message(t *testing.T) {
	err := &apperror.ValidationError{Entity: "transaction", ID: "abc", Field: "currency", Reason: "must be a 3-letter code"}
	assert.Equal(t, "invalid transaction abc: currency must be a 3-letter code", err.Error())
}
