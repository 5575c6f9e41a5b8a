package escalation

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// Verdict is a verifier's answer. ReceiptID is nil when it picked nothing.
type Verdict struct {
	ReceiptID  *uuid.UUID
	Confidence float64
	Reasoning  string
}

//go:generate mockgen -source=verifier.go -destination=verifier_mock.go -package=escalation
type Verifier interface {
	// Verify asks which of the candidates, if any, belongs to tx.
	Verify(ctx context.Context, tx *transaction.Transaction, candidates []*receipt.Receipt) (Verdict, error)
}

// Named verifiers report their provider in errors and logs.
type Named interface {
	Name() string
}

func providerName(v Verifier) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}

	return "verifier"
}
