package matching

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// Eligible applies the engine's hard filters to a single pair chosen outside
// a sync. A pair the engine would never have offered is a ValidationError
// on the receipt.
func Eligible(cfg Config, tx *transaction.Transaction, r *receipt.Receipt) error {
	invalid := func(field, reason string) error {
		return &apperror.ValidationError{Entity: "receipt", ID: r.ID.String(), Field: field, Reason: reason}
	}

	if !strings.EqualFold(tx.Currency, r.Currency) {
		return invalid("currency", fmt.Sprintf("is %s, transaction is %s", r.Currency, tx.Currency))
	}

	if tx.Direction != r.Direction {
		return invalid("direction", fmt.Sprintf("is %s, transaction is %s", r.Direction, tx.Direction))
	}

	if _, ok := NewAmountScorer(cfg.AmountTolerance).Score(tx, r); !ok {
		return invalid("amount", fmt.Sprintf("differs from the transaction by more than %.0f%%", cfg.AmountTolerance*100))
	}

	if _, ok := NewDateScorer(cfg.DateWindow).Score(tx, r); !ok {
		return invalid("date", fmt.Sprintf("is more than %d days from the transaction", cfg.DateWindow))
	}

	return nil
}
