package matching

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

var half = decimal.NewFromFloat(0.5)

// AmountScorer is a hard filter on the relative difference between the two
// amounts, measured against the receipt total.
type AmountScorer struct {
	tolerance decimal.Decimal
}

func NewAmountScorer(tolerance float64) *AmountScorer {
	return &AmountScorer{tolerance: decimal.NewFromFloat(tolerance)}
}

func (s *AmountScorer) Signal() Signal { return SignalAmount }

// Score is 1 for equal amounts and decays linearly to 0.5 at the tolerance.
// Beyond it the pair is not applicable.
func (s *AmountScorer) Score(tx *transaction.Transaction, r *receipt.Receipt) (float64, bool) {
	if tx.Amount == r.Amount {
		return 1, true
	}

	if r.Amount <= 0 || !s.tolerance.IsPositive() {
		return 0, false
	}

	rel := money.RelativeDiff(tx.Amount, r.Amount)
	if rel.GreaterThan(s.tolerance) {
		return 0, false
	}

	score := decimal.NewFromInt(1).Sub(half.Mul(rel).Div(s.tolerance))

	return score.InexactFloat64(), true
}
