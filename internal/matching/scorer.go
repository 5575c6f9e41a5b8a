// Package matching scores transaction/receipt pairs and assigns receipts to
// transactions one-to-one.
package matching

import (
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// Signal names one scoring dimension.
type Signal string

const (
	SignalAmount   Signal = "amount"
	SignalDate     Signal = "date"
	SignalVendor   Signal = "vendor"
	SignalCategory Signal = "category"
)

// Scorer rates how well a receipt fits a transaction on one signal. The score
// is in [0,1]; ok is false when the signal does not apply to the pair. For
// hard filters a non-applicable pair is never a candidate. Implementations
// must be safe for concurrent use.
type Scorer interface {
	Signal() Signal
	Score(tx *transaction.Transaction, r *receipt.Receipt) (score float64, ok bool)
}

// Weighted is a soft signal and its weight in the composite.
type Weighted struct {
	Scorer Scorer
	Weight float64
}

// Config holds the scoring and selection knobs.
type Config struct {
	AmountTolerance float64
	DateWindow      int
	TieEpsilon      float64
	VendorWeight    float64
	CategoryWeight  float64
}

func DefaultConfig() Config {
	return Config{
		AmountTolerance: 0.02,
		DateWindow:      14,
		TieEpsilon:      0.01,
		VendorWeight:    0.6,
		CategoryWeight:  0.4,
	}
}

// composite is the weighted average over the soft signals that apply.
// It is 0 when none do.
func composite(tx *transaction.Transaction, r *receipt.Receipt, soft []Weighted, scores map[Signal]float64) float64 {
	var sum, weights float64

	for _, w := range soft {
		s, ok := w.Scorer.Score(tx, r)
		if !ok {
			continue
		}

		scores[w.Scorer.Signal()] = s
		sum += s * w.Weight
		weights += w.Weight
	}

	if weights == 0 {
		return 0
	}

	return sum / weights
}
