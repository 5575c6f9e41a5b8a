package matching

import (
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// DateScorer is a hard filter on the calendar distance between the booking
// date and the receipt date.
type DateScorer struct {
	window int
}

func NewDateScorer(window int) *DateScorer {
	return &DateScorer{window: window}
}

func (s *DateScorer) Signal() Signal { return SignalDate }

func (s *DateScorer) Score(tx *transaction.Transaction, r *receipt.Receipt) (float64, bool) {
	d := period.DaysBetween(tx.Date, r.Date)

	switch {
	case d > s.window:
		return 0, false
	case s.window == 0:
		return 1, true
	}

	return 1 - float64(d)/float64(s.window), true
}
