// Package poster carries committed automatic matches forward to an external
// bookkeeping system.
package poster

import (
	"context"
	"log/slog"

	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// Posting is a freshly committed match together with both sides.
type Posting struct {
	Match       *ledger.MatchRecord
	Transaction *transaction.Transaction
	Receipt     *receipt.Receipt
}

// Log writes each posting to a structured logger. It never fails.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}

	return &Log{logger: logger}
}

func (l *Log) OnAutoMatch(_ context.Context, p Posting) error {
	l.logger.Info("posting match",
		"match_id", p.Match.ID,
		"transaction_id", p.Transaction.ID,
		"receipt_id", p.Receipt.ID,
		"vendor", p.Receipt.Vendor,
		"amount", money.FormatCurrency(p.Receipt.Amount, p.Receipt.Currency),
		"date", p.Receipt.Date.Format("2006-01-02"),
	)

	return nil
}
