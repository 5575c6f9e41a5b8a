// Package verifier asks a language model which candidate receipt, if any,
// belongs to a bank transaction.
package verifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

const systemPrompt = "You are an expert accountant matching bank payments to purchase receipts."

type receiptSummary struct {
	ID       string `json:"id"`
	Vendor   string `json:"vendor"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Date     string `json:"date"`
	Category string `json:"category,omitempty"`
}

func buildPrompt(tx *transaction.Transaction, candidates []*receipt.Receipt) string {
	summaries := make([]receiptSummary, 0, len(candidates))

	for _, r := range candidates {
		s := receiptSummary{
			ID:       r.ID.String(),
			Vendor:   r.Vendor,
			Amount:   money.Format(r.Amount),
			Currency: r.Currency,
			Date:     r.Date.Format("2006-01-02"),
		}

		if r.Category != nil {
			s.Category = *r.Category
		}

		summaries = append(summaries, s)
	}

	listing, _ := json.MarshalIndent(summaries, "", "  ")

	var b strings.Builder

	fmt.Fprintf(&b, "Match this payment to the most likely receipt.\n\n")
	fmt.Fprintf(&b, "Payment:\n")
	fmt.Fprintf(&b, "- Amount: %s %s\n", money.Format(tx.Amount), tx.Currency)
	fmt.Fprintf(&b, "- Date: %s\n", tx.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Counterparty: %s\n", tx.Counterparty)

	if tx.Description != "" && tx.Description != tx.Counterparty {
		fmt.Fprintf(&b, "- Description: %s\n", tx.Description)
	}

	fmt.Fprintf(&b, "\nAvailable receipts:\n%s\n\n", listing)
	b.WriteString(`Return only a JSON object:
{
  "matched_receipt_id": "id of the matched receipt or null",
  "confidence": 0.0 to 1.0,
  "reasoning": "short explanation",
  "match_type": "exact|fuzzy|none"
}`)

	return b.String()
}
