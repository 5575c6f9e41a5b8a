package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type transactionResponse struct {
	ID           uuid.UUID             `json:"id"`
	ExternalID   string                `json:"external_id,omitempty"`
	Amount       int64                 `json:"amount"`
	AmountText   string                `json:"amount_text"`
	Currency     string                `json:"currency"`
	Direction    transaction.Direction `json:"direction"`
	Status       transaction.Status    `json:"status"`
	Counterparty string                `json:"counterparty"`
	Description  string                `json:"description"`
	Category     *string               `json:"category,omitempty"`
	Date         time.Time             `json:"date"`
	MatchID      *uuid.UUID            `json:"match_id,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    *time.Time            `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		ExternalID:   tx.ExternalID,
		Amount:       tx.Amount,
		AmountText:   money.FormatCurrency(tx.Amount, tx.Currency),
		Currency:     tx.Currency,
		Direction:    tx.Direction,
		Status:       tx.Status,
		Counterparty: tx.Counterparty,
		Description:  tx.Description,
		Category:     tx.Category,
		Date:         tx.Date,
		MatchID:      tx.MatchID,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
