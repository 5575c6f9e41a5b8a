package receipt

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// Status represents the lifecycle state of a receipt.
type Status string

const (
	StatusUnmatched Status = "unmatched"
	StatusMatched   Status = "matched"
	StatusRejected  Status = "rejected"
)

// Receipt is a purchase record extracted from an image or email. Direction is
// outgoing for purchases and incoming for sales documents.
type Receipt struct {
	ID          uuid.UUID
	ExternalID  string
	Amount      int64 // minor units
	Currency    string
	Date        time.Time
	Vendor      string
	Category    *string
	Direction   transaction.Direction
	Status      Status
	MatchID     *uuid.UUID
	DocumentURL string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func (r *Receipt) Validate() error {
	return validate(r.ID.String(), r.Amount, r.Currency, r.Date, r.Direction)
}

func validate(id string, amount int64, currency string, date time.Time, dir transaction.Direction) error {
	invalid := func(field, reason string) error {
		return &apperror.ValidationError{Entity: "receipt", ID: id, Field: field, Reason: reason}
	}

	switch {
	case amount <= 0:
		return invalid("amount", "must be positive")
	case date.IsZero():
		return invalid("date", "is required")
	case len(currency) != 3:
		return invalid("currency", "must be a 3-letter code")
	case !dir.Valid():
		return invalid("direction", "must be incoming or outgoing")
	}

	return nil
}
