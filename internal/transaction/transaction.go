package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
)

// Direction is whether money moved into or out of the account.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Status represents the lifecycle state of a transaction.
type Status string

const (
	StatusUnmatched Status = "unmatched"
	StatusMatched   Status = "matched"
	StatusIgnored   Status = "ignored"
)

// Transaction is a normalized bank-feed record. Amount is always positive;
// Direction carries the sign and never changes after creation.
type Transaction struct {
	ID           uuid.UUID
	ExternalID   string
	Amount       int64 // minor units
	Currency     string
	Date         time.Time
	Counterparty string
	Description  string
	Direction    Direction
	Category     *string
	Status       Status
	MatchID      *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func (t *Transaction) Validate() error {
	return validate(t.ID.String(), t.Amount, t.Currency, t.Date, t.Direction)
}

func validate(id string, amount int64, currency string, date time.Time, dir Direction) error {
	invalid := func(field, reason string) error {
		return &apperror.ValidationError{Entity: "transaction", ID: id, Field: field, Reason: reason}
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
