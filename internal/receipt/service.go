package receipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=receipt
type Repository interface {
	CreateReceipt(ctx context.Context, r *Receipt) error
	// InsertReceipts stores receipts whose external id is not known yet and
	// returns the ones that were written.
	InsertReceipts(ctx context.Context, rs []*Receipt) ([]*Receipt, error)
	GetReceipt(ctx context.Context, id uuid.UUID) (*Receipt, error)
	ListReceipts(ctx context.Context, filter ListFilter) ([]*Receipt, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ExternalID  string
	Amount      int64
	Currency    string
	Date        time.Time
	Vendor      string
	Category    *string
	Direction   transaction.Direction
	DocumentURL string
}

func (p CreateParams) Validate() error {
	return validate(p.ExternalID, p.Amount, p.Currency, p.Date, p.direction())
}

func (p CreateParams) direction() transaction.Direction {
	if p.Direction == "" {
		return transaction.DirectionOutgoing
	}

	return p.Direction
}

type ListFilter struct {
	Status    *Status
	Currency  *string
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Receipt, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	r := newReceipt(params)
	if err := s.repo.CreateReceipt(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	return s.repo.GetReceipt(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Receipt, error) {
	return s.repo.ListReceipts(ctx, filter)
}

// ListUnmatchedReceipts returns UNMATCHED receipts in the given currency dated within r.
func (s *Service) ListUnmatchedReceipts(ctx context.Context, r period.Range, currency string) ([]*Receipt, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rs, err := s.repo.ListReceipts(ctx, ListFilter{
		Status:    new(StatusUnmatched),
		Currency:  new(strings.ToUpper(currency)),
		StartDate: new(r.Start),
		EndDate:   new(r.End),
	})
	if err != nil {
		return nil, fmt.Errorf("listing unmatched receipts: %w", err)
	}

	return rs, nil
}

type ImportResult struct {
	Imported []*Receipt
	Skipped  int
	Invalid  []InvalidRow
}

type InvalidRow struct {
	Index int
	Err   error
}

// Import stores extracted receipts, skipping rows whose external id was imported before.
func (s *Service) Import(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	result := &ImportResult{}

	rs := make([]*Receipt, 0, len(params))

	for i, p := range params {
		if err := p.Validate(); err != nil {
			result.Invalid = append(result.Invalid, InvalidRow{Index: i, Err: err})
			continue
		}

		rs = append(rs, newReceipt(p))
	}

	if len(rs) == 0 {
		return result, nil
	}

	created, err := s.repo.InsertReceipts(ctx, rs)
	if err != nil {
		return nil, fmt.Errorf("inserting receipts: %w", err)
	}

	result.Imported = created
	result.Skipped = len(rs) - len(created)

	return result, nil
}

// Reject marks an unmatched receipt as not belonging to any transaction.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusUnmatched, StatusRejected)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusRejected, StatusUnmatched)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, from, to Status) error {
	r, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return err
	}

	if r.Status != from {
		return &apperror.ValidationError{
			Entity: "receipt",
			ID:     id.String(),
			Field:  "status",
			Reason: fmt.Sprintf("is %s, expected %s", r.Status, from),
		}
	}

	ok, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if !ok {
		return &apperror.ValidationError{Entity: "receipt", ID: id.String(), Field: "status", Reason: "changed concurrently"}
	}

	return nil
}

func newReceipt(p CreateParams) *Receipt {
	return &Receipt{
		ExternalID:  p.ExternalID,
		Amount:      p.Amount,
		Currency:    strings.ToUpper(p.Currency),
		Date:        period.Day(p.Date),
		Vendor:      strings.TrimSpace(p.Vendor),
		Category:    p.Category,
		Direction:   p.direction(),
		Status:      StatusUnmatched,
		DocumentURL: p.DocumentURL,
	}
}
