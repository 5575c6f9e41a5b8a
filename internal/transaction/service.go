package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	// UpdateStatus moves a transaction from one status to another and reports
	// whether a row in the expected status was found.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ExternalID   string
	Amount       int64
	Currency     string
	Date         time.Time
	Counterparty string
	Description  string
	Direction    Direction
	Category     *string
}

func (p CreateParams) Validate() error {
	return validate(p.ExternalID, p.Amount, p.Currency, p.Date, p.Direction)
}

type ListFilter struct {
	Status    *Status
	Direction *Direction
	Currency  *string
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tx := newTransaction(params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// ListUnmatchedTransactions returns every UNMATCHED transaction dated within r.
func (s *Service) ListUnmatchedTransactions(ctx context.Context, r period.Range) ([]*Transaction, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	txs, err := s.repo.ListTransactions(ctx, ListFilter{
		Status:    new(StatusUnmatched),
		StartDate: new(r.Start),
		EndDate:   new(r.End),
	})
	if err != nil {
		return nil, fmt.Errorf("listing unmatched transactions: %w", err)
	}

	return txs, nil
}

// Ignore excludes an unmatched transaction from matching, e.g. an internal transfer.
func (s *Service) Ignore(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusUnmatched, StatusIgnored)
}

func (s *Service) Unignore(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusIgnored, StatusUnmatched)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, from, to Status) error {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if tx.Status != from {
		return &apperror.ValidationError{
			Entity: "transaction",
			ID:     id.String(),
			Field:  "status",
			Reason: fmt.Sprintf("is %s, expected %s", tx.Status, from),
		}
	}

	ok, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if !ok {
		return &apperror.ValidationError{Entity: "transaction", ID: id.String(), Field: "status", Reason: "changed concurrently"}
	}

	return nil
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
	Invalid   []InvalidRow
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type InvalidRow struct {
	Index int
	Err   error
}

// ImportBatch stores the parsed rows unless some of them already exist. When
// duplicates are found nothing is written and the caller gets the split
// between new rows and conflicts to confirm with CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	valid, invalid := splitValid(params)
	if len(valid) == 0 {
		return &ImportResult{Invalid: invalid}, nil
	}

	minDate, maxDate := dateRange(valid)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[DupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[KeyOf(d)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range valid {
		if existing, found := lookup[p.Key()]; found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts, Invalid: invalid}, nil
	}

	txs := paramsToTransactions(newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs, Invalid: invalid}, nil
}

// CreateBatch stores rows without duplicate detection, after the user confirmed them.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for _, p := range params {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs := paramsToTransactions(params)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

// DupKey identifies a bank row across repeated imports of overlapping statements.
type DupKey struct {
	Date        string
	Amount      int64
	Direction   Direction
	Description string
}

func (p CreateParams) Key() DupKey {
	return DupKey{
		Date:        p.Date.Format(time.DateOnly),
		Amount:      p.Amount,
		Direction:   p.Direction,
		Description: strings.TrimSpace(p.Description),
	}
}

func KeyOf(tx *Transaction) DupKey {
	return DupKey{
		Date:        tx.Date.Format(time.DateOnly),
		Amount:      tx.Amount,
		Direction:   tx.Direction,
		Description: strings.TrimSpace(tx.Description),
	}
}

func splitValid(params []CreateParams) ([]CreateParams, []InvalidRow) {
	valid := make([]CreateParams, 0, len(params))

	var invalid []InvalidRow

	for i, p := range params {
		if err := p.Validate(); err != nil {
			invalid = append(invalid, InvalidRow{Index: i, Err: err})
			continue
		}

		valid = append(valid, p)
	}

	return valid, invalid
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func newTransaction(p CreateParams) *Transaction {
	counterparty := p.Counterparty
	if counterparty == "" {
		counterparty = p.Description
	}

	return &Transaction{
		ExternalID:   p.ExternalID,
		Amount:       p.Amount,
		Currency:     strings.ToUpper(p.Currency),
		Date:         period.Day(p.Date),
		Counterparty: counterparty,
		Description:  p.Description,
		Direction:    p.Direction,
		Category:     p.Category,
		Status:       StatusUnmatched,
	}
}

func paramsToTransactions(params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(p)
	}

	return txs
}
