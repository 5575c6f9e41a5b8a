package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(s scanner) (*receipt.Receipt, error) {
	var r receipt.Receipt

	var externalID, category, documentURL sql.NullString

	var directionStr, statusStr string

	if err := s.Scan(
		&r.ID, &externalID, &r.Amount, &r.Currency, &r.Date, &r.Vendor, &category,
		&directionStr, &statusStr, &r.MatchID, &documentURL, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.ExternalID = externalID.String
	r.DocumentURL = documentURL.String
	r.Direction = transaction.Direction(directionStr)
	r.Status = receipt.Status(statusStr)

	if category.Valid {
		r.Category = &category.String
	}

	return &r, nil
}

const selectColumns = `
	id, external_id, amount, currency, date, vendor, category,
	direction, status, match_id, document_url, created_at, updated_at
`

const insertColumns = `(external_id, amount, currency, date, vendor, category, direction, status, document_url, created_at, updated_at)`

const insertValues = `VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NOW(), NOW())`

func args(r *receipt.Receipt) []any {
	return []any{r.ExternalID, r.Amount, r.Currency, r.Date, r.Vendor, r.Category, r.Direction, r.Status, r.DocumentURL}
}

func (s *Store) CreateReceipt(ctx context.Context, r *receipt.Receipt) error {
	query := `INSERT INTO receipts ` + insertColumns + ` ` + insertValues + ` RETURNING id, created_at, updated_at`

	if err := s.db.QueryRowContext(ctx, query, args(r)...).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return fmt.Errorf("creating receipt: %w", err)
	}

	return nil
}

// InsertReceipts writes the batch in one transaction. Rows whose external id
// already exists are left untouched and omitted from the result.
func (s *Store) InsertReceipts(ctx context.Context, rs []*receipt.Receipt) ([]*receipt.Receipt, error) {
	query := `INSERT INTO receipts ` + insertColumns + ` ` + insertValues + `
		ON CONFLICT (external_id) WHERE external_id IS NOT NULL DO NOTHING
		RETURNING id, created_at, updated_at`

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning receipt import: %w", err)
	}
	defer dbTx.Rollback()

	created := make([]*receipt.Receipt, 0, len(rs))

	for _, r := range rs {
		err := dbTx.QueryRowContext(ctx, query, args(r)...).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("inserting receipt %q: %w", r.ExternalID, err)
		}

		created = append(created, r)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing receipt import: %w", err)
	}

	return created, nil
}

func (s *Store) GetReceipt(ctx context.Context, id uuid.UUID) (*receipt.Receipt, error) {
	query := `SELECT ` + selectColumns + ` FROM receipts WHERE id = $1`

	r, err := scanReceipt(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("receipt", id)
		}

		return nil, fmt.Errorf("getting receipt: %w", err)
	}

	return r, nil
}

func (s *Store) ListReceipts(ctx context.Context, filter receipt.ListFilter) ([]*receipt.Receipt, error) {
	query := `SELECT ` + selectColumns + ` FROM receipts WHERE TRUE`

	var qargs []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		qargs = append(qargs, *filter.Status)
		argIdx++
	}

	if filter.Currency != nil {
		query += fmt.Sprintf(" AND currency = $%d", argIdx)

		qargs = append(qargs, *filter.Currency)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		qargs = append(qargs, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)

		qargs = append(qargs, *filter.EndDate)
	}

	query += " ORDER BY date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, qargs...)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	defer rows.Close()

	var rs []*receipt.Receipt

	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}

		rs = append(rs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating receipts: %w", err)
	}

	return rs, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to receipt.Status) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE receipts
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("updating status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n == 1, nil
}
