package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
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

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const matchColumns = `
	id, transaction_id, receipt_id, score, tier, source, note, created_at, reversed, reversed_at,
	posted_at, post_error
`

func scanMatch(s scanner) (*ledger.MatchRecord, error) {
	var m ledger.MatchRecord

	var tier, source string

	var reversedAt, postedAt sql.NullTime

	if err := s.Scan(
		&m.ID, &m.TransactionID, &m.ReceiptID, &m.Score, &tier, &source, &m.Note, &m.CreatedAt, &m.Reversed, &reversedAt,
		&postedAt, &m.PostError,
	); err != nil {
		return nil, err
	}

	m.Tier = ledger.Tier(tier)
	m.Source = ledger.Source(source)

	if reversedAt.Valid {
		m.ReversedAt = &reversedAt.Time
	}

	if postedAt.Valid {
		m.PostedAt = &postedAt.Time
	}

	return &m, nil
}

func queryMatches(ctx context.Context, q querier, query string, args ...any) ([]*ledger.MatchRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var out []*ledger.MatchRecord

	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}

	return out, nil
}

func getMatch(ctx context.Context, q querier, id uuid.UUID, lock bool) (*ledger.MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	m, err := scanMatch(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("match", id)
		}

		return nil, fmt.Errorf("getting match: %w", err)
	}

	return m, nil
}

func (s *Store) GetMatch(ctx context.Context, id uuid.UUID) (*ledger.MatchRecord, error) {
	return getMatch(ctx, s.db, id, false)
}

func (s *Store) ListMatches(ctx context.Context, filter ledger.ListFilter) ([]*ledger.MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.ActiveOnly {
		query += " AND NOT reversed"
	}

	if filter.Unposted {
		query += fmt.Sprintf(" AND NOT reversed AND tier = $%d AND posted_at IS NULL", argIdx)

		args = append(args, ledger.TierAuto)
		argIdx++
	}

	if filter.TransactionID != nil {
		query += fmt.Sprintf(" AND transaction_id = $%d", argIdx)

		args = append(args, *filter.TransactionID)
		argIdx++
	}

	if filter.ReceiptID != nil {
		query += fmt.Sprintf(" AND receipt_id = $%d", argIdx)

		args = append(args, *filter.ReceiptID)
		argIdx++
	}

	if filter.CreatedFrom != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)

		args = append(args, *filter.CreatedFrom)
		argIdx++
	}

	if filter.CreatedTo != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)

		args = append(args, *filter.CreatedTo)
	}

	query += " ORDER BY created_at ASC, id ASC"

	return queryMatches(ctx, s.db, query, args...)
}

func (s *Store) SetPostStatus(ctx context.Context, id uuid.UUID, postedAt *time.Time, postErr string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE matches SET posted_at = $1, post_error = $2 WHERE id = $3`,
		postedAt, postErr, id,
	)
	if err != nil {
		return fmt.Errorf("updating post status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return apperror.NotFound("match", id)
	}

	return nil
}

func (s *Store) MatchStats(ctx context.Context) (*ledger.Stats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT reversed),
			COUNT(*) FILTER (WHERE reversed),
			COUNT(*) FILTER (WHERE NOT reversed AND tier = $1),
			COUNT(*) FILTER (WHERE NOT reversed AND tier = $2),
			COUNT(*) FILTER (WHERE NOT reversed AND posted_at IS NOT NULL),
			COUNT(*) FILTER (WHERE NOT reversed AND tier = $1 AND posted_at IS NULL AND post_error <> ''),
			COUNT(*) FILTER (WHERE NOT reversed AND tier = $1 AND posted_at IS NULL),
			(SELECT COUNT(*) FROM reviews WHERE status = 'pending')
		FROM matches
	`

	var st ledger.Stats

	err := s.db.QueryRowContext(ctx, query, ledger.TierAuto, ledger.TierHumanConfirmed).Scan(
		&st.ActiveMatches,
		&st.ReversedMatches,
		&st.AutoMatches,
		&st.HumanConfirmed,
		&st.Posted,
		&st.PostFailed,
		&st.AwaitingPost,
		&st.PendingReviews,
	)
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}

	return &st, nil
}

const reviewColumns = `
	id, transaction_id, suggested_receipt_id, candidate_ids, score, reason, status, created_at, updated_at
`

func scanReview(s scanner) (*ledger.ReviewItem, error) {
	var r ledger.ReviewItem

	var candidates []byte

	var status string

	var updatedAt sql.NullTime

	if err := s.Scan(
		&r.ID, &r.TransactionID, &r.SuggestedReceiptID, &candidates, &r.Score, &r.Reason, &status, &r.CreatedAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(candidates, &r.CandidateIDs); err != nil {
		return nil, fmt.Errorf("decoding candidate ids: %w", err)
	}

	r.Status = ledger.ReviewStatus(status)

	if updatedAt.Valid {
		r.UpdatedAt = &updatedAt.Time
	}

	return &r, nil
}

// UpsertReview relies on the partial unique index over pending reviews so a
// transaction never has two open items.
func (s *Store) UpsertReview(ctx context.Context, item *ledger.ReviewItem) error {
	candidates, err := json.Marshal(item.CandidateIDs)
	if err != nil {
		return fmt.Errorf("encoding candidate ids: %w", err)
	}

	query := `
		INSERT INTO reviews (id, transaction_id, suggested_receipt_id, candidate_ids, score, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (transaction_id) WHERE status = 'pending'
		DO UPDATE SET
			suggested_receipt_id = EXCLUDED.suggested_receipt_id,
			candidate_ids = EXCLUDED.candidate_ids,
			score = EXCLUDED.score,
			reason = EXCLUDED.reason,
			updated_at = NOW()
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		item.ID,
		item.TransactionID,
		item.SuggestedReceiptID,
		candidates,
		item.Score,
		item.Reason,
		item.Status,
		item.CreatedAt,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting review: %w", err)
	}

	return nil
}

func (s *Store) GetReview(ctx context.Context, id uuid.UUID) (*ledger.ReviewItem, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	r, err := scanReview(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("review", id)
		}

		return nil, fmt.Errorf("getting review: %w", err)
	}

	return r, nil
}

func (s *Store) ListReviews(ctx context.Context, status *ledger.ReviewStatus) ([]*ledger.ReviewItem, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews`

	var args []any

	if status != nil {
		query += ` WHERE status = $1`

		args = append(args, *status)
	}

	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var out []*ledger.ReviewItem

	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateReviewStatus(ctx context.Context, id uuid.UUID, from, to ledger.ReviewStatus) (bool, error) {
	query := `
		UPDATE reviews
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("updating review status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n == 1, nil
}

func entityLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("ledger"))
	h.Write([]byte{0})
	h.Write(id[:])

	return int64(h.Sum64())
}

type ledgerTx struct {
	tx *sql.Tx
}

// Begin takes a transaction-scoped advisory lock per entity, in a fixed
// order, so processes committing overlapping pairs serialise.
func (s *Store) Begin(ctx context.Context, lockIDs []uuid.UUID) (ledger.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	for _, id := range ledger.SortIDs(lockIDs) {
		if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", entityLockKey(id)); err != nil {
			dbTx.Rollback()
			return nil, fmt.Errorf("acquiring lock for %s: %w", id, err)
		}
	}

	return &ledgerTx{tx: dbTx}, nil
}

func (t *ledgerTx) Commit() error   { return t.tx.Commit() }
func (t *ledgerTx) Rollback() error { return t.tx.Rollback() }

func (t *ledgerTx) ActiveMatches(ctx context.Context, transactionID, receiptID uuid.UUID) ([]*ledger.MatchRecord, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE NOT reversed AND (transaction_id = $1 OR receipt_id = $2)
		ORDER BY created_at ASC`

	return queryMatches(ctx, t.tx, query, transactionID, receiptID)
}

func (t *ledgerTx) GetMatch(ctx context.Context, id uuid.UUID) (*ledger.MatchRecord, error) {
	return getMatch(ctx, t.tx, id, true)
}

func (t *ledgerTx) TransactionStatus(ctx context.Context, id uuid.UUID) (transaction.Status, error) {
	var status string

	err := t.tx.QueryRowContext(ctx, `SELECT status FROM transactions WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.NotFound("transaction", id)
		}

		return "", fmt.Errorf("reading transaction status: %w", err)
	}

	return transaction.Status(status), nil
}

func (t *ledgerTx) ReceiptStatus(ctx context.Context, id uuid.UUID) (receipt.Status, error) {
	var status string

	err := t.tx.QueryRowContext(ctx, `SELECT status FROM receipts WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.NotFound("receipt", id)
		}

		return "", fmt.Errorf("reading receipt status: %w", err)
	}

	return receipt.Status(status), nil
}

func (t *ledgerTx) InsertMatch(ctx context.Context, m *ledger.MatchRecord) error {
	query := `
		INSERT INTO matches (id, transaction_id, receipt_id, score, tier, source, note, created_at, reversed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
	`

	_, err := t.tx.ExecContext(ctx, query,
		m.ID, m.TransactionID, m.ReceiptID, m.Score, m.Tier, m.Source, m.Note, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}

	return nil
}

func (t *ledgerTx) MarkReversed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE matches SET reversed = TRUE, reversed_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("marking match reversed: %w", err)
	}

	return nil
}

func (t *ledgerTx) Link(ctx context.Context, m *ledger.MatchRecord) error {
	return t.setStatus(ctx, m, string(transaction.StatusMatched), &m.ID)
}

func (t *ledgerTx) Unlink(ctx context.Context, m *ledger.MatchRecord) error {
	return t.setStatus(ctx, m, string(transaction.StatusUnmatched), nil)
}

func (t *ledgerTx) setStatus(ctx context.Context, m *ledger.MatchRecord, status string, matchID *uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE transactions SET status = $1, match_id = $2, updated_at = NOW() WHERE id = $3`,
		status, matchID, m.TransactionID,
	); err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx,
		`UPDATE receipts SET status = $1, match_id = $2, updated_at = NOW() WHERE id = $3`,
		status, matchID, m.ReceiptID,
	); err != nil {
		return fmt.Errorf("updating receipt: %w", err)
	}

	return nil
}

func (t *ledgerTx) CloseReviews(ctx context.Context, transactionID uuid.UUID, status ledger.ReviewStatus) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE reviews SET status = $1, updated_at = NOW() WHERE transaction_id = $2 AND status = 'pending'`,
		status, transactionID,
	)
	if err != nil {
		return fmt.Errorf("closing reviews: %w", err)
	}

	return nil
}
