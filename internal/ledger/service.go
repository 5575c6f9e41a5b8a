package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	// Begin opens a unit of work that holds a cross-process lock on each id
	// until it commits or rolls back.
	Begin(ctx context.Context, lockIDs []uuid.UUID) (Tx, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*MatchRecord, error)
	ListMatches(ctx context.Context, filter ListFilter) ([]*MatchRecord, error)
	// UpsertReview creates the pending item for the transaction or refreshes
	// the existing one.
	UpsertReview(ctx context.Context, item *ReviewItem) error
	GetReview(ctx context.Context, id uuid.UUID) (*ReviewItem, error)
	ListReviews(ctx context.Context, status *ReviewStatus) ([]*ReviewItem, error)
	UpdateReviewStatus(ctx context.Context, id uuid.UUID, from, to ReviewStatus) (bool, error)
	// SetPostStatus records the outcome of the latest posting attempt.
	SetPostStatus(ctx context.Context, id uuid.UUID, postedAt *time.Time, postErr string) error
	MatchStats(ctx context.Context) (*Stats, error)
}

// Tx is the locked unit of work behind Commit and Reverse.
type Tx interface {
	// ActiveMatches returns active records involving either id.
	ActiveMatches(ctx context.Context, transactionID, receiptID uuid.UUID) ([]*MatchRecord, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*MatchRecord, error)
	TransactionStatus(ctx context.Context, id uuid.UUID) (transaction.Status, error)
	ReceiptStatus(ctx context.Context, id uuid.UUID) (receipt.Status, error)
	InsertMatch(ctx context.Context, m *MatchRecord) error
	MarkReversed(ctx context.Context, id uuid.UUID, at time.Time) error
	// Link flips both sides to matched and points them at m.
	Link(ctx context.Context, m *MatchRecord) error
	// Unlink returns both sides to unmatched.
	Unlink(ctx context.Context, m *MatchRecord) error
	CloseReviews(ctx context.Context, transactionID uuid.UUID, status ReviewStatus) error
	Commit() error
	Rollback() error
}

type ListFilter struct {
	ActiveOnly bool
	// Unposted keeps active automatic matches without a successful posting.
	Unposted      bool
	TransactionID *uuid.UUID
	ReceiptID     *uuid.UUID
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

type Service struct {
	repo   Repository
	locks  *keyedMutex
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		locks:  newKeyedMutex(),
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CommitRequest struct {
	TransactionID uuid.UUID
	ReceiptID     uuid.UUID
	Score         float64
	Tier          Tier
	Source        Source
	Note          string
}

// Commit pairs a transaction with a receipt. Committing the pair that is
// already active returns that record with created=false.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (*MatchRecord, bool, error) {
	if req.TransactionID == uuid.Nil || req.ReceiptID == uuid.Nil {
		return nil, false, &apperror.ValidationError{Entity: "match", Field: "ids", Reason: "transaction and receipt are required"}
	}

	unlock := s.locks.Lock(req.TransactionID, req.ReceiptID)
	defer unlock()

	tx, err := s.repo.Begin(ctx, []uuid.UUID{req.TransactionID, req.ReceiptID})
	if err != nil {
		return nil, false, fmt.Errorf("beginning commit: %w", err)
	}
	defer tx.Rollback()

	m, created, err := s.commit(ctx, tx, req)
	if err != nil || !created {
		return m, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing match: %w", err)
	}

	s.logger.Info("match committed",
		"match_id", m.ID,
		"transaction_id", m.TransactionID,
		"receipt_id", m.ReceiptID,
		"tier", m.Tier,
		"source", m.Source,
	)

	return m, true, nil
}

func (s *Service) commit(ctx context.Context, tx Tx, req CommitRequest) (*MatchRecord, bool, error) {
	active, err := tx.ActiveMatches(ctx, req.TransactionID, req.ReceiptID)
	if err != nil {
		return nil, false, fmt.Errorf("loading active matches: %w", err)
	}

	for _, a := range active {
		if a.TransactionID == req.TransactionID && a.ReceiptID == req.ReceiptID {
			return a, false, nil
		}
	}

	if len(active) > 0 {
		return nil, false, &apperror.ConflictError{
			TransactionID: req.TransactionID,
			ReceiptID:     req.ReceiptID,
			ExistingID:    active[0].ID,
		}
	}

	txStatus, err := tx.TransactionStatus(ctx, req.TransactionID)
	if err != nil {
		return nil, false, err
	}

	if txStatus != transaction.StatusUnmatched {
		return nil, false, &apperror.ValidationError{
			Entity: "transaction", ID: req.TransactionID.String(), Field: "status", Reason: fmt.Sprintf("is %s", txStatus),
		}
	}

	rStatus, err := tx.ReceiptStatus(ctx, req.ReceiptID)
	if err != nil {
		return nil, false, err
	}

	if rStatus != receipt.StatusUnmatched {
		return nil, false, &apperror.ValidationError{
			Entity: "receipt", ID: req.ReceiptID.String(), Field: "status", Reason: fmt.Sprintf("is %s", rStatus),
		}
	}

	m := &MatchRecord{
		ID:            uuid.New(),
		TransactionID: req.TransactionID,
		ReceiptID:     req.ReceiptID,
		Score:         req.Score,
		Tier:          req.Tier,
		Source:        req.Source,
		Note:          req.Note,
		CreatedAt:     s.now().UTC(),
	}

	if err := tx.InsertMatch(ctx, m); err != nil {
		return nil, false, fmt.Errorf("inserting match: %w", err)
	}

	if err := tx.Link(ctx, m); err != nil {
		return nil, false, fmt.Errorf("linking entities: %w", err)
	}

	if err := tx.CloseReviews(ctx, req.TransactionID, ReviewConfirmed); err != nil {
		return nil, false, fmt.Errorf("closing reviews: %w", err)
	}

	return m, true, nil
}

// Reverse deactivates a match and returns both sides to unmatched. A later
// Commit of the same pair creates a new record.
func (s *Service) Reverse(ctx context.Context, id uuid.UUID) (*MatchRecord, error) {
	m, err := s.repo.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	if m.Reversed {
		return nil, apperror.NotFound("active match", id)
	}

	unlock := s.locks.Lock(m.TransactionID, m.ReceiptID)
	defer unlock()

	tx, err := s.repo.Begin(ctx, []uuid.UUID{m.TransactionID, m.ReceiptID})
	if err != nil {
		return nil, fmt.Errorf("beginning reverse: %w", err)
	}
	defer tx.Rollback()

	cur, err := tx.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	if cur.Reversed {
		return nil, apperror.NotFound("active match", id)
	}

	at := s.now().UTC()

	if err := tx.MarkReversed(ctx, id, at); err != nil {
		return nil, fmt.Errorf("marking reversed: %w", err)
	}

	if err := tx.Unlink(ctx, cur); err != nil {
		return nil, fmt.Errorf("unlinking entities: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing reverse: %w", err)
	}

	cur.Reversed = true
	cur.ReversedAt = &at

	s.logger.Info("match reversed", "match_id", id, "transaction_id", cur.TransactionID, "receipt_id", cur.ReceiptID)

	return cur, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MatchRecord, error) {
	return s.repo.GetMatch(ctx, id)
}

func (s *Service) ListMatches(ctx context.Context, filter ListFilter) ([]*MatchRecord, error) {
	return s.repo.ListMatches(ctx, filter)
}

// ActiveForTransaction returns the transaction's active match or a NotFoundError.
func (s *Service) ActiveForTransaction(ctx context.Context, transactionID uuid.UUID) (*MatchRecord, error) {
	ms, err := s.repo.ListMatches(ctx, ListFilter{ActiveOnly: true, TransactionID: &transactionID})
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}

	if len(ms) == 0 {
		return nil, apperror.NotFound("active match for transaction", transactionID)
	}

	return ms[0], nil
}

// MarkPosted records that the external ledger accepted the match.
func (s *Service) MarkPosted(ctx context.Context, id uuid.UUID) error {
	at := s.now().UTC()

	if err := s.repo.SetPostStatus(ctx, id, &at, ""); err != nil {
		return fmt.Errorf("marking match posted: %w", err)
	}

	return nil
}

// MarkPostFailed keeps the match queued for posting and stores why the last
// attempt failed.
func (s *Service) MarkPostFailed(ctx context.Context, id uuid.UUID, cause error) error {
	if err := s.repo.SetPostStatus(ctx, id, nil, cause.Error()); err != nil {
		return fmt.Errorf("marking match post failure: %w", err)
	}

	return nil
}

// Unposted lists active automatic matches still waiting for the external
// ledger, oldest first.
func (s *Service) Unposted(ctx context.Context) ([]*MatchRecord, error) {
	return s.repo.ListMatches(ctx, ListFilter{ActiveOnly: true, Unposted: true})
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st, err := s.repo.MatchStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}

	return st, nil
}

type ReviewRequest struct {
	TransactionID      uuid.UUID
	SuggestedReceiptID *uuid.UUID
	CandidateIDs       []uuid.UUID
	Score              float64
	Reason             string
}

// RecordReview queues the transaction for a human, replacing any pending
// item it already has.
func (s *Service) RecordReview(ctx context.Context, req ReviewRequest) (*ReviewItem, error) {
	item := &ReviewItem{
		ID:                 uuid.New(),
		TransactionID:      req.TransactionID,
		SuggestedReceiptID: req.SuggestedReceiptID,
		CandidateIDs:       req.CandidateIDs,
		Score:              req.Score,
		Reason:             req.Reason,
		Status:             ReviewPending,
		CreatedAt:          s.now().UTC(),
	}

	if err := s.repo.UpsertReview(ctx, item); err != nil {
		return nil, fmt.Errorf("recording review: %w", err)
	}

	return item, nil
}

func (s *Service) GetReview(ctx context.Context, id uuid.UUID) (*ReviewItem, error) {
	return s.repo.GetReview(ctx, id)
}

func (s *Service) ListReviews(ctx context.Context, status *ReviewStatus) ([]*ReviewItem, error) {
	return s.repo.ListReviews(ctx, status)
}

func (s *Service) DismissReview(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.UpdateReviewStatus(ctx, id, ReviewPending, ReviewDismissed)
	if err != nil {
		return fmt.Errorf("dismissing review: %w", err)
	}

	if ok {
		return nil
	}

	item, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return err
	}

	return &apperror.ValidationError{Entity: "review", ID: id.String(), Field: "status", Reason: fmt.Sprintf("is %s", item.Status)}
}

type ConfirmRequest struct {
	ReviewID  uuid.UUID
	ReceiptID uuid.UUID
	Note      string
}

// Confirm commits a human's choice for a pending review.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*MatchRecord, *ReviewItem, error) {
	item, err := s.repo.GetReview(ctx, req.ReviewID)
	if err != nil {
		return nil, nil, err
	}

	if item.Status != ReviewPending {
		return nil, nil, &apperror.ValidationError{
			Entity: "review", ID: item.ID.String(), Field: "status", Reason: fmt.Sprintf("is %s", item.Status),
		}
	}

	if !item.Offers(req.ReceiptID) {
		return nil, nil, &apperror.ValidationError{
			Entity: "review", ID: item.ID.String(), Field: "receipt_id", Reason: "is not one of the candidates",
		}
	}

	m, _, err := s.Commit(ctx, CommitRequest{
		TransactionID: item.TransactionID,
		ReceiptID:     req.ReceiptID,
		Score:         item.Score,
		Tier:          TierHumanConfirmed,
		Source:        SourceManual,
		Note:          req.Note,
	})
	if err != nil {
		var conflict *apperror.ConflictError
		if errors.As(err, &conflict) {
			s.logger.Warn("review confirmation conflicts with active match",
				"review_id", item.ID, "match_id", conflict.ExistingID)
		}

		return nil, nil, err
	}

	item.Status = ReviewConfirmed

	return m, item, nil
}
