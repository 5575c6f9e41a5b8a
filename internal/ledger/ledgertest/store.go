// Package ledgertest provides an in-memory ledger.Repository for tests.
package ledgertest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// Store keeps ledger state in maps. An open Tx holds a store-wide writer
// lock, standing in for the database's advisory locks.
type Store struct {
	writer sync.Mutex

	mu           sync.Mutex
	matches      map[uuid.UUID]*ledger.MatchRecord
	order        []uuid.UUID
	transactions map[uuid.UUID]transaction.Status
	receipts     map[uuid.UUID]receipt.Status
	reviews      map[uuid.UUID]*ledger.ReviewItem
}

func NewStore() *Store {
	return &Store{
		matches:      make(map[uuid.UUID]*ledger.MatchRecord),
		transactions: make(map[uuid.UUID]transaction.Status),
		receipts:     make(map[uuid.UUID]receipt.Status),
		reviews:      make(map[uuid.UUID]*ledger.ReviewItem),
	}
}

func (s *Store) AddTransaction(id uuid.UUID, status transaction.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions[id] = status
}

func (s *Store) AddReceipt(id uuid.UUID, status receipt.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts[id] = status
}

func (s *Store) TransactionStatusOf(id uuid.UUID) transaction.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transactions[id]
}

func (s *Store) ReceiptStatusOf(id uuid.UUID) receipt.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.receipts[id]
}

// Matches returns every record, reversed ones included, in insertion order.
func (s *Store) Matches() []*ledger.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*ledger.MatchRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyMatch(s.matches[id]))
	}

	return out
}

func (s *Store) Begin(_ context.Context, _ []uuid.UUID) (ledger.Tx, error) {
	s.writer.Lock()
	return &memTx{s: s}, nil
}

func (s *Store) GetMatch(_ context.Context, id uuid.UUID) (*ledger.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getMatch(id)
}

func (s *Store) getMatch(id uuid.UUID) (*ledger.MatchRecord, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, apperror.NotFound("match", id)
	}

	return copyMatch(m), nil
}

func (s *Store) ListMatches(_ context.Context, f ledger.ListFilter) ([]*ledger.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*ledger.MatchRecord

	for _, id := range s.order {
		m := s.matches[id]

		switch {
		case f.ActiveOnly && m.Reversed:
			continue
		case f.Unposted && !m.NeedsPosting():
			continue
		case f.TransactionID != nil && *f.TransactionID != m.TransactionID:
			continue
		case f.ReceiptID != nil && *f.ReceiptID != m.ReceiptID:
			continue
		case f.CreatedFrom != nil && m.CreatedAt.Before(*f.CreatedFrom):
			continue
		case f.CreatedTo != nil && m.CreatedAt.After(*f.CreatedTo):
			continue
		}

		out = append(out, copyMatch(m))
	}

	return out, nil
}

func (s *Store) UpsertReview(_ context.Context, item *ledger.ReviewItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reviews {
		if existing.TransactionID == item.TransactionID && existing.Status == ledger.ReviewPending {
			item.ID = existing.ID
			item.CreatedAt = existing.CreatedAt
		}
	}

	s.reviews[item.ID] = copyReview(item)

	return nil
}

func (s *Store) GetReview(_ context.Context, id uuid.UUID) (*ledger.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review", id)
	}

	return copyReview(r), nil
}

func (s *Store) ListReviews(_ context.Context, status *ledger.ReviewStatus) ([]*ledger.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*ledger.ReviewItem

	for _, r := range s.reviews {
		if status == nil || r.Status == *status {
			out = append(out, copyReview(r))
		}
	}

	slices.SortFunc(out, func(a, b *ledger.ReviewItem) int { return a.CreatedAt.Compare(b.CreatedAt) })

	return out, nil
}

func (s *Store) UpdateReviewStatus(_ context.Context, id uuid.UUID, from, to ledger.ReviewStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok || r.Status != from {
		return false, nil
	}

	r.Status = to

	return true, nil
}

func (s *Store) SetPostStatus(_ context.Context, id uuid.UUID, postedAt *time.Time, postErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return apperror.NotFound("match", id)
	}

	m.PostedAt = postedAt
	m.PostError = postErr

	return nil
}

func (s *Store) MatchStats(_ context.Context) (*ledger.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st ledger.Stats

	for _, m := range s.matches {
		if m.Reversed {
			st.ReversedMatches++
			continue
		}

		st.ActiveMatches++

		switch m.Tier {
		case ledger.TierAuto:
			st.AutoMatches++
		case ledger.TierHumanConfirmed:
			st.HumanConfirmed++
		}

		if m.PostedAt != nil {
			st.Posted++
		}

		if m.NeedsPosting() {
			st.AwaitingPost++

			if m.PostError != "" {
				st.PostFailed++
			}
		}
	}

	for _, r := range s.reviews {
		if r.Status == ledger.ReviewPending {
			st.PendingReviews++
		}
	}

	return &st, nil
}

// memTx reads committed state and buffers writes until Commit.
type memTx struct {
	s       *Store
	pending []func()
	done    bool
}

func (t *memTx) ActiveMatches(_ context.Context, transactionID, receiptID uuid.UUID) ([]*ledger.MatchRecord, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var out []*ledger.MatchRecord

	for _, id := range t.s.order {
		m := t.s.matches[id]
		if !m.Reversed && (m.TransactionID == transactionID || m.ReceiptID == receiptID) {
			out = append(out, copyMatch(m))
		}
	}

	return out, nil
}

func (t *memTx) GetMatch(_ context.Context, id uuid.UUID) (*ledger.MatchRecord, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	return t.s.getMatch(id)
}

func (t *memTx) TransactionStatus(_ context.Context, id uuid.UUID) (transaction.Status, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	st, ok := t.s.transactions[id]
	if !ok {
		return "", apperror.NotFound("transaction", id)
	}

	return st, nil
}

func (t *memTx) ReceiptStatus(_ context.Context, id uuid.UUID) (receipt.Status, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	st, ok := t.s.receipts[id]
	if !ok {
		return "", apperror.NotFound("receipt", id)
	}

	return st, nil
}

func (t *memTx) InsertMatch(_ context.Context, m *ledger.MatchRecord) error {
	rec := copyMatch(m)

	t.pending = append(t.pending, func() {
		t.s.matches[rec.ID] = rec
		t.s.order = append(t.s.order, rec.ID)
	})

	return nil
}

func (t *memTx) MarkReversed(_ context.Context, id uuid.UUID, at time.Time) error {
	t.pending = append(t.pending, func() {
		m := t.s.matches[id]
		m.Reversed = true
		m.ReversedAt = &at
	})

	return nil
}

func (t *memTx) Link(_ context.Context, m *ledger.MatchRecord) error {
	txID, rID := m.TransactionID, m.ReceiptID

	t.pending = append(t.pending, func() {
		t.s.transactions[txID] = transaction.StatusMatched
		t.s.receipts[rID] = receipt.StatusMatched
	})

	return nil
}

func (t *memTx) Unlink(_ context.Context, m *ledger.MatchRecord) error {
	txID, rID := m.TransactionID, m.ReceiptID

	t.pending = append(t.pending, func() {
		t.s.transactions[txID] = transaction.StatusUnmatched
		t.s.receipts[rID] = receipt.StatusUnmatched
	})

	return nil
}

func (t *memTx) CloseReviews(_ context.Context, transactionID uuid.UUID, status ledger.ReviewStatus) error {
	t.pending = append(t.pending, func() {
		for _, r := range t.s.reviews {
			if r.TransactionID == transactionID && r.Status == ledger.ReviewPending {
				r.Status = status
			}
		}
	})

	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}

	t.s.mu.Lock()
	for _, apply := range t.pending {
		apply()
	}
	t.s.mu.Unlock()

	t.finish()

	return nil
}

func (t *memTx) Rollback() error {
	if !t.done {
		t.finish()
	}

	return nil
}

func (t *memTx) finish() {
	t.done = true
	t.s.writer.Unlock()
}

func copyMatch(m *ledger.MatchRecord) *ledger.MatchRecord {
	c := *m
	return &c
}

func copyReview(r *ledger.ReviewItem) *ledger.ReviewItem {
	c := *r
	c.CandidateIDs = slices.Clone(r.CandidateIDs)

	return &c
}
