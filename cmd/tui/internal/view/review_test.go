package view

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type fakeStore struct {
	items     []*ledger.ReviewItem
	txs       map[uuid.UUID]*transaction.Transaction
	receipts  map[uuid.UUID]*receipt.Receipt
	confirmed map[uuid.UUID]uuid.UUID
	dismissed []uuid.UUID
}

func (f *fakeStore) ListReviews(context.Context, *ledger.ReviewStatus) ([]*ledger.ReviewItem, error) {
	return f.items, nil
}

func (f *fakeStore) DismissReview(_ context.Context, id uuid.UUID) error {
	f.dismissed = append(f.dismissed, id)
	return nil
}

func (f *fakeStore) ConfirmReview(_ context.Context, reviewID, receiptID uuid.UUID, _ string) (*ledger.MatchRecord, error) {
	f.confirmed[reviewID] = receiptID
	return &ledger.MatchRecord{ID: uuid.New(), ReceiptID: receiptID}, nil
}

type txGetter map[uuid.UUID]*transaction.Transaction

func (g txGetter) Get(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return g[id], nil
}

type receiptGetter map[uuid.UUID]*receipt.Receipt

func (g receiptGetter) Get(_ context.Context, id uuid.UUID) (*receipt.Receipt, error) {
	return g[id], nil
}

func newReviewFixture() (*fakeStore, ReviewModel) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	tx := &transaction.Transaction{ID: uuid.New(), Amount: 12990, Currency: "NOK", Date: day, Counterparty: "REMA 1000", Direction: transaction.DirectionOutgoing}
	a := &receipt.Receipt{ID: uuid.New(), Amount: 12990, Currency: "NOK", Date: day, Vendor: "Rema", Status: receipt.StatusUnmatched}
	b := &receipt.Receipt{ID: uuid.New(), Amount: 12990, Currency: "NOK", Date: day, Vendor: "Rema 1000", Status: receipt.StatusUnmatched}
	gone := &receipt.Receipt{ID: uuid.New(), Vendor: "Taken", Status: receipt.StatusMatched}

	f := &fakeStore{
		items: []*ledger.ReviewItem{{
			ID:                 uuid.New(),
			TransactionID:      tx.ID,
			SuggestedReceiptID: &b.ID,
			CandidateIDs:       []uuid.UUID{a.ID, b.ID, gone.ID},
			Score:              0.92,
			Reason:             "tie",
			Status:             ledger.ReviewPending,
		}},
		confirmed: map[uuid.UUID]uuid.UUID{},
	}

	m := NewReviewModel(f, f, txGetter{tx.ID: tx}, receiptGetter{a.ID: a, b.ID: b, gone.ID: gone})

	return f, m
}

func TestReviewModel_ConfirmSuggested(t *testing.T) {
	f, m := newReviewFixture()

	next, _ := m.Update(m.Init()())
	m = next.(ReviewModel)

	require.NotNil(t, m.current)
	assert.Len(t, m.current.candidates, 2, "matched receipts are dropped")
	assert.Equal(t, 1, m.cursor, "cursor starts on the suggestion")
	assert.Contains(t, m.View(), "REMA 1000")

	_, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(ReviewModel)

	assert.Equal(t, *f.items[0].SuggestedReceiptID, f.confirmed[f.items[0].ID])
	assert.Nil(t, m.current)
	assert.Contains(t, m.View(), "1 confirmed, 0 dismissed")
}

func TestReviewModel_PickOtherAndDismiss(t *testing.T) {
	f, m := newReviewFixture()

	next, _ := m.Update(m.Init()())
	m = next.(ReviewModel)

	next, _ = m.Update(keyMsg("up"))
	m = next.(ReviewModel)
	assert.Equal(t, 0, m.cursor)

	_, cmd := m.Update(keyMsg("ctrl+d"))
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(ReviewModel)

	assert.Equal(t, []uuid.UUID{f.items[0].ID}, f.dismissed)
	assert.Empty(t, f.confirmed)
	assert.Contains(t, m.View(), "0 confirmed, 1 dismissed")
}
