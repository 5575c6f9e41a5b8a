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

type fakeLedger struct {
	records  []*ledger.MatchRecord
	filters  []ledger.ListFilter
	reversed []uuid.UUID
}

func (f *fakeLedger) ListMatches(_ context.Context, filter ledger.ListFilter) ([]*ledger.MatchRecord, error) {
	f.filters = append(f.filters, filter)
	return f.records, nil
}

func (f *fakeLedger) Reverse(_ context.Context, id uuid.UUID) (*ledger.MatchRecord, error) {
	f.reversed = append(f.reversed, id)
	return &ledger.MatchRecord{ID: id, Reversed: true}, nil
}

func TestMatchesModel_LoadAndReverse(t *testing.T) {
	tx := &transaction.Transaction{ID: uuid.New(), Amount: 4500, Currency: "EUR", Date: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), Counterparty: "SPOTIFY", Direction: transaction.DirectionOutgoing}
	rc := &receipt.Receipt{ID: uuid.New(), Vendor: "Spotify AB"}
	rec := &ledger.MatchRecord{ID: uuid.New(), TransactionID: tx.ID, ReceiptID: rc.ID, Score: 0.97, Tier: ledger.TierAuto}

	l := &fakeLedger{records: []*ledger.MatchRecord{rec}}
	m := NewMatchesModel(l, txGetter{tx.ID: tx}, receiptGetter{rc.ID: rc})

	next, _ := m.Update(m.Init()())
	m = next.(MatchesModel)

	require.Len(t, m.rows, 1)
	assert.True(t, l.filters[0].ActiveOnly)
	assert.Contains(t, m.View(), "SPOTIFY")

	next, cmd := m.Update(keyMsg("x"))
	m = next.(MatchesModel)
	require.NotNil(t, cmd)
	assert.Equal(t, matchesStateConfirm, m.state)

	*m.confirmReverse = true
	next, cmd = m.Update(m.reverseCmd(rec.ID)())
	m = next.(MatchesModel)

	assert.Equal(t, []uuid.UUID{rec.ID}, l.reversed)
	assert.Equal(t, matchesStateBrowse, m.state)
	assert.Contains(t, m.status, "Reversed match")
	require.NotNil(t, cmd, "list reloads after reversing")
}

func TestMatchesModel_ApplyFilter(t *testing.T) {
	m := NewMatchesModel(&fakeLedger{}, txGetter{}, receiptGetter{})
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	m.showReversed = true
	m.dateFilterIdx = 2
	m.applyFilter(now)

	assert.False(t, m.filter.ActiveOnly)
	require.NotNil(t, m.filter.CreatedFrom)
	assert.Equal(t, "2024-02-01", FormatDate(*m.filter.CreatedFrom))
	assert.Equal(t, "2024-02-29", FormatDate(*m.filter.CreatedTo))

	m.dateFilterIdx = 0
	m.applyFilter(now)
	assert.Nil(t, m.filter.CreatedFrom)
}
