package matching_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	matchingHandler "github.com/MrJamesThe3rd/receiptmatch/internal/http/matching"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger/ledgertest"
	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/reconcile"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type fixture struct {
	server   *httptest.Server
	store    *ledgertest.Store
	ledger   *ledger.Service
	txs      *reconcile.MockTransactionSource
	receipts *reconcile.MockReceiptSource
	aliases  *reconcile.MockAliases
	poster   *reconcile.MockPoster
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		store:    ledgertest.NewStore(),
		txs:      reconcile.NewMockTransactionSource(ctrl),
		receipts: reconcile.NewMockReceiptSource(ctrl),
		aliases:  reconcile.NewMockAliases(ctrl),
		poster:   reconcile.NewMockPoster(ctrl),
	}
	f.ledger = ledger.NewService(f.store)

	svc := reconcile.NewService(f.txs, f.receipts, f.aliases, f.ledger,
		escalation.NewRouter(escalation.DefaultConfig()), matching.DefaultConfig(), reconcile.WithPoster(f.poster))

	router := chi.NewRouter()
	router.Route("/matching", matchingHandler.NewHandler(svc, f.ledger).Routes)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)

	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func (f *fixture) pair() (*transaction.Transaction, *receipt.Receipt) {
	return f.pairWith(50000)
}

// pairWith registers a transaction of 499.00 NOK and a same-day receipt of
// receiptAmount minor units.
func (f *fixture) pairWith(receiptAmount int64) (*transaction.Transaction, *receipt.Receipt) {
	march10 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tx := &transaction.Transaction{
		ID: uuid.New(), Amount: 49900, Currency: "NOK", Date: march10, Counterparty: "RemaButikk",
		Direction: transaction.DirectionOutgoing, Status: transaction.StatusUnmatched,
	}
	rc := &receipt.Receipt{
		ID: uuid.New(), Amount: receiptAmount, Currency: "NOK", Date: march10, Vendor: "Rema 1000",
		Direction: transaction.DirectionOutgoing, Status: receipt.StatusUnmatched,
	}

	f.store.AddTransaction(tx.ID, tx.Status)
	f.store.AddReceipt(rc.ID, rc.Status)
	f.txs.EXPECT().Get(gomock.Any(), tx.ID).Return(tx, nil).AnyTimes()
	f.receipts.EXPECT().Get(gomock.Any(), rc.ID).Return(rc, nil).AnyTimes()

	return tx, rc
}

func TestHandler_ManualMatchAndReverse(t *testing.T) {
	f := newFixture(t)
	tx, rc := f.pair()
	f.aliases.EXPECT().Learn(gomock.Any(), "RemaButikk", "Rema 1000").Return(nil)

	body := `{"transaction_id":"` + tx.ID.String() + `","receipt_id":"` + rc.ID.String() + `","note":"checked"}`

	resp := f.do(t, http.MethodPost, "/matching/matches", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var m struct {
		ID     uuid.UUID `json:"id"`
		Tier   string    `json:"tier"`
		Source string    `json:"source"`
		Score  float64   `json:"score"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.Equal(t, "HUMAN_CONFIRMED", m.Tier)
	assert.Equal(t, "manual", m.Source)
	assert.InDelta(t, 1.0, m.Score, 1e-9)

	// Same pair again is not a new match.
	resp = f.do(t, http.MethodPost, "/matching/matches", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/matching/matches/"+m.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, transaction.StatusUnmatched, f.store.TransactionStatusOf(tx.ID))

	resp = f.do(t, http.MethodDelete, "/matching/matches/"+m.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_ManualMatchOutsideTolerance(t *testing.T) {
	f := newFixture(t)
	tx, rc := f.pairWith(53000)

	resp := f.do(t, http.MethodPost, "/matching/matches",
		`{"transaction_id":"`+tx.ID.String()+`","receipt_id":"`+rc.ID.String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.store.Matches())
}

func TestHandler_ManualMatchConflict(t *testing.T) {
	f := newFixture(t)
	tx, rc := f.pair()
	other, _ := f.pair()
	f.aliases.EXPECT().Learn(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	resp := f.do(t, http.MethodPost, "/matching/matches",
		`{"transaction_id":"`+tx.ID.String()+`","receipt_id":"`+rc.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/matching/matches",
		`{"transaction_id":"`+other.ID.String()+`","receipt_id":"`+rc.ID.String()+`"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandler_Reviews(t *testing.T) {
	f := newFixture(t)
	tx, rc := f.pair()
	_, outsider := f.pair()
	f.aliases.EXPECT().Learn(gomock.Any(), "RemaButikk", "Rema 1000").Return(nil)

	item, err := f.ledger.RecordReview(t.Context(), ledger.ReviewRequest{
		TransactionID:      tx.ID,
		SuggestedReceiptID: &rc.ID,
		CandidateIDs:       []uuid.UUID{rc.ID},
		Score:              0.81,
		Reason:             string(escalation.ReasonTie),
	})
	require.NoError(t, err)

	resp := f.do(t, http.MethodGet, "/matching/reviews", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reviews []struct {
		ID     uuid.UUID `json:"id"`
		Reason string    `json:"reason"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, item.ID, reviews[0].ID)
	assert.Equal(t, "tie", reviews[0].Reason)

	resp = f.do(t, http.MethodPost, "/matching/reviews/"+item.ID.String()+"/confirm", `{"receipt_id":"`+outsider.ID.String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/matching/reviews/"+item.ID.String()+"/confirm", `{"receipt_id":"`+rc.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, receipt.StatusMatched, f.store.ReceiptStatusOf(rc.ID))

	resp = f.do(t, http.MethodPost, "/matching/reviews/"+item.ID.String()+"/dismiss", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Sync(t *testing.T) {
	f := newFixture(t)

	march := period.New(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	f.txs.EXPECT().ListUnmatchedTransactions(gomock.Any(), march).Return(nil, nil)
	f.aliases.EXPECT().Snapshot(gomock.Any()).Return(nil, nil)

	resp := f.do(t, http.MethodPost, "/matching/sync", `{"start_date":"2024-03-01","end_date":"2024-03-31","dry_run":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		StartDate    string `json:"start_date"`
		DryRun       bool   `json:"dry_run"`
		Transactions int    `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, "2024-03-01", summary.StartDate)
	assert.True(t, summary.DryRun)
	assert.Zero(t, summary.Transactions)
}

func TestHandler_BadInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "Malformed match id", method: http.MethodGet, path: "/matching/matches/nope"},
		{name: "Malformed body", method: http.MethodPost, path: "/matching/matches", body: "{"},
		{name: "Inverted range", method: http.MethodPost, path: "/matching/sync", body: `{"start_date":"2024-03-31","end_date":"2024-03-01"}`},
		{name: "Bad date", method: http.MethodPost, path: "/matching/sync", body: `{"start_date":"March","end_date":"2024-03-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandler_PostingsRetryAndStatus(t *testing.T) {
	f := newFixture(t)
	tx, rc := f.pair()

	m, _, err := f.ledger.Commit(t.Context(), ledger.CommitRequest{
		TransactionID: tx.ID, ReceiptID: rc.ID, Score: 0.97, Tier: ledger.TierAuto, Source: ledger.SourceEngine,
	})
	require.NoError(t, err)

	gomock.InOrder(
		f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(errors.New("fiken: 503")),
		f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(nil),
	)

	type postSummary struct {
		Attempted int `json:"attempted"`
		Posted    int `json:"posted"`
		Failed    int `json:"failed"`
	}

	type status struct {
		Postings struct {
			Posted   int `json:"posted"`
			Failed   int `json:"failed"`
			Awaiting int `json:"awaiting"`
		} `json:"postings"`
	}

	resp := f.do(t, http.MethodPost, "/matching/postings/retry", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var first postSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
	assert.Equal(t, postSummary{Attempted: 1, Failed: 1}, first)

	resp = f.do(t, http.MethodGet, "/matching/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 1, st.Postings.Failed)
	assert.Equal(t, 1, st.Postings.Awaiting)

	resp = f.do(t, http.MethodPost, "/matching/postings/retry", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var second postSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.Equal(t, postSummary{Attempted: 1, Posted: 1}, second)

	resp = f.do(t, http.MethodGet, "/matching/matches/"+m.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		PostedAt *time.Time `json:"posted_at"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.NotNil(t, got.PostedAt)
}
