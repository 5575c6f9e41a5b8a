package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger/ledgertest"
	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/poster"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/reconcile"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

var (
	march10 = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	march   = period.New(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
)

type pair struct {
	tx, r uuid.UUID
}

// fixedScorer pins the composite of chosen pairs and scores the rest 0.
type fixedScorer map[pair]float64

func (fixedScorer) Signal() matching.Signal { return matching.SignalVendor }

func (s fixedScorer) Score(tx *transaction.Transaction, r *receipt.Receipt) (float64, bool) {
	return s[pair{tx.ID, r.ID}], true
}

type fixture struct {
	txs      *reconcile.MockTransactionSource
	receipts *reconcile.MockReceiptSource
	aliases  *reconcile.MockAliases
	poster   *reconcile.MockPoster
	store    *ledgertest.Store
	ledger   *ledger.Service
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	store := ledgertest.NewStore()

	return &fixture{
		txs:      reconcile.NewMockTransactionSource(ctrl),
		receipts: reconcile.NewMockReceiptSource(ctrl),
		aliases:  reconcile.NewMockAliases(ctrl),
		poster:   reconcile.NewMockPoster(ctrl),
		store:    store,
		ledger:   ledger.NewService(store),
	}
}

func (f *fixture) service(router *escalation.Router, opts ...reconcile.Option) *reconcile.Service {
	opts = append([]reconcile.Option{reconcile.WithPoster(f.poster)}, opts...)
	return reconcile.NewService(f.txs, f.receipts, f.aliases, f.ledger, router, matching.DefaultConfig(), opts...)
}

func (f *fixture) tx(amount int64, counterparty string) *transaction.Transaction {
	tx := &transaction.Transaction{
		ID:           uuid.New(),
		Amount:       amount,
		Currency:     "NOK",
		Date:         march10,
		Counterparty: counterparty,
		Direction:    transaction.DirectionOutgoing,
		Status:       transaction.StatusUnmatched,
	}
	f.store.AddTransaction(tx.ID, tx.Status)

	return tx
}

func (f *fixture) receipt(amount int64, vendor string) *receipt.Receipt {
	r := &receipt.Receipt{
		ID:        uuid.New(),
		Amount:    amount,
		Currency:  "NOK",
		Date:      march10,
		Vendor:    vendor,
		Direction: transaction.DirectionOutgoing,
		Status:    receipt.StatusUnmatched,
	}
	f.store.AddReceipt(r.ID, r.Status)

	return r
}

func (f *fixture) sources(txs []*transaction.Transaction, rs []*receipt.Receipt) {
	f.txs.EXPECT().ListUnmatchedTransactions(gomock.Any(), march).Return(txs, nil).AnyTimes()
	f.receipts.EXPECT().ListUnmatchedReceipts(gomock.Any(), march.Widen(14), "NOK").Return(rs, nil).AnyTimes()
	f.aliases.EXPECT().Snapshot(gomock.Any()).Return(map[string]string{}, nil).AnyTimes()
}

func activeFor(store *ledgertest.Store, txID uuid.UUID) *ledger.MatchRecord {
	for _, m := range store.Matches() {
		if m.Active() && m.TransactionID == txID {
			return m
		}
	}

	return nil
}

func TestService_Run(t *testing.T) {
	f := newFixture(t)

	rema := f.tx(49900, "RemaButikk")
	elkjop := f.tx(50000, "Elkjop Storo")
	hotel := f.tx(100000, "Thon Hotel")

	remaReceipt := f.receipt(50000, "Rema 1000")
	elkjopReceipt := f.receipt(50000, "Power")
	hotelReceipt := f.receipt(105000, "Thon Hotels")

	f.sources(
		[]*transaction.Transaction{rema, elkjop, hotel},
		[]*receipt.Receipt{remaReceipt, elkjopReceipt, hotelReceipt},
	)

	scores := fixedScorer{
		{rema.ID, remaReceipt.ID}:     0.97,
		{elkjop.ID, elkjopReceipt.ID}: 0.72,
	}

	var posted []poster.Posting

	f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p poster.Posting) error {
		posted = append(posted, p)
		return nil
	}).Times(1)

	svc := f.service(escalation.NewRouter(escalation.DefaultConfig()),
		reconcile.WithEngineOptions(matching.WithSoftScorers(matching.Weighted{Scorer: scores, Weight: 1})))

	sum, err := svc.Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Transactions)
	assert.Equal(t, 3, sum.Receipts)
	assert.Equal(t, 1, sum.AutoMatched)
	assert.Equal(t, 1, sum.HumanReview)
	assert.Equal(t, 1, sum.NoMatch)
	assert.Empty(t, sum.Errors)
	assert.Nil(t, sum.Outcomes)

	m := activeFor(f.store, rema.ID)
	require.NotNil(t, m)
	assert.Equal(t, remaReceipt.ID, m.ReceiptID)
	assert.Equal(t, ledger.TierAuto, m.Tier)
	assert.Equal(t, ledger.SourceEngine, m.Source)

	require.Len(t, posted, 1)
	assert.Equal(t, m.ID, posted[0].Match.ID)
	assert.Equal(t, remaReceipt, posted[0].Receipt)

	pending := ledger.ReviewPending

	reviews, err := f.ledger.ListReviews(context.Background(), &pending)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, elkjop.ID, reviews[0].TransactionID)
	assert.Equal(t, string(escalation.ReasonBelowAuto), reviews[0].Reason)
	assert.Equal(t, &elkjopReceipt.ID, reviews[0].SuggestedReceiptID)

	assert.Nil(t, activeFor(f.store, hotel.ID))
}

func TestService_Run_SecondRunCreatesNothing(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(49900, "RemaButikk")
	r := f.receipt(50000, "Rema 1000")

	f.sources([]*transaction.Transaction{tx}, []*receipt.Receipt{r})
	f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	svc := f.service(escalation.NewRouter(escalation.DefaultConfig()))

	first, err := svc.Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 1, first.AutoMatched)

	second, err := svc.Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 0, second.AutoMatched)
	assert.Equal(t, 1, second.AlreadyMatched)

	assert.Len(t, f.store.Matches(), 1)
}

func TestService_Run_DryRun(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(49900, "RemaButikk")
	r := f.receipt(50000, "Rema 1000")

	f.sources([]*transaction.Transaction{tx}, []*receipt.Receipt{r})

	sum, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
		Run(context.Background(), reconcile.SyncRequest{Range: march, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.AutoMatched)
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, escalation.TierAutoMatch, sum.Outcomes[0].Tier)
	assert.Empty(t, f.store.Matches())
	assert.Equal(t, transaction.StatusUnmatched, f.store.TransactionStatusOf(tx.ID))
}

func TestService_Run_SourceFailures(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(f *fixture, tx *transaction.Transaction)
	}

	tests := []testCase{
		{
			name: "Transactions unavailable",
			setupMock: func(f *fixture, _ *transaction.Transaction) {
				f.txs.EXPECT().ListUnmatchedTransactions(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
			},
		},
		{
			name: "Receipts unavailable",
			setupMock: func(f *fixture, tx *transaction.Transaction) {
				f.txs.EXPECT().ListUnmatchedTransactions(gomock.Any(), gomock.Any()).Return([]*transaction.Transaction{tx}, nil)
				f.receipts.EXPECT().ListUnmatchedReceipts(gomock.Any(), gomock.Any(), "NOK").Return(nil, errors.New("timeout"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f, f.tx(49900, "RemaButikk"))

			sum, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
				Run(context.Background(), reconcile.SyncRequest{Range: march})
			require.Error(t, err)
			assert.Nil(t, sum)
			assert.Empty(t, f.store.Matches())
		})
	}
}

func TestService_Run_InvalidRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
		Run(context.Background(), reconcile.SyncRequest{Range: period.Range{Start: march10, End: march10.AddDate(0, 0, -1)}})
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Run_AliasFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(49900, "RemaButikk")
	r := f.receipt(50000, "Rema 1000")

	f.txs.EXPECT().ListUnmatchedTransactions(gomock.Any(), gomock.Any()).Return([]*transaction.Transaction{tx}, nil)
	f.receipts.EXPECT().ListUnmatchedReceipts(gomock.Any(), gomock.Any(), "NOK").Return([]*receipt.Receipt{r}, nil)
	f.aliases.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.New("relation does not exist"))
	f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(nil)

	sum, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
		Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AutoMatched)
}

func TestService_Run_VerifierResolvesMiddleTier(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(50000, "Elkjop Storo")
	r := f.receipt(50000, "Elkjøp")

	f.sources([]*transaction.Transaction{tx}, []*receipt.Receipt{r})
	f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(nil)

	v := escalation.NewMockVerifier(gomock.NewController(t))
	v.EXPECT().Verify(gomock.Any(), tx, gomock.Len(1)).Return(escalation.Verdict{ReceiptID: &r.ID, Confidence: 0.92}, nil)

	scores := fixedScorer{{tx.ID, r.ID}: 0.7}

	svc := f.service(escalation.NewRouter(escalation.DefaultConfig(), escalation.WithVerifier(v)),
		reconcile.WithEngineOptions(matching.WithSoftScorers(matching.Weighted{Scorer: scores, Weight: 1})))

	sum, err := svc.Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AIResolved)
	assert.Equal(t, 0, sum.AutoMatched)

	m := activeFor(f.store, tx.ID)
	require.NotNil(t, m)
	assert.Equal(t, ledger.SourceVerifier, m.Source)
	assert.InDelta(t, 0.92, m.Score, 1e-9)
}

func TestService_Run_ConflictDemotesToReview(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(49900, "RemaButikk")
	r := f.receipt(50000, "Rema 1000")

	// Another process matched the receipt after the sources were read.
	other := f.tx(50000, "Rema")
	_, _, err := f.ledger.Commit(context.Background(), ledger.CommitRequest{
		TransactionID: other.ID, ReceiptID: r.ID, Score: 1, Tier: ledger.TierHumanConfirmed, Source: ledger.SourceManual,
	})
	require.NoError(t, err)

	f.sources([]*transaction.Transaction{tx}, []*receipt.Receipt{r})

	sum, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
		Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.AutoMatched)
	assert.Equal(t, 1, sum.HumanReview)

	reviews, err := f.ledger.ListReviews(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, string(escalation.ReasonConflict), reviews[0].Reason)
}

func TestService_Run_PosterFailureIsCounted(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(49900, "RemaButikk")
	r := f.receipt(50000, "Rema 1000")

	f.sources([]*transaction.Transaction{tx}, []*receipt.Receipt{r})
	f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(errors.New("fiken: 503"))

	sum, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
		Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AutoMatched)
	assert.Equal(t, 1, sum.PostFailures)

	m := activeFor(f.store, tx.ID)
	require.NotNil(t, m)
	assert.True(t, m.NeedsPosting())
	assert.Equal(t, "fiken: 503", m.PostError)
}

func TestService_Run_PostingRetry(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(49900, "RemaButikk")
	r := f.receipt(50000, "Rema 1000")

	f.sources([]*transaction.Transaction{tx}, []*receipt.Receipt{r})
	f.txs.EXPECT().Get(gomock.Any(), tx.ID).Return(tx, nil).AnyTimes()
	f.receipts.EXPECT().Get(gomock.Any(), r.ID).Return(r, nil).AnyTimes()

	gomock.InOrder(
		f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(errors.New("fiken: 503")),
		f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(errors.New("fiken: 503")),
		f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(nil),
	)

	svc := f.service(escalation.NewRouter(escalation.DefaultConfig()))
	ctx := context.Background()

	first, err := svc.Run(ctx, reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 1, first.PostFailures)

	m := activeFor(f.store, tx.ID)
	require.NotNil(t, m)
	assert.Nil(t, m.PostedAt)
	assert.Equal(t, "fiken: 503", m.PostError)

	// A later sync sees the pair as already matched and does not post again.
	second, err := svc.Run(ctx, reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 1, second.AlreadyMatched)
	assert.Equal(t, 0, second.PostFailures)

	failed, err := svc.RetryPostings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, failed.Attempted)
	assert.Equal(t, 1, failed.Failed)
	require.Len(t, failed.Errors, 1)
	assert.Equal(t, m.ID, failed.Errors[0].ID)

	retried, err := svc.RetryPostings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, retried.Posted)
	assert.Equal(t, 0, retried.Failed)

	m = activeFor(f.store, tx.ID)
	require.NotNil(t, m.PostedAt)
	assert.Empty(t, m.PostError)

	done, err := svc.RetryPostings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, done.Attempted)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Posted)
	assert.Equal(t, 0, st.AwaitingPost)
}

func TestService_RetryPostings_WithoutPoster(t *testing.T) {
	f := newFixture(t)

	svc := reconcile.NewService(f.txs, f.receipts, f.aliases, f.ledger,
		escalation.NewRouter(escalation.DefaultConfig()), matching.DefaultConfig())

	_, err := svc.RetryPostings(context.Background())
	assert.ErrorIs(t, err, reconcile.ErrNoPoster)
}

func TestService_Run_TieAmongRemainingReceipts(t *testing.T) {
	f := newFixture(t)

	txA := f.tx(50000, "Elkjop Storo")
	txB := f.tx(50000, "Elkjop Lade")

	r1 := f.receipt(50000, "Elkjøp")
	r2 := f.receipt(50000, "Elkjøp")
	r3 := f.receipt(50000, "Elkjøp")

	f.sources([]*transaction.Transaction{txA, txB}, []*receipt.Receipt{r1, r2, r3})

	// B takes r1, leaving A with two receipts it cannot tell apart.
	scores := fixedScorer{
		{txB.ID, r1.ID}: 1.0,
		{txA.ID, r1.ID}: 0.99,
		{txA.ID, r2.ID}: 0.95,
		{txA.ID, r3.ID}: 0.95,
	}

	svc := f.service(escalation.NewRouter(escalation.DefaultConfig()),
		reconcile.WithEngineOptions(matching.WithSoftScorers(matching.Weighted{Scorer: scores, Weight: 1})))

	preview, err := svc.Run(context.Background(), reconcile.SyncRequest{Range: march, DryRun: true})
	require.NoError(t, err)
	require.Len(t, preview.Outcomes, 2)
	assert.Equal(t, escalation.TierNeedsHumanReview, preview.Outcomes[0].Tier)
	assert.Equal(t, escalation.ReasonTie, preview.Outcomes[0].Reason)
	assert.Equal(t, escalation.TierAutoMatch, preview.Outcomes[1].Tier)

	f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(nil)

	sum, err := svc.Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AutoMatched)
	assert.Equal(t, 1, sum.HumanReview)
	assert.Nil(t, activeFor(f.store, txA.ID))

	reviews, err := f.ledger.ListReviews(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, txA.ID, reviews[0].TransactionID)
	assert.ElementsMatch(t, []uuid.UUID{r2.ID, r3.ID}, reviews[0].CandidateIDs)
}

func TestService_Run_InvalidRecordsAreReported(t *testing.T) {
	f := newFixture(t)

	good := f.tx(49900, "RemaButikk")
	bad := f.tx(0, "Broken")
	r := f.receipt(50000, "Rema 1000")

	f.sources([]*transaction.Transaction{good, bad}, []*receipt.Receipt{r})
	f.poster.EXPECT().OnAutoMatch(gomock.Any(), gomock.Any()).Return(nil)

	sum, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
		Run(context.Background(), reconcile.SyncRequest{Range: march})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AutoMatched)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, bad.ID, sum.Errors[0].ID)
	assert.True(t, apperror.IsValidation(sum.Errors[0].Err))
}

func TestService_ConfirmReview_LearnsAlias(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(50000, "VIPPS*ELKJOP 1234")
	r := f.receipt(50000, "Elkjøp Nordic AS")

	item, err := f.ledger.RecordReview(context.Background(), ledger.ReviewRequest{
		TransactionID: tx.ID,
		CandidateIDs:  []uuid.UUID{r.ID},
		Score:         0.7,
		Reason:        string(escalation.ReasonBelowAuto),
	})
	require.NoError(t, err)

	f.txs.EXPECT().Get(gomock.Any(), tx.ID).Return(tx, nil)
	f.receipts.EXPECT().Get(gomock.Any(), r.ID).Return(r, nil)
	f.aliases.EXPECT().Learn(gomock.Any(), "VIPPS*ELKJOP 1234", "Elkjøp Nordic AS").Return(nil)

	m, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
		ConfirmReview(context.Background(), item.ID, r.ID, "checked the card slip")
	require.NoError(t, err)
	assert.Equal(t, ledger.TierHumanConfirmed, m.Tier)
	assert.Equal(t, "checked the card slip", m.Note)
}

func TestService_ManualMatch(t *testing.T) {
	f := newFixture(t)

	tx := f.tx(50000, "Kiwi 512")
	r := f.receipt(49500, "Kiwi")

	f.txs.EXPECT().Get(gomock.Any(), tx.ID).Return(tx, nil).Times(2)
	f.receipts.EXPECT().Get(gomock.Any(), r.ID).Return(r, nil).Times(2)
	f.aliases.EXPECT().Learn(gomock.Any(), "Kiwi 512", "Kiwi").Return(errors.New("db down"))

	svc := f.service(escalation.NewRouter(escalation.DefaultConfig()))

	m, created, err := svc.ManualMatch(context.Background(), tx.ID, r.ID, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ledger.SourceManual, m.Source)
	assert.InDelta(t, 1.0, m.Score, 0)

	again, created, err := svc.ManualMatch(context.Background(), tx.ID, r.ID, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, m.ID, again.ID)
}

func TestService_ManualMatch_HardFilters(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *receipt.Receipt)
	}{
		{name: "Six percent off", modify: func(r *receipt.Receipt) { r.Amount = 106000 }},
		{name: "Five percent off and sixty one days later", modify: func(r *receipt.Receipt) {
			r.Amount = 105000
			r.Date = march10.AddDate(0, 0, 61)
		}},
		{name: "Outside date window", modify: func(r *receipt.Receipt) { r.Date = march10.AddDate(0, 0, 15) }},
		{name: "Other currency", modify: func(r *receipt.Receipt) { r.Currency = "EUR" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			tx := f.tx(100000, "Thon Hotel")
			r := f.receipt(100000, "Thon Hotels")
			tt.modify(r)

			f.txs.EXPECT().Get(gomock.Any(), tx.ID).Return(tx, nil)
			f.receipts.EXPECT().Get(gomock.Any(), r.ID).Return(r, nil)

			m, created, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
				ManualMatch(context.Background(), tx.ID, r.ID, "same stay")
			assert.True(t, apperror.IsValidation(err))
			assert.Nil(t, m)
			assert.False(t, created)

			assert.Empty(t, f.store.Matches())
			assert.Equal(t, transaction.StatusUnmatched, f.store.TransactionStatusOf(tx.ID))
		})
	}
}

func TestService_ManualMatch_UnknownTransaction(t *testing.T) {
	f := newFixture(t)

	id := uuid.New()
	f.txs.EXPECT().Get(gomock.Any(), id).Return(nil, apperror.NotFound("transaction", id))

	_, _, err := f.service(escalation.NewRouter(escalation.DefaultConfig())).
		ManualMatch(context.Background(), id, uuid.New(), "")
	assert.True(t, apperror.IsNotFound(err))
}
