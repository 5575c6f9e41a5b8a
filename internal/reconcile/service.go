// Package reconcile runs a sync: it loads open transactions and receipts for
// a period, scores and routes them, and commits the resulting matches.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/poster"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=reconcile
type TransactionSource interface {
	ListUnmatchedTransactions(ctx context.Context, r period.Range) ([]*transaction.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
}

type ReceiptSource interface {
	ListUnmatchedReceipts(ctx context.Context, r period.Range, currency string) ([]*receipt.Receipt, error)
	Get(ctx context.Context, id uuid.UUID) (*receipt.Receipt, error)
}

type Aliases interface {
	Snapshot(ctx context.Context) (map[string]string, error)
	Learn(ctx context.Context, counterparty, vendor string) error
}

// ErrNoPoster is returned by RetryPostings when no external ledger is configured.
var ErrNoPoster = errors.New("no poster configured")

// Poster receives every match the sync committed on its own.
type Poster interface {
	OnAutoMatch(ctx context.Context, p poster.Posting) error
}

type Service struct {
	transactions TransactionSource
	receipts     ReceiptSource
	aliases      Aliases
	ledger       *ledger.Service
	router       *escalation.Router
	poster       Poster

	matching   matching.Config
	engineOpts []matching.Option
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithPoster(p Poster) Option {
	return func(s *Service) { s.poster = p }
}

// WithEngineOptions are applied to the engine built for every run.
func WithEngineOptions(opts ...matching.Option) Option {
	return func(s *Service) { s.engineOpts = append(s.engineOpts, opts...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	transactions TransactionSource,
	receipts ReceiptSource,
	aliases Aliases,
	ledgerSvc *ledger.Service,
	router *escalation.Router,
	cfg matching.Config,
	opts ...Option,
) *Service {
	s := &Service{
		transactions: transactions,
		receipts:     receipts,
		aliases:      aliases,
		ledger:       ledgerSvc,
		router:       router,
		matching:     cfg,
		logger:       slog.Default(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type SyncRequest struct {
	Range  period.Range
	DryRun bool
}

// RecordError is a per-record failure that did not stop the run.
type RecordError struct {
	Entity string
	ID     uuid.UUID
	Err    error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Entity, e.ID, e.Err)
}

type Summary struct {
	Range          period.Range
	DryRun         bool
	Transactions   int
	Receipts       int
	AutoMatched    int
	AIResolved     int
	HumanReview    int
	NoMatch        int
	AlreadyMatched int
	PostFailures   int
	Errors         []RecordError
	// Outcomes is only filled for dry runs.
	Outcomes []escalation.Outcome
	Duration time.Duration
}

// Run reconciles one period. Failing to load either side aborts before
// anything is committed; failures on single records are collected in the
// summary and the run carries on.
func (s *Service) Run(ctx context.Context, req SyncRequest) (*Summary, error) {
	start := s.now()

	if err := req.Range.Validate(); err != nil {
		return nil, err
	}

	sum := &Summary{Range: req.Range, DryRun: req.DryRun}

	txs, err := s.transactions.ListUnmatchedTransactions(ctx, req.Range)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	receipts, err := s.loadReceipts(ctx, req.Range, txs)
	if err != nil {
		return nil, err
	}

	sum.Transactions = len(txs)
	sum.Receipts = len(receipts)

	aliases, err := s.aliases.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("failed to load vendor aliases, continuing without", "error", err)
		aliases = nil
	}

	opts := slices.Concat(s.engineOpts, []matching.Option{matching.WithAliases(aliases), matching.WithLogger(s.logger)})

	result, err := matching.NewEngine(s.matching, opts...).Evaluate(ctx, txs, receipts)
	if err != nil {
		return nil, fmt.Errorf("evaluating candidates: %w", err)
	}

	for _, inv := range result.Invalid {
		s.logger.Warn("skipping invalid record", "entity", inv.Entity, "id", inv.ID, "error", inv.Err)
		sum.Errors = append(sum.Errors, RecordError{Entity: inv.Entity, ID: inv.ID, Err: inv.Err})
	}

	outcomes := s.router.RouteAll(ctx, result.Decisions)

	if req.DryRun {
		for _, o := range outcomes {
			sum.count(o)
		}

		sum.Outcomes = outcomes
		sum.Duration = s.now().Sub(start)

		return sum, nil
	}

	byID := make(map[uuid.UUID]*receipt.Receipt, len(receipts))
	for _, r := range receipts {
		byID[r.ID] = r
	}

	for _, o := range outcomes {
		if err := ctx.Err(); err != nil {
			sum.Duration = s.now().Sub(start)
			return sum, fmt.Errorf("sync interrupted: %w", err)
		}

		s.apply(ctx, sum, o, byID)
	}

	sum.Duration = s.now().Sub(start)

	s.logger.Info("sync finished",
		"range", req.Range.String(),
		"transactions", sum.Transactions,
		"receipts", sum.Receipts,
		"auto_matched", sum.AutoMatched,
		"ai_resolved", sum.AIResolved,
		"human_review", sum.HumanReview,
		"no_match", sum.NoMatch,
		"already_matched", sum.AlreadyMatched,
		"errors", len(sum.Errors),
		"duration", sum.Duration,
	)

	return sum, nil
}

// loadReceipts fetches open receipts per transaction currency. The range is
// widened by the date window so receipts just outside the period still
// qualify.
func (s *Service) loadReceipts(ctx context.Context, r period.Range, txs []*transaction.Transaction) ([]*receipt.Receipt, error) {
	var currencies []string

	for _, tx := range txs {
		if !slices.Contains(currencies, tx.Currency) {
			currencies = append(currencies, tx.Currency)
		}
	}

	wide := r.Widen(s.matching.DateWindow)

	var out []*receipt.Receipt

	for _, cur := range currencies {
		rs, err := s.receipts.ListUnmatchedReceipts(ctx, wide, cur)
		if err != nil {
			return nil, fmt.Errorf("loading %s receipts: %w", cur, err)
		}

		out = append(out, rs...)
	}

	return out, nil
}

func (sum *Summary) count(o escalation.Outcome) {
	switch o.Tier {
	case escalation.TierAutoMatch:
		if o.Escalated {
			sum.AIResolved++
		} else {
			sum.AutoMatched++
		}
	case escalation.TierNeedsHumanReview:
		sum.HumanReview++
	case escalation.TierNoMatch:
		sum.NoMatch++
	}
}

func (s *Service) apply(ctx context.Context, sum *Summary, o escalation.Outcome, receipts map[uuid.UUID]*receipt.Receipt) {
	tx := o.Decision.Transaction

	switch o.Tier {
	case escalation.TierAutoMatch:
		s.commitAuto(ctx, sum, o, receipts)
	case escalation.TierNeedsHumanReview:
		s.queueReview(ctx, sum, o, o.Suggestion, o.Reason)
	case escalation.TierNoMatch:
		sum.NoMatch++
	default:
		s.logger.Error("unexpected tier", "transaction_id", tx.ID, "tier", o.Tier)
	}
}

func (s *Service) commitAuto(ctx context.Context, sum *Summary, o escalation.Outcome, receipts map[uuid.UUID]*receipt.Receipt) {
	tx := o.Decision.Transaction

	source := ledger.SourceEngine
	if o.Escalated {
		source = ledger.SourceVerifier
	}

	m, created, err := s.ledger.Commit(ctx, ledger.CommitRequest{
		TransactionID: tx.ID,
		ReceiptID:     *o.ReceiptID,
		Score:         o.Score,
		Tier:          ledger.TierAuto,
		Source:        source,
	})

	switch {
	case apperror.IsConflict(err):
		s.logger.Info("match conflicts with an active record, queueing for review",
			"transaction_id", tx.ID, "receipt_id", *o.ReceiptID, "error", err)
		s.queueReview(ctx, sum, o, o.ReceiptID, escalation.ReasonConflict)

		return
	case err != nil:
		s.logger.Error("failed to commit match", "transaction_id", tx.ID, "receipt_id", *o.ReceiptID, "error", err)
		sum.Errors = append(sum.Errors, RecordError{Entity: "transaction", ID: tx.ID, Err: err})

		return
	case !created:
		sum.AlreadyMatched++
		return
	}

	if o.Escalated {
		sum.AIResolved++
	} else {
		sum.AutoMatched++
	}

	if s.poster == nil {
		return
	}

	r := receipts[m.ReceiptID]
	if r == nil {
		if r, err = s.receipts.Get(ctx, m.ReceiptID); err != nil {
			s.logger.Error("failed to load receipt for posting", "match_id", m.ID, "receipt_id", m.ReceiptID, "error", err)
			s.recordPostFailure(ctx, m, err)
			sum.PostFailures++

			return
		}
	}

	if err := s.post(ctx, m, tx, r); err != nil {
		sum.PostFailures++
	}
}

// post hands m to the external ledger and records the outcome on the match,
// so failed postings stay queued for RetryPostings.
func (s *Service) post(ctx context.Context, m *ledger.MatchRecord, tx *transaction.Transaction, r *receipt.Receipt) error {
	if err := s.poster.OnAutoMatch(ctx, poster.Posting{Match: m, Transaction: tx, Receipt: r}); err != nil {
		s.logger.Error("failed to post match", "match_id", m.ID, "error", err)
		s.recordPostFailure(ctx, m, err)

		return err
	}

	if err := s.ledger.MarkPosted(ctx, m.ID); err != nil {
		s.logger.Error("match posted but not marked", "match_id", m.ID, "error", err)
	}

	return nil
}

func (s *Service) recordPostFailure(ctx context.Context, m *ledger.MatchRecord, cause error) {
	if err := s.ledger.MarkPostFailed(ctx, m.ID, cause); err != nil {
		s.logger.Error("failed to record post failure", "match_id", m.ID, "error", err)
	}
}

// PostSummary reports a RetryPostings pass.
type PostSummary struct {
	Attempted int
	Posted    int
	Failed    int
	Errors    []RecordError
}

// RetryPostings sends every active automatic match the external ledger has
// not accepted yet. A failure leaves the match queued for the next pass.
func (s *Service) RetryPostings(ctx context.Context) (*PostSummary, error) {
	if s.poster == nil {
		return nil, ErrNoPoster
	}

	pending, err := s.ledger.Unposted(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unposted matches: %w", err)
	}

	sum := &PostSummary{}

	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("posting interrupted: %w", err)
		}

		sum.Attempted++

		if err := s.retry(ctx, m); err != nil {
			sum.Failed++
			sum.Errors = append(sum.Errors, RecordError{Entity: "match", ID: m.ID, Err: err})

			continue
		}

		sum.Posted++
	}

	s.logger.Info("posting retry finished", "attempted", sum.Attempted, "posted", sum.Posted, "failed", sum.Failed)

	return sum, nil
}

func (s *Service) retry(ctx context.Context, m *ledger.MatchRecord) error {
	tx, err := s.transactions.Get(ctx, m.TransactionID)
	if err != nil {
		s.recordPostFailure(ctx, m, err)
		return fmt.Errorf("loading transaction: %w", err)
	}

	r, err := s.receipts.Get(ctx, m.ReceiptID)
	if err != nil {
		s.recordPostFailure(ctx, m, err)
		return fmt.Errorf("loading receipt: %w", err)
	}

	return s.post(ctx, m, tx, r)
}

// Status counts matches, postings and pending reviews.
func (s *Service) Status(ctx context.Context) (*ledger.Stats, error) {
	return s.ledger.Stats(ctx)
}

func (s *Service) queueReview(ctx context.Context, sum *Summary, o escalation.Outcome, suggestion *uuid.UUID, reason escalation.Reason) {
	tx := o.Decision.Transaction

	ids := make([]uuid.UUID, 0, len(o.Decision.Open))
	for _, c := range o.Decision.Open {
		ids = append(ids, c.ReceiptID)
	}

	if _, err := s.ledger.RecordReview(ctx, ledger.ReviewRequest{
		TransactionID:      tx.ID,
		SuggestedReceiptID: suggestion,
		CandidateIDs:       ids,
		Score:              o.Score,
		Reason:             string(reason),
	}); err != nil {
		s.logger.Error("failed to queue review", "transaction_id", tx.ID, "error", err)
		sum.Errors = append(sum.Errors, RecordError{Entity: "transaction", ID: tx.ID, Err: err})

		return
	}

	sum.HumanReview++
}

// ConfirmReview commits a reviewer's choice and learns the counterparty's
// vendor name for future runs.
func (s *Service) ConfirmReview(ctx context.Context, reviewID, receiptID uuid.UUID, note string) (*ledger.MatchRecord, error) {
	m, _, err := s.ledger.Confirm(ctx, ledger.ConfirmRequest{ReviewID: reviewID, ReceiptID: receiptID, Note: note})
	if err != nil {
		return nil, err
	}

	s.learn(ctx, m)

	return m, nil
}

// ManualMatch pairs a transaction with an open receipt of the user's
// choosing. The pair must pass the same amount and date filters the engine
// applies.
func (s *Service) ManualMatch(ctx context.Context, transactionID, receiptID uuid.UUID, note string) (*ledger.MatchRecord, bool, error) {
	tx, err := s.transactions.Get(ctx, transactionID)
	if err != nil {
		return nil, false, err
	}

	r, err := s.receipts.Get(ctx, receiptID)
	if err != nil {
		return nil, false, err
	}

	if err := matching.Eligible(s.matching, tx, r); err != nil {
		return nil, false, err
	}

	m, created, err := s.ledger.Commit(ctx, ledger.CommitRequest{
		TransactionID: transactionID,
		ReceiptID:     receiptID,
		Score:         1.0,
		Tier:          ledger.TierHumanConfirmed,
		Source:        ledger.SourceManual,
		Note:          note,
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.learnPair(ctx, m, tx, r)
	}

	return m, created, nil
}

func (s *Service) learn(ctx context.Context, m *ledger.MatchRecord) {
	tx, err := s.transactions.Get(ctx, m.TransactionID)
	if err != nil {
		s.logger.Warn("failed to load transaction for alias", "transaction_id", m.TransactionID, "error", err)
		return
	}

	r, err := s.receipts.Get(ctx, m.ReceiptID)
	if err != nil {
		s.logger.Warn("failed to load receipt for alias", "receipt_id", m.ReceiptID, "error", err)
		return
	}

	s.learnPair(ctx, m, tx, r)
}

func (s *Service) learnPair(ctx context.Context, m *ledger.MatchRecord, tx *transaction.Transaction, r *receipt.Receipt) {
	if err := s.aliases.Learn(ctx, tx.Counterparty, r.Vendor); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("failed to learn vendor alias", "match_id", m.ID, "error", err)
	}
}
