package matching

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// floatSlack absorbs rounding noise in the tie comparison.
const floatSlack = 1e-9

// Candidate is a receipt that passed both hard filters for a transaction.
type Candidate struct {
	TransactionID uuid.UUID
	ReceiptID     uuid.UUID
	Receipt       *receipt.Receipt
	// Scores holds every sub-score that applied, hard filters included.
	Scores       map[Signal]float64
	Score        float64
	AmountDiff   int64
	DateDistance int
}

// Outcome says why a decision has or lacks an assigned receipt.
type Outcome string

const (
	OutcomeAssigned     Outcome = "assigned"
	OutcomeNoCandidates Outcome = "no_candidates"
	OutcomeOutbid       Outcome = "outbid"
)

// Decision is the engine's verdict for one transaction.
type Decision struct {
	Transaction *transaction.Transaction
	Assigned    *Candidate
	// Candidates are ordered best first.
	Candidates []*Candidate
	// Open are the candidates whose receipt was still free when this
	// transaction took its turn, in the same order.
	Open      []*Candidate
	Ambiguous bool
	Outcome   Outcome
}

// Rejected is an input record the engine refused to score.
type Rejected struct {
	Entity string
	ID     uuid.UUID
	Err    error
}

type Result struct {
	// Decisions follow the input order of the eligible transactions.
	Decisions []Decision
	Invalid   []Rejected
}

type Engine struct {
	cfg        Config
	workers    int
	logger     *slog.Logger
	aliases    map[string]string
	categories CategoryMap
	soft       []Weighted

	amount Scorer
	date   Scorer
}

type Option func(*Engine)

// WithWorkers bounds how many transactions are scored at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithAliases feeds learned counterparty→vendor aliases to the vendor scorer.
func WithAliases(aliases map[string]string) Option {
	return func(e *Engine) { e.aliases = aliases }
}

func WithCategoryMap(m CategoryMap) Option {
	return func(e *Engine) { e.categories = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSoftScorers replaces the vendor and category signals.
func WithSoftScorers(ws ...Weighted) Option {
	return func(e *Engine) { e.soft = ws }
}

func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
		amount:  NewAmountScorer(cfg.AmountTolerance),
		date:    NewDateScorer(cfg.DateWindow),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.categories == nil {
		e.categories = DefaultCategoryMap()
	}

	if e.soft == nil {
		e.soft = []Weighted{
			{Scorer: NewVendorScorer(e.aliases), Weight: cfg.VendorWeight},
			{Scorer: NewCategoryScorer(e.categories), Weight: cfg.CategoryWeight},
		}
	}

	return e
}

// Evaluate scores every eligible transaction against every eligible receipt
// and assigns receipts one-to-one, best edge first.
func (e *Engine) Evaluate(ctx context.Context, txs []*transaction.Transaction, receipts []*receipt.Receipt) (*Result, error) {
	res := &Result{}

	eligibleTxs := make([]*transaction.Transaction, 0, len(txs))

	for _, tx := range txs {
		if err := eligibleTransaction(tx); err != nil {
			res.Invalid = append(res.Invalid, Rejected{Entity: "transaction", ID: tx.ID, Err: err})
			continue
		}

		eligibleTxs = append(eligibleTxs, tx)
	}

	pool := make(map[string][]*receipt.Receipt)

	for _, r := range receipts {
		if err := eligibleReceipt(r); err != nil {
			res.Invalid = append(res.Invalid, Rejected{Entity: "receipt", ID: r.ID, Err: err})
			continue
		}

		k := poolKey(r.Currency, r.Direction)
		pool[k] = append(pool[k], r)
	}

	for _, inv := range res.Invalid {
		e.logger.Warn("skipping record", "entity", inv.Entity, "id", inv.ID, "error", inv.Err)
	}

	candidates := make([][]*Candidate, len(eligibleTxs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, tx := range eligibleTxs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			candidates[i] = e.candidatesFor(tx, pool[poolKey(tx.Currency, tx.Direction)])

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	assigned, claimed := e.assign(candidates)

	res.Decisions = make([]Decision, len(eligibleTxs))

	for i, tx := range eligibleTxs {
		d := Decision{Transaction: tx, Candidates: candidates[i]}

		turn := math.MaxInt
		if a := assigned[tx.ID]; a != nil {
			turn = claimed[a.ReceiptID]
		}

		for _, c := range candidates[i] {
			if step, ok := claimed[c.ReceiptID]; !ok || step >= turn {
				d.Open = append(d.Open, c)
			}
		}

		// The assigned candidate heads Open, so the tie is judged against
		// what this transaction could still have taken.
		d.Ambiguous = e.ambiguous(d.Open)

		switch {
		case assigned[tx.ID] != nil:
			d.Assigned = assigned[tx.ID]
			d.Outcome = OutcomeAssigned
		case len(candidates[i]) == 0:
			d.Outcome = OutcomeNoCandidates
		default:
			d.Outcome = OutcomeOutbid
		}

		res.Decisions[i] = d
	}

	e.logger.Debug("evaluated batch",
		"transactions", len(eligibleTxs),
		"receipts", len(receipts),
		"assigned", len(assigned),
		"invalid", len(res.Invalid),
	)

	return res, nil
}

func (e *Engine) candidatesFor(tx *transaction.Transaction, receipts []*receipt.Receipt) []*Candidate {
	var out []*Candidate

	for _, r := range receipts {
		amount, ok := e.amount.Score(tx, r)
		if !ok {
			continue
		}

		date, ok := e.date.Score(tx, r)
		if !ok {
			continue
		}

		scores := map[Signal]float64{SignalAmount: amount, SignalDate: date}

		out = append(out, &Candidate{
			TransactionID: tx.ID,
			ReceiptID:     r.ID,
			Receipt:       r,
			Scores:        scores,
			Score:         composite(tx, r, e.soft, scores),
			AmountDiff:    money.Abs(tx.Amount - r.Amount),
			DateDistance:  period.DaysBetween(tx.Date, r.Date),
		})
	}

	slices.SortFunc(out, compareCandidates)

	return out
}

// assign walks every edge of the batch best first and accepts it when both
// sides are still free.
// assign runs the greedy pass. claimed maps each taken receipt to the step
// that took it.
func (e *Engine) assign(candidates [][]*Candidate) (assigned map[uuid.UUID]*Candidate, claimed map[uuid.UUID]int) {
	var edges []*Candidate
	for _, cs := range candidates {
		edges = append(edges, cs...)
	}

	slices.SortFunc(edges, compareCandidates)

	assigned = make(map[uuid.UUID]*Candidate)
	claimed = make(map[uuid.UUID]int)

	for _, c := range edges {
		if _, taken := assigned[c.TransactionID]; taken {
			continue
		}

		if _, taken := claimed[c.ReceiptID]; taken {
			continue
		}

		claimed[c.ReceiptID] = len(assigned)
		assigned[c.TransactionID] = c
	}

	return assigned, claimed
}

func (e *Engine) ambiguous(cs []*Candidate) bool {
	return len(cs) >= 2 && cs[0].Score-cs[1].Score <= e.cfg.TieEpsilon+floatSlack
}

// compareCandidates orders by score, then smaller amount difference, then
// smaller date distance, then receipt id and transaction id.
func compareCandidates(a, b *Candidate) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	case a.AmountDiff != b.AmountDiff:
		return cmpInt(a.AmountDiff, b.AmountDiff)
	case a.DateDistance != b.DateDistance:
		return cmpInt(int64(a.DateDistance), int64(b.DateDistance))
	}

	if c := strings.Compare(a.ReceiptID.String(), b.ReceiptID.String()); c != 0 {
		return c
	}

	return strings.Compare(a.TransactionID.String(), b.TransactionID.String())
}

func cmpInt(a, b int64) int {
	if a < b {
		return -1
	}

	return 1
}

func poolKey(currency string, dir transaction.Direction) string {
	return strings.ToUpper(currency) + "/" + string(dir)
}

func eligibleTransaction(tx *transaction.Transaction) error {
	if tx.Status != transaction.StatusUnmatched {
		return &apperror.ValidationError{Entity: "transaction", ID: tx.ID.String(), Field: "status", Reason: fmt.Sprintf("is %s", tx.Status)}
	}

	return tx.Validate()
}

func eligibleReceipt(r *receipt.Receipt) error {
	if r.Status != receipt.StatusUnmatched {
		return &apperror.ValidationError{Entity: "receipt", ID: r.ID.String(), Field: "status", Reason: fmt.Sprintf("is %s", r.Status)}
	}

	return r.Validate()
}
