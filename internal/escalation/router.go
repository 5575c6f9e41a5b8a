// Package escalation turns engine decisions into match tiers, consulting an
// AI verifier for the uncertain middle.
package escalation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
)

type Tier string

const (
	TierAutoMatch        Tier = "AUTO_MATCH"
	TierNeedsAIReview    Tier = "NEEDS_AI_REVIEW"
	TierNeedsHumanReview Tier = "NEEDS_HUMAN_REVIEW"
	TierNoMatch          Tier = "NO_MATCH"
)

// Reason explains why a decision went to human review.
type Reason string

const (
	ReasonTie              Reason = "tie"
	ReasonVerifierDeclined Reason = "verifier_declined"
	ReasonVerifierError    Reason = "verifier_error"
	ReasonConflict         Reason = "conflict"
	ReasonBelowAuto        Reason = "below_auto"
)

type Config struct {
	AutoThreshold   float64
	ReviewThreshold float64
	TopK            int
	Timeout         time.Duration
	MinConfidence   float64
	Concurrency     int
	// AllowVerifierTieBreak lets a confident verifier settle ties.
	AllowVerifierTieBreak bool
}

func DefaultConfig() Config {
	return Config{
		AutoThreshold:   0.90,
		ReviewThreshold: 0.60,
		TopK:            3,
		Timeout:         10 * time.Second,
		MinConfidence:   0.80,
		Concurrency:     4,
	}
}

// Outcome is the routed form of one engine decision.
type Outcome struct {
	Decision matching.Decision
	Tier     Tier
	Reason   Reason
	// ReceiptID is the receipt to commit for AUTO_MATCH.
	ReceiptID *uuid.UUID
	// Suggestion is the receipt proposed to a human reviewer.
	Suggestion *uuid.UUID
	// Score is the composite, or the verifier confidence when Escalated.
	Score     float64
	Escalated bool
	Verdict   *Verdict
	Err       error
}

type Router struct {
	cfg      Config
	verifier Verifier
	logger   *slog.Logger
}

type Option func(*Router)

// WithVerifier enables the middle tier. Without one those decisions go
// straight to human review.
func WithVerifier(v Verifier) Option {
	return func(r *Router) { r.verifier = v }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

func NewRouter(cfg Config, opts ...Option) *Router {
	r := &Router{cfg: cfg, logger: slog.Default()}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Route classifies d. Verifier failures degrade to human review and are
// reported on the outcome, never returned.
func (r *Router) Route(ctx context.Context, d matching.Decision) Outcome {
	if d.Assigned == nil {
		return Outcome{Decision: d, Tier: TierNoMatch}
	}

	score := d.Assigned.Score

	switch {
	case d.Ambiguous:
		return r.routeTie(ctx, d)
	case score >= r.cfg.AutoThreshold:
		return Outcome{
			Decision:  d,
			Tier:      TierAutoMatch,
			ReceiptID: new(d.Assigned.ReceiptID),
			Score:     score,
		}
	case score >= r.cfg.ReviewThreshold:
		return r.routeMiddle(ctx, d)
	}

	return Outcome{Decision: d, Tier: TierNoMatch, Score: score}
}

// RouteAll routes every decision, running at most Concurrency verifier
// calls at once. Outcomes keep the input order.
func (r *Router) RouteAll(ctx context.Context, decisions []matching.Decision) []Outcome {
	out := make([]Outcome, len(decisions))

	var g errgroup.Group

	g.SetLimit(max(r.cfg.Concurrency, 1))

	for i, d := range decisions {
		g.Go(func() error {
			out[i] = r.Route(ctx, d)
			return nil
		})
	}

	_ = g.Wait()

	return out
}

func (r *Router) routeTie(ctx context.Context, d matching.Decision) Outcome {
	o := Outcome{
		Decision:   d,
		Tier:       TierNeedsHumanReview,
		Reason:     ReasonTie,
		Suggestion: new(d.Assigned.ReceiptID),
		Score:      d.Assigned.Score,
	}

	if r.verifier == nil {
		return o
	}

	v, offered, err := r.verify(ctx, d)
	if err != nil {
		o.Err = err
		return o
	}

	o.Verdict = &v

	if !r.confident(v, offered) {
		return o
	}

	if r.cfg.AllowVerifierTieBreak {
		return autoFromVerdict(d, v)
	}

	o.Suggestion = new(*v.ReceiptID)

	return o
}

func (r *Router) routeMiddle(ctx context.Context, d matching.Decision) Outcome {
	o := Outcome{
		Decision:   d,
		Tier:       TierNeedsHumanReview,
		Suggestion: new(d.Assigned.ReceiptID),
		Score:      d.Assigned.Score,
	}

	if r.verifier == nil {
		o.Reason = ReasonBelowAuto
		return o
	}

	v, offered, err := r.verify(ctx, d)
	if err != nil {
		o.Reason = ReasonVerifierError
		o.Err = err

		return o
	}

	if r.confident(v, offered) {
		return autoFromVerdict(d, v)
	}

	o.Reason = ReasonVerifierDeclined
	o.Verdict = &v

	if v.ReceiptID != nil && offered.has(*v.ReceiptID) {
		o.Suggestion = new(*v.ReceiptID)
	}

	return o
}

func autoFromVerdict(d matching.Decision, v Verdict) Outcome {
	return Outcome{
		Decision:  d,
		Tier:      TierAutoMatch,
		ReceiptID: new(*v.ReceiptID),
		Score:     v.Confidence,
		Escalated: true,
		Verdict:   &v,
	}
}

type offer []*receipt.Receipt

func (o offer) has(id uuid.UUID) bool {
	return slices.ContainsFunc(o, func(r *receipt.Receipt) bool { return r.ID == id })
}

// offered lists the assigned receipt first, then the transaction's other
// open candidates, up to TopK.
func (r *Router) offered(d matching.Decision) offer {
	k := max(r.cfg.TopK, 1)
	out := offer{d.Assigned.Receipt}

	for _, c := range d.Open {
		if len(out) == k {
			break
		}

		if c.ReceiptID == d.Assigned.ReceiptID {
			continue
		}

		out = append(out, c.Receipt)
	}

	return out
}

func (r *Router) verify(ctx context.Context, d matching.Decision) (Verdict, offer, error) {
	offered := r.offered(d)
	provider := providerName(r.verifier)

	vctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	v, err := r.verifier.Verify(vctx, d.Transaction, offered)
	if err == nil {
		return v, offered, nil
	}

	switch {
	case apperror.IsVerifier(err):
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(vctx.Err(), context.DeadlineExceeded):
		err = &apperror.VerifierTimeoutError{Provider: provider, Timeout: r.cfg.Timeout, Err: err}
	default:
		err = &apperror.VerifierUnavailableError{Provider: provider, Err: err}
	}

	r.logger.Warn("verifier failed, degrading to human review",
		"transaction_id", d.Transaction.ID,
		"provider", provider,
		"error", err,
	)

	return Verdict{}, offered, err
}

func (r *Router) confident(v Verdict, offered offer) bool {
	return v.ReceiptID != nil && offered.has(*v.ReceiptID) && v.Confidence >= r.cfg.MinConfidence
}
