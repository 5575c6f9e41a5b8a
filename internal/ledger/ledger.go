// Package ledger owns match records: the persisted, one-to-one pairing of
// transactions with receipts, and the queue of pairs waiting for a human.
package ledger

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Tier string

const (
	TierAuto           Tier = "AUTO"
	TierHumanConfirmed Tier = "HUMAN_CONFIRMED"
)

// Source records who made the decision.
type Source string

const (
	SourceEngine   Source = "engine"
	SourceVerifier Source = "verifier"
	SourceManual   Source = "manual"
)

type MatchRecord struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	ReceiptID     uuid.UUID
	Score         float64
	Tier          Tier
	Source        Source
	Note          string
	CreatedAt     time.Time
	Reversed      bool
	ReversedAt    *time.Time
	// PostedAt is set once the external ledger accepted the match.
	PostedAt *time.Time
	// PostError holds the last posting failure, cleared on success.
	PostError string
}

func (m *MatchRecord) Active() bool {
	return !m.Reversed
}

// NeedsPosting reports whether m is an active automatic match the external
// ledger has not accepted yet.
func (m *MatchRecord) NeedsPosting() bool {
	return m.Active() && m.Tier == TierAuto && m.PostedAt == nil
}

// Stats counts ledger state for status reporting.
type Stats struct {
	ActiveMatches   int
	ReversedMatches int
	AutoMatches     int
	HumanConfirmed  int
	Posted          int
	PostFailed      int
	AwaitingPost    int
	PendingReviews  int
}

type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewConfirmed ReviewStatus = "confirmed"
	ReviewDismissed ReviewStatus = "dismissed"
)

// ReviewItem is a transaction waiting for a human to pick its receipt.
// There is at most one pending item per transaction.
type ReviewItem struct {
	ID                 uuid.UUID
	TransactionID      uuid.UUID
	SuggestedReceiptID *uuid.UUID
	CandidateIDs       []uuid.UUID
	Score              float64
	Reason             string
	Status             ReviewStatus
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// Offers reports whether id was a candidate or the suggestion.
func (r *ReviewItem) Offers(id uuid.UUID) bool {
	if r.SuggestedReceiptID != nil && *r.SuggestedReceiptID == id {
		return true
	}

	return slices.Contains(r.CandidateIDs, id)
}
