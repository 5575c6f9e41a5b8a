package matching

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/respond"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/reconcile"
)

type Handler struct {
	sync   *reconcile.Service
	ledger *ledger.Service
}

func NewHandler(sync *reconcile.Service, ledger *ledger.Service) *Handler {
	return &Handler{sync: sync, ledger: ledger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/sync", h.runSync)

	r.Get("/matches", h.listMatches)
	r.Post("/matches", h.manualMatch)
	r.Get("/matches/{id}", h.getMatch)
	r.Delete("/matches/{id}", h.reverse)

	r.Get("/reviews", h.listReviews)
	r.Post("/reviews/{id}/confirm", h.confirmReview)
	r.Post("/reviews/{id}/dismiss", h.dismissReview)

	r.Post("/postings/retry", h.retryPostings)
	r.Get("/status", h.status)
}

type syncRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	DryRun    bool   `json:"dry_run"`
}

type recordErrorDTO struct {
	Entity string    `json:"entity"`
	ID     uuid.UUID `json:"id"`
	Error  string    `json:"error"`
}

type outcomeDTO struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	Tier          escalation.Tier   `json:"tier"`
	Reason        escalation.Reason `json:"reason,omitempty"`
	ReceiptID     *uuid.UUID        `json:"receipt_id,omitempty"`
	Suggestion    *uuid.UUID        `json:"suggestion,omitempty"`
	Score         float64           `json:"score"`
	Escalated     bool              `json:"escalated"`
	Reasoning     string            `json:"reasoning,omitempty"`
}

type summaryResponse struct {
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	DryRun         bool             `json:"dry_run"`
	Transactions   int              `json:"transactions"`
	Receipts       int              `json:"receipts"`
	AutoMatched    int              `json:"auto_matched"`
	AIResolved     int              `json:"ai_resolved"`
	HumanReview    int              `json:"human_review"`
	NoMatch        int              `json:"no_match"`
	AlreadyMatched int              `json:"already_matched"`
	PostFailures   int              `json:"post_failures"`
	Errors         []recordErrorDTO `json:"errors"`
	Outcomes       []outcomeDTO     `json:"outcomes,omitempty"`
	DurationMS     int64            `json:"duration_ms"`
}

func toSummaryResponse(s *reconcile.Summary) summaryResponse {
	resp := summaryResponse{
		StartDate:      s.Range.Start.Format(time.DateOnly),
		EndDate:        s.Range.End.Format(time.DateOnly),
		DryRun:         s.DryRun,
		Transactions:   s.Transactions,
		Receipts:       s.Receipts,
		AutoMatched:    s.AutoMatched,
		AIResolved:     s.AIResolved,
		HumanReview:    s.HumanReview,
		NoMatch:        s.NoMatch,
		AlreadyMatched: s.AlreadyMatched,
		PostFailures:   s.PostFailures,
		Errors:         make([]recordErrorDTO, 0, len(s.Errors)),
		DurationMS:     s.Duration.Milliseconds(),
	}

	for _, e := range s.Errors {
		resp.Errors = append(resp.Errors, recordErrorDTO{Entity: e.Entity, ID: e.ID, Error: e.Err.Error()})
	}

	for _, o := range s.Outcomes {
		dto := outcomeDTO{
			TransactionID: o.Decision.Transaction.ID,
			Tier:          o.Tier,
			Reason:        o.Reason,
			ReceiptID:     o.ReceiptID,
			Suggestion:    o.Suggestion,
			Score:         o.Score,
			Escalated:     o.Escalated,
		}

		if o.Verdict != nil {
			dto.Reasoning = o.Verdict.Reasoning
		}

		resp.Outcomes = append(resp.Outcomes, dto)
	}

	return resp
}

func (h *Handler) runSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	rng, err := period.Parse(req.StartDate, req.EndDate)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	summary, err := h.sync.Run(r.Context(), reconcile.SyncRequest{Range: rng, DryRun: req.DryRun})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(summary))
}

type matchResponse struct {
	ID            uuid.UUID     `json:"id"`
	TransactionID uuid.UUID     `json:"transaction_id"`
	ReceiptID     uuid.UUID     `json:"receipt_id"`
	Score         float64       `json:"score"`
	Tier          ledger.Tier   `json:"tier"`
	Source        ledger.Source `json:"source"`
	Note          string        `json:"note,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	Reversed      bool          `json:"reversed"`
	ReversedAt    *time.Time    `json:"reversed_at,omitempty"`
	PostedAt      *time.Time    `json:"posted_at,omitempty"`
	PostError     string        `json:"post_error,omitempty"`
}

func toMatchResponse(m *ledger.MatchRecord) matchResponse {
	return matchResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ReceiptID:     m.ReceiptID,
		Score:         m.Score,
		Tier:          m.Tier,
		Source:        m.Source,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
		Reversed:      m.Reversed,
		ReversedAt:    m.ReversedAt,
		PostedAt:      m.PostedAt,
		PostError:     m.PostError,
	}
}

func (h *Handler) listMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.ListFilter{ActiveOnly: q.Get("include_reversed") != "true"}

	for name, dst := range map[string]**uuid.UUID{"transaction_id": &filter.TransactionID, "receipt_id": &filter.ReceiptID} {
		s := q.Get(name)
		if s == "" {
			continue
		}

		id, err := uuid.Parse(s)
		if err != nil {
			respond.BadRequest(w, "invalid "+name)
			return
		}

		*dst = &id
	}

	var err error

	if filter.CreatedFrom, err = respond.DateQuery(r, "created_from"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.CreatedTo, err = respond.DateQuery(r, "created_to"); err != nil {
		respond.Error(w, r, err)
		return
	}

	ms, err := h.ledger.ListMatches(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]matchResponse, len(ms))
	for i, m := range ms {
		resp[i] = toMatchResponse(m)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.IDParam(w, r, "id")
	if !ok {
		return
	}

	m, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toMatchResponse(m))
}

type manualMatchRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ReceiptID     uuid.UUID `json:"receipt_id"`
	Note          string    `json:"note"`
}

func (h *Handler) manualMatch(w http.ResponseWriter, r *http.Request) {
	var req manualMatchRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	m, created, err := h.sync.ManualMatch(r.Context(), req.TransactionID, req.ReceiptID, req.Note)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}

	respond.JSON(w, status, toMatchResponse(m))
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.IDParam(w, r, "id")
	if !ok {
		return
	}

	m, err := h.ledger.Reverse(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toMatchResponse(m))
}

type reviewResponse struct {
	ID                 uuid.UUID           `json:"id"`
	TransactionID      uuid.UUID           `json:"transaction_id"`
	SuggestedReceiptID *uuid.UUID          `json:"suggested_receipt_id,omitempty"`
	CandidateIDs       []uuid.UUID         `json:"candidate_ids"`
	Score              float64             `json:"score"`
	Reason             string              `json:"reason"`
	Status             ledger.ReviewStatus `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          *time.Time          `json:"updated_at,omitempty"`
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	status := new(ledger.ReviewPending)
	if s := r.URL.Query().Get("status"); s == "all" {
		status = nil
	} else if s != "" {
		status = new(ledger.ReviewStatus(s))
	}

	items, err := h.ledger.ListReviews(r.Context(), status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]reviewResponse, len(items))
	for i, it := range items {
		resp[i] = reviewResponse{
			ID:                 it.ID,
			TransactionID:      it.TransactionID,
			SuggestedReceiptID: it.SuggestedReceiptID,
			CandidateIDs:       it.CandidateIDs,
			Score:              it.Score,
			Reason:             it.Reason,
			Status:             it.Status,
			CreatedAt:          it.CreatedAt,
			UpdatedAt:          it.UpdatedAt,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

type confirmRequest struct {
	ReceiptID uuid.UUID `json:"receipt_id"`
	Note      string    `json:"note"`
}

func (h *Handler) confirmReview(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.IDParam(w, r, "id")
	if !ok {
		return
	}

	var req confirmRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	m, err := h.sync.ConfirmReview(r.Context(), id, req.ReceiptID, req.Note)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toMatchResponse(m))
}

func (h *Handler) dismissReview(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DismissReview(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type postSummaryResponse struct {
	Attempted int              `json:"attempted"`
	Posted    int              `json:"posted"`
	Failed    int              `json:"failed"`
	Errors    []recordErrorDTO `json:"errors"`
}

func (h *Handler) retryPostings(w http.ResponseWriter, r *http.Request) {
	sum, err := h.sync.RetryPostings(r.Context())
	if errors.Is(err, reconcile.ErrNoPoster) {
		respond.BadRequest(w, err.Error())
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := postSummaryResponse{
		Attempted: sum.Attempted,
		Posted:    sum.Posted,
		Failed:    sum.Failed,
		Errors:    make([]recordErrorDTO, 0, len(sum.Errors)),
	}

	for _, e := range sum.Errors {
		resp.Errors = append(resp.Errors, recordErrorDTO{Entity: e.Entity, ID: e.ID, Error: e.Err.Error()})
	}

	respond.JSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Matches struct {
		Active         int `json:"active"`
		Reversed       int `json:"reversed"`
		Auto           int `json:"auto"`
		HumanConfirmed int `json:"human_confirmed"`
	} `json:"matches"`
	Postings struct {
		Posted   int `json:"posted"`
		Failed   int `json:"failed"`
		Awaiting int `json:"awaiting"`
	} `json:"postings"`
	PendingReviews int `json:"pending_reviews"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.sync.Status(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var resp statusResponse

	resp.Matches.Active = st.ActiveMatches
	resp.Matches.Reversed = st.ReversedMatches
	resp.Matches.Auto = st.AutoMatches
	resp.Matches.HumanConfirmed = st.HumanConfirmed
	resp.Postings.Posted = st.Posted
	resp.Postings.Failed = st.PostFailed
	resp.Postings.Awaiting = st.AwaitingPost
	resp.PendingReviews = st.PendingReviews

	respond.JSON(w, http.StatusOK, resp)
}
