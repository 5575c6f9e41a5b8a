package receipt

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/http/respond"
	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type Handler struct {
	svc *receipt.Service
}

func NewHandler(svc *receipt.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/reject", h.reject)
	r.Patch("/{id}/restore", h.restore)
}

type receiptResponse struct {
	ID          uuid.UUID             `json:"id"`
	ExternalID  string                `json:"external_id,omitempty"`
	Amount      int64                 `json:"amount"`
	AmountText  string                `json:"amount_text"`
	Currency    string                `json:"currency"`
	Direction   transaction.Direction `json:"direction"`
	Status      receipt.Status        `json:"status"`
	Vendor      string                `json:"vendor"`
	Category    *string               `json:"category,omitempty"`
	Date        time.Time             `json:"date"`
	DocumentURL string                `json:"document_url,omitempty"`
	MatchID     *uuid.UUID            `json:"match_id,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   *time.Time            `json:"updated_at,omitempty"`
}

func toResponse(rc *receipt.Receipt) receiptResponse {
	return receiptResponse{
		ID:          rc.ID,
		ExternalID:  rc.ExternalID,
		Amount:      rc.Amount,
		AmountText:  money.FormatCurrency(rc.Amount, rc.Currency),
		Currency:    rc.Currency,
		Direction:   rc.Direction,
		Status:      rc.Status,
		Vendor:      rc.Vendor,
		Category:    rc.Category,
		Date:        rc.Date,
		DocumentURL: rc.DocumentURL,
		MatchID:     rc.MatchID,
		CreatedAt:   rc.CreatedAt,
		UpdatedAt:   rc.UpdatedAt,
	}
}

type createReceiptRequest struct {
	ExternalID  string                `json:"external_id"`
	Amount      int64                 `json:"amount"`
	Currency    string                `json:"currency"`
	Direction   transaction.Direction `json:"direction,omitempty"`
	Vendor      string                `json:"vendor"`
	Category    *string               `json:"category,omitempty"`
	Date        time.Time             `json:"date"`
	DocumentURL string                `json:"document_url,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createReceiptRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	rc, err := h.svc.Create(r.Context(), receipt.CreateParams{
		ExternalID:  req.ExternalID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Date:        req.Date,
		Vendor:      req.Vendor,
		Category:    req.Category,
		Direction:   req.Direction,
		DocumentURL: req.DocumentURL,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(rc))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := receipt.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		filter.Status = new(receipt.Status(s))
	}

	if s := q.Get("currency"); s != "" {
		filter.Currency = new(strings.ToUpper(s))
	}

	var err error

	if filter.StartDate, err = respond.DateQuery(r, "start_date"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.EndDate, err = respond.DateQuery(r, "end_date"); err != nil {
		respond.Error(w, r, err)
		return
	}

	rs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]receiptResponse, len(rs))
	for i, rc := range rs {
		resp[i] = toResponse(rc)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.IDParam(w, r, "id")
	if !ok {
		return
	}

	rc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(rc))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Reject)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Restore)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id uuid.UUID) error) {
	id, ok := respond.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := apply(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
