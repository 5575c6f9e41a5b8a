package transaction

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/http/respond"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/ignore", h.ignore)
	r.Patch("/{id}/unignore", h.unignore)
}

type createTransactionRequest struct {
	ExternalID   string                `json:"external_id"`
	Amount       int64                 `json:"amount"`
	Currency     string                `json:"currency"`
	Direction    transaction.Direction `json:"direction"`
	Counterparty string                `json:"counterparty"`
	Description  string                `json:"description"`
	Category     *string               `json:"category,omitempty"`
	Date         time.Time             `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		ExternalID:   req.ExternalID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Date:         req.Date,
		Counterparty: req.Counterparty,
		Description:  req.Description,
		Direction:    req.Direction,
		Category:     req.Category,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		filter.Status = new(transaction.Status(s))
	}

	if s := q.Get("direction"); s != "" {
		filter.Direction = new(transaction.Direction(s))
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

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.IDParam(w, r, "id")
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) ignore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Ignore)
}

func (h *Handler) unignore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Unignore)
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
