package alias

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/receiptmatch/internal/alias"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/respond"
)

type Handler struct {
	svc *alias.Service
}

func NewHandler(svc *alias.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Counterparty string `json:"counterparty"`
	Vendor       string `json:"vendor"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	counterparty := r.URL.Query().Get("counterparty")
	if counterparty == "" {
		respond.BadRequest(w, "counterparty query parameter is required")
		return
	}

	vendor, err := h.svc.Suggest(r.Context(), counterparty)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		Counterparty: counterparty,
		Vendor:       vendor,
	})
}

type learnRequest struct {
	Counterparty string `json:"counterparty"`
	Vendor       string `json:"vendor"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if req.Counterparty == "" || req.Vendor == "" {
		respond.BadRequest(w, "counterparty and vendor are required")
		return
	}

	if err := h.svc.Learn(r.Context(), req.Counterparty, req.Vendor); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
