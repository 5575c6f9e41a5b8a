package importcsv

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/http/respond"
	"github.com/MrJamesThe3rd/receiptmatch/internal/importer"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type Handler struct {
	importSvc  *importer.Service
	txSvc      *transaction.Service
	receiptSvc *receipt.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, receiptSvc *receipt.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		txSvc:      txSvc,
		receiptSvc: receiptSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/transactions", h.importTransactions)
	r.Post("/transactions/confirm", h.confirmImport)
	r.Post("/receipts", h.importReceipts)
}

type transactionResponse struct {
	ID           uuid.UUID             `json:"id"`
	Amount       int64                 `json:"amount"`
	Currency     string                `json:"currency"`
	Direction    transaction.Direction `json:"direction"`
	Status       transaction.Status    `json:"status"`
	Counterparty string                `json:"counterparty"`
	Description  string                `json:"description"`
	Date         time.Time             `json:"date"`
	CreatedAt    time.Time             `json:"created_at"`
}

type invalidRowDTO struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
	Invalid      []invalidRowDTO       `json:"invalid,omitempty"`
}

type createParamsDTO struct {
	ExternalID   string                `json:"external_id,omitempty"`
	Amount       int64                 `json:"amount"`
	Currency     string                `json:"currency"`
	Direction    transaction.Direction `json:"direction"`
	Counterparty string                `json:"counterparty"`
	Description  string                `json:"description"`
	Category     *string               `json:"category,omitempty"`
	Date         time.Time             `json:"date"`
}

type conflictDTO struct {
	Incoming createParamsDTO     `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
	Invalid   []invalidRowDTO   `json:"invalid,omitempty"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

// importTransactions stores a bank statement. When rows already exist the
// upload is held back and the caller gets the split to confirm.
func (h *Handler) importTransactions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	bank := importer.Bank(r.FormValue("bank"))
	if bank == "" {
		respond.BadRequest(w, "bank field is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(bank, file)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	invalid := make([]invalidRowDTO, 0, len(result.Invalid))
	for _, row := range result.Invalid {
		invalid = append(invalid, invalidRowDTO{Row: row.Index, Error: row.Err.Error()})
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
			Invalid:   invalid,
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	resp := toSuccessResponse(result.Imported)
	resp.Invalid = invalid

	respond.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, transaction.CreateParams{
			ExternalID:   p.ExternalID,
			Amount:       p.Amount,
			Currency:     p.Currency,
			Date:         p.Date,
			Counterparty: p.Counterparty,
			Description:  p.Description,
			Direction:    p.Direction,
			Category:     p.Category,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(txs))
}

type receiptImportResponse struct {
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Invalid  []invalidRowDTO `json:"invalid,omitempty"`
}

// importReceipts stores a receipt extraction export. Receipts whose external
// id is already known are skipped.
func (h *Handler) importReceipts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	parsed, err := h.importSvc.ImportReceipts(file)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	resp := receiptImportResponse{}
	for _, row := range parsed.Invalid {
		resp.Invalid = append(resp.Invalid, invalidRowDTO{Row: row.Line, Error: row.Err.Error()})
	}

	result, err := h.receiptSvc.Import(r.Context(), parsed.Receipts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp.Imported = len(result.Imported)
	resp.Skipped = result.Skipped

	for _, row := range result.Invalid {
		resp.Invalid = append(resp.Invalid, invalidRowDTO{Row: row.Index, Error: row.Err.Error()})
	}

	respond.JSON(w, http.StatusCreated, resp)
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		Amount:       tx.Amount,
		Currency:     tx.Currency,
		Direction:    tx.Direction,
		Status:       tx.Status,
		Counterparty: tx.Counterparty,
		Description:  tx.Description,
		Date:         tx.Date,
		CreatedAt:    tx.CreatedAt,
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		ExternalID:   p.ExternalID,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Direction:    p.Direction,
		Counterparty: p.Counterparty,
		Description:  p.Description,
		Category:     p.Category,
		Date:         p.Date,
	}
}
