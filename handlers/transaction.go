package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"financetracker/backend/models"
	"financetracker/backend/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// TransactionService is implemented by *services.TransactionService.
type TransactionService interface {
	Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	Remove(ctx context.Context, id string) (models.Transaction, error)
	Summarize(ctx context.Context) (models.Summary, error)
}

// TransactionHandler serves the /transactions and /summary routes.
type TransactionHandler struct {
	service TransactionService
}

func NewTransactionHandler(service TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// createTransactionRequest accepts amount as either a JSON number or a
// numeric string.
type createTransactionRequest struct {
	Date     string          `json:"date"`
	Name     string          `json:"name"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
}

func (req createTransactionRequest) input() models.TransactionInput {
	return models.TransactionInput{
		Date:     req.Date,
		Name:     req.Name,
		Amount:   rawAmount(req.Amount),
		Category: req.Category,
	}
}

func rawAmount(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}

type deleteTransactionResponse struct {
	Message            string             `json:"message"`
	DeletedTransaction models.Transaction `json:"deletedTransaction"`
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	transactions, err := h.service.List(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Error fetching transactions")
		writeMessage(w, r, http.StatusInternalServerError, "Error fetching transactions")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	writeJSON(w, r, http.StatusOK, transactions)
}

// AddTransaction handles POST /transactions
func (h *TransactionHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Invalid transaction request body")
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			writeMessage(w, r, http.StatusBadRequest, validationErr.Message)
			return
		}
		logger.Error().Err(err).Msg("Error creating transaction")
		writeMessage(w, r, http.StatusInternalServerError, "Error creating transaction")
		return
	}

	writeJSON(w, r, http.StatusCreated, created)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logger := zerolog.Ctx(r.Context()).With().Str("transaction_id", id).Logger()

	deleted, err := h.service.Remove(r.Context(), id)
	if err != nil {
		var (
			invalidErr  *services.InvalidIDError
			notFoundErr *services.NotFoundError
		)
		switch {
		case errors.As(err, &invalidErr):
			writeMessage(w, r, http.StatusBadRequest, "Invalid transaction ID format")
		case errors.As(err, &notFoundErr):
			writeMessage(w, r, http.StatusNotFound, "Transaction not found")
		default:
			logger.Error().Err(err).Msg("Error deleting transaction")
			writeErrorCause(w, r, http.StatusInternalServerError, "Error deleting transaction", err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, deleteTransactionResponse{
		Message:            "Transaction deleted successfully",
		DeletedTransaction: deleted,
	})
}

// GetSummary handles GET /summary
func (h *TransactionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error building summary")
		writeMessage(w, r, http.StatusInternalServerError, "Error building summary")
		return
	}

	writeJSON(w, r, http.StatusOK, summary)
}

// GetCategories handles GET /categories. The list is a suggestion only; any
// non-empty category is accepted on create.
func GetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, models.SuggestedCategories)
}
