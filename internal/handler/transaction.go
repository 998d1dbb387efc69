package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/ledger"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type ledgerService interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetClientTransactions(ctx context.Context, clientID string) ([]domain.Transaction, error)
	Transactions(ctx context.Context) ([]domain.Transaction, error)
	AddTransaction(ctx context.Context, req ledger.AddTransactionRequest) (*domain.Transaction, error)
	TransferFunds(ctx context.Context, req ledger.TransferRequest) ([]domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

type TransactionHandler struct {
	ledger ledgerService
}

func NewTransactionHandler(ledger ledgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

type createTransactionRequest struct {
	ClientID    string           `json:"client_id"`
	AccountID   string           `json:"account_id"`
	Type        string           `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
	Currency    string           `json:"currency"`
}

func (r createTransactionRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.ClientID) == "" {
		errs = append(errs, FieldError{Field: "client_id", Message: "required"})
	}
	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, FieldError{Field: "account_id", Message: "required"})
	}

	switch domain.TransactionType(r.Type) {
	case domain.TransactionTypeDeposit, domain.TransactionTypeWithdrawal:
	case "":
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	default:
		errs = append(errs, FieldError{Field: "type", Message: "must be deposit or withdrawal"})
	}

	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	}

	errs = append(errs, validateCurrency(r.Currency)...)
	return errs
}

type createTransferRequest struct {
	FromClientID  string           `json:"from_client_id"`
	FromAccountID string           `json:"from_account_id"`
	ToClientID    string           `json:"to_client_id"`
	ToAccountID   string           `json:"to_account_id"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   string           `json:"description"`
	Currency      string           `json:"currency"`
}

func (r createTransferRequest) Validate() []FieldError {
	var errs []FieldError

	required := []struct{ field, value string }{
		{"from_client_id", r.FromClientID},
		{"from_account_id", r.FromAccountID},
		{"to_client_id", r.ToClientID},
		{"to_account_id", r.ToAccountID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, FieldError{Field: f.field, Message: "required"})
		}
	}

	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	}

	errs = append(errs, validateCurrency(r.Currency)...)
	return errs
}

func validateCurrency(c string) []FieldError {
	if c == "" {
		return []FieldError{{Field: "currency", Message: "required"}}
	}
	if !domain.Currency(c).IsValid() {
		return []FieldError{{Field: "currency", Message: "must be a three-letter upper-case code"}}
	}
	return nil
}

type transactionDTO struct {
	ID                 uuid.UUID       `json:"id"`
	ClientID           string          `json:"client_id"`
	AccountID          string          `json:"account_id"`
	Type               string          `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description"`
	Date               time.Time       `json:"date"`
	Status             string          `json:"status"`
	Currency           string          `json:"currency"`
	RecipientClientID  string          `json:"recipient_client_id,omitempty"`
	RecipientAccountID string          `json:"recipient_account_id,omitempty"`
	Direction          string          `json:"direction,omitempty"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:                 t.ID,
		ClientID:           t.ClientID,
		AccountID:          t.AccountID,
		Type:               string(t.Type),
		Amount:             t.Amount,
		Description:        t.Description,
		Date:               t.Date,
		Status:             string(t.Status),
		Currency:           string(t.Currency),
		RecipientClientID:  t.RecipientClientID,
		RecipientAccountID: t.RecipientAccountID,
		Direction:          string(t.Direction),
	}
}

func toTransactionDTOs(txns []domain.Transaction) []transactionDTO {
	dtos := make([]transactionDTO, len(txns))
	for i := range txns {
		dtos[i] = toTransactionDTO(&txns[i])
	}
	return dtos
}

type transferDTO struct {
	Outgoing transactionDTO `json:"outgoing"`
	Incoming transactionDTO `json:"incoming"`
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	txns, err := h.ledger.Transactions(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to list transactions", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTOs(txns))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	t, err := h.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transaction lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	if t == nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}

func (h *TransactionHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	txns, err := h.ledger.GetClientTransactions(r.Context(), r.PathValue("clientId"))
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to list client transactions", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTOs(txns))
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	t, err := h.ledger.AddTransaction(r.Context(), ledger.AddTransactionRequest{
		ClientID:    req.ClientID,
		AccountID:   req.AccountID,
		Type:        domain.TransactionType(req.Type),
		Amount:      *req.Amount,
		Description: req.Description,
		Currency:    domain.Currency(req.Currency),
	})
	if err != nil {
		log.Warn("transaction creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/transactions/%s", t.ID))
	RespondSuccess(w, http.StatusCreated, toTransactionDTO(t))
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	txns, err := h.ledger.TransferFunds(r.Context(), ledger.TransferRequest{
		FromClientID:  req.FromClientID,
		FromAccountID: req.FromAccountID,
		ToClientID:    req.ToClientID,
		ToAccountID:   req.ToAccountID,
		Amount:        *req.Amount,
		Description:   req.Description,
		Currency:      domain.Currency(req.Currency),
	})
	if err != nil {
		log.Warn("transfer failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, transferDTO{
		Outgoing: toTransactionDTO(&txns[0]),
		Incoming: toTransactionDTO(&txns[1]),
	})
}

// Delete answers 204 for unknown ids as well; deleting twice is not an error.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Warn("transaction deletion failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
