package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type balanceReader interface {
	GetByClientID(ctx context.Context, clientID string) ([]domain.Account, error)
}

type AccountHandler struct {
	balances balanceReader
}

func NewAccountHandler(balances balanceReader) *AccountHandler {
	return &AccountHandler{balances: balances}
}

type accountDTO struct {
	ID       string          `json:"id"`
	ClientID string          `json:"client_id"`
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:       a.ID,
		ClientID: a.ClientID,
		Name:     a.Name,
		Currency: string(a.Currency),
		Balance:  a.Balance,
	}
}

func (h *AccountHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.balances.GetByClientID(r.Context(), r.PathValue("clientId"))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}
