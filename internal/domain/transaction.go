package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	}
	return false
}

// IsCredit reports whether a newly posted transaction of this type adds to the
// account balance. Only deposits do.
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeDeposit
}

type TransactionStatus string

// Records are completed at creation and never transition.
const TransactionStatusCompleted TransactionStatus = "completed"

// TransferDirection tells the two sides of a transfer apart.
type TransferDirection string

const (
	TransferDirectionOutgoing TransferDirection = "outgoing"
	TransferDirectionIncoming TransferDirection = "incoming"
)

// Transaction is a single ledger record. The JSON layout is the snapshot format.
type Transaction struct {
	ID                 uuid.UUID         `json:"id"`
	ClientID           string            `json:"clientId"`
	AccountID          string            `json:"accountId"`
	Type               TransactionType   `json:"type"`
	Amount             decimal.Decimal   `json:"amount"`
	Description        string            `json:"description"`
	Date               time.Time         `json:"date"`
	Status             TransactionStatus `json:"status"`
	Currency           Currency          `json:"currency"`
	RecipientAccountID string            `json:"recipientAccountId,omitempty"`
	RecipientClientID  string            `json:"recipientClientId,omitempty"`
	Direction          TransferDirection `json:"direction,omitempty"`
}

// IsTransferSide reports whether the record is one half of a transfer.
func (t *Transaction) IsTransferSide() bool {
	return t.Type == TransactionTypeTransfer
}
