package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type AddTransactionRequest struct {
	ClientID    string
	AccountID   string
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	Currency    domain.Currency
}

// AddTransaction posts a deposit or withdrawal. The balance is adjusted first;
// the record is only appended once the adjustment succeeded. Transfers go
// through TransferFunds and are rejected here with ErrInvalidType.
func (s *Service) AddTransaction(ctx context.Context, req AddTransactionRequest) (*domain.Transaction, error) {
	switch req.Type {
	case domain.TransactionTypeDeposit, domain.TransactionTypeWithdrawal:
	default:
		return nil, fmt.Errorf("AddTransaction: %q: %w", req.Type, domain.ErrInvalidType)
	}
	if err := s.checkAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("AddTransaction: %w", err)
	}

	t, err := s.commitAdd(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("AddTransaction: %w", err)
	}

	if t.Type == domain.TransactionTypeDeposit {
		s.notify(ctx, fmt.Sprintf("Deposit of %s completed successfully", formatMoney(t.Amount, t.Currency)))
	} else {
		s.notify(ctx, fmt.Sprintf("Withdrawal of %s completed successfully", formatMoney(t.Amount, t.Currency)))
	}

	return &t, nil
}

// commitAdd holds the write lock for the adjust, append and persist steps only.
// Notification happens after it returns.
func (s *Service) commitAdd(ctx context.Context, req AddTransactionRequest) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readableLocked(); err != nil {
		return domain.Transaction{}, err
	}

	t := domain.Transaction{
		ID:          s.newIDLocked(),
		ClientID:    req.ClientID,
		AccountID:   req.AccountID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        s.opts.Now(),
		Status:      domain.TransactionStatusCompleted,
		Currency:    req.Currency,
	}

	if err := s.balances.Adjust(ctx, t.ClientID, t.AccountID, t.Amount, t.Type.IsCredit()); err != nil {
		return domain.Transaction{}, fmt.Errorf("adjust balance: %w", err)
	}

	s.appendLocked(t)
	s.persistLocked(ctx)

	logging.FromContext(ctx).Info("transaction added",
		"transaction_id", t.ID,
		"client_id", t.ClientID,
		"account_id", t.AccountID,
		"type", t.Type,
		"amount", t.Amount,
		"currency", t.Currency,
	)
	return t, nil
}

// DeleteTransaction removes a record and reverses its balance effect. Unknown
// ids are a silent no-op.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readableLocked(); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}

	i := s.indexLocked(id)
	if i < 0 {
		log.Debug("delete of unknown transaction ignored", "transaction_id", id)
		return nil
	}
	t := s.txns[i]

	isCredit := s.reversalIsCredit(&t)
	if err := s.balances.Adjust(ctx, t.ClientID, t.AccountID, t.Amount, isCredit); err != nil {
		return fmt.Errorf("DeleteTransaction: reverse balance: %w", err)
	}

	s.txns = slices.Delete(s.txns, i, i+1)
	s.persistLocked(ctx)

	log.Info("transaction deleted",
		"transaction_id", t.ID,
		"client_id", t.ClientID,
		"account_id", t.AccountID,
		"type", t.Type,
		"reversal_credit", isCredit,
	)
	return nil
}

func (s *Service) reversalIsCredit(t *domain.Transaction) bool {
	if s.opts.Reversal == ReversalLegacy {
		return t.Type != domain.TransactionTypeDeposit
	}
	switch t.Type {
	case domain.TransactionTypeDeposit:
		return false
	case domain.TransactionTypeTransfer:
		// Records without a direction predate it; treat them the legacy way.
		return t.Direction != domain.TransferDirectionIncoming
	default:
		return true
	}
}
