package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type TransferRequest struct {
	FromClientID  string
	FromAccountID string
	ToClientID    string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	Currency      domain.Currency
}

// TransferFunds records a transfer as an outgoing record for the sender and an
// incoming record for the recipient, returned in that order.
//
// With AtomicTransfers a failed recipient credit is compensated by crediting
// the sender back and nothing is recorded. Without it the sender debit and the
// outgoing record stand and ErrPartialTransfer is returned.
func (s *Service) TransferFunds(ctx context.Context, req TransferRequest) ([]domain.Transaction, error) {
	if err := s.checkAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("TransferFunds: %w", err)
	}

	txns, err := s.commitTransfer(ctx, req)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, fmt.Sprintf("Transfer of %s to account %s completed successfully",
		formatMoney(req.Amount, req.Currency), req.ToAccountID))

	return txns, nil
}

func (s *Service) commitTransfer(ctx context.Context, req TransferRequest) ([]domain.Transaction, error) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readableLocked(); err != nil {
		return nil, fmt.Errorf("TransferFunds: %w", err)
	}

	now := s.opts.Now()
	outgoing := domain.Transaction{
		ID:                 s.newIDLocked(),
		ClientID:           req.FromClientID,
		AccountID:          req.FromAccountID,
		Type:               domain.TransactionTypeTransfer,
		Amount:             req.Amount,
		Description:        transferDescription("Transfer to", req.ToAccountID, req.Description),
		Date:               now,
		Status:             domain.TransactionStatusCompleted,
		Currency:           req.Currency,
		RecipientAccountID: req.ToAccountID,
		RecipientClientID:  req.ToClientID,
		Direction:          domain.TransferDirectionOutgoing,
	}
	// outgoing is not issued yet, so newIDLocked cannot see it.
	incomingID := s.newIDLocked()
	for incomingID == outgoing.ID {
		incomingID = s.newIDLocked()
	}
	incoming := domain.Transaction{
		ID:                 incomingID,
		ClientID:           req.ToClientID,
		AccountID:          req.ToAccountID,
		Type:               domain.TransactionTypeTransfer,
		Amount:             req.Amount,
		Description:        transferDescription("Transfer from", req.FromAccountID, req.Description),
		Date:               now,
		Status:             domain.TransactionStatusCompleted,
		Currency:           req.Currency,
		RecipientAccountID: req.FromAccountID,
		RecipientClientID:  req.FromClientID,
		Direction:          domain.TransferDirectionIncoming,
	}

	if err := s.balances.Adjust(ctx, req.FromClientID, req.FromAccountID, req.Amount, false); err != nil {
		return nil, fmt.Errorf("TransferFunds: debit sender: %w", err)
	}

	if err := s.balances.Adjust(ctx, req.ToClientID, req.ToAccountID, req.Amount, true); err != nil {
		return nil, s.handleFailedCredit(ctx, outgoing, err)
	}

	s.appendLocked(outgoing, incoming)
	s.persistLocked(ctx)

	log.Info("transfer completed",
		"outgoing_id", outgoing.ID,
		"incoming_id", incoming.ID,
		"from_client_id", req.FromClientID,
		"from_account_id", req.FromAccountID,
		"to_client_id", req.ToClientID,
		"to_account_id", req.ToAccountID,
		"amount", req.Amount,
		"currency", req.Currency,
	)
	return []domain.Transaction{outgoing, incoming}, nil
}

// handleFailedCredit runs with the write lock held after the sender has been
// debited but the recipient credit failed.
func (s *Service) handleFailedCredit(ctx context.Context, outgoing domain.Transaction, creditErr error) error {
	log := logging.FromContext(ctx)

	if s.opts.AtomicTransfers {
		compErr := s.balances.Adjust(ctx, outgoing.ClientID, outgoing.AccountID, outgoing.Amount, true)
		if compErr == nil {
			log.Warn("transfer compensated after failed credit",
				"from_account_id", outgoing.AccountID,
				"to_account_id", outgoing.RecipientAccountID,
				"error", creditErr,
			)
			return fmt.Errorf("TransferFunds: credit recipient: %w: %w", domain.ErrTransferFailed, creditErr)
		}
		log.Error("transfer compensation failed",
			"from_account_id", outgoing.AccountID,
			"error", compErr,
		)
		creditErr = errors.Join(creditErr, fmt.Errorf("compensate sender: %w", compErr))
	}

	// The sender debit stands, so its record does too.
	s.appendLocked(outgoing)
	s.persistLocked(ctx)

	log.Error("transfer partially applied",
		"outgoing_id", outgoing.ID,
		"from_account_id", outgoing.AccountID,
		"to_account_id", outgoing.RecipientAccountID,
		"error", creditErr,
	)
	return fmt.Errorf("TransferFunds: credit recipient: %w: %w", domain.ErrPartialTransfer, creditErr)
}

func transferDescription(prefix, counterpartAccountID, description string) string {
	if description == "" {
		return fmt.Sprintf("%s %s", prefix, counterpartAccountID)
	}
	return fmt.Sprintf("%s %s: %s", prefix, counterpartAccountID, description)
}
