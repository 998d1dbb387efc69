package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

const accountColumns = `client_id, account_id, name, currency, balance`

// ClientAccountRepository is the Postgres-backed balance store.
type ClientAccountRepository struct {
	db *sql.DB
}

func NewClientAccountRepository(db *sql.DB) *ClientAccountRepository {
	return &ClientAccountRepository{db: db}
}

// Adjust applies a signed change to one account. Unlike the in-memory store it
// refuses accounts that were never created.
func (r *ClientAccountRepository) Adjust(ctx context.Context, clientID, accountID string, amount decimal.Decimal, isCredit bool) error {
	delta := amount
	if !isCredit {
		delta = amount.Neg()
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE client_accounts SET balance = balance + $1, updated_at = now()
		WHERE client_id = $2 AND account_id = $3`,
		delta, clientID, accountID,
	)
	if err != nil {
		return fmt.Errorf("Adjust: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Adjust: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Adjust: %s/%s: %w", clientID, accountID, domain.ErrAccountNotFound)
	}
	return nil
}

func (r *ClientAccountRepository) Get(ctx context.Context, clientID, accountID string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM client_accounts WHERE client_id = $1 AND account_id = $2`,
		clientID, accountID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Get: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (r *ClientAccountRepository) GetByClientID(ctx context.Context, clientID string) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM client_accounts WHERE client_id = $1 ORDER BY created_at, account_id`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByClientID: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByClientID: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByClientID: rows: %w", err)
	}
	return accounts, nil
}

// CreateIfMissing inserts the account unless it already exists, leaving an
// existing balance untouched. Returns whether a row was inserted.
func (r *ClientAccountRepository) CreateIfMissing(ctx context.Context, a *domain.Account) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO client_accounts (client_id, account_id, name, currency, balance)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id, account_id) DO NOTHING`,
		a.ClientID, a.ID, a.Name, a.Currency, a.Balance,
	)
	if err != nil {
		return false, fmt.Errorf("CreateIfMissing: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("CreateIfMissing: rows affected: %w", err)
	}
	return rows == 1, nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(&a.ClientID, &a.ID, &a.Name, &a.Currency, &a.Balance)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
