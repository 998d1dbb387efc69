// Package seed holds the demo dataset the ledger starts from when no snapshot
// has been written yet.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

type Dataset struct {
	Clients      []domain.Client
	Transactions []domain.Transaction
}

type fileAccount struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
	Balance  string `yaml:"balance"`
}

type fileClient struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Accounts []fileAccount `yaml:"accounts"`
}

type fileTransaction struct {
	ID                 string `yaml:"id"`
	ClientID           string `yaml:"client_id"`
	AccountID          string `yaml:"account_id"`
	Type               string `yaml:"type"`
	Amount             string `yaml:"amount"`
	Description        string `yaml:"description"`
	Date               string `yaml:"date"`
	Currency           string `yaml:"currency"`
	RecipientClientID  string `yaml:"recipient_client_id"`
	RecipientAccountID string `yaml:"recipient_account_id"`
	Direction          string `yaml:"direction"`
}

type file struct {
	Clients      []fileClient      `yaml:"clients"`
	Transactions []fileTransaction `yaml:"transactions"`
}

// Default parses the embedded dataset.
func Default() (*Dataset, error) {
	ds, err := Parse(defaultSeed)
	if err != nil {
		return nil, fmt.Errorf("Default: %w", err)
	}
	return ds, nil
}

func Parse(data []byte) (*Dataset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("Parse: %w", err)
	}

	ds := &Dataset{
		Clients:      make([]domain.Client, 0, len(f.Clients)),
		Transactions: make([]domain.Transaction, 0, len(f.Transactions)),
	}

	for _, fc := range f.Clients {
		c := domain.Client{ID: fc.ID, Name: fc.Name}
		for _, fa := range fc.Accounts {
			a, err := fa.toDomain(fc.ID)
			if err != nil {
				return nil, fmt.Errorf("Parse: client %s: %w", fc.ID, err)
			}
			c.Accounts = append(c.Accounts, a)
		}
		ds.Clients = append(ds.Clients, c)
	}

	seen := make(map[uuid.UUID]struct{}, len(f.Transactions))
	for i, ft := range f.Transactions {
		t, err := ft.toDomain()
		if err != nil {
			return nil, fmt.Errorf("Parse: transaction %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("Parse: transaction %d: duplicate id %s", i, t.ID)
		}
		seen[t.ID] = struct{}{}
		ds.Transactions = append(ds.Transactions, t)
	}

	return ds, nil
}

func (fa fileAccount) toDomain(clientID string) (domain.Account, error) {
	balance := decimal.Zero
	if fa.Balance != "" {
		b, err := decimal.NewFromString(fa.Balance)
		if err != nil {
			return domain.Account{}, fmt.Errorf("account %s balance: %w", fa.ID, err)
		}
		balance = b
	}
	cur := domain.Currency(fa.Currency)
	if !cur.IsValid() {
		return domain.Account{}, fmt.Errorf("account %s currency %q: %w", fa.ID, fa.Currency, domain.ErrInvalidRequest)
	}
	return domain.Account{
		ID:       fa.ID,
		ClientID: clientID,
		Name:     fa.Name,
		Currency: cur,
		Balance:  balance,
	}, nil
}

func (ft fileTransaction) toDomain() (domain.Transaction, error) {
	id, err := uuid.Parse(ft.ID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("id: %w", err)
	}
	typ := domain.TransactionType(ft.Type)
	if !typ.IsValid() {
		return domain.Transaction{}, fmt.Errorf("type %q: %w", ft.Type, domain.ErrInvalidType)
	}
	amount, err := decimal.NewFromString(ft.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	date, err := time.Parse(time.RFC3339, ft.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("date: %w", err)
	}

	return domain.Transaction{
		ID:                 id,
		ClientID:           ft.ClientID,
		AccountID:          ft.AccountID,
		Type:               typ,
		Amount:             amount,
		Description:        ft.Description,
		Date:               date.UTC(),
		Status:             domain.TransactionStatusCompleted,
		Currency:           domain.Currency(ft.Currency),
		RecipientClientID:  ft.RecipientClientID,
		RecipientAccountID: ft.RecipientAccountID,
		Direction:          domain.TransferDirection(ft.Direction),
	}, nil
}
