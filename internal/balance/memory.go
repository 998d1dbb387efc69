package balance

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type accountKey struct {
	clientID  string
	accountID string
}

// MemoryStore keeps client account balances in process. Adjusting an account
// it has never seen opens it at zero. Balances are not persisted: a new store
// starts from the seeded clients even when the ledger reloads a snapshot.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[accountKey]*domain.Account
	order    []accountKey
}

func NewMemoryStore(clients []domain.Client) *MemoryStore {
	s := &MemoryStore{accounts: make(map[accountKey]*domain.Account)}
	for _, c := range clients {
		for _, a := range c.Accounts {
			a.ClientID = c.ID
			s.put(a)
		}
	}
	return s
}

func (s *MemoryStore) put(a domain.Account) {
	k := accountKey{clientID: a.ClientID, accountID: a.ID}
	if _, ok := s.accounts[k]; !ok {
		s.order = append(s.order, k)
	}
	s.accounts[k] = &a
}

func (s *MemoryStore) Adjust(ctx context.Context, clientID, accountID string, amount decimal.Decimal, isCredit bool) error {
	if clientID == "" || accountID == "" {
		return fmt.Errorf("Adjust: client and account are required: %w", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := accountKey{clientID: clientID, accountID: accountID}
	acct, ok := s.accounts[k]
	if !ok {
		logging.FromContext(ctx).Debug("opening account on first adjustment",
			"client_id", clientID,
			"account_id", accountID,
		)
		s.put(domain.Account{ID: accountID, ClientID: clientID})
		acct = s.accounts[k]
	}

	if isCredit {
		acct.Balance = acct.Balance.Add(amount)
	} else {
		acct.Balance = acct.Balance.Sub(amount)
	}
	return nil
}

func (s *MemoryStore) GetByClientID(_ context.Context, clientID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Account, 0)
	for _, k := range s.order {
		if k.clientID == clientID {
			out = append(out, *s.accounts[k])
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, clientID, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[accountKey{clientID: clientID, accountID: accountID}]
	if !ok {
		return nil, fmt.Errorf("Get: %w", domain.ErrAccountNotFound)
	}
	a := *acct
	return &a, nil
}
