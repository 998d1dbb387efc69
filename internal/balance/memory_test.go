package balance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

func seededStore() *MemoryStore {
	return NewMemoryStore([]domain.Client{
		{
			ID:   "C1",
			Name: "Ada",
			Accounts: []domain.Account{
				{ID: "A1", Name: "Checking", Currency: domain.CurrencyUSD, Balance: decimal.NewFromInt(500)},
				{ID: "A3", Name: "Savings", Currency: domain.CurrencyUSD, Balance: decimal.NewFromInt(1000)},
			},
		},
		{
			ID:       "C2",
			Name:     "Grace",
			Accounts: []domain.Account{{ID: "A2", Currency: domain.CurrencyUSD, Balance: decimal.NewFromInt(20)}},
		},
	})
}

func TestMemoryStore_Adjust(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		isCredit bool
		want     string
	}{
		{name: "credit", amount: "100", isCredit: true, want: "600"},
		{name: "debit", amount: "100", isCredit: false, want: "400"},
		{name: "debit below zero is allowed", amount: "750.25", isCredit: false, want: "-250.25"},
		{name: "fractional credit", amount: "0.10", isCredit: true, want: "500.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := seededStore()
			ctx := context.Background()

			require.NoError(t, s.Adjust(ctx, "C1", "A1", decimal.RequireFromString(tc.amount), tc.isCredit))

			acct, err := s.Get(ctx, "C1", "A1")
			require.NoError(t, err)
			assert.True(t, acct.Balance.Equal(decimal.RequireFromString(tc.want)),
				"balance: got %s, want %s", acct.Balance, tc.want)
		})
	}
}

func TestMemoryStore_NewStoreStartsFromSeed(t *testing.T) {
	ctx := context.Background()
	first := seededStore()
	require.NoError(t, first.Adjust(ctx, "C1", "A1", decimal.NewFromInt(100), true))

	acct, err := seededStore().Get(ctx, "C1", "A1")
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(500)), "balance: got %s", acct.Balance)
}

func TestMemoryStore_AdjustOpensUnknownAccount(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	require.NoError(t, s.Adjust(ctx, "C3", "A9", decimal.NewFromInt(15), true))

	acct, err := s.Get(ctx, "C3", "A9")
	require.NoError(t, err)
	assert.Equal(t, "C3", acct.ClientID)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(15)))
}

func TestMemoryStore_AdjustRequiresIDs(t *testing.T) {
	s := seededStore()

	err := s.Adjust(context.Background(), "", "A1", decimal.NewFromInt(1), true)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestMemoryStore_GetByClientID(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	accounts, err := s.GetByClientID(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "A1", accounts[0].ID)
	assert.Equal(t, "A3", accounts[1].ID)
	assert.Equal(t, "C1", accounts[0].ClientID)

	accounts[0].Balance = decimal.Zero
	again, err := s.GetByClientID(ctx, "C1")
	require.NoError(t, err)
	assert.True(t, again[0].Balance.Equal(decimal.NewFromInt(500)), "callers get copies")

	none, err := s.GetByClientID(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	_, err := seededStore().Get(context.Background(), "C1", "nope")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
