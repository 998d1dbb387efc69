package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/ledger"
	"github.com/josh-kwaku/grey-ledger/internal/testutil"
)

var (
	_ ledger.BalanceAdjuster = (*ClientAccountRepository)(nil)
	_ ledger.SnapshotStore   = (*SnapshotRepository)(nil)
)

func TestClientAccountRepository_Adjust(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewClientAccountRepository(db)

	testutil.SeedClientAccount(t, db, "C1", "A1", "USD", decimal.RequireFromString("100"))

	require.NoError(t, repo.Adjust(ctx, "C1", "A1", decimal.RequireFromString("25.50"), true))
	assert.True(t, decimal.RequireFromString("125.50").Equal(testutil.GetAccountBalance(t, db, "C1", "A1")))

	require.NoError(t, repo.Adjust(ctx, "C1", "A1", decimal.RequireFromString("200"), false))
	assert.True(t, decimal.RequireFromString("-74.50").Equal(testutil.GetAccountBalance(t, db, "C1", "A1")))

	err := repo.Adjust(ctx, "C1", "missing", decimal.RequireFromString("1"), true)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestClientAccountRepository_CreateIfMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewClientAccountRepository(db)

	acct := &domain.Account{ID: "A1", ClientID: "C1", Name: "Checking", Currency: domain.CurrencyUSD, Balance: decimal.RequireFromString("10")}

	created, err := repo.CreateIfMissing(ctx, acct)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, repo.Adjust(ctx, "C1", "A1", decimal.RequireFromString("5"), true))

	created, err = repo.CreateIfMissing(ctx, acct)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.Get(ctx, "C1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.Name)
	assert.Equal(t, domain.CurrencyUSD, got.Currency)
	assert.True(t, decimal.RequireFromString("15").Equal(got.Balance), "existing balance must survive a repeated create")

	_, err = repo.Get(ctx, "C1", "nope")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestClientAccountRepository_GetByClientID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewClientAccountRepository(db)

	testutil.SeedClientAccount(t, db, "C1", "A1", "USD", decimal.Zero)
	testutil.SeedClientAccount(t, db, "C1", "A2", "EUR", decimal.RequireFromString("3"))
	testutil.SeedClientAccount(t, db, "C2", "B1", "GBP", decimal.Zero)

	accounts, err := repo.GetByClientID(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	ids := []string{accounts[0].ID, accounts[1].ID}
	assert.ElementsMatch(t, []string{"A1", "A2"}, ids)

	none, err := repo.GetByClientID(ctx, "C9")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSnapshotRepository_LoadSave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepository(db, "transactions")

	_, found, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	txn := domain.Transaction{
		ID:          uuid.New(),
		ClientID:    "C1",
		AccountID:   "A1",
		Type:        domain.TransactionTypeDeposit,
		Amount:      decimal.RequireFromString("42.10"),
		Description: "paycheck",
		Date:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:      domain.TransactionStatusCompleted,
		Currency:    domain.CurrencyUSD,
	}

	require.NoError(t, repo.Save(ctx, []domain.Transaction{txn}))
	require.NoError(t, repo.Save(ctx, []domain.Transaction{txn, txn}))
	assert.Equal(t, 1, testutil.CountSnapshots(t, db))

	got, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 2)
	assert.Equal(t, txn.ID, got[0].ID)
	assert.True(t, txn.Amount.Equal(got[0].Amount))
	assert.True(t, txn.Date.Equal(got[0].Date))

	other := NewSnapshotRepository(db, "other")
	_, found, err = other.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Save(ctx, nil))
	got, found, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}
