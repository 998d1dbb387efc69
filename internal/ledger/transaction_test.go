package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

func TestAddTransaction_Deposit(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	got, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "100"))
	require.NoError(t, err)

	all, err := f.svc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	assert.Equal(t, got.ID, all[0].ID)
	assert.Equal(t, domain.TransactionTypeDeposit, got.Type)
	assert.True(t, got.Amount.Equal(dec("100")))
	assert.Equal(t, domain.TransactionStatusCompleted, got.Status)
	assert.Equal(t, fixedNow, got.Date)
	assert.Empty(t, got.RecipientAccountID)
	assert.Empty(t, got.Direction)

	require.Len(t, f.balances.calls, 1)
	call := f.balances.calls[0]
	assert.Equal(t, "C1", call.ClientID)
	assert.Equal(t, "A1", call.AccountID)
	assert.True(t, call.Amount.Equal(dec("100")))
	assert.True(t, call.IsCredit)

	assert.Equal(t, []string{"Deposit of 100.00 USD completed successfully"}, f.notifier.messages)
	assert.Equal(t, 1, f.store.saves)
	assert.Len(t, f.store.txns, 1)
}

func TestAddTransaction_Withdrawal(t *testing.T) {
	f := newFixture(t, Options{})

	got, err := f.svc.AddTransaction(context.Background(), AddTransactionRequest{
		ClientID:  "C1",
		AccountID: "A1",
		Type:      domain.TransactionTypeWithdrawal,
		Amount:    dec("42.5"),
		Currency:  domain.CurrencyEUR,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeWithdrawal, got.Type)
	require.Len(t, f.balances.calls, 1)
	assert.False(t, f.balances.calls[0].IsCredit)
	assert.Equal(t, []string{"Withdrawal of 42.50 EUR completed successfully"}, f.notifier.messages)
}

func TestAddTransaction_IDsAreUniqueAndCompleted(t *testing.T) {
	f := newFixture(t, Options{NewID: uuid.New})
	ctx := context.Background()

	seen := make(map[uuid.UUID]bool)
	for range 100 {
		got, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "1"))
		require.NoError(t, err)
		assert.False(t, seen[got.ID], "duplicate id %s", got.ID)
		seen[got.ID] = true
		assert.Equal(t, domain.TransactionStatusCompleted, got.Status)
	}
}

func TestAddTransaction_SkipsIDsAlreadyInUse(t *testing.T) {
	taken := uuid.New()
	fresh := uuid.New()
	ids := []uuid.UUID{taken, taken, fresh}
	next := func() uuid.UUID {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	f := newFixture(t, Options{NewID: next})
	ctx := context.Background()

	first, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "1"))
	require.NoError(t, err)
	second, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "1"))
	require.NoError(t, err)

	assert.Equal(t, taken, first.ID)
	assert.Equal(t, fresh, second.ID)
}

func TestAddTransaction_NeverReusesDeletedIDs(t *testing.T) {
	repeated := uuid.New()
	fresh := uuid.New()
	ids := []uuid.UUID{repeated, repeated, repeated, fresh}
	next := func() uuid.UUID {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	f := newFixture(t, Options{NewID: next})
	ctx := context.Background()

	first, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "1"))
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteTransaction(ctx, first.ID))

	second, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "1"))
	require.NoError(t, err)

	assert.Equal(t, repeated, first.ID)
	assert.Equal(t, fresh, second.ID)
}

func TestLoad_LoadedIDsAreNeverReissued(t *testing.T) {
	loaded := uuid.New()
	fresh := uuid.New()
	ids := []uuid.UUID{loaded, fresh}
	next := func() uuid.UUID {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	seed := []domain.Transaction{{ID: loaded, ClientID: "C1", AccountID: "A1", Type: domain.TransactionTypeDeposit, Amount: dec("5")}}
	svc := NewService(&fakeBalances{}, &fakeNotifier{}, &fakeStore{}, Options{Seed: seed, NewID: next})
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))
	require.NoError(t, svc.DeleteTransaction(ctx, loaded))

	got, err := svc.AddTransaction(ctx, deposit("C1", "A1", "1"))
	require.NoError(t, err)
	assert.Equal(t, fresh, got.ID)
}

func TestAddTransaction_Validation(t *testing.T) {
	tests := []struct {
		name     string
		validate bool
		req      AddTransactionRequest
		wantErr  error
	}{
		{
			name: "negative amount accepted when validation is off",
			req:  deposit("C1", "A1", "-5"),
		},
		{
			name: "zero amount accepted when validation is off",
			req:  deposit("C1", "A1", "0"),
		},
		{
			name:     "negative amount rejected",
			validate: true,
			req:      deposit("C1", "A1", "-5"),
			wantErr:  domain.ErrInvalidAmount,
		},
		{
			name:     "zero amount rejected",
			validate: true,
			req:      deposit("C1", "A1", "0"),
			wantErr:  domain.ErrInvalidAmount,
		},
		{
			name:     "positive amount accepted",
			validate: true,
			req:      deposit("C1", "A1", "0.01"),
		},
		{
			name: "transfer type must go through TransferFunds",
			req: func() AddTransactionRequest {
				r := deposit("C1", "A1", "5")
				r.Type = domain.TransactionTypeTransfer
				return r
			}(),
			wantErr: domain.ErrInvalidType,
		},
		{
			name: "unknown type",
			req: func() AddTransactionRequest {
				r := deposit("C1", "A1", "5")
				r.Type = "refund"
				return r
			}(),
			wantErr: domain.ErrInvalidType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, Options{ValidateAmounts: tc.validate})

			got, err := f.svc.AddTransaction(context.Background(), tc.req)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)
				assert.Empty(t, f.balances.calls)
				assert.Zero(t, f.store.saves)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Amount.Equal(tc.req.Amount))
		})
	}
}

func TestAddTransaction_AdjustFailureRecordsNothing(t *testing.T) {
	f := newFixture(t, Options{})
	f.balances.failOn = func(adjustCall) error { return domain.ErrAccountNotFound }

	_, err := f.svc.AddTransaction(context.Background(), deposit("C1", "missing", "10"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	all, err := f.svc.Transactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.notifier.messages)
	assert.Zero(t, f.store.saves)
}

func TestAddTransaction_SideEffectFailuresDoNotFail(t *testing.T) {
	f := newFixture(t, Options{})
	f.notifier.err = errors.New("webhook down")
	f.store.saveErr = errors.New("read-only filesystem")

	got, err := f.svc.AddTransaction(context.Background(), deposit("C1", "A1", "10"))
	require.NoError(t, err)
	require.NotNil(t, got)

	all, err := f.svc.Transactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, f.notifier.messages, 1)
}

func TestDeleteTransaction_Deposit(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	added, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "100"))
	require.NoError(t, err)
	f.balances.calls = nil
	f.notifier.messages = nil

	require.NoError(t, f.svc.DeleteTransaction(ctx, added.ID))

	got, err := f.svc.GetTransaction(ctx, added.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.Len(t, f.balances.calls, 1)
	call := f.balances.calls[0]
	assert.Equal(t, "C1", call.ClientID)
	assert.Equal(t, "A1", call.AccountID)
	assert.True(t, call.Amount.Equal(dec("100")))
	assert.False(t, call.IsCredit)
	assert.Empty(t, f.store.txns)
	assert.Empty(t, f.notifier.messages)
}

func TestDeleteTransaction_Twice(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	added, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "100"))
	require.NoError(t, err)
	f.balances.calls = nil
	savesBefore := f.store.saves

	require.NoError(t, f.svc.DeleteTransaction(ctx, added.ID))
	require.NoError(t, f.svc.DeleteTransaction(ctx, added.ID))

	assert.Len(t, f.balances.calls, 1)
	assert.Equal(t, savesBefore+1, f.store.saves)
}

func TestDeleteTransaction_PreservesOrder(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	a, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "1"))
	require.NoError(t, err)
	b, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "2"))
	require.NoError(t, err)
	c, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "3"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTransaction(ctx, b.ID))

	all, err := f.svc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, c.ID, all[1].ID)
}

func TestDeleteTransaction_AdjustFailureKeepsRecord(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	added, err := f.svc.AddTransaction(ctx, deposit("C1", "A1", "100"))
	require.NoError(t, err)
	f.balances.failOn = func(adjustCall) error { return errors.New("balance store unavailable") }

	err = f.svc.DeleteTransaction(ctx, added.ID)
	require.Error(t, err)

	got, err := f.svc.GetTransaction(ctx, added.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDeleteTransaction_ReversalDirection(t *testing.T) {
	tests := []struct {
		name       string
		mode       ReversalMode
		txType     domain.TransactionType
		direction  domain.TransferDirection
		wantCredit bool
	}{
		{name: "mirror deposit debits", mode: ReversalMirror, txType: domain.TransactionTypeDeposit, wantCredit: false},
		{name: "mirror withdrawal credits", mode: ReversalMirror, txType: domain.TransactionTypeWithdrawal, wantCredit: true},
		{name: "mirror outgoing transfer credits", mode: ReversalMirror, txType: domain.TransactionTypeTransfer, direction: domain.TransferDirectionOutgoing, wantCredit: true},
		{name: "mirror incoming transfer debits", mode: ReversalMirror, txType: domain.TransactionTypeTransfer, direction: domain.TransferDirectionIncoming, wantCredit: false},
		{name: "mirror transfer without direction credits", mode: ReversalMirror, txType: domain.TransactionTypeTransfer, wantCredit: true},
		{name: "legacy deposit debits", mode: ReversalLegacy, txType: domain.TransactionTypeDeposit, wantCredit: false},
		{name: "legacy withdrawal credits", mode: ReversalLegacy, txType: domain.TransactionTypeWithdrawal, wantCredit: true},
		{name: "legacy outgoing transfer credits", mode: ReversalLegacy, txType: domain.TransactionTypeTransfer, direction: domain.TransferDirectionOutgoing, wantCredit: true},
		{name: "legacy incoming transfer credits", mode: ReversalLegacy, txType: domain.TransactionTypeTransfer, direction: domain.TransferDirectionIncoming, wantCredit: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := domain.Transaction{
				ID:        uuid.New(),
				ClientID:  "C1",
				AccountID: "A1",
				Type:      tc.txType,
				Amount:    dec("30"),
				Status:    domain.TransactionStatusCompleted,
				Currency:  domain.CurrencyUSD,
				Direction: tc.direction,
			}
			f := newFixture(t, Options{Reversal: tc.mode, Seed: []domain.Transaction{record}})

			require.NoError(t, f.svc.DeleteTransaction(context.Background(), record.ID))

			require.Len(t, f.balances.calls, 1)
			assert.Equal(t, tc.wantCredit, f.balances.calls[0].IsCredit)
			assert.True(t, f.balances.calls[0].Amount.Equal(dec("30")))
		})
	}
}
