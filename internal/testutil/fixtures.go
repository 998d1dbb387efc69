package testutil

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
)

func SeedClientAccount(t *testing.T, db *sql.DB, clientID, accountID, currency string, balance decimal.Decimal) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO client_accounts (client_id, account_id, name, currency, balance)
		 VALUES ($1, $2, $3, $4, $5)`,
		clientID, accountID, clientID+" "+accountID, currency, balance,
	)
	if err != nil {
		t.Fatalf("seed client account %s/%s: %v", clientID, accountID, err)
	}
}

func GetAccountBalance(t *testing.T, db *sql.DB, clientID, accountID string) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(
		`SELECT balance FROM client_accounts WHERE client_id = $1 AND account_id = $2`,
		clientID, accountID,
	).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance %s/%s: %v", clientID, accountID, err)
	}
	return balance
}

func CountSnapshots(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ledger_snapshots`).Scan(&count); err != nil {
		t.Fatalf("count snapshots: %v", err)
	}
	return count
}
