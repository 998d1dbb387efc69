package domain

import "github.com/shopspring/decimal"

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// IsValid accepts any three-letter upper-case code. No conversion happens in
// the ledger, so the set is not closed.
func (c Currency) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

type Client struct {
	ID       string
	Name     string
	Accounts []Account
}

type Account struct {
	ID       string
	ClientID string
	Name     string
	Currency Currency
	Balance  decimal.Decimal
}
