// Package snapshot holds the Snapshot Store backends that keep the whole
// ledger under one named key.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

// Encode serialises the ledger as a JSON array. A nil ledger encodes as [].
func Encode(txns []domain.Transaction) ([]byte, error) {
	if txns == nil {
		txns = []domain.Transaction{}
	}
	data, err := json.Marshal(txns)
	if err != nil {
		return nil, fmt.Errorf("Encode: %w", err)
	}
	return data, nil
}

func Decode(data []byte) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	if err := json.Unmarshal(data, &txns); err != nil {
		return nil, fmt.Errorf("Decode: %w", err)
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, nil
}
