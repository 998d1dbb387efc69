package snapshot

import (
	"context"
	"sync"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

// Memory keeps the encoded snapshot in process, so loads never alias the
// slice that was saved.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]domain.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, false, nil
	}
	txns, err := Decode(m.data)
	if err != nil {
		return nil, false, err
	}
	return txns, true, nil
}

func (m *Memory) Save(_ context.Context, txns []domain.Transaction) error {
	data, err := Encode(txns)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}
