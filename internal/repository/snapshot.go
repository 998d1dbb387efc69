package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/snapshot"
)

// SnapshotRepository stores the ledger snapshot as a jsonb row keyed by name.
type SnapshotRepository struct {
	db  *sql.DB
	key string
}

func NewSnapshotRepository(db *sql.DB, key string) *SnapshotRepository {
	return &SnapshotRepository{db: db, key: key}
}

func (r *SnapshotRepository) Load(ctx context.Context) ([]domain.Transaction, bool, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM ledger_snapshots WHERE snapshot_key = $1`, r.key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Load: %w", err)
	}

	txns, err := snapshot.Decode(payload)
	if err != nil {
		return nil, false, fmt.Errorf("Load: %w", err)
	}
	return txns, true, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, txns []domain.Transaction) error {
	payload, err := snapshot.Encode(txns)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO ledger_snapshots (snapshot_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (snapshot_key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		r.key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}
