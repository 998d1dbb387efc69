// Package backend wires the configured snapshot and balance stores.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/josh-kwaku/grey-ledger/internal/balance"
	"github.com/josh-kwaku/grey-ledger/internal/config"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/ledger"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
	"github.com/josh-kwaku/grey-ledger/internal/repository"
	"github.com/josh-kwaku/grey-ledger/internal/snapshot"
)

// Balances is what the HTTP layer and the ledger need from a balance store.
type Balances interface {
	Adjust(ctx context.Context, clientID, accountID string, amount decimal.Decimal, isCredit bool) error
	GetByClientID(ctx context.Context, clientID string) ([]domain.Account, error)
}

type Stores struct {
	Snapshot ledger.SnapshotStore
	Balances Balances

	closers []func() error
}

// Close releases every connection opened by Open, in reverse order.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Open builds the stores named by cfg. Postgres is dialled at most once and
// shared by both stores. Seed accounts are created in a Postgres balance
// store when missing.
func Open(ctx context.Context, cfg *config.Config, clients []domain.Client) (*Stores, error) {
	s := &Stores{}
	var pg *sql.DB

	postgres := func() (*sql.DB, error) {
		if pg != nil {
			return pg, nil
		}
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
			MaxOpenConns:     cfg.DBMaxOpenConns,
			MaxIdleConns:     cfg.DBMaxIdleConns,
			ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
			ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		}, cfg.DBConnectAttempts)
		if err != nil {
			return nil, err
		}
		pg = db
		s.closers = append(s.closers, db.Close)
		return db, nil
	}

	snap, err := openSnapshot(cfg, s, postgres)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("backend.Open: snapshot: %w", err)
	}
	s.Snapshot = snap

	bal, err := openBalances(ctx, cfg, clients, postgres)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("backend.Open: balances: %w", err)
	}
	s.Balances = bal

	logging.FromContext(ctx).Info("stores opened",
		"snapshot_backend", cfg.SnapshotBackend,
		"balance_backend", cfg.BalanceBackend,
	)
	return s, nil
}

func openSnapshot(cfg *config.Config, s *Stores, postgres func() (*sql.DB, error)) (ledger.SnapshotStore, error) {
	switch cfg.SnapshotBackend {
	case config.BackendMemory:
		return snapshot.NewMemory(), nil
	case config.BackendFile:
		return snapshot.NewFileStore(cfg.SnapshotFile, cfg.SnapshotKey), nil
	case config.BackendPostgres:
		db, err := postgres()
		if err != nil {
			return nil, err
		}
		return repository.NewSnapshotRepository(db, cfg.SnapshotKey), nil
	case config.BackendSQLite, config.BackendMySQL:
		var db *gorm.DB
		var err error
		if cfg.SnapshotBackend == config.BackendSQLite {
			db, err = snapshot.OpenSQLite(cfg.SQLitePath, cfg.LogLevel)
		} else {
			db, err = snapshot.OpenMySQL(cfg.MySQLDSN, cfg.LogLevel)
		}
		if err != nil {
			return nil, err
		}
		store, err := snapshot.NewGormStore(db, cfg.SnapshotKey)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		return store, nil
	}
	return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
}

func openBalances(ctx context.Context, cfg *config.Config, clients []domain.Client, postgres func() (*sql.DB, error)) (Balances, error) {
	switch cfg.BalanceBackend {
	case config.BackendMemory:
		return balance.NewMemoryStore(clients), nil
	case config.BackendPostgres:
		db, err := postgres()
		if err != nil {
			return nil, err
		}
		repo := repository.NewClientAccountRepository(db)
		if err := SeedAccounts(ctx, repo, clients); err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown balance backend %q", cfg.BalanceBackend)
}

type accountCreator interface {
	CreateIfMissing(ctx context.Context, a *domain.Account) (bool, error)
}

// SeedAccounts creates the seed accounts that do not exist yet. Existing
// balances are never reset.
func SeedAccounts(ctx context.Context, repo accountCreator, clients []domain.Client) error {
	created := 0
	for _, c := range clients {
		for _, a := range c.Accounts {
			a.ClientID = c.ID
			ok, err := repo.CreateIfMissing(ctx, &a)
			if err != nil {
				return fmt.Errorf("SeedAccounts: %w", err)
			}
			if ok {
				created++
			}
		}
	}
	if created > 0 {
		logging.FromContext(ctx).Info("seeded client accounts", "created", created)
	}
	return nil
}
