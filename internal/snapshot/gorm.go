package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

type snapshotRecord struct {
	Key       string `gorm:"column:snapshot_key;primaryKey;size:191"`
	Payload   []byte `gorm:"column:payload;not null"`
	UpdatedAt time.Time
}

func (snapshotRecord) TableName() string {
	return "ledger_snapshots"
}

// GormStore keeps snapshots in a SQL table through gorm. It backs the sqlite
// and mysql backends.
type GormStore struct {
	db  *gorm.DB
	key string
}

func NewGormStore(db *gorm.DB, key string) (*GormStore, error) {
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("NewGormStore: migrate: %w", err)
	}
	return &GormStore{db: db, key: key}, nil
}

// OpenSQLite opens the database file, creating its directory first.
func OpenSQLite(path, logLevel string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("OpenSQLite: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("OpenSQLite: %w", err)
	}
	return db, nil
}

func OpenMySQL(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("OpenMySQL: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("OpenMySQL: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("OpenMySQL: ping: %w", err)
	}
	return db, nil
}

func (s *GormStore) Load(ctx context.Context) ([]domain.Transaction, bool, error) {
	var rec snapshotRecord
	err := s.db.WithContext(ctx).Where("snapshot_key = ?", s.key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Load: %w", err)
	}
	txns, err := Decode(rec.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("Load: %w", err)
	}
	return txns, true, nil
}

func (s *GormStore) Save(ctx context.Context, txns []domain.Transaction) error {
	data, err := Encode(txns)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	rec := snapshotRecord{Key: s.key, Payload: data, UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(level string) *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(gormLogLevel(level)),
	}
}

// gormLogLevel keeps gorm quiet unless the service runs at debug.
func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "info", "warn", "warning":
		return logger.Warn
	case "silent":
		return logger.Silent
	default:
		return logger.Error
	}
}
