package config

import (
	"errors"
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"

	"github.com/josh-kwaku/grey-ledger/internal/ledger"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	SnapshotBackend string `env:"SNAPSHOT_BACKEND" envDefault:"file"`
	SnapshotKey     string `env:"SNAPSHOT_KEY" envDefault:"transactions"`
	SnapshotFile    string `env:"SNAPSHOT_FILE" envDefault:"data/snapshots.json"`
	SQLitePath      string `env:"SQLITE_PATH" envDefault:"data/ledger.db"`
	DatabaseURL     string `env:"DATABASE_URL"`
	MySQLDSN        string `env:"MYSQL_DSN"`
	BalanceBackend  string `env:"BALANCE_BACKEND" envDefault:"memory"`

	LoadDelayMS     int    `env:"LOAD_DELAY_MS" envDefault:"0"`
	ValidateAmounts bool   `env:"VALIDATE_AMOUNTS" envDefault:"false"`
	ReversalMode    string `env:"REVERSAL_MODE" envDefault:"mirror"`
	AtomicTransfers bool   `env:"ATOMIC_TRANSFERS" envDefault:"true"`

	DiscordBotToken  string `env:"DISCORD_BOT_TOKEN"`
	DiscordChannelID string `env:"DISCORD_CHANNEL_ID"`

	DBConnectAttempts  int `env:"DB_CONNECT_ATTEMPTS" envDefault:"10"`
	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.SnapshotBackend {
	case BackendMemory:
	case BackendFile:
		if c.SnapshotFile == "" {
			errs = append(errs, errors.New("SNAPSHOT_FILE is required for the file backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres snapshot backend"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendMySQL:
		if c.MySQLDSN == "" {
			errs = append(errs, errors.New("MYSQL_DSN is required for the mysql backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SNAPSHOT_BACKEND %q", c.SnapshotBackend))
	}

	switch c.BalanceBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres balance backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BALANCE_BACKEND %q", c.BalanceBackend))
	}

	if c.SnapshotKey == "" {
		errs = append(errs, errors.New("SNAPSHOT_KEY must not be empty"))
	}
	if _, err := ledger.ParseReversalMode(c.ReversalMode); err != nil {
		errs = append(errs, err)
	}
	if c.LoadDelayMS < 0 {
		errs = append(errs, errors.New("LOAD_DELAY_MS must not be negative"))
	}
	if (c.DiscordBotToken == "") != (c.DiscordChannelID == "") {
		errs = append(errs, errors.New("DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID must be set together"))
	}

	return errors.Join(errs...)
}

func (c *Config) LoadDelay() time.Duration {
	return time.Duration(c.LoadDelayMS) * time.Millisecond
}

// LedgerOptions maps the config onto the service options. Seed, clock and id
// generator are left for the caller.
func (c *Config) LedgerOptions() (ledger.Options, error) {
	mode, err := ledger.ParseReversalMode(c.ReversalMode)
	if err != nil {
		return ledger.Options{}, fmt.Errorf("LedgerOptions: %w", err)
	}
	return ledger.Options{
		ValidateAmounts: c.ValidateAmounts,
		AtomicTransfers: c.AtomicTransfers,
		Reversal:        mode,
		LoadDelay:       c.LoadDelay(),
	}, nil
}
