package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josh-kwaku/grey-ledger/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect and manage the ledger snapshot",
		Long: `ledgerctl reads and writes the ledger snapshot directly, using the same
storage backends as the API. Settings come from flags, LEDGER_* environment
variables or an optional config file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfigFile(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("snapshot-backend", config.BackendFile, "memory, file, postgres, sqlite or mysql")
	flags.String("snapshot-key", "transactions", "key the snapshot is stored under")
	flags.String("snapshot-file", "data/snapshots.json", "path of the file backend")
	flags.String("sqlite-path", "data/ledger.db", "path of the sqlite database")
	flags.String("database-url", "", "postgres connection string")
	flags.String("mysql-dsn", "", "mysql data source name")
	flags.String("log-level", "warn", "debug, info, warn or error")
	flags.StringP("output", "o", "table", "table or json")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newListCmd(v),
		newShowCmd(v),
		newExportCmd(v),
		newSeedCmd(v),
	)
	return root
}

func readConfigFile(v *viper.Viper) error {
	path := v.GetString("config")
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// configFrom builds the subset of the API config ledgerctl needs. Balances
// are never touched from here, so they always use the memory backend.
func configFrom(v *viper.Viper) (*config.Config, error) {
	cfg := &config.Config{
		LogLevel:          v.GetString("log-level"),
		SnapshotBackend:   v.GetString("snapshot-backend"),
		SnapshotKey:       v.GetString("snapshot-key"),
		SnapshotFile:      v.GetString("snapshot-file"),
		SQLitePath:        v.GetString("sqlite-path"),
		DatabaseURL:       v.GetString("database-url"),
		MySQLDSN:          v.GetString("mysql-dsn"),
		BalanceBackend:    config.BackendMemory,
		ReversalMode:      "mirror",
		DBConnectAttempts: 1,
		DBMaxOpenConns:    2,
		DBMaxIdleConns:    1,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}
