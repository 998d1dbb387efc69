package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josh-kwaku/grey-ledger/internal/backend"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/ledger"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
	"github.com/josh-kwaku/grey-ledger/internal/seed"
	"github.com/josh-kwaku/grey-ledger/internal/snapshot"
)

var errSnapshotExists = errors.New("snapshot already exists, use --force to overwrite")

// withStores opens the configured snapshot store for the duration of fn.
func withStores(cmd *cobra.Command, v *viper.Viper, fn func(ctx context.Context, s *backend.Stores) error) error {
	cfg, err := configFrom(v)
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), "ledgerctl", cfg.LogLevel, "development")
	ctx := logging.WithLogger(cmd.Context(), logger)

	stores, err := backend.Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer stores.Close()

	return fn(ctx, stores)
}

func loadSnapshot(ctx context.Context, s *backend.Stores) ([]domain.Transaction, error) {
	txns, found, err := s.Snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.Transaction{}, nil
	}
	return txns, nil
}

func newListCmd(v *viper.Viper) *cobra.Command {
	var clientID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, v, func(ctx context.Context, s *backend.Stores) error {
				txns, err := loadSnapshot(ctx, s)
				if err != nil {
					return err
				}
				if clientID != "" {
					txns = filterByClient(txns, clientID)
				}
				return render(cmd.OutOrStdout(), v.GetString("output"), txns)
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "only show this client's transactions")
	return cmd
}

func newShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			return withStores(cmd, v, func(ctx context.Context, s *backend.Stores) error {
				txns, err := loadSnapshot(ctx, s)
				if err != nil {
					return err
				}
				for i := range txns {
					if txns[i].ID == id {
						return writeJSON(cmd.OutOrStdout(), txns[i])
					}
				}
				return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
			})
		},
	}
}

func newExportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the raw snapshot payload to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, v, func(ctx context.Context, s *backend.Stores) error {
				txns, err := loadSnapshot(ctx, s)
				if err != nil {
					return err
				}
				payload, err := snapshot.Encode(txns)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return err
			})
		},
	}
}

func newSeedCmd(v *viper.Viper) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the demo dataset as the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := seed.Default()
			if err != nil {
				return err
			}
			return withStores(cmd, v, func(ctx context.Context, s *backend.Stores) error {
				_, found, err := s.Snapshot.Load(ctx)
				if err != nil && !force {
					return err
				}
				if found && !force {
					return errSnapshotExists
				}
				if err := saveSnapshot(ctx, s.Snapshot, dataset.Transactions, force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d transactions\n", len(dataset.Transactions))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing snapshot")
	return cmd
}

// overwriter is implemented by stores that can replace a snapshot they
// cannot read.
type overwriter interface {
	Overwrite(ctx context.Context, txns []domain.Transaction) error
}

func saveSnapshot(ctx context.Context, store ledger.SnapshotStore, txns []domain.Transaction, force bool) error {
	if o, ok := store.(overwriter); ok && force {
		return o.Overwrite(ctx, txns)
	}
	return store.Save(ctx, txns)
}

func filterByClient(txns []domain.Transaction, clientID string) []domain.Transaction {
	out := make([]domain.Transaction, 0)
	for _, t := range txns {
		if t.ClientID == clientID {
			out = append(out, t)
		}
	}
	return out
}

func render(w io.Writer, format string, txns []domain.Transaction) error {
	switch format {
	case "json":
		return writeJSON(w, txns)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tCLIENT\tACCOUNT\tTYPE\tAMOUNT\tDESCRIPTION")
		for _, t := range txns {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s %s\t%s\n",
				t.ID, t.Date.Format("2006-01-02 15:04"), t.ClientID, t.AccountID,
				t.Type, t.Amount.StringFixed(2), t.Currency, t.Description)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
