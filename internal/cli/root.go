// Package cli holds the wodo command line: the HTTP server plus a few
// offline commands that work directly against the configured store.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"wodo.ai/wodo-connect/internal/config"
	"wodo.ai/wodo-connect/internal/core"
	"wodo.ai/wodo-connect/internal/logging"
	"wodo.ai/wodo-connect/internal/store"
)

type rootOptions struct {
	driver string
	dsn    string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "wodo",
		Short:         "Wodo connects people through the stories they share",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadConfig(); err != nil {
				return err
			}
			if cmd.Flags().Changed("driver") {
				config.AppConfig.StorageDriver = opts.driver
			}
			if cmd.Flags().Changed("db") {
				config.AppConfig.DatabaseURL = opts.dsn
			}

			log.SetFlags(log.LstdFlags | log.Lshortfile)
			logging.SetLevel(logging.ParseLevel(config.AppConfig.LogLevel))
			logging.Debugf("Running %s in DEBUG mode", cmd.Name())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "storage driver (sqlite3, sqlite, postgres, mysql, mongo, memory)")
	cmd.PersistentFlags().StringVar(&opts.dsn, "db", "", "storage connection string")

	cmd.AddCommand(
		newServeCmd(),
		newSeedCmd(),
		newRequestsCmd(),
		newExportCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openServices opens the configured store for the offline commands, which
// never talk to the text model.
func openServices(ctx context.Context) (*core.Services, *store.Store, error) {
	kv, err := store.Open(ctx, config.AppConfig.StorageDriver, config.AppConfig.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	st := store.New(kv)
	svc := core.NewServices(st, nil, nil, core.Options{ThoughtTTL: config.AppConfig.ThoughtTTL})
	return svc, st, nil
}
