// Command reconcile runs the matching engine and manages the ledger from the
// command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/receiptmatch/internal/app"
	"github.com/MrJamesThe3rd/receiptmatch/internal/config"
)

// noApp marks commands that do their own setup.
const noApp = "no-app"

var (
	cfg    *config.Config
	logger *slog.Logger
	svc    *app.App
)

var rootCmd = &cobra.Command{
	Use:           "reconcile",
	Short:         "Match bank transactions to receipts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()

		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}

		logger = app.NewLogger(cfg)

		if _, ok := cmd.Annotations[noApp]; ok {
			return nil
		}

		svc, err = app.New(cmd.Context(), cfg, logger)

		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if svc == nil {
			return
		}

		if err := svc.Close(); err != nil {
			logger.Warn("failed to close resources", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, importCmd, matchesCmd, reverseCmd, reviewsCmd, postingsCmd, statusCmd, exportCmd, migrateCmd, tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
