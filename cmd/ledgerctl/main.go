// Command ledgerctl runs operator tasks against the ledger database: chain verification,
// audit log cross checks and archiving, migrations and development tokens.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/SscSPs/temple_ledger/internal/platform/config"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operator tool for the temple ledger",
	Long: `ledgerctl runs maintenance tasks against the ledger database and audit log.

Configuration is read from the environment (and a .env file) exactly like the server:
PGSQL_URL, AUDIT_LOG_DIR, JWT_SECRET, ARCHIVE_S3_* and so on. Logs go to stderr as JSON.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if appConfig, err = config.LoadConfig(); err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		var level slog.Level
		if err := level.UnmarshalText([]byte(appConfig.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		cmd.SetContext(middleware.WithLogger(cmd.Context(), logger))
		return nil
	},
}

// appConfig is loaded once before any subcommand runs.
var appConfig *config.Config

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func requireDatabase() error {
	if appConfig.DatabaseURL == "" {
		return fmt.Errorf("PGSQL_URL is required")
	}
	return nil
}
