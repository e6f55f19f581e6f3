package main

import (
	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/SscSPs/temple_ledger/pkg/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireDatabase(); err != nil {
			return err
		}
		source, _ := cmd.Flags().GetString("source")
		_, err := database.RunMigrations(appConfig.DatabaseURL, source, middleware.GetLoggerFromCtx(cmd.Context()))
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("source", database.DefaultMigrationsSource, "Migration source URL")
}
