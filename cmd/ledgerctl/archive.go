package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/temple_ledger/internal/adapters/archive"
	"github.com/SscSPs/temple_ledger/internal/adapters/auditlog"
	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/spf13/cobra"
)

var auditArchiveCmd = &cobra.Command{
	Use:   "audit-archive",
	Short: "Upload a temple's audit log to S3-compatible storage",
	Long: `Copies the append-only audit log of a temple to the bucket named by ARCHIVE_S3_BUCKET.
Each run writes a new timestamped object; nothing in the bucket is overwritten.`,
	Example: `  ledgerctl audit-archive --temple sri-ganesh`,
	RunE:    runAuditArchive,
}

func init() {
	rootCmd.AddCommand(auditArchiveCmd)
	auditArchiveCmd.Flags().String("temple", "", "Temple ID")
	_ = auditArchiveCmd.MarkFlagRequired("temple")
}

func runAuditArchive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := middleware.GetLoggerFromCtx(ctx)
	templeID, _ := cmd.Flags().GetString("temple")

	cfg := appConfig
	sink, err := auditlog.NewFileSink(cfg.AuditLogDir)
	if err != nil {
		return fmt.Errorf("open audit log directory: %w", err)
	}
	defer sink.Close()

	path, err := sink.Path(templeID)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}

	archiver, err := archive.NewS3Archiver(ctx, archive.Settings{
		Endpoint:  cfg.ArchiveS3Endpoint,
		Region:    cfg.ArchiveS3Region,
		Bucket:    cfg.ArchiveS3Bucket,
		AccessKey: cfg.ArchiveS3AccessKey,
		SecretKey: cfg.ArchiveS3SecretKey,
	})
	if err != nil {
		return err
	}
	key, err := archiver.Upload(ctx, templeID, data, time.Now())
	if err != nil {
		return err
	}

	logger.Info("Audit log archived", slog.String("temple_id", templeID), slog.String("key", key), slog.Int("bytes", len(data)))
	fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}
