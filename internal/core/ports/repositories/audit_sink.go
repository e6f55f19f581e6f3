package repositories

import (
	"context"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// AuditSink is the append-only, write-once audit log.
type AuditSink interface {
	// Append writes the records of one unit of work together: either all of them land or none do.
	// Existing records are never rewritten.
	Append(ctx context.Context, records ...domain.AuditRecord) error
}

// AuditLogReader reads back a temple's audit log for cross checks.
type AuditLogReader interface {
	ReadRecords(ctx context.Context, templeID string) ([]domain.AuditRecord, error)
}
