package services

import (
	"context"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
)

// auditBatch collects the audit records of one unit of work. flush must be the last step of the unit:
// the records reach the log in a single append, and only after every database write succeeded.
type auditBatch struct {
	sink    portsrepo.AuditSink
	records []domain.AuditRecord
}

func newAuditBatch(sink portsrepo.AuditSink) *auditBatch {
	return &auditBatch{sink: sink}
}

func (b *auditBatch) add(e domain.JournalEntry, action domain.AuditAction, actor, narration string, at time.Time) {
	b.records = append(b.records, domain.AuditRecord{
		TempleID:    e.TempleID,
		Timestamp:   at,
		Actor:       actor,
		Action:      action,
		EntryID:     e.EntryID,
		EntryNumber: e.EntryNumber,
		Amount:      e.TotalAmount,
		Narration:   narration,
		Status:      e.Status,
		Hash:        e.IntegrityHash,
	})
}

func (b *auditBatch) flush(ctx context.Context) error {
	if len(b.records) == 0 {
		return nil
	}
	if err := b.sink.Append(ctx, b.records...); err != nil {
		return apperrors.NewAppError(500, "failed to append audit log", err)
	}
	b.records = nil
	return nil
}
