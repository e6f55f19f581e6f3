package mapping

import (
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry.
// An empty entry number and a zero chain position are stored as NULL.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	m := models.JournalEntry{
		EntryID:         d.EntryID,
		TempleID:        d.TempleID,
		EntryDate:       d.EntryDate,
		Narration:       d.Narration,
		ReferenceKind:   d.Reference.Kind,
		ReferenceID:     d.Reference.ID,
		TotalAmount:     d.TotalAmount,
		Status:          string(d.Status),
		FinancialYearID: d.FinancialYearID,
		IntegrityHash:   d.IntegrityHash,
		ReversalOfID:    d.ReversalOfID,
		ReversedByID:    d.ReversedByID,
		PostedBy:        d.PostedBy,
		PostedAt:        d.PostedAt,
		CancelledBy:     d.CancelledBy,
		CancelledAt:     d.CancelledAt,
		CancelReason:    d.CancelReason,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.EntryNumber != "" {
		number := d.EntryNumber
		m.EntryNumber = &number
	}
	if d.ChainSeq > 0 {
		seq := d.ChainSeq
		m.ChainSeq = &seq
	}
	return m
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry without lines.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	d := domain.JournalEntry{
		EntryID:         m.EntryID,
		TempleID:        m.TempleID,
		EntryDate:       date(m.EntryDate),
		Narration:       m.Narration,
		Reference:       domain.Reference{Kind: m.ReferenceKind, ID: m.ReferenceID},
		TotalAmount:     m.TotalAmount,
		Status:          domain.EntryStatus(m.Status),
		FinancialYearID: m.FinancialYearID,
		IntegrityHash:   m.IntegrityHash,
		ReversalOfID:    m.ReversalOfID,
		ReversedByID:    m.ReversedByID,
		PostedBy:        m.PostedBy,
		PostedAt:        utcPtr(m.PostedAt),
		CancelledBy:     m.CancelledBy,
		CancelledAt:     utcPtr(m.CancelledAt),
		CancelReason:    m.CancelReason,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.EntryNumber != nil {
		d.EntryNumber = *m.EntryNumber
	}
	if m.ChainSeq != nil {
		d.ChainSeq = *m.ChainSeq
	}
	return d
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:        d.LineID,
		EntryID:       d.EntryID,
		LineNo:        d.LineNo,
		AccountID:     d.AccountID,
		Debit:         d.Debit,
		Credit:        d.Credit,
		Description:   d.Description,
		InstrumentRef: d.InstrumentRef,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:        m.LineID,
		EntryID:       m.EntryID,
		LineNo:        m.LineNo,
		AccountID:     m.AccountID,
		Debit:         m.Debit,
		Credit:        m.Credit,
		Description:   m.Description,
		InstrumentRef: m.InstrumentRef,
	}
}

// ToDomainLedgerLine converts a joined line row to a domain LedgerLine
func ToDomainLedgerLine(m models.LedgerLine) domain.LedgerLine {
	l := domain.LedgerLine{
		JournalLine: ToDomainJournalLine(m.JournalLine),
		EntryDate:   date(m.EntryDate),
		EntryStatus: domain.EntryStatus(m.EntryStatus),
		Narration:   m.Narration,
	}
	if m.EntryNumber != nil {
		l.EntryNumber = *m.EntryNumber
	}
	return l
}

// ToDomainLineTotals converts an aggregate row to domain LineTotals
func ToDomainLineTotals(m models.LineTotals) domain.LineTotals {
	return domain.LineTotals{AccountID: m.AccountID, Debit: m.Debit, Credit: m.Credit}
}
