package mapping

import (
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/models"
)

// ToDomainBankStatement converts a statement header row; entries are attached by the caller.
func ToDomainBankStatement(m models.BankStatement) domain.BankStatement {
	return domain.BankStatement{
		StatementID:    m.StatementID,
		TempleID:       m.TempleID,
		AccountID:      m.AccountID,
		PeriodStart:    date(m.PeriodStart),
		PeriodEnd:      date(m.PeriodEnd),
		OpeningBalance: m.OpeningBalance,
		ClosingBalance: m.ClosingBalance,
		ImportBatchID:  m.ImportBatchID,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

// ToDomainBankStatementEntry converts a statement entry row
func ToDomainBankStatementEntry(m models.BankStatementEntry) domain.BankStatementEntry {
	return domain.BankStatementEntry{
		StatementEntryID: m.StatementEntryID,
		StatementID:      m.StatementID,
		Seq:              m.Seq,
		TransactionDate:  date(m.TransactionDate),
		ValueDate:        date(m.ValueDate),
		Direction:        domain.Direction(m.Direction),
		Amount:           m.Amount,
		Description:      m.Description,
		ReferenceNumber:  m.ReferenceNumber,
		RunningBalance:   m.RunningBalance,
		MatchedLineID:    m.MatchedLineID,
	}
}

// ToDomainBankReconciliation converts a reconciliation row; outstanding items are attached by the caller.
func ToDomainBankReconciliation(m models.BankReconciliation) domain.BankReconciliation {
	return domain.BankReconciliation{
		ReconciliationID:    m.ReconciliationID,
		TempleID:            m.TempleID,
		StatementID:         m.StatementID,
		AccountID:           m.AccountID,
		PeriodStart:         date(m.PeriodStart),
		PeriodEnd:           date(m.PeriodEnd),
		BookOpeningBalance:  m.BookOpeningBalance,
		BookClosingBalance:  m.BookClosingBalance,
		BankOpeningBalance:  m.BankOpeningBalance,
		BankClosingBalance:  m.BankClosingBalance,
		DepositsInTransit:   m.DepositsInTransit,
		ChequesNotCleared:   m.ChequesNotCleared,
		ChargesNotRecorded:  m.ChargesNotRecorded,
		InterestNotRecorded: m.InterestNotRecorded,
		AdjustedBookBalance: m.AdjustedBookBalance,
		AdjustedBankBalance: m.AdjustedBankBalance,
		Difference:          m.Difference,
		Status:              domain.ReconciliationStatus(m.Status),
		MatchedCount:        m.MatchedCount,
		RunID:               m.RunID,
		ReconciledBy:        m.ReconciledBy,
		ReconciledAt:        m.ReconciledAt.UTC(),
	}
}

// ToDomainOutstandingItem converts an outstanding item row
func ToDomainOutstandingItem(m models.OutstandingItem) domain.OutstandingItem {
	return domain.OutstandingItem{
		ItemID:                    m.ItemID,
		TempleID:                  m.TempleID,
		AccountID:                 m.AccountID,
		ReconciliationID:          m.ReconciliationID,
		ItemType:                  domain.OutstandingItemType(m.ItemType),
		Source:                    domain.OutstandingSource(m.Source),
		JournalLineID:             m.JournalLineID,
		StatementEntryID:          m.StatementEntryID,
		Amount:                    m.Amount,
		ItemDate:                  date(m.ItemDate),
		Description:               m.Description,
		Cleared:                   m.Cleared,
		ClearedAt:                 utcPtr(m.ClearedAt),
		ClearedByReconciliationID: m.ClearedByReconciliationID,
		CreatedAt:                 m.CreatedAt.UTC(),
	}
}

// ToDomainOutstandingItems converts a slice of outstanding item rows
func ToDomainOutstandingItems(ms []models.OutstandingItem) []domain.OutstandingItem {
	out := make([]domain.OutstandingItem, len(ms))
	for i, m := range ms {
		out[i] = ToDomainOutstandingItem(m)
	}
	return out
}
