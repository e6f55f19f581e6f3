package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of journal_entries. EntryNumber and ChainSeq stay NULL while the entry is a draft.
type JournalEntry struct {
	EntryID         int64           `db:"entry_id"`
	TempleID        string          `db:"temple_id"`
	EntryNumber     *string         `db:"entry_number"`
	EntryDate       time.Time       `db:"entry_date"`
	Narration       string          `db:"narration"`
	ReferenceKind   string          `db:"reference_kind"`
	ReferenceID     string          `db:"reference_id"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Status          string          `db:"status"`
	FinancialYearID *int64          `db:"financial_year_id"`
	ChainSeq        *int64          `db:"chain_seq"`
	IntegrityHash   string          `db:"integrity_hash"`
	ReversalOfID    *int64          `db:"reversal_of_id"`
	ReversedByID    *int64          `db:"reversed_by_id"`
	PostedBy        string          `db:"posted_by"`
	PostedAt        *time.Time      `db:"posted_at"`
	CancelledBy     string          `db:"cancelled_by"`
	CancelledAt     *time.Time      `db:"cancelled_at"`
	CancelReason    string          `db:"cancel_reason"`
	AuditFields
}

// JournalLine is a row of journal_lines.
type JournalLine struct {
	LineID        int64           `db:"line_id"`
	EntryID       int64           `db:"entry_id"`
	LineNo        int             `db:"line_no"`
	AccountID     int64           `db:"account_id"`
	Debit         decimal.Decimal `db:"debit"`
	Credit        decimal.Decimal `db:"credit"`
	Description   string          `db:"description"`
	InstrumentRef string          `db:"instrument_ref"`
}

// LedgerLine is a journal line joined with the header columns of its entry.
type LedgerLine struct {
	JournalLine
	EntryNumber *string   `db:"entry_number"`
	EntryDate   time.Time `db:"entry_date"`
	EntryStatus string    `db:"status"`
	Narration   string    `db:"narration"`
}

// LineTotals is one row of an aggregate over journal_lines.
type LineTotals struct {
	AccountID int64           `db:"account_id"`
	Debit     decimal.Decimal `db:"debit"`
	Credit    decimal.Decimal `db:"credit"`
}
