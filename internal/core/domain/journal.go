package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft     EntryStatus = "DRAFT"
	Posted    EntryStatus = "POSTED"
	Cancelled EntryStatus = "CANCELLED"
	Reversed  EntryStatus = "REVERSED"
)

// CanTransitionTo encodes DRAFT -> POSTED -> {CANCELLED, REVERSED}.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case Draft:
		return next == Posted
	case Posted:
		return next == Cancelled || next == Reversed
	}
	return false
}

// CountsInBalances reports whether lines of an entry in this status affect account balances.
// A reversed entry stays in the books next to its reversal, the pair nets to zero.
func (s EntryStatus) CountsInBalances() bool {
	return s == Posted || s == Reversed
}

// Reference identifies the external record (donation, seva booking, payroll run...) behind an entry.
type Reference struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// Reference kinds produced by the ledger itself.
const (
	ReferenceKindReversal      = "REVERSAL"
	ReferenceKindPeriodClosing = "PERIOD_CLOSING"
	ReferenceKindManual        = "MANUAL"
)

// JournalEntry is a transaction header that exclusively owns its lines.
type JournalEntry struct {
	EntryID         int64           `json:"entryID"`
	TempleID        string          `json:"templeID"`
	EntryNumber     string          `json:"entryNumber,omitempty"`
	EntryDate       time.Time       `json:"entryDate"`
	Narration       string          `json:"narration"`
	Reference       Reference       `json:"reference"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          EntryStatus     `json:"status"`
	FinancialYearID *int64          `json:"financialYearID,omitempty"`
	ChainSeq        int64           `json:"chainSeq,omitempty"`
	IntegrityHash   string          `json:"integrityHash,omitempty"`
	ReversalOfID    *int64          `json:"reversalOfID,omitempty"`
	ReversedByID    *int64          `json:"reversedByID,omitempty"`
	PostedBy        string          `json:"postedBy,omitempty"`
	PostedAt        *time.Time      `json:"postedAt,omitempty"`
	CancelledBy     string          `json:"cancelledBy,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	CancelReason    string          `json:"cancelReason,omitempty"`
	Lines           []JournalLine   `json:"lines"`
	AuditFields
}

// Totals sums the debit and credit sides of the entry's lines.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// InChain reports whether the entry holds a position in the integrity chain.
func (e JournalEntry) InChain() bool {
	return e.Status != Draft && e.ChainSeq > 0
}

// JournalLine is one leg of an entry. Exactly one of Debit and Credit is nonzero once posted.
type JournalLine struct {
	LineID        int64           `json:"lineID"`
	EntryID       int64           `json:"entryID"`
	LineNo        int             `json:"lineNo"`
	AccountID     int64           `json:"accountID"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description,omitempty"`
	InstrumentRef string          `json:"instrumentRef,omitempty"`
}

// IsDebit reports whether the line sits on the debit side.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the nonzero side of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}

// LedgerLine is a posted line joined with the header fields reconciliation and balances need.
type LedgerLine struct {
	JournalLine
	EntryNumber string      `json:"entryNumber"`
	EntryDate   time.Time   `json:"entryDate"`
	EntryStatus EntryStatus `json:"entryStatus"`
	Narration   string      `json:"narration"`
}
