package domain

import (
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the outcome of a reconciliation run.
type ReconciliationStatus string

const (
	Reconciled  ReconciliationStatus = "RECONCILED"
	Discrepancy ReconciliationStatus = "DISCREPANCY"
)

// MatchTier records which tie-break rule produced a match.
type MatchTier string

const (
	TierReference MatchTier = "REFERENCE"
	TierExactDate MatchTier = "EXACT_DATE"
	TierWindow    MatchTier = "DATE_WINDOW"
	TierTolerance MatchTier = "AMOUNT_TOLERANCE"
)

// OutstandingItemType tags an unmatched movement by the side that knows about it.
type OutstandingItemType string

const (
	// ChequeNotCleared is a receipt in the books (typically a deposited cheque) the bank has not credited yet.
	ChequeNotCleared OutstandingItemType = "CHEQUE_NOT_CLEARED"
	// DepositInTransit is a book-side payment or transfer the bank has not processed yet.
	DepositInTransit OutstandingItemType = "DEPOSIT_IN_TRANSIT"
	// BankChargeNotRecorded is a bank debit with no book line.
	BankChargeNotRecorded OutstandingItemType = "BANK_CHARGE_NOT_RECORDED"
	// InterestNotRecorded is a bank credit with no book line.
	InterestNotRecorded OutstandingItemType = "INTEREST_NOT_RECORDED"
)

// OutstandingSource says which side the unmatched movement came from.
type OutstandingSource string

const (
	SourceBook OutstandingSource = "BOOK"
	SourceBank OutstandingSource = "BANK"
)

// ReconciliationMatch links one statement entry to one journal line.
type ReconciliationMatch struct {
	MatchID          int64     `json:"matchID"`
	TempleID         string    `json:"templeID"`
	AccountID        int64     `json:"accountID"`
	StatementEntryID int64     `json:"statementEntryID"`
	JournalLineID    int64     `json:"journalLineID"`
	Tier             MatchTier `json:"tier"`
	MatchedBy        string    `json:"matchedBy"`
	MatchedAt        time.Time `json:"matchedAt"`
}

// OutstandingItem is a movement known to only one side. Items persist across runs until cleared.
type OutstandingItem struct {
	ItemID                    int64               `json:"itemID"`
	TempleID                  string              `json:"templeID"`
	AccountID                 int64               `json:"accountID"`
	ReconciliationID          int64               `json:"reconciliationID"`
	ItemType                  OutstandingItemType `json:"itemType"`
	Source                    OutstandingSource   `json:"source"`
	JournalLineID             *int64              `json:"journalLineID,omitempty"`
	StatementEntryID          *int64              `json:"statementEntryID,omitempty"`
	Amount                    decimal.Decimal     `json:"amount"`
	ItemDate                  time.Time           `json:"itemDate"`
	Description               string              `json:"description"`
	Cleared                   bool                `json:"cleared"`
	ClearedAt                 *time.Time          `json:"clearedAt,omitempty"`
	ClearedByReconciliationID *int64              `json:"clearedByReconciliationID,omitempty"`
	CreatedAt                 time.Time           `json:"createdAt"`
}

// BankReconciliation is the result of reconciling one statement. There is one per statement.
type BankReconciliation struct {
	ReconciliationID    int64                `json:"reconciliationID"`
	TempleID            string               `json:"templeID"`
	StatementID         int64                `json:"statementID"`
	AccountID           int64                `json:"accountID"`
	PeriodStart         time.Time            `json:"periodStart"`
	PeriodEnd           time.Time            `json:"periodEnd"`
	BookOpeningBalance  decimal.Decimal      `json:"bookOpeningBalance"`
	BookClosingBalance  decimal.Decimal      `json:"bookClosingBalance"`
	BankOpeningBalance  decimal.Decimal      `json:"bankOpeningBalance"`
	BankClosingBalance  decimal.Decimal      `json:"bankClosingBalance"`
	DepositsInTransit   decimal.Decimal      `json:"depositsInTransit"`
	ChequesNotCleared   decimal.Decimal      `json:"chequesNotCleared"`
	ChargesNotRecorded  decimal.Decimal      `json:"chargesNotRecorded"`
	InterestNotRecorded decimal.Decimal      `json:"interestNotRecorded"`
	AdjustedBookBalance decimal.Decimal      `json:"adjustedBookBalance"`
	AdjustedBankBalance decimal.Decimal      `json:"adjustedBankBalance"`
	Difference          decimal.Decimal      `json:"difference"`
	Status              ReconciliationStatus `json:"status"`
	MatchedCount        int                  `json:"matchedCount"`
	RunID               string               `json:"runID"`
	ReconciledBy        string               `json:"reconciledBy"`
	ReconciledAt        time.Time            `json:"reconciledAt"`
	OutstandingItems    []OutstandingItem    `json:"outstandingItems"`
}

// ApplyAdjustments fills the four buckets from the uncleared items, then the adjusted balances,
// the difference and the status. Book-side items are carried on the bank side:
// adjusted book = book + interest - charges; adjusted bank = bank + cheques not cleared - deposits in transit.
func (r *BankReconciliation) ApplyAdjustments(items []OutstandingItem) {
	r.DepositsInTransit = decimal.Zero
	r.ChequesNotCleared = decimal.Zero
	r.ChargesNotRecorded = decimal.Zero
	r.InterestNotRecorded = decimal.Zero
	for _, it := range items {
		if it.Cleared {
			continue
		}
		switch it.ItemType {
		case DepositInTransit:
			r.DepositsInTransit = r.DepositsInTransit.Add(it.Amount)
		case ChequeNotCleared:
			r.ChequesNotCleared = r.ChequesNotCleared.Add(it.Amount)
		case BankChargeNotRecorded:
			r.ChargesNotRecorded = r.ChargesNotRecorded.Add(it.Amount)
		case InterestNotRecorded:
			r.InterestNotRecorded = r.InterestNotRecorded.Add(it.Amount)
		}
	}
	r.AdjustedBookBalance = r.BookClosingBalance.Add(r.InterestNotRecorded).Sub(r.ChargesNotRecorded)
	r.AdjustedBankBalance = r.BankClosingBalance.Add(r.ChequesNotCleared).Sub(r.DepositsInTransit)
	r.Difference = r.AdjustedBookBalance.Sub(r.AdjustedBankBalance)
	if r.Difference.IsZero() {
		r.Status = Reconciled
	} else {
		r.Status = Discrepancy
	}
}

// DiscrepancyErr returns nil for a reconciled result and a *apperrors.ReconciliationDiscrepancyError otherwise.
func (r *BankReconciliation) DiscrepancyErr() error {
	if r.Status != Discrepancy {
		return nil
	}
	return &apperrors.ReconciliationDiscrepancyError{ReconciliationID: r.ReconciliationID, Difference: r.Difference}
}
