package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatement is a row of bank_statements.
type BankStatement struct {
	StatementID    int64           `db:"statement_id"`
	TempleID       string          `db:"temple_id"`
	AccountID      int64           `db:"account_id"`
	PeriodStart    time.Time       `db:"period_start"`
	PeriodEnd      time.Time       `db:"period_end"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	ClosingBalance decimal.Decimal `db:"closing_balance"`
	ImportBatchID  string          `db:"import_batch_id"`
	CreatedBy      string          `db:"created_by"`
	CreatedAt      time.Time       `db:"created_at"`
}

// BankStatementEntry is a row of bank_statement_entries, left joined with its match.
type BankStatementEntry struct {
	StatementEntryID int64           `db:"statement_entry_id"`
	StatementID      int64           `db:"statement_id"`
	Seq              int             `db:"seq"`
	TransactionDate  time.Time       `db:"transaction_date"`
	ValueDate        time.Time       `db:"value_date"`
	Direction        string          `db:"direction"`
	Amount           decimal.Decimal `db:"amount"`
	Description      string          `db:"description"`
	ReferenceNumber  string          `db:"reference_number"`
	RunningBalance   decimal.Decimal `db:"running_balance"`
	MatchedLineID    *int64          `db:"matched_line_id"`
}

// BankReconciliation is a row of bank_reconciliations.
type BankReconciliation struct {
	ReconciliationID    int64           `db:"reconciliation_id"`
	TempleID            string          `db:"temple_id"`
	StatementID         int64           `db:"statement_id"`
	AccountID           int64           `db:"account_id"`
	PeriodStart         time.Time       `db:"period_start"`
	PeriodEnd           time.Time       `db:"period_end"`
	BookOpeningBalance  decimal.Decimal `db:"book_opening_balance"`
	BookClosingBalance  decimal.Decimal `db:"book_closing_balance"`
	BankOpeningBalance  decimal.Decimal `db:"bank_opening_balance"`
	BankClosingBalance  decimal.Decimal `db:"bank_closing_balance"`
	DepositsInTransit   decimal.Decimal `db:"deposits_in_transit"`
	ChequesNotCleared   decimal.Decimal `db:"cheques_not_cleared"`
	ChargesNotRecorded  decimal.Decimal `db:"charges_not_recorded"`
	InterestNotRecorded decimal.Decimal `db:"interest_not_recorded"`
	AdjustedBookBalance decimal.Decimal `db:"adjusted_book_balance"`
	AdjustedBankBalance decimal.Decimal `db:"adjusted_bank_balance"`
	Difference          decimal.Decimal `db:"difference"`
	Status              string          `db:"status"`
	MatchedCount        int             `db:"matched_count"`
	RunID               string          `db:"run_id"`
	ReconciledBy        string          `db:"reconciled_by"`
	ReconciledAt        time.Time       `db:"reconciled_at"`
}

// OutstandingItem is a row of reconciliation_outstanding_items.
type OutstandingItem struct {
	ItemID                    int64           `db:"item_id"`
	TempleID                  string          `db:"temple_id"`
	AccountID                 int64           `db:"account_id"`
	ReconciliationID          int64           `db:"reconciliation_id"`
	ItemType                  string          `db:"item_type"`
	Source                    string          `db:"source"`
	JournalLineID             *int64          `db:"journal_line_id"`
	StatementEntryID          *int64          `db:"statement_entry_id"`
	Amount                    decimal.Decimal `db:"amount"`
	ItemDate                  time.Time       `db:"item_date"`
	Description               string          `db:"description"`
	Cleared                   bool            `db:"cleared"`
	ClearedAt                 *time.Time      `db:"cleared_at"`
	ClearedByReconciliationID *int64          `db:"cleared_by_reconciliation_id"`
	CreatedAt                 time.Time       `db:"created_at"`
}
