package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a bank movement as the bank reports it.
type Direction string

const (
	DirectionCredit Direction = "CREDIT" // money into the temple's account
	DirectionDebit  Direction = "DEBIT"  // money out of the temple's account
)

// IsValid reports whether d is CREDIT or DEBIT.
func (d Direction) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// BankStatement is an imported, read-only snapshot of the bank's view of one account.
type BankStatement struct {
	StatementID    int64                `json:"statementID"`
	TempleID       string               `json:"templeID"`
	AccountID      int64                `json:"accountID"`
	PeriodStart    time.Time            `json:"periodStart"`
	PeriodEnd      time.Time            `json:"periodEnd"`
	OpeningBalance decimal.Decimal      `json:"openingBalance"`
	ClosingBalance decimal.Decimal      `json:"closingBalance"`
	ImportBatchID  string               `json:"importBatchID"`
	Entries        []BankStatementEntry `json:"entries"`
	CreatedBy      string               `json:"createdBy"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// BankStatementEntry is one movement on a statement.
type BankStatementEntry struct {
	StatementEntryID int64           `json:"statementEntryID"`
	StatementID      int64           `json:"statementID"`
	Seq              int             `json:"seq"`
	TransactionDate  time.Time       `json:"transactionDate"`
	ValueDate        time.Time       `json:"valueDate"`
	Direction        Direction       `json:"direction"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	ReferenceNumber  string          `json:"referenceNumber,omitempty"`
	RunningBalance   decimal.Decimal `json:"runningBalance"`
	MatchedLineID    *int64          `json:"matchedLineID,omitempty"`
}

// BookDirectionIsDebit reports whether the matching book line on the bank asset account is a debit.
func (e BankStatementEntry) BookDirectionIsDebit() bool {
	return e.Direction == DirectionCredit
}
