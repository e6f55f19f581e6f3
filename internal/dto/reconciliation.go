package dto

import (
	"github.com/shopspring/decimal"
)

// StatementRowRequest is one already-parsed bank statement row.
type StatementRowRequest struct {
	TransactionDate string          `json:"transactionDate" binding:"required,datetime=2006-01-02"`
	ValueDate       string          `json:"valueDate" binding:"omitempty,datetime=2006-01-02"`
	Direction       string          `json:"direction" binding:"required,oneof=CREDIT DEBIT"`
	Amount          decimal.Decimal `json:"amount" binding:"decimal2"`
	Description     string          `json:"description" binding:"max=500"`
	ReferenceNumber string          `json:"referenceNumber" binding:"max=64"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
}

// ImportStatementRequest ingests a statement for a bank account.
type ImportStatementRequest struct {
	AccountCode    string                `json:"accountCode" binding:"required,max=20"`
	PeriodStart    string                `json:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd      string                `json:"periodEnd" binding:"required,datetime=2006-01-02"`
	OpeningBalance decimal.Decimal       `json:"openingBalance"`
	ClosingBalance decimal.Decimal       `json:"closingBalance"`
	Rows           []StatementRowRequest `json:"rows" binding:"required,min=1,dive"`
}

// ListOutstandingParams defines query parameters for listing outstanding items.
type ListOutstandingParams struct {
	AccountCode    string `form:"accountCode" binding:"required"`
	IncludeCleared bool   `form:"includeCleared"`
}
