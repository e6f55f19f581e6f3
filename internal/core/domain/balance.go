package domain

import "github.com/shopspring/decimal"

// AccountBalance is the position of one account as of a date.
// Balance is expressed on the account's natural side (positive debit for assets and expenses,
// positive credit for the rest).
type AccountBalance struct {
	AccountID   int64           `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Balance     decimal.Decimal `json:"balance"`
}

// LineTotals is the raw debit/credit sum of an account's counted lines.
type LineTotals struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}
