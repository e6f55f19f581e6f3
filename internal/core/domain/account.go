package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether the natural balance of the type sits on the debit side.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account is a node of a temple's chart of accounts.
// Code is the stable business key other modules persist; AccountID is internal.
type Account struct {
	AccountID       int64           `json:"accountID"`
	TempleID        string          `json:"templeID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	Subtype         string          `json:"subtype,omitempty"`
	ParentAccountID *int64          `json:"parentAccountID,omitempty"`
	IsActive        bool            `json:"isActive"`
	OpeningDebit    decimal.Decimal `json:"openingDebit"`
	OpeningCredit   decimal.Decimal `json:"openingCredit"`
	AuditFields
}

// OpeningBalance returns the opening position as debit minus credit.
func (a Account) OpeningBalance() decimal.Decimal {
	return a.OpeningDebit.Sub(a.OpeningCredit)
}
