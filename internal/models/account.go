package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of accounts.
type Account struct {
	AccountID       int64           `db:"account_id"`
	TempleID        string          `db:"temple_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	Subtype         string          `db:"subtype"`
	ParentAccountID *int64          `db:"parent_account_id"` // Nullable
	IsActive        bool            `db:"is_active"`
	OpeningDebit    decimal.Decimal `db:"opening_debit"`
	OpeningCredit   decimal.Decimal `db:"opening_credit"`
	AuditFields
}
