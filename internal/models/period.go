package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialYear is a row of financial_years. Its status is derived from the periods and not stored.
type FinancialYear struct {
	YearID     int64     `db:"year_id"`
	TempleID   string    `db:"temple_id"`
	Name       string    `db:"name"`
	StartDate  time.Time `db:"start_date"`
	EndDate    time.Time `db:"end_date"`
	PeriodType string    `db:"period_type"`
	AuditFields
}

// FinancialPeriod is a row of financial_periods.
type FinancialPeriod struct {
	PeriodID  int64     `db:"period_id"`
	YearID    int64     `db:"year_id"`
	TempleID  string    `db:"temple_id"`
	Name      string    `db:"name"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Status    string    `db:"status"`
	AuditFields
}

// PeriodClosing is a row of period_closings.
type PeriodClosing struct {
	ClosingID       int64           `db:"closing_id"`
	TempleID        string          `db:"temple_id"`
	PeriodID        int64           `db:"period_id"`
	TotalIncome     decimal.Decimal `db:"total_income"`
	TotalExpense    decimal.Decimal `db:"total_expense"`
	NetSurplus      decimal.Decimal `db:"net_surplus"`
	EquityAccountID int64           `db:"equity_account_id"`
	ClosingEntryID  *int64          `db:"closing_entry_id"`
	ClosedBy        string          `db:"closed_by"`
	ClosedAt        time.Time       `db:"closed_at"`
}
