package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the posting state of a financial period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
	PeriodLocked PeriodStatus = "LOCKED"
)

// PeriodType controls how a financial year is subdivided.
type PeriodType string

const (
	Monthly   PeriodType = "MONTHLY"
	Quarterly PeriodType = "QUARTERLY"
)

// FinancialYear groups contiguous periods. Its status is derived from its periods.
type FinancialYear struct {
	YearID     int64        `json:"yearID"`
	TempleID   string       `json:"templeID"`
	Name       string       `json:"name"`
	StartDate  time.Time    `json:"startDate"`
	EndDate    time.Time    `json:"endDate"`
	PeriodType PeriodType   `json:"periodType"`
	Status     PeriodStatus `json:"status"`
	AuditFields
}

// Contains reports whether date (compared by calendar day) falls within the year.
func (y FinancialYear) Contains(date time.Time) bool {
	return !date.Before(y.StartDate) && !date.After(y.EndDate)
}

// FinancialPeriod is a month or quarter of a financial year.
type FinancialPeriod struct {
	PeriodID  int64        `json:"periodID"`
	YearID    int64        `json:"yearID"`
	TempleID  string       `json:"templeID"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	AuditFields
}

// Contains reports whether date falls within the period, both bounds inclusive.
func (p FinancialPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// DeriveYearStatus returns LOCKED when every period is locked, CLOSED when none is open, else OPEN.
func DeriveYearStatus(periods []FinancialPeriod) PeriodStatus {
	if len(periods) == 0 {
		return PeriodOpen
	}
	locked := 0
	for _, p := range periods {
		switch p.Status {
		case PeriodOpen:
			return PeriodOpen
		case PeriodLocked:
			locked++
		}
	}
	if locked == len(periods) {
		return PeriodLocked
	}
	return PeriodClosed
}

// PeriodClosing snapshots the result of one close of a period.
type PeriodClosing struct {
	ClosingID       int64           `json:"closingID"`
	TempleID        string          `json:"templeID"`
	PeriodID        int64           `json:"periodID"`
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalExpense    decimal.Decimal `json:"totalExpense"`
	NetSurplus      decimal.Decimal `json:"netSurplus"`
	EquityAccountID int64           `json:"equityAccountID"`
	ClosingEntryID  *int64          `json:"closingEntryID,omitempty"`
	ClosedBy        string          `json:"closedBy"`
	ClosedAt        time.Time       `json:"closedAt"`
}
