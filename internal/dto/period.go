package dto

import (
	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// CreateFinancialYearRequest creates a year and its periods.
// EndDate defaults to one year after StartDate; Name defaults to "FY 2024-25" style.
type CreateFinancialYearRequest struct {
	Name       string            `json:"name" binding:"max=50"`
	StartDate  string            `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate    string            `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	PeriodType domain.PeriodType `json:"periodType" binding:"required,oneof=MONTHLY QUARTERLY"`
}

// ClosePeriodRequest closes a period. An empty EquityAccountCode uses the configured default.
type ClosePeriodRequest struct {
	EquityAccountCode string `json:"equityAccountCode" binding:"max=20"`
}

// FinancialYearResponse is a year with its periods.
type FinancialYearResponse struct {
	Year    domain.FinancialYear     `json:"year"`
	Periods []domain.FinancialPeriod `json:"periods"`
}
