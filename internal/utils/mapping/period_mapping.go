package mapping

import (
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/models"
)

// ToModelFinancialYear converts a domain FinancialYear to a model FinancialYear
func ToModelFinancialYear(d domain.FinancialYear) models.FinancialYear {
	return models.FinancialYear{
		YearID:      d.YearID,
		TempleID:    d.TempleID,
		Name:        d.Name,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		PeriodType:  string(d.PeriodType),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFinancialYear converts a model FinancialYear to a domain FinancialYear.
// Status is left empty; callers derive it from the periods.
func ToDomainFinancialYear(m models.FinancialYear) domain.FinancialYear {
	return domain.FinancialYear{
		YearID:      m.YearID,
		TempleID:    m.TempleID,
		Name:        m.Name,
		StartDate:   date(m.StartDate),
		EndDate:     date(m.EndDate),
		PeriodType:  domain.PeriodType(m.PeriodType),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelFinancialPeriod converts a domain FinancialPeriod to a model FinancialPeriod
func ToModelFinancialPeriod(d domain.FinancialPeriod) models.FinancialPeriod {
	return models.FinancialPeriod{
		PeriodID:    d.PeriodID,
		YearID:      d.YearID,
		TempleID:    d.TempleID,
		Name:        d.Name,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Status:      string(d.Status),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFinancialPeriod converts a model FinancialPeriod to a domain FinancialPeriod
func ToDomainFinancialPeriod(m models.FinancialPeriod) domain.FinancialPeriod {
	return domain.FinancialPeriod{
		PeriodID:    m.PeriodID,
		YearID:      m.YearID,
		TempleID:    m.TempleID,
		Name:        m.Name,
		StartDate:   date(m.StartDate),
		EndDate:     date(m.EndDate),
		Status:      domain.PeriodStatus(m.Status),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPeriodClosing converts a model PeriodClosing to a domain PeriodClosing
func ToDomainPeriodClosing(m models.PeriodClosing) domain.PeriodClosing {
	return domain.PeriodClosing{
		ClosingID:       m.ClosingID,
		TempleID:        m.TempleID,
		PeriodID:        m.PeriodID,
		TotalIncome:     m.TotalIncome,
		TotalExpense:    m.TotalExpense,
		NetSurplus:      m.NetSurplus,
		EquityAccountID: m.EquityAccountID,
		ClosingEntryID:  m.ClosingEntryID,
		ClosedBy:        m.ClosedBy,
		ClosedAt:        m.ClosedAt.UTC(),
	}
}
