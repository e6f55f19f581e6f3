package services

import (
	"context"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/dto"
)

// PeriodReaderSvc defines read operations for financial years and periods
type PeriodReaderSvc interface {
	ListFinancialYears(ctx context.Context, templeID string) ([]domain.FinancialYear, error)
	ListPeriods(ctx context.Context, templeID string, yearID int64) ([]domain.FinancialPeriod, error)
	GetPeriodForDate(ctx context.Context, templeID string, date time.Time) (*domain.FinancialPeriod, error)
}

// PeriodWriterSvc defines the period lifecycle
type PeriodWriterSvc interface {
	// CreateFinancialYear creates a year subdivided into contiguous periods.
	CreateFinancialYear(ctx context.Context, templeID string, req dto.CreateFinancialYearRequest, actor string) (*domain.FinancialYear, []domain.FinancialPeriod, error)

	// OpenPeriod re-opens a CLOSED period.
	OpenPeriod(ctx context.Context, templeID string, periodID int64, actor string) (*domain.FinancialPeriod, error)

	// ClosePeriod books the closing transfer into equity and closes the period.
	ClosePeriod(ctx context.Context, templeID string, periodID int64, equityCode string, actor string) (*domain.PeriodClosing, error)

	// LockPeriod permanently locks a CLOSED period.
	LockPeriod(ctx context.Context, templeID string, periodID int64, actor string) (*domain.FinancialPeriod, error)
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	PeriodReaderSvc
	PeriodWriterSvc
}
