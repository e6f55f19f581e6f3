package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// PeriodReader defines read operations for financial years and periods
type PeriodReader interface {
	FindYearByID(ctx context.Context, templeID string, yearID int64) (*domain.FinancialYear, error)
	ListYears(ctx context.Context, templeID string) ([]domain.FinancialYear, error)

	// YearOverlaps reports whether any year of the temple intersects [start, end].
	YearOverlaps(ctx context.Context, templeID string, start, end time.Time) (bool, error)

	FindPeriodByID(ctx context.Context, templeID string, periodID int64) (*domain.FinancialPeriod, error)

	// FindPeriodForDate returns the period containing date or apperrors.ErrNotFound.
	FindPeriodForDate(ctx context.Context, templeID string, date time.Time) (*domain.FinancialPeriod, error)

	ListPeriodsByYear(ctx context.Context, templeID string, yearID int64) ([]domain.FinancialPeriod, error)
	ListClosings(ctx context.Context, templeID string, periodID int64) ([]domain.PeriodClosing, error)
}

// PeriodWriter defines write operations for financial years and periods
type PeriodWriter interface {
	// SaveYear inserts a year with its periods and sets every id.
	SaveYear(ctx context.Context, year *domain.FinancialYear, periods []domain.FinancialPeriod) error

	UpdatePeriodStatus(ctx context.Context, templeID string, periodID int64, status domain.PeriodStatus, actor string, at time.Time) error
	SaveClosing(ctx context.Context, closing *domain.PeriodClosing) error
}

// PeriodRepositoryFacade combines all period-related repository interfaces
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
