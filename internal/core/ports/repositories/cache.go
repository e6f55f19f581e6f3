package repositories

import (
	"context"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// AccountCache caches account lookups by code.
type AccountCache interface {
	Get(templeID, code string) (domain.Account, bool)
	Set(account domain.Account)
	Invalidate(templeID, code string)
}

// ChainReportCache keeps the last chain verification report per temple.
type ChainReportCache interface {
	GetReport(ctx context.Context, templeID string) (*domain.ChainReport, error)
	PutReport(ctx context.Context, report domain.ChainReport) error
}
