package services

import (
	"context"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// IntegritySvcFacade verifies the hash chain and the audit log
type IntegritySvcFacade interface {
	// VerifyChain walks the chain on a consistent snapshot. When tampering is found it returns the
	// report together with an *apperrors.TamperDetectedError.
	VerifyChain(ctx context.Context, templeID string) (*domain.ChainReport, error)

	// LastReport returns the most recent cached verification report.
	LastReport(ctx context.Context, templeID string) (*domain.ChainReport, error)

	// CrossCheckAuditLog compares the audit log with the stored entries.
	CrossCheckAuditLog(ctx context.Context, templeID string) (*domain.AuditCheckReport, error)
}
