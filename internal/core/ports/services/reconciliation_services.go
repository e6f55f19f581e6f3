package services

import (
	"context"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/dto"
)

// ReconciliationReaderSvc defines read operations for reconciliation results
type ReconciliationReaderSvc interface {
	GetReconciliation(ctx context.Context, templeID string, reconciliationID int64) (*domain.BankReconciliation, error)
	ListOutstandingItems(ctx context.Context, templeID string, accountCode string, includeCleared bool) ([]domain.OutstandingItem, error)
}

// ReconciliationWriterSvc defines statement ingestion and reconciliation
type ReconciliationWriterSvc interface {
	// ImportStatement stores an already-parsed statement. No matching happens here.
	ImportStatement(ctx context.Context, templeID string, req dto.ImportStatementRequest, actor string) (*domain.BankStatement, error)

	// Reconcile matches a statement against the books and records the result.
	Reconcile(ctx context.Context, templeID string, statementID int64, actor string) (*domain.BankReconciliation, error)

	// ReopenOutstandingItem makes a cleared item outstanding again and drops its match.
	ReopenOutstandingItem(ctx context.Context, templeID string, itemID int64, actor string) (*domain.OutstandingItem, error)
}

// ReconciliationSvcFacade combines all reconciliation-related service interfaces
type ReconciliationSvcFacade interface {
	ReconciliationReaderSvc
	ReconciliationWriterSvc
}
