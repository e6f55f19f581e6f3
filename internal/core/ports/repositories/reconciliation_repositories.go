package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// StatementReader defines read operations for imported bank statements
type StatementReader interface {
	// FindStatementByID retrieves a statement with its entries (ordered by Seq) and their matched lines.
	FindStatementByID(ctx context.Context, templeID string, statementID int64) (*domain.BankStatement, error)

	// FindStatementEntriesByIDs retrieves statement entries by id with their matched lines.
	FindStatementEntriesByIDs(ctx context.Context, templeID string, entryIDs []int64) ([]domain.BankStatementEntry, error)
}

// StatementWriter defines write operations for imported bank statements
type StatementWriter interface {
	// SaveStatement inserts the statement and its entries and sets every id.
	SaveStatement(ctx context.Context, statement *domain.BankStatement) error
}

// ReconciliationReader defines read operations for matches, reconciliations and outstanding items
type ReconciliationReader interface {
	FindReconciliationByID(ctx context.Context, templeID string, reconciliationID int64) (*domain.BankReconciliation, error)
	FindReconciliationByStatement(ctx context.Context, templeID string, statementID int64) (*domain.BankReconciliation, error)

	// ListMatchedLineIDs returns the ids of journal lines already matched on the account.
	ListMatchedLineIDs(ctx context.Context, templeID string, accountID int64) (map[int64]bool, error)

	ListOutstandingItems(ctx context.Context, templeID string, accountID int64, includeCleared bool) ([]domain.OutstandingItem, error)
	FindOutstandingItemByID(ctx context.Context, templeID string, itemID int64) (*domain.OutstandingItem, error)
}

// ReconciliationWriter defines write operations for matches, reconciliations and outstanding items
type ReconciliationWriter interface {
	// SaveMatch inserts a match; a line or statement entry that is already matched yields apperrors.ErrDuplicate.
	SaveMatch(ctx context.Context, match *domain.ReconciliationMatch) error

	// DeleteMatchBySource removes the match holding the given line or statement entry.
	DeleteMatchBySource(ctx context.Context, templeID string, journalLineID, statementEntryID *int64) error

	// SaveReconciliation inserts or updates the reconciliation of a statement and sets its id.
	SaveReconciliation(ctx context.Context, rec *domain.BankReconciliation) error

	// UpsertOutstandingItem inserts an item for a new source. For an existing uncleared item it refreshes
	// ReconciliationID; a cleared item is left untouched. The stored row is copied back into item.
	UpsertOutstandingItem(ctx context.Context, item *domain.OutstandingItem) error

	// ClearOutstandingBySource marks the item of a source as cleared by a reconciliation.
	ClearOutstandingBySource(ctx context.Context, templeID string, journalLineID, statementEntryID *int64, reconciliationID int64, at time.Time) error

	// ReopenOutstandingItem clears the cleared flag of an item.
	ReopenOutstandingItem(ctx context.Context, templeID string, itemID int64) error
}

// ReconciliationRepositoryFacade combines all reconciliation-related repository interfaces
type ReconciliationRepositoryFacade interface {
	StatementReader
	StatementWriter
	ReconciliationReader
	ReconciliationWriter
}
