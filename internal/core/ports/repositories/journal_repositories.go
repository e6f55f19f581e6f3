package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// EntryFilter narrows ListEntries.
type EntryFilter struct {
	Status *domain.EntryStatus
	From   *time.Time
	To     *time.Time
}

// LineSumQuery selects which counted lines (POSTED and REVERSED entries) SumLinesByAccount adds up.
type LineSumQuery struct {
	AccountIDs           []int64              // empty means every account
	AccountTypes         []domain.AccountType // empty means every type
	From                 *time.Time
	To                   *time.Time
	ExcludeReferenceKind string
}

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines.
	FindEntryByID(ctx context.Context, templeID string, entryID int64) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entry headers, newest first, using token-based pagination.
	ListEntries(ctx context.Context, templeID string, filter EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// ListChain returns every chained entry header (no lines) in chain order.
	ListChain(ctx context.Context, templeID string) ([]domain.JournalEntry, error)

	// LastChainLink returns the position and stored hash of the chain tail; (0, "") for an empty chain.
	LastChainLink(ctx context.Context, templeID string) (int64, string, error)

	// CountDrafts counts DRAFT entries dated within [from, to].
	CountDrafts(ctx context.Context, templeID string, from, to time.Time) (int, error)

	// SumLinesByAccount totals debit and credit per account over counted entries.
	SumLinesByAccount(ctx context.Context, templeID string, q LineSumQuery) ([]domain.LineTotals, error)

	// ListLedgerLines returns counted lines on an account with entry dates in [from, to].
	ListLedgerLines(ctx context.Context, templeID string, accountID int64, from, to time.Time) ([]domain.LedgerLine, error)

	// FindLedgerLinesByIDs returns counted lines by id.
	FindLedgerLinesByIDs(ctx context.Context, templeID string, lineIDs []int64) ([]domain.LedgerLine, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// LockChain serialises ledger mutations of one temple until the unit of work ends.
	LockChain(ctx context.Context, templeID string) error

	// NextEntrySequence allocates the next entry counter of a financial year.
	NextEntrySequence(ctx context.Context, templeID string, yearID int64) (int64, error)

	// SaveEntry inserts the entry (EntryID == 0) or rewrites a draft's header and lines.
	// It sets EntryID and every LineID.
	SaveEntry(ctx context.Context, entry *domain.JournalEntry) error

	// SetIntegrityHash stores the hash of a chained entry.
	SetIntegrityHash(ctx context.Context, templeID string, entryID int64, hash string) error

	// MarkCancelled moves an entry to CANCELLED.
	MarkCancelled(ctx context.Context, templeID string, entryID int64, actor string, at time.Time, reason string) error

	// MarkReversed moves an entry to REVERSED and links its reversal.
	MarkReversed(ctx context.Context, templeID string, entryID, reversalID int64, actor string, at time.Time) error

	// DeleteDraft removes a DRAFT entry and its lines.
	DeleteDraft(ctx context.Context, templeID string, entryID int64) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
