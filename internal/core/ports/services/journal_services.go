package services

import (
	"context"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntry retrieves a specific entry with its lines.
	GetEntry(ctx context.Context, templeID string, entryID int64) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entry headers, newest first.
	ListEntries(ctx context.Context, templeID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// JournalWriterSvc defines the posting engine
type JournalWriterSvc interface {
	// BeginEntry returns an empty builder for the caller to fill.
	BeginEntry(templeID string, date time.Time, narration string, ref domain.Reference, actor string) *domain.EntryBuilder

	// AddLine validates one line and appends it to the builder.
	AddLine(ctx context.Context, b *domain.EntryBuilder, accountCode string, debit, credit decimal.Decimal, description string) error

	// Post validates and posts a builder (or the stored draft it mirrors) as one unit of work.
	Post(ctx context.Context, b domain.EntryBuilder) (*domain.JournalEntry, error)

	// PostTransaction is begin, add lines and post in a single call.
	PostTransaction(ctx context.Context, templeID string, req dto.PostTransactionRequest, actor string) (*domain.JournalEntry, error)

	// SaveDraft persists a builder as a DRAFT entry.
	SaveDraft(ctx context.Context, b domain.EntryBuilder) (*domain.JournalEntry, error)

	// PostDraft posts a stored draft.
	PostDraft(ctx context.Context, templeID string, entryID int64, actor string, adminOverride bool) (*domain.JournalEntry, error)

	// DiscardDraft deletes a stored draft.
	DiscardDraft(ctx context.Context, templeID string, entryID int64, actor string) error

	// Cancel moves a POSTED entry to CANCELLED.
	Cancel(ctx context.Context, templeID string, entryID int64, actor string, reason string) (*domain.JournalEntry, error)

	// Reverse posts the inverse of a POSTED entry and marks the original REVERSED. It returns the reversal.
	Reverse(ctx context.Context, templeID string, entryID int64, date *time.Time, actor string, reason string) (*domain.JournalEntry, error)
}

// JournalCalculatorSvc defines balance queries over posted lines
type JournalCalculatorSvc interface {
	// GetAccountBalance returns the balance of one account as of a date (nil means today).
	GetAccountBalance(ctx context.Context, templeID string, accountCode string, asOf *time.Time) (*domain.AccountBalance, error)

	// GetTrialBalance returns every account's balance as of a date (nil means today).
	GetTrialBalance(ctx context.Context, templeID string, asOf *time.Time) ([]domain.AccountBalance, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalCalculatorSvc
}
