package dto

import (
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReferenceRequest identifies the source record behind an entry.
type ReferenceRequest struct {
	Kind string `json:"kind" binding:"required,max=40"`
	ID   string `json:"id" binding:"max=64"`
}

// LineRequest is one leg of a transaction. Exactly one of Debit and Credit must be nonzero.
type LineRequest struct {
	AccountCode   string          `json:"accountCode" binding:"required,max=20"`
	Debit         decimal.Decimal `json:"debit" binding:"decimal2"`
	Credit        decimal.Decimal `json:"credit" binding:"decimal2"`
	Description   string          `json:"description" binding:"max=500"`
	InstrumentRef string          `json:"instrumentRef" binding:"max=64"` // cheque / UTR number
}

// PostTransactionRequest is the boundary contract used by transaction-producing modules.
type PostTransactionRequest struct {
	EntryDate     string           `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Narration     string           `json:"narration" binding:"required,max=1000"`
	Reference     ReferenceRequest `json:"reference"`
	Lines         []LineRequest    `json:"lines" binding:"required,min=2,dive"`
	AdminOverride bool             `json:"adminOverride"`
}

// SaveDraftRequest stores an entry under construction. Lines may be incomplete or unbalanced.
type SaveDraftRequest struct {
	DraftID   int64            `json:"draftID"` // zero creates a new draft
	EntryDate string           `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Narration string           `json:"narration" binding:"max=1000"`
	Reference ReferenceRequest `json:"reference"`
	Lines     []LineRequest    `json:"lines" binding:"dive"`
}

// PostDraftRequest posts a stored draft.
type PostDraftRequest struct {
	AdminOverride bool `json:"adminOverride"`
}

// CancelEntryRequest cancels a posted entry.
type CancelEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReverseEntryRequest reverses a posted entry. EntryDate defaults to today.
type ReverseEntryRequest struct {
	EntryDate string `json:"entryDate" binding:"omitempty,datetime=2006-01-02"`
	Reason    string `json:"reason" binding:"required,max=500"`
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Status    string  `form:"status" binding:"omitempty,oneof=DRAFT POSTED CANCELLED REVERSED"`
	From      string  `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string  `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID        int64           `json:"lineID"`
	LineNo        int             `json:"lineNo"`
	AccountID     int64           `json:"accountID"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description,omitempty"`
	InstrumentRef string          `json:"instrumentRef,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID       int64                 `json:"entryID"`
	EntryNumber   string                `json:"entryNumber,omitempty"`
	EntryDate     string                `json:"entryDate"`
	Narration     string                `json:"narration"`
	Reference     domain.Reference      `json:"reference"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	Status        domain.EntryStatus    `json:"status"`
	IntegrityHash string                `json:"integrityHash,omitempty"`
	ReversalOfID  *int64                `json:"reversalOfID,omitempty"`
	ReversedByID  *int64                `json:"reversedByID,omitempty"`
	PostedBy      string                `json:"postedBy,omitempty"`
	PostedAt      *time.Time            `json:"postedAt,omitempty"`
	CancelledBy   string                `json:"cancelledBy,omitempty"`
	CancelledAt   *time.Time            `json:"cancelledAt,omitempty"`
	CancelReason  string                `json:"cancelReason,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
	Lines         []JournalLineResponse `json:"lines,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:       e.EntryID,
		EntryNumber:   e.EntryNumber,
		EntryDate:     e.EntryDate.Format(domain.DateLayout),
		Narration:     e.Narration,
		Reference:     e.Reference,
		TotalAmount:   e.TotalAmount.Round(2),
		Status:        e.Status,
		IntegrityHash: e.IntegrityHash,
		ReversalOfID:  e.ReversalOfID,
		ReversedByID:  e.ReversedByID,
		PostedBy:      e.PostedBy,
		PostedAt:      e.PostedAt,
		CancelledBy:   e.CancelledBy,
		CancelledAt:   e.CancelledAt,
		CancelReason:  e.CancelReason,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, JournalLineResponse{
			LineID:        l.LineID,
			LineNo:        l.LineNo,
			AccountID:     l.AccountID,
			Debit:         l.Debit.Round(2),
			Credit:        l.Credit.Round(2),
			Description:   l.Description,
			InstrumentRef: l.InstrumentRef,
		})
	}
	return resp
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
