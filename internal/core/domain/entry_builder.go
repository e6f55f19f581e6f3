package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryBuilder is the mutable draft a caller fills with lines before posting.
// It only lives in memory until SaveDraft or Post persists it; DraftID is set when it mirrors a stored draft.
type EntryBuilder struct {
	TempleID      string
	EntryDate     time.Time
	Narration     string
	Reference     Reference
	Actor         string
	AdminOverride bool
	DraftID       int64
	ReversalOf    *int64
	Lines         []BuilderLine
}

// BuilderLine is a line as the caller supplied it, addressed by account code.
type BuilderLine struct {
	AccountCode   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Description   string
	InstrumentRef string
}

// Totals sums both sides of the builder.
func (b *EntryBuilder) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range b.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
