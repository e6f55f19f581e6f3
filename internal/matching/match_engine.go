// Package matching pairs bank statement movements with book lines.
// It is pure: callers load candidates, run the engine, and persist the result.
package matching

import (
	"sort"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/timeutil"
	"github.com/shopspring/decimal"
)

// DefaultDateToleranceDays is the ± window used when no configuration is supplied.
const DefaultDateToleranceDays = 3

// BankItem is a statement movement awaiting a match.
type BankItem struct {
	ID        int64
	Date      time.Time
	Amount    decimal.Decimal
	IsCredit  bool
	Reference string // normalised
}

// BookItem is a journal line on the bank account awaiting a match.
type BookItem struct {
	ID         int64
	Date       time.Time
	Amount     decimal.Decimal
	IsDebit    bool
	References []string // normalised instrument reference and entry number
}

// Config tunes the heuristics.
type Config struct {
	DateToleranceDays int
	AmountTolerance   decimal.Decimal // zero disables the tolerance pass
}

// Match pairs one bank item with one book item.
type Match struct {
	BankID       int64
	BookID       int64
	Tier         domain.MatchTier
	DateDiffDays int
}

// Result is the outcome of one engine run.
type Result struct {
	Matches       []Match
	UnmatchedBank []int64
	UnmatchedBook []int64
}

// MatchEngine applies the tie-break policy:
// (1) exact reference, (2) exact amount and date, (3) exact amount within the date window,
// closest date first, (4) amount within tolerance inside the window.
// Each pass runs over every unmatched pair before the next pass starts, so a weaker rule never
// takes a line a stronger rule wanted.
type MatchEngine struct {
	cfg Config
}

// NewMatchEngine creates an engine; a negative window falls back to the default.
func NewMatchEngine(cfg Config) *MatchEngine {
	if cfg.DateToleranceDays < 0 {
		cfg.DateToleranceDays = DefaultDateToleranceDays
	}
	if cfg.AmountTolerance.IsNegative() {
		cfg.AmountTolerance = decimal.Zero
	}
	return &MatchEngine{cfg: cfg}
}

type candidate struct {
	bank      int
	book      int
	dateDiff  int
	amountGap decimal.Decimal
}

// ProcessMatches runs all passes. Input order does not affect the result.
func (m *MatchEngine) ProcessMatches(bank []BankItem, book []BookItem) Result {
	processedBank := make(map[int]bool, len(bank))
	processedBook := make(map[int]bool, len(book))
	var result Result

	passes := []struct {
		tier   domain.MatchTier
		accept func(b BankItem, l BookItem, dateDiff int, gap decimal.Decimal) bool
	}{
		{domain.TierReference, func(b BankItem, l BookItem, _ int, gap decimal.Decimal) bool {
			return gap.IsZero() && referenceMatches(b, l)
		}},
		{domain.TierExactDate, func(_ BankItem, _ BookItem, dateDiff int, gap decimal.Decimal) bool {
			return gap.IsZero() && dateDiff == 0
		}},
		{domain.TierWindow, func(_ BankItem, _ BookItem, dateDiff int, gap decimal.Decimal) bool {
			return gap.IsZero() && dateDiff <= m.cfg.DateToleranceDays
		}},
		{domain.TierTolerance, func(_ BankItem, _ BookItem, dateDiff int, gap decimal.Decimal) bool {
			return m.cfg.AmountTolerance.IsPositive() && !gap.IsZero() &&
				gap.LessThanOrEqual(m.cfg.AmountTolerance) && dateDiff <= m.cfg.DateToleranceDays
		}},
	}

	for _, pass := range passes {
		var cands []candidate
		for i, b := range bank {
			if processedBank[i] {
				continue
			}
			for j, l := range book {
				if processedBook[j] || b.IsCredit != l.IsDebit {
					continue
				}
				dateDiff := timeutil.DaysBetween(b.Date, l.Date)
				gap := b.Amount.Sub(l.Amount).Abs()
				if pass.accept(b, l, dateDiff, gap) {
					cands = append(cands, candidate{bank: i, book: j, dateDiff: dateDiff, amountGap: gap})
				}
			}
		}

		sort.SliceStable(cands, func(x, y int) bool {
			a, c := cands[x], cands[y]
			if cmp := a.amountGap.Cmp(c.amountGap); cmp != 0 {
				return cmp < 0
			}
			if a.dateDiff != c.dateDiff {
				return a.dateDiff < c.dateDiff
			}
			if bank[a.bank].ID != bank[c.bank].ID {
				return bank[a.bank].ID < bank[c.bank].ID
			}
			return book[a.book].ID < book[c.book].ID
		})

		for _, c := range cands {
			if processedBank[c.bank] || processedBook[c.book] {
				continue
			}
			processedBank[c.bank] = true
			processedBook[c.book] = true
			result.Matches = append(result.Matches, Match{
				BankID:       bank[c.bank].ID,
				BookID:       book[c.book].ID,
				Tier:         pass.tier,
				DateDiffDays: c.dateDiff,
			})
		}
	}

	for i, b := range bank {
		if !processedBank[i] {
			result.UnmatchedBank = append(result.UnmatchedBank, b.ID)
		}
	}
	for j, l := range book {
		if !processedBook[j] {
			result.UnmatchedBook = append(result.UnmatchedBook, l.ID)
		}
	}
	sort.Slice(result.Matches, func(i, j int) bool { return result.Matches[i].BankID < result.Matches[j].BankID })
	return result
}

func referenceMatches(b BankItem, l BookItem) bool {
	if b.Reference == "" {
		return false
	}
	for _, ref := range l.References {
		if ref != "" && ref == b.Reference {
			return true
		}
	}
	return false
}
