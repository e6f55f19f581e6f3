package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/temple_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

func (r *repos) FindEntryByID(_ context.Context, templeID string, entryID int64) (*domain.JournalEntry, error) {
	st, unlock := r.read()
	defer unlock()
	e, ok := st.entries[entryID]
	if !ok || e.TempleID != templeID {
		return nil, notFound("journal entry", entryID)
	}
	e.Lines = slices.Clone(e.Lines)
	return &e, nil
}

func (r *repos) ListEntries(_ context.Context, templeID string, filter portsrepo.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	st, unlock := r.read()
	defer unlock()

	var (
		tokenDate time.Time
		tokenID   int64
		err       error
	)
	if nextToken != nil && *nextToken != "" {
		tokenDate, tokenID, err = pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	var all []domain.JournalEntry
	for _, e := range st.entries {
		if e.TempleID != templeID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.From != nil && e.EntryDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.EntryDate.After(*filter.To) {
			continue
		}
		if tokenID != 0 && !pagination.After(e.EntryDate, e.EntryID, tokenDate, tokenID) {
			continue
		}
		e.Lines = nil
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		return pagination.After(all[j].EntryDate, all[j].EntryID, all[i].EntryDate, all[i].EntryID)
	})

	if limit <= 0 || len(all) <= limit {
		return all, nil, nil
	}
	page := all[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.EntryDate, last.EntryID)
	return page, &token, nil
}

func (r *repos) ListChain(_ context.Context, templeID string) ([]domain.JournalEntry, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.JournalEntry
	for _, e := range st.entries {
		if e.TempleID == templeID && e.InChain() {
			e.Lines = nil
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainSeq < out[j].ChainSeq })
	return out, nil
}

func (r *repos) LastChainLink(_ context.Context, templeID string) (int64, string, error) {
	st, unlock := r.read()
	defer unlock()
	var (
		seq  int64
		hash string
	)
	for _, e := range st.entries {
		if e.TempleID == templeID && e.InChain() && e.ChainSeq > seq {
			seq, hash = e.ChainSeq, e.IntegrityHash
		}
	}
	return seq, hash, nil
}

func (r *repos) CountDrafts(_ context.Context, templeID string, from, to time.Time) (int, error) {
	st, unlock := r.read()
	defer unlock()
	n := 0
	for _, e := range st.entries {
		if e.TempleID == templeID && e.Status == domain.Draft && !e.EntryDate.Before(from) && !e.EntryDate.After(to) {
			n++
		}
	}
	return n, nil
}

func (r *repos) SumLinesByAccount(_ context.Context, templeID string, q portsrepo.LineSumQuery) ([]domain.LineTotals, error) {
	st, unlock := r.read()
	defer unlock()

	totals := map[int64]*domain.LineTotals{}
	for _, e := range st.entries {
		if e.TempleID != templeID || !e.Status.CountsInBalances() {
			continue
		}
		if q.ExcludeReferenceKind != "" && e.Reference.Kind == q.ExcludeReferenceKind {
			continue
		}
		if q.From != nil && e.EntryDate.Before(*q.From) {
			continue
		}
		if q.To != nil && e.EntryDate.After(*q.To) {
			continue
		}
		for _, l := range e.Lines {
			if len(q.AccountIDs) > 0 && !slices.Contains(q.AccountIDs, l.AccountID) {
				continue
			}
			if len(q.AccountTypes) > 0 && !slices.Contains(q.AccountTypes, st.accounts[l.AccountID].AccountType) {
				continue
			}
			t, ok := totals[l.AccountID]
			if !ok {
				t = &domain.LineTotals{AccountID: l.AccountID, Debit: decimal.Zero, Credit: decimal.Zero}
				totals[l.AccountID] = t
			}
			t.Debit = t.Debit.Add(l.Debit)
			t.Credit = t.Credit.Add(l.Credit)
		}
	}

	out := make([]domain.LineTotals, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (r *repos) ListLedgerLines(_ context.Context, templeID string, accountID int64, from, to time.Time) ([]domain.LedgerLine, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.LedgerLine
	for _, e := range st.entries {
		if e.TempleID != templeID || !e.Status.CountsInBalances() || e.EntryDate.Before(from) || e.EntryDate.After(to) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				out = append(out, ledgerLine(e, l))
			}
		}
	}
	sortLedgerLines(out)
	return out, nil
}

func (r *repos) FindLedgerLinesByIDs(_ context.Context, templeID string, lineIDs []int64) ([]domain.LedgerLine, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.LedgerLine
	for _, e := range st.entries {
		if e.TempleID != templeID || !e.Status.CountsInBalances() {
			continue
		}
		for _, l := range e.Lines {
			if slices.Contains(lineIDs, l.LineID) {
				out = append(out, ledgerLine(e, l))
			}
		}
	}
	sortLedgerLines(out)
	return out, nil
}

// LockChain is a no-op: WithTx already holds the store-wide write lock.
func (r *repos) LockChain(_ context.Context, _ string) error {
	if r.readOnly {
		return errReadOnly
	}
	return nil
}

func (r *repos) NextEntrySequence(_ context.Context, templeID string, yearID int64) (int64, error) {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return 0, err
	}
	key := sequenceKey{templeID: templeID, yearID: yearID}
	st.sequences[key]++
	return st.sequences[key], nil
}

func (r *repos) SaveEntry(_ context.Context, entry *domain.JournalEntry) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}

	if entry.EntryID != 0 {
		cur, ok := st.entries[entry.EntryID]
		if !ok || cur.TempleID != entry.TempleID {
			return notFound("journal entry", entry.EntryID)
		}
		if cur.Status != domain.Draft {
			return fmt.Errorf("entry %d is %s: %w", entry.EntryID, cur.Status, apperrors.ErrConflict)
		}
	}
	for id, e := range st.entries {
		if id == entry.EntryID || e.TempleID != entry.TempleID {
			continue
		}
		if entry.EntryNumber != "" && e.EntryNumber == entry.EntryNumber {
			return fmt.Errorf("entry number %s: %w", entry.EntryNumber, apperrors.ErrDuplicate)
		}
		if entry.ChainSeq > 0 && e.ChainSeq == entry.ChainSeq {
			return fmt.Errorf("chain position %d: %w", entry.ChainSeq, apperrors.ErrDuplicate)
		}
	}

	if entry.EntryID == 0 {
		entry.EntryID = st.nextID("journal_entries")
	}
	for i := range entry.Lines {
		entry.Lines[i].LineID = st.nextID("journal_lines")
		entry.Lines[i].EntryID = entry.EntryID
		entry.Lines[i].LineNo = i + 1
	}
	stored := *entry
	stored.Lines = slices.Clone(entry.Lines)
	st.entries[entry.EntryID] = stored
	return nil
}

func (r *repos) SetIntegrityHash(_ context.Context, templeID string, entryID int64, hash string) error {
	return r.updateEntry(templeID, entryID, func(e *domain.JournalEntry) error {
		e.IntegrityHash = hash
		return nil
	})
}

func (r *repos) MarkCancelled(_ context.Context, templeID string, entryID int64, actor string, at time.Time, reason string) error {
	return r.updateEntry(templeID, entryID, func(e *domain.JournalEntry) error {
		e.Status = domain.Cancelled
		e.CancelledBy = actor
		e.CancelledAt = &at
		e.CancelReason = reason
		e.LastUpdatedAt = at
		e.LastUpdatedBy = actor
		return nil
	})
}

func (r *repos) MarkReversed(_ context.Context, templeID string, entryID, reversalID int64, actor string, at time.Time) error {
	return r.updateEntry(templeID, entryID, func(e *domain.JournalEntry) error {
		e.Status = domain.Reversed
		e.ReversedByID = &reversalID
		e.LastUpdatedAt = at
		e.LastUpdatedBy = actor
		return nil
	})
}

func (r *repos) DeleteDraft(_ context.Context, templeID string, entryID int64) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	e, ok := st.entries[entryID]
	if !ok || e.TempleID != templeID {
		return notFound("journal entry", entryID)
	}
	if e.Status != domain.Draft {
		return fmt.Errorf("entry %d is %s: %w", entryID, e.Status, apperrors.ErrConflict)
	}
	delete(st.entries, entryID)
	return nil
}

func (r *repos) updateEntry(templeID string, entryID int64, fn func(e *domain.JournalEntry) error) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	e, ok := st.entries[entryID]
	if !ok || e.TempleID != templeID {
		return notFound("journal entry", entryID)
	}
	if err := fn(&e); err != nil {
		return err
	}
	st.entries[entryID] = e
	return nil
}

func ledgerLine(e domain.JournalEntry, l domain.JournalLine) domain.LedgerLine {
	return domain.LedgerLine{
		JournalLine: l,
		EntryNumber: e.EntryNumber,
		EntryDate:   e.EntryDate,
		EntryStatus: e.Status,
		Narration:   e.Narration,
	}
}

func sortLedgerLines(lines []domain.LedgerLine) {
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].EntryDate.Equal(lines[j].EntryDate) {
			return lines[i].EntryDate.Before(lines[j].EntryDate)
		}
		return lines[i].LineID < lines[j].LineID
	})
}
