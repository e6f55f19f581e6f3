package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

func (r *repos) FindStatementByID(_ context.Context, templeID string, statementID int64) (*domain.BankStatement, error) {
	st, unlock := r.read()
	defer unlock()
	s, ok := st.statements[statementID]
	if !ok || s.TempleID != templeID {
		return nil, notFound("bank statement", statementID)
	}
	s.Entries = slices.Clone(s.Entries)
	for i := range s.Entries {
		s.Entries[i].MatchedLineID = st.matchedLine(templeID, s.Entries[i].StatementEntryID)
	}
	return &s, nil
}

func (r *repos) FindStatementEntriesByIDs(_ context.Context, templeID string, entryIDs []int64) ([]domain.BankStatementEntry, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.BankStatementEntry
	for _, s := range st.statements {
		if s.TempleID != templeID {
			continue
		}
		for _, e := range s.Entries {
			if slices.Contains(entryIDs, e.StatementEntryID) {
				e.MatchedLineID = st.matchedLine(templeID, e.StatementEntryID)
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StatementEntryID < out[j].StatementEntryID })
	return out, nil
}

func (r *repos) SaveStatement(_ context.Context, statement *domain.BankStatement) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	statement.StatementID = st.nextID("bank_statements")
	for i := range statement.Entries {
		statement.Entries[i].StatementEntryID = st.nextID("bank_statement_entries")
		statement.Entries[i].StatementID = statement.StatementID
		statement.Entries[i].Seq = i + 1
	}
	stored := *statement
	stored.Entries = slices.Clone(statement.Entries)
	st.statements[statement.StatementID] = stored
	return nil
}

func (r *repos) FindReconciliationByID(_ context.Context, templeID string, reconciliationID int64) (*domain.BankReconciliation, error) {
	st, unlock := r.read()
	defer unlock()
	rec, ok := st.recs[reconciliationID]
	if !ok || rec.TempleID != templeID {
		return nil, notFound("bank reconciliation", reconciliationID)
	}
	rec.OutstandingItems = st.itemsOf(rec.ReconciliationID)
	return &rec, nil
}

func (r *repos) FindReconciliationByStatement(_ context.Context, templeID string, statementID int64) (*domain.BankReconciliation, error) {
	st, unlock := r.read()
	defer unlock()
	for _, rec := range st.recs {
		if rec.TempleID == templeID && rec.StatementID == statementID {
			rec.OutstandingItems = st.itemsOf(rec.ReconciliationID)
			return &rec, nil
		}
	}
	return nil, notFound("bank reconciliation for statement", statementID)
}

func (r *repos) ListMatchedLineIDs(_ context.Context, templeID string, accountID int64) (map[int64]bool, error) {
	st, unlock := r.read()
	defer unlock()
	out := map[int64]bool{}
	for _, m := range st.matches {
		if m.TempleID == templeID && m.AccountID == accountID {
			out[m.JournalLineID] = true
		}
	}
	return out, nil
}

func (r *repos) ListOutstandingItems(_ context.Context, templeID string, accountID int64, includeCleared bool) ([]domain.OutstandingItem, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.OutstandingItem
	for _, it := range st.items {
		if it.TempleID == templeID && it.AccountID == accountID && (includeCleared || !it.Cleared) {
			out = append(out, it)
		}
	}
	sortItems(out)
	return out, nil
}

func (r *repos) FindOutstandingItemByID(_ context.Context, templeID string, itemID int64) (*domain.OutstandingItem, error) {
	st, unlock := r.read()
	defer unlock()
	it, ok := st.items[itemID]
	if !ok || it.TempleID != templeID {
		return nil, notFound("outstanding item", itemID)
	}
	return &it, nil
}

func (r *repos) SaveMatch(_ context.Context, match *domain.ReconciliationMatch) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	for _, m := range st.matches {
		if m.TempleID != match.TempleID {
			continue
		}
		if m.JournalLineID == match.JournalLineID || m.StatementEntryID == match.StatementEntryID {
			return fmt.Errorf("line %d / statement entry %d already matched: %w",
				match.JournalLineID, match.StatementEntryID, apperrors.ErrDuplicate)
		}
	}
	match.MatchID = st.nextID("reconciliation_matches")
	st.matches[match.MatchID] = *match
	return nil
}

func (r *repos) DeleteMatchBySource(_ context.Context, templeID string, journalLineID, statementEntryID *int64) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	for id, m := range st.matches {
		if m.TempleID != templeID {
			continue
		}
		if (journalLineID != nil && m.JournalLineID == *journalLineID) ||
			(statementEntryID != nil && m.StatementEntryID == *statementEntryID) {
			delete(st.matches, id)
		}
	}
	return nil
}

func (r *repos) SaveReconciliation(_ context.Context, rec *domain.BankReconciliation) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	if rec.ReconciliationID == 0 {
		for id, existing := range st.recs {
			if existing.TempleID == rec.TempleID && existing.StatementID == rec.StatementID {
				rec.ReconciliationID = id
				break
			}
		}
	}
	if rec.ReconciliationID == 0 {
		rec.ReconciliationID = st.nextID("bank_reconciliations")
	}
	stored := *rec
	stored.OutstandingItems = nil
	st.recs[rec.ReconciliationID] = stored
	return nil
}

func (r *repos) UpsertOutstandingItem(_ context.Context, item *domain.OutstandingItem) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	if id, ok := st.itemBySource(item.TempleID, item.JournalLineID, item.StatementEntryID); ok {
		existing := st.items[id]
		if !existing.Cleared {
			existing.ReconciliationID = item.ReconciliationID
			st.items[id] = existing
		}
		*item = existing
		return nil
	}
	item.ItemID = st.nextID("reconciliation_outstanding_items")
	st.items[item.ItemID] = *item
	return nil
}

func (r *repos) ClearOutstandingBySource(_ context.Context, templeID string, journalLineID, statementEntryID *int64, reconciliationID int64, at time.Time) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	id, ok := st.itemBySource(templeID, journalLineID, statementEntryID)
	if !ok {
		return nil
	}
	it := st.items[id]
	if it.Cleared {
		return nil
	}
	it.Cleared = true
	it.ClearedAt = &at
	it.ClearedByReconciliationID = &reconciliationID
	st.items[id] = it
	return nil
}

func (r *repos) ReopenOutstandingItem(_ context.Context, templeID string, itemID int64) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	it, ok := st.items[itemID]
	if !ok || it.TempleID != templeID {
		return notFound("outstanding item", itemID)
	}
	it.Cleared = false
	it.ClearedAt = nil
	it.ClearedByReconciliationID = nil
	st.items[itemID] = it
	return nil
}

func (s *state) matchedLine(templeID string, statementEntryID int64) *int64 {
	for _, m := range s.matches {
		if m.TempleID == templeID && m.StatementEntryID == statementEntryID {
			id := m.JournalLineID
			return &id
		}
	}
	return nil
}

func (s *state) itemBySource(templeID string, journalLineID, statementEntryID *int64) (int64, bool) {
	for id, it := range s.items {
		if it.TempleID != templeID {
			continue
		}
		if journalLineID != nil && it.JournalLineID != nil && *it.JournalLineID == *journalLineID {
			return id, true
		}
		if statementEntryID != nil && it.StatementEntryID != nil && *it.StatementEntryID == *statementEntryID {
			return id, true
		}
	}
	return 0, false
}

func (s *state) itemsOf(reconciliationID int64) []domain.OutstandingItem {
	var out []domain.OutstandingItem
	for _, it := range s.items {
		if it.ReconciliationID == reconciliationID {
			out = append(out, it)
		}
	}
	sortItems(out)
	return out
}

func sortItems(items []domain.OutstandingItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].ItemDate.Equal(items[j].ItemDate) {
			return items[i].ItemDate.Before(items[j].ItemDate)
		}
		return items[i].ItemID < items[j].ItemID
	})
}
