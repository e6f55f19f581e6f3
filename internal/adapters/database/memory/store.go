// Package memory is an in-process implementation of the ledger Store. It keeps the same unit-of-work
// semantics as the postgres store: a failed WithTx leaves no trace, unique keys are enforced, and
// WithSnapshot reads never observe a half-applied unit.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
)

type state struct {
	ids map[string]int64

	accounts   map[int64]domain.Account
	entries    map[int64]domain.JournalEntry
	years      map[int64]domain.FinancialYear
	periods    map[int64]domain.FinancialPeriod
	closings   map[int64]domain.PeriodClosing
	sequences  map[sequenceKey]int64
	statements map[int64]domain.BankStatement
	matches    map[int64]domain.ReconciliationMatch
	recs       map[int64]domain.BankReconciliation
	items      map[int64]domain.OutstandingItem
}

type sequenceKey struct {
	templeID string
	yearID   int64
}

func newState() *state {
	return &state{
		ids:        map[string]int64{},
		accounts:   map[int64]domain.Account{},
		entries:    map[int64]domain.JournalEntry{},
		years:      map[int64]domain.FinancialYear{},
		periods:    map[int64]domain.FinancialPeriod{},
		closings:   map[int64]domain.PeriodClosing{},
		sequences:  map[sequenceKey]int64{},
		statements: map[int64]domain.BankStatement{},
		matches:    map[int64]domain.ReconciliationMatch{},
		recs:       map[int64]domain.BankReconciliation{},
		items:      map[int64]domain.OutstandingItem{},
	}
}

func (s *state) nextID(table string) int64 {
	s.ids[table]++
	return s.ids[table]
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.ids {
		c.ids[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.entries {
		v.Lines = slices.Clone(v.Lines)
		c.entries[k] = v
	}
	for k, v := range s.years {
		c.years[k] = v
	}
	for k, v := range s.periods {
		c.periods[k] = v
	}
	for k, v := range s.closings {
		c.closings[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.statements {
		v.Entries = slices.Clone(v.Entries)
		c.statements[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, v := range s.recs {
		c.recs[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

// Store is the in-memory ledger store. The zero value is not usable; call NewStore.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

var _ portsrepo.Store = (*Store)(nil)

// WithTx runs fn holding the write lock. Any error restores the state from before fn ran.
// Repositories obtained from the Store itself must not be used inside fn.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	backup := s.st.clone()
	if err := fn(ctx, &repos{store: s, locked: true}); err != nil {
		s.st = backup
		return err
	}
	return nil
}

// WithSnapshot runs fn holding the read lock; writes through repos fail.
func (s *Store) WithSnapshot(ctx context.Context, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &repos{store: s, locked: true, readOnly: true})
}

func (s *Store) Accounts() portsrepo.AccountRepositoryFacade { return &repos{store: s} }
func (s *Store) Journals() portsrepo.JournalRepositoryFacade { return &repos{store: s} }
func (s *Store) Periods() portsrepo.PeriodRepositoryFacade   { return &repos{store: s} }
func (s *Store) Reconciliations() portsrepo.ReconciliationRepositoryFacade {
	return &repos{store: s}
}

// TamperEntry rewrites a stored entry behind the ledger's back. Tests use it to simulate tampering.
func (s *Store) TamperEntry(templeID string, entryID int64, mutate func(e *domain.JournalEntry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[entryID]
	if !ok || e.TempleID != templeID {
		return fmt.Errorf("entry %d: %w", entryID, apperrors.ErrNotFound)
	}
	e.Lines = slices.Clone(e.Lines)
	mutate(&e)
	s.st.entries[entryID] = e
	return nil
}

// RemoveEntry deletes a stored entry behind the ledger's back.
func (s *Store) RemoveEntry(templeID string, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[entryID]
	if !ok || e.TempleID != templeID {
		return fmt.Errorf("entry %d: %w", entryID, apperrors.ErrNotFound)
	}
	delete(s.st.entries, entryID)
	return nil
}

// repos implements every repository facade over the shared state.
// locked is true when the caller (WithTx/WithSnapshot) already holds the mutex.
type repos struct {
	store    *Store
	locked   bool
	readOnly bool
}

func (r *repos) Accounts() portsrepo.AccountRepositoryFacade               { return r }
func (r *repos) Journals() portsrepo.JournalRepositoryFacade               { return r }
func (r *repos) Periods() portsrepo.PeriodRepositoryFacade                 { return r }
func (r *repos) Reconciliations() portsrepo.ReconciliationRepositoryFacade { return r }

var errReadOnly = apperrors.NewAppError(500, "write attempted inside a read-only snapshot", nil)

func noop() {}

func (r *repos) read() (*state, func()) {
	if r.locked {
		return r.store.st, noop
	}
	r.store.mu.RLock()
	return r.store.st, r.store.mu.RUnlock
}

func (r *repos) write() (*state, func(), error) {
	if r.readOnly {
		return nil, noop, errReadOnly
	}
	if r.locked {
		return r.store.st, noop, nil
	}
	r.store.mu.Lock()
	return r.store.st, r.store.mu.Unlock, nil
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, apperrors.ErrNotFound)
}
