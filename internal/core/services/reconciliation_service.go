package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/SscSPs/temple_ledger/internal/matching"
	"github.com/SscSPs/temple_ledger/internal/metrics"
	"github.com/SscSPs/temple_ledger/internal/timeutil"
	"github.com/SscSPs/temple_ledger/internal/utils/accounting"
	"github.com/SscSPs/temple_ledger/internal/utils/sanitize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type reconciliationService struct {
	BaseService
	store portsrepo.Store
	cfg   matching.Config
}

// ReconciliationOption is a functional option for configuring the reconciliation service
type ReconciliationOption func(*reconciliationService)

// WithMatchConfig sets the date window and amount tolerance of the matcher
func WithMatchConfig(cfg matching.Config) ReconciliationOption {
	return func(s *reconciliationService) {
		s.cfg = cfg
	}
}

// WithReconciliationClock overrides the clock used for match and clearing timestamps
func WithReconciliationClock(clock func() time.Time) ReconciliationOption {
	return func(s *reconciliationService) {
		s.clock = clock
	}
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(store portsrepo.Store, options ...ReconciliationOption) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		store: store,
		cfg: matching.Config{
			DateToleranceDays: matching.DefaultDateToleranceDays,
			AmountTolerance:   decimal.Zero,
		},
	}
	for _, option := range options {
		option(svc)
	}
	if svc.cfg.DateToleranceDays < 0 {
		svc.cfg.DateToleranceDays = matching.DefaultDateToleranceDays
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) ImportStatement(ctx context.Context, templeID string, req dto.ImportStatementRequest, actor string) (*domain.BankStatement, error) {
	acc, err := s.store.Accounts().FindAccountByCode(ctx, templeID, strings.TrimSpace(req.AccountCode))
	if err != nil {
		return nil, err
	}
	if acc.AccountType != domain.Asset || !acc.IsActive {
		return nil, fmt.Errorf("%w: account %s is not an active asset account", apperrors.ErrValidation, acc.Code)
	}
	start, err := timeutil.ParseDate(req.PeriodStart)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid period start %q", apperrors.ErrValidation, req.PeriodStart)
	}
	end, err := timeutil.ParseDate(req.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid period end %q", apperrors.ErrValidation, req.PeriodEnd)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: period end is before period start", apperrors.ErrValidation)
	}
	if !accounting.HasValidScale(req.OpeningBalance) || !accounting.HasValidScale(req.ClosingBalance) {
		return nil, fmt.Errorf("%w: statement balances must have at most 2 decimal places", apperrors.ErrValidation)
	}

	entries := make([]domain.BankStatementEntry, 0, len(req.Rows))
	for i, row := range req.Rows {
		entry, err := statementEntry(row, start, end)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}

	stmt := &domain.BankStatement{
		TempleID:       templeID,
		AccountID:      acc.AccountID,
		PeriodStart:    start,
		PeriodEnd:      end,
		OpeningBalance: req.OpeningBalance,
		ClosingBalance: req.ClosingBalance,
		ImportBatchID:  uuid.NewString(),
		Entries:        entries,
		CreatedBy:      actor,
		CreatedAt:      s.Now(),
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		return repos.Reconciliations().SaveStatement(ctx, stmt)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to import bank statement", slog.String("temple_id", templeID))
		return nil, err
	}

	s.LogInfo(ctx, "Bank statement imported",
		slog.String("temple_id", templeID),
		slog.Int64("statement_id", stmt.StatementID),
		slog.String("batch", stmt.ImportBatchID),
		slog.Int("rows", len(entries)))
	return stmt, nil
}

func statementEntry(row dto.StatementRowRequest, start, end time.Time) (domain.BankStatementEntry, error) {
	txDate, err := timeutil.ParseDate(row.TransactionDate)
	if err != nil {
		return domain.BankStatementEntry{}, fmt.Errorf("%w: invalid transaction date %q", apperrors.ErrValidation, row.TransactionDate)
	}
	if txDate.Before(start) || txDate.After(end) {
		return domain.BankStatementEntry{}, fmt.Errorf("%w: transaction date %s is outside the statement period", apperrors.ErrValidation, row.TransactionDate)
	}
	valueDate := txDate
	if row.ValueDate != "" {
		if valueDate, err = timeutil.ParseDate(row.ValueDate); err != nil {
			return domain.BankStatementEntry{}, fmt.Errorf("%w: invalid value date %q", apperrors.ErrValidation, row.ValueDate)
		}
	}
	direction := domain.Direction(strings.ToUpper(strings.TrimSpace(row.Direction)))
	if !direction.IsValid() {
		return domain.BankStatementEntry{}, fmt.Errorf("%w: unknown direction %q", apperrors.ErrValidation, row.Direction)
	}
	if !row.Amount.IsPositive() || !accounting.HasValidScale(row.Amount) {
		return domain.BankStatementEntry{}, fmt.Errorf("%w: amount must be positive with at most 2 decimal places", apperrors.ErrValidation)
	}
	return domain.BankStatementEntry{
		TransactionDate: txDate,
		ValueDate:       valueDate,
		Direction:       direction,
		Amount:          row.Amount,
		Description:     sanitize.Text(row.Description),
		ReferenceNumber: sanitize.Text(row.ReferenceNumber),
		RunningBalance:  row.RunningBalance,
	}, nil
}

// candidates is everything one run may match, keyed by source id.
type candidates struct {
	stmt    *domain.BankStatement
	account *domain.Account
	book    map[int64]domain.LedgerLine
	bank    map[int64]domain.BankStatementEntry
	carried map[int64]bool // book lines held by uncleared items from earlier runs
}

func (s *reconciliationService) Reconcile(ctx context.Context, templeID string, statementID int64, actor string) (*domain.BankReconciliation, error) {
	runID := uuid.NewString()
	c, err := s.loadCandidates(ctx, templeID, statementID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load reconciliation candidates", slog.Int64("statement_id", statementID))
		return nil, err
	}

	result := matching.NewMatchEngine(s.cfg).ProcessMatches(bankItems(c.bank), bookItems(c.book))

	// Each match commits on its own so an interrupted run keeps what it found.
	saved := 0
	for _, m := range result.Matches {
		if err := ctx.Err(); err != nil {
			s.LogWarn(ctx, "Reconciliation interrupted", slog.String("run_id", runID), slog.Int("saved", saved))
			return nil, err
		}
		match := &domain.ReconciliationMatch{
			TempleID:         templeID,
			AccountID:        c.account.AccountID,
			StatementEntryID: m.BankID,
			JournalLineID:    m.BookID,
			Tier:             m.Tier,
			MatchedBy:        actor,
			MatchedAt:        s.Now(),
		}
		err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
			return repos.Reconciliations().SaveMatch(ctx, match)
		})
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogDebug(ctx, "Match already recorded", slog.Int64("line_id", m.BookID), slog.Int64("statement_entry_id", m.BankID))
			continue
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to save match", slog.String("run_id", runID))
			return nil, err
		}
		saved++
		metrics.ReconciliationMatches.WithLabelValues(string(m.Tier)).Inc()
	}

	var rec *domain.BankReconciliation
	err = s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		rec, err = s.record(ctx, repos, c, runID, actor)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record reconciliation", slog.String("run_id", runID))
		return nil, err
	}

	metrics.ReconciliationsTotal.WithLabelValues(string(rec.Status)).Inc()
	attrs := []any{
		slog.String("temple_id", templeID),
		slog.Int64("statement_id", statementID),
		slog.String("run_id", runID),
		slog.Int("new_matches", saved),
		slog.Int("outstanding", len(rec.OutstandingItems)),
		slog.String("status", string(rec.Status)),
	}
	if derr := rec.DiscrepancyErr(); derr != nil {
		s.LogWarn(ctx, "Reconciliation left a difference", append(attrs, slog.String("error", derr.Error()))...)
	} else {
		s.LogInfo(ctx, "Statement reconciled", attrs...)
	}
	return rec, nil
}

func (s *reconciliationService) loadCandidates(ctx context.Context, templeID string, statementID int64) (*candidates, error) {
	c := &candidates{
		book:    map[int64]domain.LedgerLine{},
		bank:    map[int64]domain.BankStatementEntry{},
		carried: map[int64]bool{},
	}
	err := s.store.WithSnapshot(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		stmt, err := repos.Reconciliations().FindStatementByID(ctx, templeID, statementID)
		if err != nil {
			return err
		}
		acc, err := repos.Accounts().FindAccountByID(ctx, templeID, stmt.AccountID)
		if err != nil {
			return err
		}
		c.stmt, c.account = stmt, acc

		matched, err := repos.Reconciliations().ListMatchedLineIDs(ctx, templeID, acc.AccountID)
		if err != nil {
			return err
		}
		days := s.cfg.DateToleranceDays
		lines, err := repos.Journals().ListLedgerLines(ctx, templeID, acc.AccountID,
			timeutil.AddDays(stmt.PeriodStart, -days), timeutil.AddDays(stmt.PeriodEnd, days))
		if err != nil {
			return err
		}
		for _, l := range lines {
			if !matched[l.LineID] {
				c.book[l.LineID] = l
			}
		}
		for _, e := range stmt.Entries {
			if e.MatchedLineID == nil {
				c.bank[e.StatementEntryID] = e
			}
		}

		items, err := repos.Reconciliations().ListOutstandingItems(ctx, templeID, acc.AccountID, false)
		if err != nil {
			return err
		}
		var lineIDs, entryIDs []int64
		for _, it := range items {
			if it.JournalLineID != nil {
				lineIDs = append(lineIDs, *it.JournalLineID)
			}
			if it.StatementEntryID != nil {
				entryIDs = append(entryIDs, *it.StatementEntryID)
			}
		}
		if len(lineIDs) > 0 {
			carriedLines, err := repos.Journals().FindLedgerLinesByIDs(ctx, templeID, lineIDs)
			if err != nil {
				return err
			}
			for _, l := range carriedLines {
				if !matched[l.LineID] {
					c.book[l.LineID] = l
					c.carried[l.LineID] = true
				}
			}
		}
		if len(entryIDs) > 0 {
			carriedEntries, err := repos.Reconciliations().FindStatementEntriesByIDs(ctx, templeID, entryIDs)
			if err != nil {
				return err
			}
			for _, e := range carriedEntries {
				if e.MatchedLineID == nil {
					c.bank[e.StatementEntryID] = e
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// record stores the reconciliation of the statement with its outstanding items and balances.
func (s *reconciliationService) record(ctx context.Context, repos portsrepo.Repositories, c *candidates, runID, actor string) (*domain.BankReconciliation, error) {
	templeID, accountID := c.stmt.TempleID, c.account.AccountID
	now := s.Now()

	matchedLines, err := repos.Reconciliations().ListMatchedLineIDs(ctx, templeID, accountID)
	if err != nil {
		return nil, err
	}
	stmt, err := repos.Reconciliations().FindStatementByID(ctx, templeID, c.stmt.StatementID)
	if err != nil {
		return nil, err
	}
	matchedEntries := map[int64]bool{}
	matchedCount := 0
	for _, e := range stmt.Entries {
		if e.MatchedLineID != nil {
			matchedEntries[e.StatementEntryID] = true
			matchedCount++
		}
	}
	var carriedIDs []int64
	for id, e := range c.bank {
		if e.StatementID != stmt.StatementID {
			carriedIDs = append(carriedIDs, id)
		}
	}
	if len(carriedIDs) > 0 {
		carriedEntries, err := repos.Reconciliations().FindStatementEntriesByIDs(ctx, templeID, carriedIDs)
		if err != nil {
			return nil, err
		}
		for _, e := range carriedEntries {
			if e.MatchedLineID != nil {
				matchedEntries[e.StatementEntryID] = true
			}
		}
	}

	rec := &domain.BankReconciliation{
		TempleID:           templeID,
		StatementID:        stmt.StatementID,
		AccountID:          accountID,
		PeriodStart:        stmt.PeriodStart,
		PeriodEnd:          stmt.PeriodEnd,
		BankOpeningBalance: stmt.OpeningBalance,
		BankClosingBalance: stmt.ClosingBalance,
		MatchedCount:       matchedCount,
		RunID:              runID,
		ReconciledBy:       actor,
		ReconciledAt:       now,
	}
	if existing, err := repos.Reconciliations().FindReconciliationByStatement(ctx, templeID, stmt.StatementID); err == nil {
		rec.ReconciliationID = existing.ReconciliationID
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if err := repos.Reconciliations().SaveReconciliation(ctx, rec); err != nil {
		return nil, err
	}

	// Clear earlier items whose source got matched.
	carried, err := repos.Reconciliations().ListOutstandingItems(ctx, templeID, accountID, false)
	if err != nil {
		return nil, err
	}
	for _, it := range carried {
		if (it.JournalLineID != nil && matchedLines[*it.JournalLineID]) ||
			(it.StatementEntryID != nil && matchedEntries[*it.StatementEntryID]) {
			if err := repos.Reconciliations().ClearOutstandingBySource(ctx, templeID, it.JournalLineID, it.StatementEntryID, rec.ReconciliationID, now); err != nil {
				return nil, err
			}
		}
	}

	for _, id := range sortedKeys(c.book) {
		l := c.book[id]
		if matchedLines[id] {
			continue
		}
		if !c.carried[id] && (l.EntryDate.Before(stmt.PeriodStart) || l.EntryDate.After(stmt.PeriodEnd)) {
			continue
		}
		lineID := l.LineID
		item := &domain.OutstandingItem{
			TempleID:         templeID,
			AccountID:        accountID,
			ReconciliationID: rec.ReconciliationID,
			ItemType:         domain.DepositInTransit,
			Source:           domain.SourceBook,
			JournalLineID:    &lineID,
			Amount:           l.Amount(),
			ItemDate:         l.EntryDate,
			Description:      bookDescription(l),
			CreatedAt:        now,
		}
		if l.IsDebit() {
			item.ItemType = domain.ChequeNotCleared
		}
		if err := repos.Reconciliations().UpsertOutstandingItem(ctx, item); err != nil {
			return nil, err
		}
	}
	for _, id := range sortedKeys(c.bank) {
		e := c.bank[id]
		if matchedEntries[id] {
			continue
		}
		entryID := e.StatementEntryID
		item := &domain.OutstandingItem{
			TempleID:         templeID,
			AccountID:        accountID,
			ReconciliationID: rec.ReconciliationID,
			ItemType:         domain.InterestNotRecorded,
			Source:           domain.SourceBank,
			StatementEntryID: &entryID,
			Amount:           e.Amount,
			ItemDate:         e.TransactionDate,
			Description:      e.Description,
			CreatedAt:        now,
		}
		if e.Direction == domain.DirectionDebit {
			item.ItemType = domain.BankChargeNotRecorded
		}
		if err := repos.Reconciliations().UpsertOutstandingItem(ctx, item); err != nil {
			return nil, err
		}
	}

	open, err := repos.Reconciliations().ListOutstandingItems(ctx, templeID, accountID, false)
	if err != nil {
		return nil, err
	}
	rec.OutstandingItems = make([]domain.OutstandingItem, 0, len(open))
	for _, it := range open {
		if !it.ItemDate.After(stmt.PeriodEnd) {
			rec.OutstandingItems = append(rec.OutstandingItems, it)
		}
	}

	if rec.BookOpeningBalance, err = bookBalance(ctx, repos, *c.account, timeutil.AddDays(stmt.PeriodStart, -1)); err != nil {
		return nil, err
	}
	if rec.BookClosingBalance, err = bookBalance(ctx, repos, *c.account, stmt.PeriodEnd); err != nil {
		return nil, err
	}
	rec.ApplyAdjustments(rec.OutstandingItems)
	if err := repos.Reconciliations().SaveReconciliation(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// bookBalance is the opening balance plus debits minus credits through asOf.
func bookBalance(ctx context.Context, repos portsrepo.Repositories, acc domain.Account, asOf time.Time) (decimal.Decimal, error) {
	totals, err := repos.Journals().SumLinesByAccount(ctx, acc.TempleID, portsrepo.LineSumQuery{
		AccountIDs: []int64{acc.AccountID},
		To:         &asOf,
	})
	if err != nil {
		return decimal.Zero, err
	}
	balance := acc.OpeningBalance()
	for _, t := range totals {
		balance = balance.Add(t.Debit).Sub(t.Credit)
	}
	return balance, nil
}

func (s *reconciliationService) GetReconciliation(ctx context.Context, templeID string, reconciliationID int64) (*domain.BankReconciliation, error) {
	rec, err := s.store.Reconciliations().FindReconciliationByID(ctx, templeID, reconciliationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find reconciliation", slog.Int64("reconciliation_id", reconciliationID))
		}
		return nil, err
	}
	return rec, nil
}

func (s *reconciliationService) ListOutstandingItems(ctx context.Context, templeID string, accountCode string, includeCleared bool) ([]domain.OutstandingItem, error) {
	acc, err := s.store.Accounts().FindAccountByCode(ctx, templeID, accountCode)
	if err != nil {
		return nil, err
	}
	return s.store.Reconciliations().ListOutstandingItems(ctx, templeID, acc.AccountID, includeCleared)
}

func (s *reconciliationService) ReopenOutstandingItem(ctx context.Context, templeID string, itemID int64, actor string) (*domain.OutstandingItem, error) {
	var item *domain.OutstandingItem
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		it, err := repos.Reconciliations().FindOutstandingItemByID(ctx, templeID, itemID)
		if err != nil {
			return err
		}
		if !it.Cleared {
			return fmt.Errorf("%w: outstanding item %d is not cleared", apperrors.ErrConflict, itemID)
		}
		if err := repos.Reconciliations().DeleteMatchBySource(ctx, templeID, it.JournalLineID, it.StatementEntryID); err != nil {
			return err
		}
		if err := repos.Reconciliations().ReopenOutstandingItem(ctx, templeID, itemID); err != nil {
			return err
		}
		item, err = repos.Reconciliations().FindOutstandingItemByID(ctx, templeID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Outstanding item re-opened",
		slog.String("temple_id", templeID),
		slog.Int64("item_id", itemID),
		slog.String("actor", actor))
	return item, nil
}

func bankItems(entries map[int64]domain.BankStatementEntry) []matching.BankItem {
	out := make([]matching.BankItem, 0, len(entries))
	for _, id := range sortedKeys(entries) {
		e := entries[id]
		out = append(out, matching.BankItem{
			ID:        e.StatementEntryID,
			Date:      e.TransactionDate,
			Amount:    e.Amount,
			IsCredit:  e.Direction == domain.DirectionCredit,
			Reference: sanitize.Reference(e.ReferenceNumber),
		})
	}
	return out
}

func bookItems(lines map[int64]domain.LedgerLine) []matching.BookItem {
	out := make([]matching.BookItem, 0, len(lines))
	for _, id := range sortedKeys(lines) {
		l := lines[id]
		out = append(out, matching.BookItem{
			ID:         l.LineID,
			Date:       l.EntryDate,
			Amount:     l.Amount(),
			IsDebit:    l.IsDebit(),
			References: []string{sanitize.Reference(l.InstrumentRef), sanitize.Reference(l.EntryNumber)},
		})
	}
	return out
}

func bookDescription(l domain.LedgerLine) string {
	if l.Description != "" {
		return l.EntryNumber + ": " + l.Description
	}
	return l.EntryNumber + ": " + l.Narration
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
