package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/SscSPs/temple_ledger/internal/metrics"
	"github.com/SscSPs/temple_ledger/internal/timeutil"
	"github.com/SscSPs/temple_ledger/internal/utils/accounting"
	"github.com/SscSPs/temple_ledger/internal/utils/integrity"
	"github.com/SscSPs/temple_ledger/internal/utils/sanitize"
	"github.com/shopspring/decimal"
)

// DefaultEntryNumberPrefix starts every entry number, e.g. JE-2024-00042.
const DefaultEntryNumberPrefix = "JE"

// journalService is the posting engine. Every mutation runs as one unit of work holding the temple's chain lock.
type journalService struct {
	BaseService
	store    portsrepo.Store
	accounts portssvc.AccountReaderSvc
	audit    portsrepo.AuditSink
	prefix   string
}

// JournalOption is a functional option for configuring the journal service
type JournalOption func(*journalService)

// WithEntryNumberPrefix sets the prefix of generated entry numbers
func WithEntryNumberPrefix(prefix string) JournalOption {
	return func(s *journalService) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithJournalClock overrides the clock used for posting timestamps
func WithJournalClock(clock func() time.Time) JournalOption {
	return func(s *journalService) {
		s.clock = clock
	}
}

// NewJournalService creates the posting engine. audit receives one record per posting, cancellation and reversal.
func NewJournalService(store portsrepo.Store, accounts portssvc.AccountReaderSvc, audit portsrepo.AuditSink, options ...JournalOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		store:    store,
		accounts: accounts,
		audit:    audit,
		prefix:   DefaultEntryNumberPrefix,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// entryPoster posts inside a unit of work opened by another service. The caller flushes the batch
// after its own writes.
type entryPoster interface {
	newAuditBatch() *auditBatch
	postInTx(ctx context.Context, repos portsrepo.Repositories, b domain.EntryBuilder, audit *auditBatch) (*domain.JournalEntry, error)
}

func (s *journalService) newAuditBatch() *auditBatch {
	return newAuditBatch(s.audit)
}

func (s *journalService) BeginEntry(templeID string, date time.Time, narration string, ref domain.Reference, actor string) *domain.EntryBuilder {
	return &domain.EntryBuilder{
		TempleID:  templeID,
		EntryDate: timeutil.CalendarDate(date),
		Narration: narration,
		Reference: ref,
		Actor:     actor,
	}
}

func (s *journalService) AddLine(ctx context.Context, b *domain.EntryBuilder, accountCode string, debit, credit decimal.Decimal, description string) error {
	code := strings.TrimSpace(accountCode)
	if err := accounting.ValidateLineAmounts(code, debit, credit); err != nil {
		return err
	}
	acc, err := s.accounts.GetAccountByCode(ctx, b.TempleID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &apperrors.InvalidLineError{AccountCode: code, Reason: "unknown account"}
		}
		return err
	}
	if !acc.IsActive {
		return &apperrors.InvalidLineError{AccountCode: code, Reason: "account is inactive"}
	}
	b.Lines = append(b.Lines, domain.BuilderLine{
		AccountCode: code,
		Debit:       debit,
		Credit:      credit,
		Description: description,
	})
	return nil
}

func (s *journalService) Post(ctx context.Context, b domain.EntryBuilder) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		audit := s.newAuditBatch()
		var err error
		if entry, err = s.postInTx(ctx, repos, b, audit); err != nil {
			return err
		}
		return audit.flush(ctx)
	})
	if err != nil {
		s.postingFailed(ctx, err, b.TempleID)
		return nil, err
	}
	s.posted(ctx, entry)
	return entry, nil
}

func (s *journalService) PostTransaction(ctx context.Context, templeID string, req dto.PostTransactionRequest, actor string) (*domain.JournalEntry, error) {
	date, err := timeutil.ParseDate(req.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid entry date %q", apperrors.ErrValidation, req.EntryDate)
	}
	b := s.BeginEntry(templeID, date, req.Narration, domain.Reference{Kind: req.Reference.Kind, ID: req.Reference.ID}, actor)
	b.AdminOverride = req.AdminOverride
	b.Lines = builderLines(req.Lines)
	return s.Post(ctx, *b)
}

func (s *journalService) SaveDraft(ctx context.Context, b domain.EntryBuilder) (*domain.JournalEntry, error) {
	if b.EntryDate.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	var entry *domain.JournalEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		// Drafts live only in OPEN periods; the chain lock orders them against the draft count of ClosePeriod.
		if err := repos.Journals().LockChain(ctx, b.TempleID); err != nil {
			return err
		}
		if _, err := checkPostingPeriod(ctx, repos, b.TempleID, timeutil.CalendarDate(b.EntryDate), false); err != nil {
			return err
		}

		now := integrity.NormalizeCreatedAt(s.Now())
		audit := domain.AuditFields{CreatedAt: now, CreatedBy: b.Actor, LastUpdatedAt: now, LastUpdatedBy: b.Actor}
		if b.DraftID != 0 {
			existing, err := s.loadDraft(ctx, repos, b.TempleID, b.DraftID)
			if err != nil {
				return err
			}
			audit.CreatedAt, audit.CreatedBy = existing.CreatedAt, existing.CreatedBy
		}

		lines, err := s.materializeLines(ctx, repos, b.TempleID, b.Lines)
		if err != nil {
			return err
		}
		debit, _ := b.Totals()
		entry = &domain.JournalEntry{
			EntryID:     b.DraftID,
			TempleID:    b.TempleID,
			EntryDate:   timeutil.CalendarDate(b.EntryDate),
			Narration:   sanitize.Text(b.Narration),
			Reference:   normalizeReference(b.Reference),
			TotalAmount: debit.Round(2),
			Status:      domain.Draft,
			Lines:       lines,
			AuditFields: audit,
		}
		return repos.Journals().SaveEntry(ctx, entry)
	})
	if err != nil {
		s.postingFailed(ctx, err, b.TempleID)
		return nil, err
	}
	s.LogInfo(ctx, "Draft saved", slog.String("temple_id", b.TempleID), slog.Int64("entry_id", entry.EntryID))
	return entry, nil
}

func (s *journalService) PostDraft(ctx context.Context, templeID string, entryID int64, actor string, adminOverride bool) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		draft, err := s.loadDraft(ctx, repos, templeID, entryID)
		if err != nil {
			return err
		}
		b, err := builderFromEntry(ctx, repos, *draft, false)
		if err != nil {
			return err
		}
		b.DraftID = draft.EntryID
		b.Actor = actor
		b.AdminOverride = adminOverride
		audit := s.newAuditBatch()
		if entry, err = s.postInTx(ctx, repos, b, audit); err != nil {
			return err
		}
		return audit.flush(ctx)
	})
	if err != nil {
		s.postingFailed(ctx, err, templeID)
		return nil, err
	}
	s.posted(ctx, entry)
	return entry, nil
}

func (s *journalService) DiscardDraft(ctx context.Context, templeID string, entryID int64, actor string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		if _, err := s.loadDraft(ctx, repos, templeID, entryID); err != nil {
			return err
		}
		return repos.Journals().DeleteDraft(ctx, templeID, entryID)
	})
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Draft discarded", slog.String("temple_id", templeID), slog.Int64("entry_id", entryID), slog.String("actor", actor))
	return nil
}

func (s *journalService) Cancel(ctx context.Context, templeID string, entryID int64, actor string, reason string) (*domain.JournalEntry, error) {
	reason = sanitize.Text(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a cancellation reason is required", apperrors.ErrValidation)
	}

	var entry *domain.JournalEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		if err := repos.Journals().LockChain(ctx, templeID); err != nil {
			return err
		}
		e, err := repos.Journals().FindEntryByID(ctx, templeID, entryID)
		if err != nil {
			return err
		}
		if !e.Status.CanTransitionTo(domain.Cancelled) {
			return &apperrors.AlreadyCancelledError{EntryNumber: entryLabel(*e), Status: string(e.Status)}
		}
		if _, err := checkPostingPeriod(ctx, repos, templeID, e.EntryDate, false); err != nil {
			return err
		}

		now := s.Now()
		if err := repos.Journals().MarkCancelled(ctx, templeID, entryID, actor, now, reason); err != nil {
			return err
		}
		e.Status = domain.Cancelled
		e.CancelledBy = actor
		e.CancelledAt = &now
		e.CancelReason = reason
		e.LastUpdatedAt, e.LastUpdatedBy = now, actor
		entry = e
		audit := s.newAuditBatch()
		audit.add(*e, domain.AuditCancel, actor, reason, now)
		return audit.flush(ctx)
	})
	if err != nil {
		s.postingFailed(ctx, err, templeID)
		return nil, err
	}

	metrics.EntriesTotal.WithLabelValues("cancel", entry.Reference.Kind).Inc()
	s.LogInfo(ctx, "Journal entry cancelled",
		slog.String("temple_id", templeID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("actor", actor))
	return entry, nil
}

func (s *journalService) Reverse(ctx context.Context, templeID string, entryID int64, date *time.Time, actor string, reason string) (*domain.JournalEntry, error) {
	reason = sanitize.Text(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a reversal reason is required", apperrors.ErrValidation)
	}
	reversalDate := timeutil.CalendarDate(s.Now())
	if date != nil {
		reversalDate = timeutil.CalendarDate(*date)
	}

	var reversal *domain.JournalEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		if err := repos.Journals().LockChain(ctx, templeID); err != nil {
			return err
		}
		orig, err := repos.Journals().FindEntryByID(ctx, templeID, entryID)
		if err != nil {
			return err
		}
		if !orig.Status.CanTransitionTo(domain.Reversed) {
			return &apperrors.AlreadyCancelledError{EntryNumber: entryLabel(*orig), Status: string(orig.Status)}
		}

		b, err := builderFromEntry(ctx, repos, *orig, true)
		if err != nil {
			return err
		}
		b.EntryDate = reversalDate
		b.Narration = fmt.Sprintf("Reversal of %s: %s", orig.EntryNumber, reason)
		b.Reference = domain.Reference{Kind: domain.ReferenceKindReversal, ID: strconv.FormatInt(orig.EntryID, 10)}
		b.Actor = actor
		b.ReversalOf = &orig.EntryID

		audit := s.newAuditBatch()
		reversal, err = s.postInTx(ctx, repos, b, audit)
		if err != nil {
			return err
		}

		now := s.Now()
		if err := repos.Journals().MarkReversed(ctx, templeID, orig.EntryID, reversal.EntryID, actor, now); err != nil {
			return err
		}
		orig.Status = domain.Reversed
		audit.add(*orig, domain.AuditReverse, actor, reason, now)
		return audit.flush(ctx)
	})
	if err != nil {
		s.postingFailed(ctx, err, templeID)
		return nil, err
	}

	s.posted(ctx, reversal)
	metrics.EntriesTotal.WithLabelValues("reverse", reversal.Reference.Kind).Inc()
	return reversal, nil
}

func (s *journalService) GetEntry(ctx context.Context, templeID string, entryID int64) (*domain.JournalEntry, error) {
	entry, err := s.store.Journals().FindEntryByID(ctx, templeID, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry", slog.Int64("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, templeID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	var filter portsrepo.EntryFilter
	if params.Status != "" {
		status := domain.EntryStatus(params.Status)
		filter.Status = &status
	}
	if params.From != "" {
		from, err := timeutil.ParseDate(params.From)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from date", apperrors.ErrValidation)
		}
		filter.From = &from
	}
	if params.To != "" {
		to, err := timeutil.ParseDate(params.To)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to date", apperrors.ErrValidation)
		}
		filter.To = &to
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, next, err := s.store.Journals().ListEntries(ctx, templeID, filter, limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list journal entries", slog.String("temple_id", templeID))
		}
		return nil, err
	}
	resp := &dto.ListEntriesResponse{Entries: make([]dto.JournalEntryResponse, 0, len(entries)), NextToken: next}
	for i := range entries {
		resp.Entries = append(resp.Entries, dto.ToJournalEntryResponse(&entries[i]))
	}
	return resp, nil
}

func (s *journalService) GetAccountBalance(ctx context.Context, templeID string, accountCode string, asOf *time.Time) (*domain.AccountBalance, error) {
	acc, err := s.accounts.GetAccountByCode(ctx, templeID, accountCode)
	if err != nil {
		return nil, err
	}
	to := s.asOf(asOf)
	totals, err := s.store.Journals().SumLinesByAccount(ctx, templeID, portsrepo.LineSumQuery{
		AccountIDs: []int64{acc.AccountID},
		To:         &to,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to sum account lines", slog.String("code", accountCode))
		return nil, err
	}
	var t domain.LineTotals
	if len(totals) > 0 {
		t = totals[0]
	}
	balance := accountBalance(*acc, t)
	return &balance, nil
}

func (s *journalService) GetTrialBalance(ctx context.Context, templeID string, asOf *time.Time) ([]domain.AccountBalance, error) {
	to := s.asOf(asOf)
	var out []domain.AccountBalance
	err := s.store.WithSnapshot(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		accounts, err := repos.Accounts().ListAccounts(ctx, templeID, true)
		if err != nil {
			return err
		}
		totals, err := repos.Journals().SumLinesByAccount(ctx, templeID, portsrepo.LineSumQuery{To: &to})
		if err != nil {
			return err
		}
		byAccount := make(map[int64]domain.LineTotals, len(totals))
		for _, t := range totals {
			byAccount[t.AccountID] = t
		}
		out = make([]domain.AccountBalance, 0, len(accounts))
		for _, acc := range accounts {
			t, moved := byAccount[acc.AccountID]
			if !moved && !acc.IsActive && acc.OpeningBalance().IsZero() {
				continue
			}
			out = append(out, accountBalance(acc, t))
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build trial balance", slog.String("temple_id", templeID))
		return nil, err
	}
	return out, nil
}

// postInTx runs the posting path inside an open unit of work and queues the POST record on audit.
func (s *journalService) postInTx(ctx context.Context, repos portsrepo.Repositories, b domain.EntryBuilder, audit *auditBatch) (*domain.JournalEntry, error) {
	if err := repos.Journals().LockChain(ctx, b.TempleID); err != nil {
		return nil, err
	}

	var draft *domain.JournalEntry
	if b.DraftID != 0 {
		d, err := s.loadDraft(ctx, repos, b.TempleID, b.DraftID)
		if err != nil {
			return nil, err
		}
		draft = d
	}

	lines, err := s.materializeLines(ctx, repos, b.TempleID, b.Lines)
	if err != nil {
		return nil, err
	}
	if len(lines) < 2 {
		return nil, &apperrors.InvalidLineError{Reason: "entry needs at least two lines"}
	}
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	total, err := accounting.ValidateBalance(debit, credit)
	if err != nil {
		return nil, err
	}

	date := timeutil.CalendarDate(b.EntryDate)
	period, err := checkPostingPeriod(ctx, repos, b.TempleID, date, b.AdminOverride)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodOpen {
		s.LogWarn(ctx, "Posting into closed period with admin override",
			slog.String("period", period.Name), slog.String("actor", b.Actor))
	}
	year, err := repos.Periods().FindYearByID(ctx, b.TempleID, period.YearID)
	if err != nil {
		return nil, err
	}
	seq, err := repos.Journals().NextEntrySequence(ctx, b.TempleID, year.YearID)
	if err != nil {
		return nil, err
	}
	prevHash, chainSeq, err := s.chainTail(ctx, repos, b.TempleID)
	if err != nil {
		return nil, err
	}

	now := integrity.NormalizeCreatedAt(s.Now())
	entry := &domain.JournalEntry{
		EntryID:         b.DraftID,
		TempleID:        b.TempleID,
		EntryNumber:     fmt.Sprintf("%s-%d-%05d", s.prefix, year.StartDate.Year(), seq),
		EntryDate:       date,
		Narration:       sanitize.Text(b.Narration),
		Reference:       normalizeReference(b.Reference),
		TotalAmount:     total,
		Status:          domain.Posted,
		FinancialYearID: &year.YearID,
		ChainSeq:        chainSeq,
		ReversalOfID:    b.ReversalOf,
		PostedBy:        b.Actor,
		PostedAt:        &now,
		Lines:           lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     b.Actor,
			LastUpdatedAt: now,
			LastUpdatedBy: b.Actor,
		},
	}
	if draft != nil {
		entry.CreatedAt = integrity.NormalizeCreatedAt(draft.CreatedAt)
		entry.CreatedBy = draft.CreatedBy
	}

	if err := repos.Journals().SaveEntry(ctx, entry); err != nil {
		return nil, err
	}
	entry.IntegrityHash = integrity.ComputeHash(*entry, prevHash)
	if err := repos.Journals().SetIntegrityHash(ctx, entry.TempleID, entry.EntryID, entry.IntegrityHash); err != nil {
		return nil, err
	}
	audit.add(*entry, domain.AuditPost, b.Actor, entry.Narration, now)
	return entry, nil
}

// chainTail returns the hash the next entry links to and its chain position.
// A tail without a hash means legacy rows: they are backfilled first.
func (s *journalService) chainTail(ctx context.Context, repos portsrepo.Repositories, templeID string) (string, int64, error) {
	seq, hash, err := repos.Journals().LastChainLink(ctx, templeID)
	if err != nil {
		return "", 0, err
	}
	if seq == 0 {
		return integrity.GenesisHash, 1, nil
	}
	if hash != "" {
		return hash, seq + 1, nil
	}

	report, tail, err := walkChain(ctx, repos, templeID, true)
	if err != nil {
		return "", 0, err
	}
	if !report.Valid || tail == "" {
		return "", 0, tamperError(report)
	}
	s.LogInfo(ctx, "Backfilled legacy chain entries", slog.String("temple_id", templeID), slog.Int("count", report.Backfilled))
	return tail, seq + 1, nil
}

// materializeLines resolves account codes and validates every line.
func (s *journalService) materializeLines(ctx context.Context, repos portsrepo.Repositories, templeID string, in []domain.BuilderLine) ([]domain.JournalLine, error) {
	codes := make([]string, 0, len(in))
	for _, l := range in {
		codes = append(codes, strings.TrimSpace(l.AccountCode))
	}
	accounts, err := repos.Accounts().FindAccountsByCodes(ctx, templeID, codes)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.JournalLine, 0, len(in))
	for i, l := range in {
		code := codes[i]
		acc, ok := accounts[code]
		if !ok {
			return nil, &apperrors.InvalidLineError{AccountCode: code, Reason: "unknown account"}
		}
		if !acc.IsActive {
			return nil, &apperrors.InvalidLineError{AccountCode: code, Reason: "account is inactive"}
		}
		if err := accounting.ValidateLineAmounts(code, l.Debit, l.Credit); err != nil {
			return nil, err
		}
		lines = append(lines, domain.JournalLine{
			LineNo:        i + 1,
			AccountID:     acc.AccountID,
			Debit:         l.Debit.Round(accounting.MinorUnits),
			Credit:        l.Credit.Round(accounting.MinorUnits),
			Description:   sanitize.Text(l.Description),
			InstrumentRef: sanitize.Text(l.InstrumentRef),
		})
	}
	return lines, nil
}

func (s *journalService) loadDraft(ctx context.Context, repos portsrepo.Repositories, templeID string, entryID int64) (*domain.JournalEntry, error) {
	e, err := repos.Journals().FindEntryByID(ctx, templeID, entryID)
	if err != nil {
		return nil, err
	}
	if e.Status != domain.Draft {
		return nil, &apperrors.AlreadyCancelledError{EntryNumber: entryLabel(*e), Status: string(e.Status)}
	}
	return e, nil
}

func (s *journalService) asOf(asOf *time.Time) time.Time {
	if asOf != nil {
		return timeutil.CalendarDate(*asOf)
	}
	return timeutil.CalendarDate(s.Now())
}

func (s *journalService) posted(ctx context.Context, e *domain.JournalEntry) {
	metrics.EntriesTotal.WithLabelValues("post", e.Reference.Kind).Inc()
	s.LogInfo(ctx, "Journal entry posted",
		slog.String("temple_id", e.TempleID),
		slog.Int64("entry_id", e.EntryID),
		slog.String("entry_number", e.EntryNumber),
		slog.String("amount", e.TotalAmount.StringFixed(2)),
		slog.String("hash", domain.ShortHash(e.IntegrityHash)))
}

func (s *journalService) postingFailed(ctx context.Context, err error, templeID string) {
	reason := failureReason(err)
	metrics.PostingFailures.WithLabelValues(reason).Inc()
	if reason == "internal" {
		s.LogError(ctx, err, "Ledger mutation failed", slog.String("temple_id", templeID))
		return
	}
	s.LogWarn(ctx, "Ledger mutation rejected", slog.String("temple_id", templeID), slog.String("reason", err.Error()))
}

// checkPostingPeriod finds the period of date and verifies it accepts postings.
// CLOSED accepts only with adminOverride; LOCKED never does.
func checkPostingPeriod(ctx context.Context, repos portsrepo.Repositories, templeID string, date time.Time, adminOverride bool) (*domain.FinancialPeriod, error) {
	p, err := repos.Periods().FindPeriodForDate(ctx, templeID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &apperrors.PeriodLockedError{Date: date, Reason: "no financial period"}
		}
		return nil, err
	}
	switch p.Status {
	case domain.PeriodOpen:
		return p, nil
	case domain.PeriodClosed:
		if adminOverride {
			return p, nil
		}
		return nil, &apperrors.PeriodLockedError{Date: date, PeriodName: p.Name, Status: string(p.Status)}
	default:
		return nil, &apperrors.PeriodLockedError{Date: date, PeriodName: p.Name, Status: string(p.Status), Reason: "locked periods accept no postings"}
	}
}

// builderFromEntry turns a stored entry back into a builder, inverting the lines when asked.
func builderFromEntry(ctx context.Context, repos portsrepo.Repositories, e domain.JournalEntry, invert bool) (domain.EntryBuilder, error) {
	ids := make([]int64, 0, len(e.Lines))
	for _, l := range e.Lines {
		ids = append(ids, l.AccountID)
	}
	accounts, err := repos.Accounts().FindAccountsByIDs(ctx, e.TempleID, ids)
	if err != nil {
		return domain.EntryBuilder{}, err
	}

	lines := e.Lines
	if invert {
		lines = accounting.InvertLines(e.Lines)
	}
	b := domain.EntryBuilder{
		TempleID:  e.TempleID,
		EntryDate: e.EntryDate,
		Narration: e.Narration,
		Reference: e.Reference,
	}
	for _, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok {
			return domain.EntryBuilder{}, fmt.Errorf("account %d of entry %d: %w", l.AccountID, e.EntryID, apperrors.ErrNotFound)
		}
		b.Lines = append(b.Lines, domain.BuilderLine{
			AccountCode:   acc.Code,
			Debit:         l.Debit,
			Credit:        l.Credit,
			Description:   l.Description,
			InstrumentRef: l.InstrumentRef,
		})
	}
	return b, nil
}

func builderLines(in []dto.LineRequest) []domain.BuilderLine {
	out := make([]domain.BuilderLine, 0, len(in))
	for _, l := range in {
		out = append(out, domain.BuilderLine{
			AccountCode:   l.AccountCode,
			Debit:         l.Debit,
			Credit:        l.Credit,
			Description:   l.Description,
			InstrumentRef: l.InstrumentRef,
		})
	}
	return out
}

func normalizeReference(ref domain.Reference) domain.Reference {
	kind := strings.ToUpper(sanitize.Text(ref.Kind))
	if kind == "" {
		kind = domain.ReferenceKindManual
	}
	return domain.Reference{Kind: kind, ID: sanitize.Text(ref.ID)}
}

func accountBalance(acc domain.Account, t domain.LineTotals) domain.AccountBalance {
	debit := acc.OpeningDebit.Add(t.Debit)
	credit := acc.OpeningCredit.Add(t.Credit)
	return domain.AccountBalance{
		AccountID:   acc.AccountID,
		Code:        acc.Code,
		Name:        acc.Name,
		AccountType: acc.AccountType,
		TotalDebit:  debit,
		TotalCredit: credit,
		Balance:     accounting.NaturalBalance(debit.Sub(credit), acc.AccountType),
	}
}

func entryLabel(e domain.JournalEntry) string {
	if e.EntryNumber != "" {
		return e.EntryNumber
	}
	return fmt.Sprintf("draft %d", e.EntryID)
}

func failureReason(err error) string {
	var (
		unbalanced *apperrors.UnbalancedEntryError
		badLine    *apperrors.InvalidLineError
	)
	switch {
	case errors.As(err, &unbalanced):
		return "unbalanced"
	case errors.As(err, &badLine):
		return "invalid_line"
	case errors.Is(err, apperrors.ErrPeriodLocked):
		return "period_locked"
	case errors.Is(err, apperrors.ErrTamperDetected):
		return "tamper_detected"
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return "rejected"
	}
	return "internal"
}
