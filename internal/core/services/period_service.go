package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/SscSPs/temple_ledger/internal/metrics"
	"github.com/SscSPs/temple_ledger/internal/timeutil"
	"github.com/SscSPs/temple_ledger/internal/utils/sanitize"
	"github.com/shopspring/decimal"
)

// DefaultClosingEquityCode is the equity account that receives the period result when none is given.
const DefaultClosingEquityCode = "3000"

type periodService struct {
	BaseService
	store        portsrepo.Store
	poster       entryPoster
	equityCode   string
	fyStartMonth time.Month
}

// PeriodOption is a functional option for configuring the period service
type PeriodOption func(*periodService)

// WithDefaultEquityCode sets the equity account used by ClosePeriod when the caller names none
func WithDefaultEquityCode(code string) PeriodOption {
	return func(s *periodService) {
		if code != "" {
			s.equityCode = code
		}
	}
}

// WithFiscalYearStartMonth sets the first month of the fiscal year, used for default year names
func WithFiscalYearStartMonth(month time.Month) PeriodOption {
	return func(s *periodService) {
		if month >= time.January && month <= time.December {
			s.fyStartMonth = month
		}
	}
}

// WithPeriodClock overrides the clock used for status changes
func WithPeriodClock(clock func() time.Time) PeriodOption {
	return func(s *periodService) {
		s.clock = clock
	}
}

// NewPeriodService creates the period manager. Closing entries are posted through journal,
// which must be the engine returned by NewJournalService.
func NewPeriodService(store portsrepo.Store, journal portssvc.JournalSvcFacade, options ...PeriodOption) portssvc.PeriodSvcFacade {
	svc := &periodService{
		store:        store,
		equityCode:   DefaultClosingEquityCode,
		fyStartMonth: time.April,
	}
	if poster, ok := journal.(entryPoster); ok {
		svc.poster = poster
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

func (s *periodService) CreateFinancialYear(ctx context.Context, templeID string, req dto.CreateFinancialYearRequest, actor string) (*domain.FinancialYear, []domain.FinancialPeriod, error) {
	start, err := timeutil.ParseDate(req.StartDate)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid start date %q", apperrors.ErrValidation, req.StartDate)
	}
	end := start.AddDate(1, 0, -1)
	if req.EndDate != "" {
		if end, err = timeutil.ParseDate(req.EndDate); err != nil {
			return nil, nil, fmt.Errorf("%w: invalid end date %q", apperrors.ErrValidation, req.EndDate)
		}
	}
	if !end.After(start) {
		return nil, nil, fmt.Errorf("%w: end date must be after start date", apperrors.ErrValidation)
	}
	periodType := req.PeriodType
	if periodType == "" {
		periodType = domain.Monthly
	}
	if periodType != domain.Monthly && periodType != domain.Quarterly {
		return nil, nil, fmt.Errorf("%w: unknown period type %q", apperrors.ErrValidation, periodType)
	}
	name := sanitize.Text(req.Name)
	if name == "" {
		fyStart := timeutil.FiscalYearStart(start, s.fyStartMonth)
		name = fmt.Sprintf("FY %d-%02d", fyStart.Year(), (fyStart.Year()+1)%100)
	}

	now := s.Now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	year := &domain.FinancialYear{
		TempleID:    templeID,
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		PeriodType:  periodType,
		Status:      domain.PeriodOpen,
		AuditFields: audit,
	}
	periods := splitYear(templeID, start, end, periodType, audit)

	err = s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		overlaps, err := repos.Periods().YearOverlaps(ctx, templeID, start, end)
		if err != nil {
			return err
		}
		if overlaps {
			return fmt.Errorf("%w: financial year %s overlaps an existing year", apperrors.ErrConflict, name)
		}
		return repos.Periods().SaveYear(ctx, year, periods)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogWarn(ctx, "Financial year rejected", slog.String("temple_id", templeID), slog.String("reason", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to create financial year", slog.String("temple_id", templeID))
		}
		return nil, nil, err
	}

	s.LogInfo(ctx, "Financial year created",
		slog.String("temple_id", templeID),
		slog.String("name", name),
		slog.Int("periods", len(periods)))
	return year, periods, nil
}

func (s *periodService) ListFinancialYears(ctx context.Context, templeID string) ([]domain.FinancialYear, error) {
	var years []domain.FinancialYear
	err := s.store.WithSnapshot(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		var err error
		years, err = repos.Periods().ListYears(ctx, templeID)
		if err != nil {
			return err
		}
		for i := range years {
			periods, err := repos.Periods().ListPeriodsByYear(ctx, templeID, years[i].YearID)
			if err != nil {
				return err
			}
			years[i].Status = domain.DeriveYearStatus(periods)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list financial years", slog.String("temple_id", templeID))
		return nil, err
	}
	return years, nil
}

func (s *periodService) ListPeriods(ctx context.Context, templeID string, yearID int64) ([]domain.FinancialPeriod, error) {
	if _, err := s.store.Periods().FindYearByID(ctx, templeID, yearID); err != nil {
		return nil, err
	}
	return s.store.Periods().ListPeriodsByYear(ctx, templeID, yearID)
}

func (s *periodService) GetPeriodForDate(ctx context.Context, templeID string, date time.Time) (*domain.FinancialPeriod, error) {
	return s.store.Periods().FindPeriodForDate(ctx, templeID, timeutil.CalendarDate(date))
}

func (s *periodService) OpenPeriod(ctx context.Context, templeID string, periodID int64, actor string) (*domain.FinancialPeriod, error) {
	return s.transition(ctx, templeID, periodID, actor, func(p *domain.FinancialPeriod) (bool, error) {
		switch p.Status {
		case domain.PeriodOpen:
			return false, nil
		case domain.PeriodLocked:
			return false, &apperrors.PeriodLockedError{Date: p.StartDate, PeriodName: p.Name, Status: string(p.Status), Reason: "locked periods cannot be re-opened"}
		}
		p.Status = domain.PeriodOpen
		return true, nil
	})
}

func (s *periodService) LockPeriod(ctx context.Context, templeID string, periodID int64, actor string) (*domain.FinancialPeriod, error) {
	return s.transition(ctx, templeID, periodID, actor, func(p *domain.FinancialPeriod) (bool, error) {
		switch p.Status {
		case domain.PeriodLocked:
			return false, nil
		case domain.PeriodOpen:
			return false, fmt.Errorf("%w: period %s must be closed before it can be locked", apperrors.ErrConflict, p.Name)
		}
		p.Status = domain.PeriodLocked
		return true, nil
	})
}

// transition applies a status change under the chain lock, so it serialises with postings.
func (s *periodService) transition(ctx context.Context, templeID string, periodID int64, actor string, apply func(p *domain.FinancialPeriod) (bool, error)) (*domain.FinancialPeriod, error) {
	var period *domain.FinancialPeriod
	var changed bool
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		if err := repos.Journals().LockChain(ctx, templeID); err != nil {
			return err
		}
		p, err := repos.Periods().FindPeriodByID(ctx, templeID, periodID)
		if err != nil {
			return err
		}
		if changed, err = apply(p); err != nil || !changed {
			period = p
			return err
		}
		now := s.Now()
		p.LastUpdatedAt, p.LastUpdatedBy = now, actor
		period = p
		return repos.Periods().UpdatePeriodStatus(ctx, templeID, periodID, p.Status, actor, now)
	})
	if err != nil {
		if failureReason(err) == "internal" {
			s.LogError(ctx, err, "Failed to change period status", slog.Int64("period_id", periodID))
		} else {
			s.LogWarn(ctx, "Period status change rejected", slog.Int64("period_id", periodID), slog.String("reason", err.Error()))
		}
		return nil, err
	}
	if changed {
		metrics.PeriodTransitions.WithLabelValues(string(period.Status)).Inc()
		s.LogInfo(ctx, "Period status changed",
			slog.String("temple_id", templeID),
			slog.String("period", period.Name),
			slog.String("status", string(period.Status)),
			slog.String("actor", actor))
	}
	return period, nil
}

func (s *periodService) ClosePeriod(ctx context.Context, templeID string, periodID int64, equityCode string, actor string) (*domain.PeriodClosing, error) {
	if s.poster == nil {
		return nil, apperrors.NewAppError(500, "period service has no posting engine", nil)
	}
	if equityCode == "" {
		equityCode = s.equityCode
	}

	var closing *domain.PeriodClosing
	var period *domain.FinancialPeriod
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		if err := repos.Journals().LockChain(ctx, templeID); err != nil {
			return err
		}
		p, err := repos.Periods().FindPeriodByID(ctx, templeID, periodID)
		if err != nil {
			return err
		}
		period = p
		switch p.Status {
		case domain.PeriodLocked:
			return &apperrors.PeriodLockedError{Date: p.EndDate, PeriodName: p.Name, Status: string(p.Status)}
		case domain.PeriodClosed:
			return fmt.Errorf("%w: period %s is already closed", apperrors.ErrConflict, p.Name)
		}

		drafts, err := repos.Journals().CountDrafts(ctx, templeID, p.StartDate, p.EndDate)
		if err != nil {
			return err
		}
		if drafts > 0 {
			return &apperrors.OpenDraftsExistError{PeriodName: p.Name, DraftCount: drafts}
		}

		equity, err := repos.Accounts().FindAccountByCode(ctx, templeID, equityCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: equity account %s does not exist", apperrors.ErrValidation, equityCode)
			}
			return err
		}
		if equity.AccountType != domain.Equity || !equity.IsActive {
			return fmt.Errorf("%w: account %s is not an active equity account", apperrors.ErrValidation, equityCode)
		}

		resultTypes := []domain.AccountType{domain.Income, domain.Expense}
		operating, err := repos.Journals().SumLinesByAccount(ctx, templeID, portsrepo.LineSumQuery{
			AccountTypes:         resultTypes,
			From:                 &p.StartDate,
			To:                   &p.EndDate,
			ExcludeReferenceKind: domain.ReferenceKindPeriodClosing,
		})
		if err != nil {
			return err
		}
		// Net balances include earlier closing entries, so re-closing a re-opened period only books the change.
		net, err := repos.Journals().SumLinesByAccount(ctx, templeID, portsrepo.LineSumQuery{
			AccountTypes: resultTypes,
			From:         &p.StartDate,
			To:           &p.EndDate,
		})
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(net))
		for _, t := range net {
			ids = append(ids, t.AccountID)
		}
		accounts, err := repos.Accounts().FindAccountsByIDs(ctx, templeID, ids)
		if err != nil {
			return err
		}

		income, expense := decimal.Zero, decimal.Zero
		for _, t := range operating {
			switch accounts[t.AccountID].AccountType {
			case domain.Income:
				income = income.Add(t.Credit.Sub(t.Debit))
			case domain.Expense:
				expense = expense.Add(t.Debit.Sub(t.Credit))
			}
		}

		now := s.Now()
		closing = &domain.PeriodClosing{
			TempleID:        templeID,
			PeriodID:        p.PeriodID,
			TotalIncome:     income,
			TotalExpense:    expense,
			NetSurplus:      income.Sub(expense),
			EquityAccountID: equity.AccountID,
			ClosedBy:        actor,
			ClosedAt:        now,
		}

		audit := s.poster.newAuditBatch()
		if lines := closingLines(net, accounts, equity.Code); len(lines) > 0 {
			entry, err := s.poster.postInTx(ctx, repos, domain.EntryBuilder{
				TempleID:  templeID,
				EntryDate: p.EndDate,
				Narration: fmt.Sprintf("Closing of %s", p.Name),
				Reference: domain.Reference{Kind: domain.ReferenceKindPeriodClosing, ID: strconv.FormatInt(p.PeriodID, 10)},
				Actor:     actor,
				Lines:     lines,
			}, audit)
			if err != nil {
				return err
			}
			closing.ClosingEntryID = &entry.EntryID
		}

		if err := repos.Periods().UpdatePeriodStatus(ctx, templeID, p.PeriodID, domain.PeriodClosed, actor, now); err != nil {
			return err
		}
		if err := repos.Periods().SaveClosing(ctx, closing); err != nil {
			return err
		}
		return audit.flush(ctx)
	})
	if err != nil {
		if failureReason(err) == "internal" {
			s.LogError(ctx, err, "Failed to close period", slog.Int64("period_id", periodID))
		} else {
			s.LogWarn(ctx, "Period close rejected", slog.Int64("period_id", periodID), slog.String("reason", err.Error()))
		}
		return nil, err
	}

	metrics.PeriodTransitions.WithLabelValues(string(domain.PeriodClosed)).Inc()
	s.LogInfo(ctx, "Period closed",
		slog.String("temple_id", templeID),
		slog.String("period", period.Name),
		slog.String("net_surplus", closing.NetSurplus.StringFixed(2)),
		slog.String("actor", actor))
	return closing, nil
}

// closingLines zeroes every income and expense account against the equity account.
func closingLines(net []domain.LineTotals, accounts map[int64]domain.Account, equityCode string) []domain.BuilderLine {
	var lines []domain.BuilderLine
	debits, credits := decimal.Zero, decimal.Zero
	for _, t := range net {
		balance := t.Debit.Sub(t.Credit)
		if balance.IsZero() {
			continue
		}
		line := domain.BuilderLine{AccountCode: accounts[t.AccountID].Code, Debit: decimal.Zero, Credit: decimal.Zero}
		if balance.IsPositive() {
			line.Credit = balance
			credits = credits.Add(balance)
		} else {
			line.Debit = balance.Neg()
			debits = debits.Add(line.Debit)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].AccountCode < lines[j].AccountCode })

	equity := domain.BuilderLine{AccountCode: equityCode, Debit: decimal.Zero, Credit: decimal.Zero, Description: "Period result"}
	switch diff := debits.Sub(credits); {
	case diff.IsPositive():
		equity.Credit = diff
	case diff.IsNegative():
		equity.Debit = diff.Neg()
	default:
		return lines
	}
	return append(lines, equity)
}

// splitYear cuts [start, end] into contiguous months or quarters.
func splitYear(templeID string, start, end time.Time, periodType domain.PeriodType, audit domain.AuditFields) []domain.FinancialPeriod {
	step := 1
	if periodType == domain.Quarterly {
		step = 3
	}
	var periods []domain.FinancialPeriod
	for cursor, i := start, 1; !cursor.After(end); i++ {
		pEnd := cursor.AddDate(0, step, -1)
		if pEnd.After(end) {
			pEnd = end
		}
		name := cursor.Format("Jan 2006")
		if periodType == domain.Quarterly {
			name = fmt.Sprintf("Q%d %s", i, cursor.Format("2006"))
		}
		periods = append(periods, domain.FinancialPeriod{
			TempleID:    templeID,
			Name:        name,
			StartDate:   cursor,
			EndDate:     pEnd,
			Status:      domain.PeriodOpen,
			AuditFields: audit,
		})
		cursor = pEnd.AddDate(0, 0, 1)
	}
	return periods
}
