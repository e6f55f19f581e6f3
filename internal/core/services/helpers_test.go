package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/temple_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/core/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/SscSPs/temple_ledger/internal/matching"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const temple = "kashi-vishwanath"

// 10:00 IST on 15 June 2024.
var fixedNow = time.Date(2024, 6, 15, 4, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// memorySink is an audit sink and log reader backed by a slice.
type memorySink struct {
	mu      sync.Mutex
	records []domain.AuditRecord
	failOn  domain.AuditAction
}

// failAppendsWith makes every append carrying an action record fail.
func (m *memorySink) failAppendsWith(action domain.AuditAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = action
}

func (m *memorySink) Append(_ context.Context, rs ...domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rs {
		if m.failOn != "" && r.Action == m.failOn {
			return errors.New("audit device unavailable")
		}
	}
	m.records = append(m.records, rs...)
	return nil
}

func (m *memorySink) ReadRecords(_ context.Context, templeID string) ([]domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditRecord
	for _, r := range m.records {
		if r.TempleID == templeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memorySink) snapshot() []domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditRecord(nil), m.records...)
}

// MockAuditSink is a mock type for the AuditSink interface
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Append(ctx context.Context, rs ...domain.AuditRecord) error {
	args := m.Called(ctx, rs)
	return args.Error(0)
}

// MockAccountCache is a mock type for the AccountCache interface
type MockAccountCache struct {
	mock.Mock
}

func (m *MockAccountCache) Get(templeID, code string) (domain.Account, bool) {
	args := m.Called(templeID, code)
	return args.Get(0).(domain.Account), args.Bool(1)
}

func (m *MockAccountCache) Set(account domain.Account) {
	m.Called(account)
}

func (m *MockAccountCache) Invalidate(templeID, code string) {
	m.Called(templeID, code)
}

type memoryReports struct {
	mu      sync.Mutex
	reports map[string]domain.ChainReport
}

func (m *memoryReports) GetReport(_ context.Context, templeID string) (*domain.ChainReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[templeID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (m *memoryReports) PutReport(_ context.Context, r domain.ChainReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reports == nil {
		m.reports = map[string]domain.ChainReport{}
	}
	m.reports[r.TempleID] = r
	return nil
}

// ledger wires every service over one in-memory store with a fixed clock.
type ledger struct {
	store     *memory.Store
	sink      *memorySink
	reports   *memoryReports
	accounts  portssvc.AccountSvcFacade
	journal   portssvc.JournalSvcFacade
	integrity portssvc.IntegritySvcFacade
	periods   portssvc.PeriodSvcFacade
	recon     portssvc.ReconciliationSvcFacade
}

var chart = []dto.CreateAccountRequest{
	{Code: "1000", Name: "Cash in Hundi", AccountType: domain.Asset},
	{Code: "1100", Name: "SBI Current Account", AccountType: domain.Asset, Subtype: "bank"},
	{Code: "2000", Name: "Vendor Payables", AccountType: domain.Liability},
	{Code: "3000", Name: "General Fund", AccountType: domain.Equity},
	{Code: "4000", Name: "Donations", AccountType: domain.Income},
	{Code: "4100", Name: "Seva Bookings", AccountType: domain.Income},
	{Code: "5000", Name: "Pooja Materials", AccountType: domain.Expense},
	{Code: "5100", Name: "Maintenance", AccountType: domain.Expense},
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return fixedNow }

	l := &ledger{
		store:   memory.NewStore(),
		sink:    &memorySink{},
		reports: &memoryReports{},
	}
	l.accounts = services.NewAccountService(l.store, services.WithAccountClock(clock))
	l.journal = services.NewJournalService(l.store, l.accounts, l.sink, services.WithJournalClock(clock))
	l.integrity = services.NewIntegrityService(l.store,
		services.WithChainReportCache(l.reports),
		services.WithAuditLogReader(l.sink),
		services.WithIntegrityClock(clock))
	l.periods = services.NewPeriodService(l.store, l.journal, services.WithPeriodClock(clock))
	l.recon = services.NewReconciliationService(l.store,
		services.WithMatchConfig(matching.Config{DateToleranceDays: 3}),
		services.WithReconciliationClock(clock))

	for _, req := range chart {
		_, err := l.accounts.CreateAccount(ctx, temple, req, "setup")
		require.NoError(t, err)
	}
	_, _, err := l.periods.CreateFinancialYear(ctx, temple, dto.CreateFinancialYearRequest{
		StartDate:  "2024-04-01",
		PeriodType: domain.Monthly,
	}, "setup")
	require.NoError(t, err)
	return l
}

// post books a two-line transaction debiting one account and crediting another.
func (l *ledger) post(t *testing.T, date, amount, debitCode, creditCode string) *domain.JournalEntry {
	t.Helper()
	e, err := l.journal.PostTransaction(context.Background(), temple, transfer(date, amount, debitCode, creditCode), "priest-01")
	require.NoError(t, err)
	return e
}

func transfer(date, amount, debitCode, creditCode string) dto.PostTransactionRequest {
	return dto.PostTransactionRequest{
		EntryDate: date,
		Narration: "Transfer " + amount,
		Reference: dto.ReferenceRequest{Kind: "DONATION", ID: date},
		Lines: []dto.LineRequest{
			{AccountCode: debitCode, Debit: d(amount)},
			{AccountCode: creditCode, Credit: d(amount)},
		},
	}
}

func (l *ledger) period(t *testing.T, date string) *domain.FinancialPeriod {
	t.Helper()
	day, err := time.Parse(domain.DateLayout, date)
	require.NoError(t, err)
	p, err := l.periods.GetPeriodForDate(context.Background(), temple, day)
	require.NoError(t, err)
	return p
}

func (l *ledger) balance(t *testing.T, code, asOf string) decimal.Decimal {
	t.Helper()
	day, err := time.Parse(domain.DateLayout, asOf)
	require.NoError(t, err)
	b, err := l.journal.GetAccountBalance(context.Background(), temple, code, &day)
	require.NoError(t, err)
	return b.Balance
}

// trackingStore records chain locks and posting checks made inside units of work, in call order.
type trackingStore struct {
	*memory.Store
	mu     sync.Mutex
	events []string
}

func (s *trackingStore) WithTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	return s.Store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		return fn(ctx, trackedRepos{Repositories: repos, store: s})
	})
}

func (s *trackingStore) record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *trackingStore) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

type trackedRepos struct {
	portsrepo.Repositories
	store *trackingStore
}

func (r trackedRepos) Journals() portsrepo.JournalRepositoryFacade {
	return trackedJournals{JournalRepositoryFacade: r.Repositories.Journals(), store: r.store}
}

func (r trackedRepos) Accounts() portsrepo.AccountRepositoryFacade {
	return trackedAccounts{AccountRepositoryFacade: r.Repositories.Accounts(), store: r.store}
}

type trackedJournals struct {
	portsrepo.JournalRepositoryFacade
	store *trackingStore
}

func (j trackedJournals) LockChain(ctx context.Context, templeID string) error {
	j.store.record("lock-chain")
	return j.JournalRepositoryFacade.LockChain(ctx, templeID)
}

type trackedAccounts struct {
	portsrepo.AccountRepositoryFacade
	store *trackingStore
}

func (a trackedAccounts) AccountHasPostings(ctx context.Context, templeID string, accountID int64) (bool, error) {
	a.store.record("has-postings")
	return a.AccountRepositoryFacade.AccountHasPostings(ctx, templeID, accountID)
}
