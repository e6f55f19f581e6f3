package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, templeID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, templeID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, templeID string, accountID int64) (*domain.Account, error) {
	args := m.Called(ctx, templeID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, templeID string, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, templeID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, templeID string, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	args := m.Called(ctx, templeID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, templeID string, code string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error) {
	args := m.Called(ctx, templeID, code, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, templeID string, code string, actor string) error {
	return m.Called(ctx, templeID, code, actor).Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) GetEntry(ctx context.Context, templeID string, entryID int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, templeID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) ListEntries(ctx context.Context, templeID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, templeID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

// BeginEntry is a pure constructor, so the mock builds the value instead of recording a call.
func (m *MockJournalService) BeginEntry(templeID string, date time.Time, narration string, ref domain.Reference, actor string) *domain.EntryBuilder {
	return &domain.EntryBuilder{TempleID: templeID, EntryDate: date, Narration: narration, Reference: ref, Actor: actor}
}
func (m *MockJournalService) AddLine(ctx context.Context, b *domain.EntryBuilder, accountCode string, debit, credit decimal.Decimal, description string) error {
	return m.Called(ctx, b, accountCode, debit, credit, description).Error(0)
}
func (m *MockJournalService) Post(ctx context.Context, b domain.EntryBuilder) (*domain.JournalEntry, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) PostTransaction(ctx context.Context, templeID string, req dto.PostTransactionRequest, actor string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, templeID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) SaveDraft(ctx context.Context, b domain.EntryBuilder) (*domain.JournalEntry, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) PostDraft(ctx context.Context, templeID string, entryID int64, actor string, adminOverride bool) (*domain.JournalEntry, error) {
	args := m.Called(ctx, templeID, entryID, actor, adminOverride)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) DiscardDraft(ctx context.Context, templeID string, entryID int64, actor string) error {
	return m.Called(ctx, templeID, entryID, actor).Error(0)
}
func (m *MockJournalService) Cancel(ctx context.Context, templeID string, entryID int64, actor string, reason string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, templeID, entryID, actor, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) Reverse(ctx context.Context, templeID string, entryID int64, date *time.Time, actor string, reason string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, templeID, entryID, date, actor, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) GetAccountBalance(ctx context.Context, templeID string, accountCode string, asOf *time.Time) (*domain.AccountBalance, error) {
	args := m.Called(ctx, templeID, accountCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}
func (m *MockJournalService) GetTrialBalance(ctx context.Context, templeID string, asOf *time.Time) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, templeID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock IntegrityService ---
type MockIntegrityService struct {
	mock.Mock
}

func (m *MockIntegrityService) VerifyChain(ctx context.Context, templeID string) (*domain.ChainReport, error) {
	args := m.Called(ctx, templeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainReport), args.Error(1)
}
func (m *MockIntegrityService) LastReport(ctx context.Context, templeID string) (*domain.ChainReport, error) {
	args := m.Called(ctx, templeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainReport), args.Error(1)
}
func (m *MockIntegrityService) CrossCheckAuditLog(ctx context.Context, templeID string) (*domain.AuditCheckReport, error) {
	args := m.Called(ctx, templeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditCheckReport), args.Error(1)
}

var _ portssvc.IntegritySvcFacade = (*MockIntegrityService)(nil)

// --- Mock PeriodService ---
type MockPeriodService struct {
	mock.Mock
}

func (m *MockPeriodService) ListFinancialYears(ctx context.Context, templeID string) ([]domain.FinancialYear, error) {
	args := m.Called(ctx, templeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialYear), args.Error(1)
}
func (m *MockPeriodService) ListPeriods(ctx context.Context, templeID string, yearID int64) ([]domain.FinancialPeriod, error) {
	args := m.Called(ctx, templeID, yearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialPeriod), args.Error(1)
}
func (m *MockPeriodService) GetPeriodForDate(ctx context.Context, templeID string, date time.Time) (*domain.FinancialPeriod, error) {
	args := m.Called(ctx, templeID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialPeriod), args.Error(1)
}
func (m *MockPeriodService) CreateFinancialYear(ctx context.Context, templeID string, req dto.CreateFinancialYearRequest, actor string) (*domain.FinancialYear, []domain.FinancialPeriod, error) {
	args := m.Called(ctx, templeID, req, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.FinancialYear), args.Get(1).([]domain.FinancialPeriod), args.Error(2)
}
func (m *MockPeriodService) OpenPeriod(ctx context.Context, templeID string, periodID int64, actor string) (*domain.FinancialPeriod, error) {
	args := m.Called(ctx, templeID, periodID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialPeriod), args.Error(1)
}
func (m *MockPeriodService) ClosePeriod(ctx context.Context, templeID string, periodID int64, equityCode string, actor string) (*domain.PeriodClosing, error) {
	args := m.Called(ctx, templeID, periodID, equityCode, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodClosing), args.Error(1)
}
func (m *MockPeriodService) LockPeriod(ctx context.Context, templeID string, periodID int64, actor string) (*domain.FinancialPeriod, error) {
	args := m.Called(ctx, templeID, periodID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialPeriod), args.Error(1)
}

var _ portssvc.PeriodSvcFacade = (*MockPeriodService)(nil)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) GetReconciliation(ctx context.Context, templeID string, reconciliationID int64) (*domain.BankReconciliation, error) {
	args := m.Called(ctx, templeID, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankReconciliation), args.Error(1)
}
func (m *MockReconciliationService) ListOutstandingItems(ctx context.Context, templeID string, accountCode string, includeCleared bool) ([]domain.OutstandingItem, error) {
	args := m.Called(ctx, templeID, accountCode, includeCleared)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutstandingItem), args.Error(1)
}
func (m *MockReconciliationService) ImportStatement(ctx context.Context, templeID string, req dto.ImportStatementRequest, actor string) (*domain.BankStatement, error) {
	args := m.Called(ctx, templeID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankStatement), args.Error(1)
}
func (m *MockReconciliationService) Reconcile(ctx context.Context, templeID string, statementID int64, actor string) (*domain.BankReconciliation, error) {
	args := m.Called(ctx, templeID, statementID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankReconciliation), args.Error(1)
}
func (m *MockReconciliationService) ReopenOutstandingItem(ctx context.Context, templeID string, itemID int64, actor string) (*domain.OutstandingItem, error) {
	args := m.Called(ctx, templeID, itemID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutstandingItem), args.Error(1)
}

var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)
