package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/temple_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/core/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAccountService_CreateAndList(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	acc, err := l.accounts.CreateAccount(ctx, temple, dto.CreateAccountRequest{
		Code:         "1010",
		Name:         "  Hundi <b>Box</b> 2 ",
		AccountType:  domain.Asset,
		ParentCode:   strPtr("1000"),
		OpeningDebit: d("1500.00"),
	}, "trustee")
	require.NoError(t, err)
	assert.Equal(t, "Hundi Box 2", acc.Name)
	assert.True(t, acc.IsActive)
	require.NotNil(t, acc.ParentAccountID)
	assert.Equal(t, fixedNow, acc.CreatedAt)

	all, err := l.accounts.ListAccounts(ctx, temple, false)
	require.NoError(t, err)
	assert.Len(t, all, len(chart)+1)
	assert.Equal(t, "1000", all[0].Code)

	other, err := l.accounts.ListAccounts(ctx, "another-temple", true)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAccountService_CreateRejections(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		req      dto.CreateAccountRequest
		sentinel error
	}{
		{"duplicate code", dto.CreateAccountRequest{Code: "1000", Name: "Again", AccountType: domain.Asset}, apperrors.ErrDuplicate},
		{"missing name", dto.CreateAccountRequest{Code: "1300", AccountType: domain.Asset}, apperrors.ErrValidation},
		{"bad type", dto.CreateAccountRequest{Code: "1300", Name: "X", AccountType: "REVENUE"}, apperrors.ErrValidation},
		{"both opening sides", dto.CreateAccountRequest{Code: "1300", Name: "X", AccountType: domain.Asset, OpeningDebit: d("1"), OpeningCredit: d("1")}, apperrors.ErrValidation},
		{"negative opening", dto.CreateAccountRequest{Code: "1300", Name: "X", AccountType: domain.Asset, OpeningDebit: d("-5")}, apperrors.ErrValidation},
		{"unknown parent", dto.CreateAccountRequest{Code: "1300", Name: "X", AccountType: domain.Asset, ParentCode: strPtr("8888")}, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.accounts.CreateAccount(ctx, temple, tc.req, "trustee")
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}

	_, err := l.accounts.CreateAccount(ctx, temple, dto.CreateAccountRequest{Code: "1000", Name: "Again", AccountType: domain.Asset}, "trustee")
	var dup *apperrors.DuplicateCodeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "1000", dup.Code)
}

func TestAccountService_Update(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.accounts.UpdateAccount(ctx, temple, "1100", dto.UpdateAccountRequest{ParentCode: strPtr("1000")}, "trustee")
	require.NoError(t, err)

	// 1000 under 1100 would close a loop
	_, err = l.accounts.UpdateAccount(ctx, temple, "1000", dto.UpdateAccountRequest{ParentCode: strPtr("1100")}, "trustee")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = l.accounts.UpdateAccount(ctx, temple, "1000", dto.UpdateAccountRequest{ParentCode: strPtr("1000")}, "trustee")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	income := domain.Income
	_, err = l.accounts.UpdateAccount(ctx, temple, "5100", dto.UpdateAccountRequest{AccountType: &income}, "trustee")
	require.NoError(t, err, "unused accounts may change type")

	l.post(t, "2024-04-20", "300.00", "5000", "1000")
	liability := domain.Liability
	_, err = l.accounts.UpdateAccount(ctx, temple, "5000", dto.UpdateAccountRequest{AccountType: &liability}, "trustee")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	renamed, err := l.accounts.UpdateAccount(ctx, temple, "5000", dto.UpdateAccountRequest{Name: strPtr("Pooja Samagri")}, "accountant")
	require.NoError(t, err)
	assert.Equal(t, "Pooja Samagri", renamed.Name)
	assert.Equal(t, "accountant", renamed.LastUpdatedBy)

	_, err = l.accounts.UpdateAccount(ctx, temple, "7777", dto.UpdateAccountRequest{Name: strPtr("x")}, "trustee")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountService_DeactivateKeepsHistory(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	l.post(t, "2024-04-20", "300.00", "5100", "1000")
	require.NoError(t, l.accounts.DeactivateAccount(ctx, temple, "5100", "trustee"))

	active, err := l.accounts.ListAccounts(ctx, temple, false)
	require.NoError(t, err)
	for _, a := range active {
		assert.NotEqual(t, "5100", a.Code)
	}

	// balances still include the historical posting
	assert.True(t, l.balance(t, "5100", "2024-04-30").Equal(d("300")))

	b := l.journal.BeginEntry(temple, fixedNow, "repairs", domain.Reference{}, "clerk")
	err = l.journal.AddLine(ctx, b, "5100", d("10"), decimal.Zero, "")
	var lineErr *apperrors.InvalidLineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, "account is inactive", lineErr.Reason)
}

func TestAccountService_CacheReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := new(MockAccountCache)
	svc := services.NewAccountService(memory.NewStore(), services.WithAccountCache(cache))

	cache.On("Set", mock.MatchedBy(func(a domain.Account) bool { return a.Code == "1000" })).Return()
	_, err := svc.CreateAccount(ctx, temple, dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: domain.Asset}, "trustee")
	require.NoError(t, err)

	cached := domain.Account{AccountID: 1, TempleID: temple, Code: "1000", Name: "Cash (cached)", AccountType: domain.Asset, IsActive: true}
	cache.On("Get", temple, "1000").Return(cached, true).Once()
	got, err := svc.GetAccountByCode(ctx, temple, "1000")
	require.NoError(t, err)
	assert.Equal(t, "Cash (cached)", got.Name)

	cache.On("Get", temple, "1000").Return(domain.Account{}, false).Once()
	got, err = svc.GetAccountByCode(ctx, temple, "1000")
	require.NoError(t, err)
	assert.Equal(t, "Cash", got.Name)

	cache.On("Invalidate", temple, "1000").Return().Once()
	_, err = svc.UpdateAccount(ctx, temple, "1000", dto.UpdateAccountRequest{Name: strPtr("Cash in Hand")}, "trustee")
	require.NoError(t, err)

	cache.AssertExpectations(t)
	cache.AssertNumberOfCalls(t, "Set", 2)
}

func TestAccountService_TypeChangeHoldsChainLock(t *testing.T) {
	ctx := context.Background()
	store := &trackingStore{Store: memory.NewStore()}
	accounts := services.NewAccountService(store)
	_, err := accounts.CreateAccount(ctx, temple, chart[6], "setup")
	require.NoError(t, err)

	_, err = accounts.UpdateAccount(ctx, temple, "5000", dto.UpdateAccountRequest{Name: strPtr("Pooja Samagri")}, "trustee")
	require.NoError(t, err)
	assert.Empty(t, store.recorded(), "renames do not serialise with postings")

	liability := domain.Liability
	_, err = accounts.UpdateAccount(ctx, temple, "5000", dto.UpdateAccountRequest{AccountType: &liability}, "trustee")
	require.NoError(t, err)
	assert.Equal(t, []string{"lock-chain", "has-postings"}, store.recorded())
}
