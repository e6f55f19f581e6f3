package services_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/temple_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/core/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	l   *ledger
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.l = newLedger(suite.T())
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (suite *JournalServiceTestSuite) TestPost_AssignsNumberChainAndAudit() {
	first := suite.l.post(suite.T(), "2024-04-10", "5000.00", "1100", "4000")
	second := suite.l.post(suite.T(), "2024-04-11", "250.50", "5000", "1000")

	suite.Equal("JE-2024-00001", first.EntryNumber)
	suite.Equal("JE-2024-00002", second.EntryNumber)
	suite.Equal(domain.Posted, first.Status)
	suite.Equal(int64(1), first.ChainSeq)
	suite.Equal(int64(2), second.ChainSeq)
	suite.Len(first.IntegrityHash, 64)
	suite.NotEqual(first.IntegrityHash, second.IntegrityHash)
	suite.True(first.TotalAmount.Equal(d("5000")))

	records := suite.l.sink.snapshot()
	suite.Require().Len(records, 2)
	suite.Equal(domain.AuditPost, records[0].Action)
	suite.Equal(first.IntegrityHash, records[0].Hash)
	suite.Equal("priest-01", records[0].Actor)
	suite.Equal(temple, records[0].TempleID)
}

func (suite *JournalServiceTestSuite) TestBuilder_AddLineAndPost() {
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	b := suite.l.journal.BeginEntry(temple, date, "Annadanam sponsorship", domain.Reference{Kind: "SEVA", ID: "B-17"}, "clerk")

	suite.Require().NoError(suite.l.journal.AddLine(suite.ctx, b, "1000", d("1100"), decimal.Zero, ""))
	suite.Require().NoError(suite.l.journal.AddLine(suite.ctx, b, "4100", decimal.Zero, d("1100"), "Annadanam"))

	err := suite.l.journal.AddLine(suite.ctx, b, "9999", d("1"), decimal.Zero, "")
	var lineErr *apperrors.InvalidLineError
	suite.Require().ErrorAs(err, &lineErr)
	suite.Equal("unknown account", lineErr.Reason)

	err = suite.l.journal.AddLine(suite.ctx, b, "1000", d("1"), d("1"), "")
	suite.ErrorIs(err, apperrors.ErrValidation)

	err = suite.l.journal.AddLine(suite.ctx, b, "1000", d("0.001"), decimal.Zero, "")
	suite.ErrorIs(err, apperrors.ErrValidation)

	entry, err := suite.l.journal.Post(suite.ctx, *b)
	suite.Require().NoError(err)
	suite.Len(entry.Lines, 2)
	suite.Equal("SEVA", entry.Reference.Kind)
	suite.Equal(1, entry.Lines[0].LineNo)
}

func (suite *JournalServiceTestSuite) TestPost_Rejections() {
	unbalanced := transfer("2024-04-10", "100.00", "1000", "4000")
	unbalanced.Lines[1].Credit = d("99.50")
	_, err := suite.l.journal.PostTransaction(suite.ctx, temple, unbalanced, "clerk")
	var ub *apperrors.UnbalancedEntryError
	suite.Require().ErrorAs(err, &ub)
	suite.True(ub.Imbalance().Equal(d("0.50")))

	single := transfer("2024-04-10", "100.00", "1000", "4000")
	single.Lines = single.Lines[:1]
	_, err = suite.l.journal.PostTransaction(suite.ctx, temple, single, "clerk")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.l.journal.PostTransaction(suite.ctx, temple, transfer("2030-01-01", "100.00", "1000", "4000"), "clerk")
	var locked *apperrors.PeriodLockedError
	suite.Require().ErrorAs(err, &locked)
	suite.Equal("no financial period", locked.Reason)

	suite.Require().NoError(suite.l.accounts.DeactivateAccount(suite.ctx, temple, "5100", "admin"))
	_, err = suite.l.journal.PostTransaction(suite.ctx, temple, transfer("2024-04-10", "100.00", "5100", "1000"), "clerk")
	suite.ErrorIs(err, apperrors.ErrValidation)

	// nothing of the above reached the ledger
	suite.Empty(suite.l.sink.snapshot())
	seq, _, err := suite.l.store.Journals().LastChainLink(suite.ctx, temple)
	suite.NoError(err)
	suite.Zero(seq)
}

func (suite *JournalServiceTestSuite) TestCancel() {
	e := suite.l.post(suite.T(), "2024-04-10", "750.00", "1000", "4000")

	_, err := suite.l.journal.Cancel(suite.ctx, temple, e.EntryID, "admin", "  ")
	suite.ErrorIs(err, apperrors.ErrValidation)

	cancelled, err := suite.l.journal.Cancel(suite.ctx, temple, e.EntryID, "admin", "duplicate receipt")
	suite.Require().NoError(err)
	suite.Equal(domain.Cancelled, cancelled.Status)
	suite.Equal(e.IntegrityHash, cancelled.IntegrityHash)
	suite.True(suite.l.balance(suite.T(), "1000", "2024-04-30").IsZero())

	_, err = suite.l.journal.Cancel(suite.ctx, temple, e.EntryID, "admin", "again")
	var already *apperrors.AlreadyCancelledError
	suite.Require().ErrorAs(err, &already)
	suite.Equal("CANCELLED", already.Status)

	records := suite.l.sink.snapshot()
	suite.Require().Len(records, 2)
	suite.Equal(domain.AuditCancel, records[1].Action)
	suite.Equal("duplicate receipt", records[1].Narration)

	report, err := suite.l.integrity.VerifyChain(suite.ctx, temple)
	suite.NoError(err)
	suite.True(report.Valid)
}

func (suite *JournalServiceTestSuite) TestReverse() {
	orig := suite.l.post(suite.T(), "2024-04-10", "1200.00", "5000", "1100")

	reversal, err := suite.l.journal.Reverse(suite.ctx, temple, orig.EntryID, nil, "admin", "wrong vendor")
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, reversal.Status)
	suite.Equal(domain.ReferenceKindReversal, reversal.Reference.Kind)
	suite.Equal(fmt.Sprint(orig.EntryID), reversal.Reference.ID)
	suite.Require().NotNil(reversal.ReversalOfID)
	suite.Equal(orig.EntryID, *reversal.ReversalOfID)
	suite.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), reversal.EntryDate)
	suite.Contains(reversal.Narration, orig.EntryNumber)
	suite.True(reversal.Lines[0].Credit.Equal(d("1200")))

	stored, err := suite.l.journal.GetEntry(suite.ctx, temple, orig.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.Reversed, stored.Status)
	suite.Require().NotNil(stored.ReversedByID)
	suite.Equal(reversal.EntryID, *stored.ReversedByID)

	// the pair nets to zero
	suite.True(suite.l.balance(suite.T(), "5000", "2024-06-30").IsZero())
	suite.True(suite.l.balance(suite.T(), "1100", "2024-06-30").IsZero())
	// before the reversal date only the original counts
	suite.True(suite.l.balance(suite.T(), "5000", "2024-05-31").Equal(d("1200")))

	_, err = suite.l.journal.Reverse(suite.ctx, temple, orig.EntryID, nil, "admin", "again")
	suite.ErrorIs(err, apperrors.ErrConflict)

	actions := []domain.AuditAction{}
	for _, r := range suite.l.sink.snapshot() {
		actions = append(actions, r.Action)
	}
	suite.Equal([]domain.AuditAction{domain.AuditPost, domain.AuditPost, domain.AuditReverse}, actions)
}

func (suite *JournalServiceTestSuite) TestDraftLifecycle() {
	date := time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC)
	b := suite.l.journal.BeginEntry(temple, date, "Festival decorations", domain.Reference{Kind: "PURCHASE", ID: "PO-9"}, "clerk")
	b.Lines = []domain.BuilderLine{{AccountCode: "5100", Debit: d("900")}}

	draft, err := suite.l.journal.SaveDraft(suite.ctx, *b)
	suite.Require().NoError(err)
	suite.Equal(domain.Draft, draft.Status)
	suite.Empty(draft.EntryNumber)
	suite.Empty(draft.IntegrityHash)

	_, err = suite.l.journal.PostDraft(suite.ctx, temple, draft.EntryID, "clerk", false)
	suite.ErrorIs(err, apperrors.ErrValidation)

	b.DraftID = draft.EntryID
	b.Lines = append(b.Lines, domain.BuilderLine{AccountCode: "2000", Credit: d("900")})
	_, err = suite.l.journal.SaveDraft(suite.ctx, *b)
	suite.Require().NoError(err)

	posted, err := suite.l.journal.PostDraft(suite.ctx, temple, draft.EntryID, "treasurer", false)
	suite.Require().NoError(err)
	suite.Equal(draft.EntryID, posted.EntryID)
	suite.Equal("JE-2024-00001", posted.EntryNumber)
	suite.Equal("clerk", posted.CreatedBy)
	suite.Equal("treasurer", posted.PostedBy)

	err = suite.l.journal.DiscardDraft(suite.ctx, temple, posted.EntryID, "clerk")
	suite.ErrorIs(err, apperrors.ErrConflict)

	other, err := suite.l.journal.SaveDraft(suite.ctx, *suite.l.journal.BeginEntry(temple, date, "scratch", domain.Reference{}, "clerk"))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.l.journal.DiscardDraft(suite.ctx, temple, other.EntryID, "clerk"))
	_, err = suite.l.journal.GetEntry(suite.ctx, temple, other.EntryID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestListEntries_Pagination() {
	suite.l.post(suite.T(), "2024-04-01", "10.00", "1000", "4000")
	suite.l.post(suite.T(), "2024-04-02", "20.00", "1000", "4000")
	suite.l.post(suite.T(), "2024-04-03", "30.00", "1000", "4000")

	page, err := suite.l.journal.ListEntries(suite.ctx, temple, dto.ListEntriesParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(page.Entries, 2)
	suite.Equal("JE-2024-00003", page.Entries[0].EntryNumber)
	suite.Require().NotNil(page.NextToken)

	rest, err := suite.l.journal.ListEntries(suite.ctx, temple, dto.ListEntriesParams{Limit: 2, NextToken: page.NextToken})
	suite.Require().NoError(err)
	suite.Require().Len(rest.Entries, 1)
	suite.Equal("JE-2024-00001", rest.Entries[0].EntryNumber)
	suite.Nil(rest.NextToken)

	_, err = suite.l.journal.ListEntries(suite.ctx, temple, dto.ListEntriesParams{From: "yesterday"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestBalances_IncludeOpening() {
	_, err := suite.l.accounts.CreateAccount(suite.ctx, temple, dto.CreateAccountRequest{
		Code: "1200", Name: "Fixed Deposit", AccountType: domain.Asset, OpeningDebit: d("50000"),
	}, "setup")
	suite.Require().NoError(err)
	suite.l.post(suite.T(), "2024-04-15", "2500.00", "1200", "4000")

	b, err := suite.l.journal.GetAccountBalance(suite.ctx, temple, "1200", nil)
	suite.Require().NoError(err)
	suite.True(b.TotalDebit.Equal(d("52500")))
	suite.True(b.Balance.Equal(d("52500")))

	income := suite.l.balance(suite.T(), "4000", "2024-04-30")
	suite.True(income.Equal(d("2500")), "income is credit-normal, got %s", income)
}

func (suite *JournalServiceTestSuite) TestReverse_FailedAuditAppendWritesNothing() {
	orig := suite.l.post(suite.T(), "2024-04-10", "100.00", "5000", "1000")

	suite.l.sink.failAppendsWith(domain.AuditReverse)
	_, err := suite.l.journal.Reverse(suite.ctx, temple, orig.EntryID, nil, "admin", "wrong vendor")
	suite.Require().Error(err)
	suite.ErrorContains(err, "failed to append audit log")
	suite.l.sink.failAppendsWith("")

	// neither the reversal's POST nor the REVERSE record reached the log
	suite.Len(suite.l.sink.snapshot(), 1)
	still, err := suite.l.journal.GetEntry(suite.ctx, temple, orig.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, still.Status)

	next := suite.l.post(suite.T(), "2024-04-12", "777.00", "5000", "1000")
	suite.Equal("JE-2024-00002", next.EntryNumber)

	check, err := suite.l.integrity.CrossCheckAuditLog(suite.ctx, temple)
	suite.Require().NoError(err)
	suite.Empty(check.Discrepancies)
	suite.Equal(2, check.RecordsRead)
}

// Any sequence of posts, balanced or not, leaves total debits equal to total credits.
func TestJournalService_TrialBalanceAlwaysBalances(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(20240401, 7))
	codes := []string{"1000", "1100", "2000", "3000", "4000", "4100", "5000", "5100"}

	posted, rejected := 0, 0
	for i := 0; i < 80; i++ {
		date := time.Date(2024, time.Month(4+rng.IntN(3)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
		n := 2 + rng.IntN(4)
		lines := make([]dto.LineRequest, 0, n)
		total := decimal.Zero
		for j := 0; j < n-1; j++ {
			amount := decimal.New(int64(1+rng.IntN(10_000_000)), -2)
			total = total.Add(amount)
			lines = append(lines, dto.LineRequest{AccountCode: codes[rng.IntN(len(codes))], Debit: amount})
		}
		unbalanced := rng.IntN(5) == 0
		if unbalanced {
			total = total.Add(decimal.New(1, -2))
		}
		lines = append(lines, dto.LineRequest{AccountCode: codes[rng.IntN(len(codes))], Credit: total})

		_, err := l.journal.PostTransaction(ctx, temple, dto.PostTransactionRequest{
			EntryDate: date.Format(domain.DateLayout),
			Narration: fmt.Sprintf("random %d", i),
			Reference: dto.ReferenceRequest{Kind: "TEST"},
			Lines:     lines,
		}, "fuzzer")
		if unbalanced {
			var ub *apperrors.UnbalancedEntryError
			require.ErrorAs(t, err, &ub)
			rejected++
			continue
		}
		require.NoError(t, err)
		posted++
	}
	require.Positive(t, posted)
	require.Positive(t, rejected)

	asOf := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	balances, err := l.journal.GetTrialBalance(ctx, temple, &asOf)
	require.NoError(t, err)
	debit, credit := decimal.Zero, decimal.Zero
	for _, b := range balances {
		debit = debit.Add(b.TotalDebit)
		credit = credit.Add(b.TotalCredit)
	}
	assert.True(t, debit.Equal(credit), "debits %s credits %s", debit, credit)

	tb := dto.ToTrialBalanceResponse(asOf, balances)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))

	report, err := l.integrity.VerifyChain(ctx, temple)
	require.NoError(t, err)
	assert.Equal(t, posted, report.Checked)
}

func TestJournalService_AuditFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return fixedNow }
	store := memory.NewStore()
	sink := new(MockAuditSink)
	accounts := services.NewAccountService(store)
	journal := services.NewJournalService(store, accounts, sink, services.WithJournalClock(clock))
	periods := services.NewPeriodService(store, journal)

	for _, req := range chart[:5] {
		_, err := accounts.CreateAccount(ctx, temple, req, "setup")
		require.NoError(t, err)
	}
	_, _, err := periods.CreateFinancialYear(ctx, temple, dto.CreateFinancialYearRequest{StartDate: "2024-04-01", PeriodType: domain.Quarterly}, "setup")
	require.NoError(t, err)

	isPost := mock.MatchedBy(func(rs []domain.AuditRecord) bool { return len(rs) == 1 && rs[0].Action == domain.AuditPost })
	sink.On("Append", mock.Anything, isPost).Return(errors.New("disk full")).Once()
	sink.On("Append", mock.Anything, isPost).Return(nil).Once()

	_, err = journal.PostTransaction(ctx, temple, transfer("2024-04-10", "100.00", "1000", "4000"), "clerk")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to append audit log")

	page, err := journal.ListEntries(ctx, temple, dto.ListEntriesParams{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Entries)

	// the entry number and chain position were rolled back with the entry
	entry, err := journal.PostTransaction(ctx, temple, transfer("2024-04-10", "100.00", "1000", "4000"), "clerk")
	require.NoError(t, err)
	assert.Equal(t, "JE-2024-00001", entry.EntryNumber)
	assert.Equal(t, int64(1), entry.ChainSeq)
	sink.AssertExpectations(t)
}

func TestJournalService_ConcurrentPostsKeepChainContiguous(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	const workers = 24
	posted := make([]*domain.JournalEntry, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			amount := fmt.Sprintf("%d.00", 100+i)
			posted[i], errs[i] = l.journal.PostTransaction(ctx, temple, transfer("2024-05-10", amount, "1000", "4000"), fmt.Sprintf("counter-%02d", i))
		}(i)
	}
	wg.Wait()

	numbers := map[string]bool{}
	seqs := map[int64]bool{}
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		numbers[posted[i].EntryNumber] = true
		seqs[posted[i].ChainSeq] = true
	}
	assert.Len(t, numbers, workers)
	for seq := int64(1); seq <= workers; seq++ {
		assert.True(t, seqs[seq], "chain_seq %d missing", seq)
	}
	for n := 1; n <= workers; n++ {
		assert.True(t, numbers[fmt.Sprintf("JE-2024-%05d", n)], "entry number %d missing", n)
	}

	report, err := l.integrity.VerifyChain(ctx, temple)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, workers, report.Checked)

	audit, err := l.integrity.CrossCheckAuditLog(ctx, temple)
	require.NoError(t, err)
	assert.Empty(t, audit.Discrepancies)
	assert.Equal(t, workers, audit.RecordsRead)
}
