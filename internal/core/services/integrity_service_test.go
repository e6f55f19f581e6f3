package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/SscSPs/temple_ledger/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type IntegrityServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	l       *ledger
	entries []*domain.JournalEntry
}

func (suite *IntegrityServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.l = newLedger(suite.T())
	suite.entries = nil
	for i := 1; i <= 45; i++ {
		date := fmt.Sprintf("2024-04-%02d", 1+i%28)
		suite.entries = append(suite.entries, suite.l.post(suite.T(), date, "5000.00", "1000", "4000"))
	}
}

func TestIntegrityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrityServiceTestSuite))
}

func (suite *IntegrityServiceTestSuite) TestVerifyChain_ValidAndCached() {
	_, err := suite.l.integrity.LastReport(suite.ctx, temple)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	report, err := suite.l.integrity.VerifyChain(suite.ctx, temple)
	suite.Require().NoError(err)
	suite.True(report.Valid)
	suite.Equal(45, report.Checked)
	suite.Zero(report.Backfilled)
	suite.Equal(fixedNow, report.VerifiedAt)

	cached, err := suite.l.integrity.LastReport(suite.ctx, temple)
	suite.Require().NoError(err)
	suite.Equal(report.Checked, cached.Checked)
	suite.True(cached.Valid)
}

func (suite *IntegrityServiceTestSuite) TestVerifyChain_DetectsEditedAmount() {
	target := suite.entries[41]
	suite.Require().Equal("JE-2024-00042", target.EntryNumber)
	suite.Require().NoError(suite.l.store.TamperEntry(temple, target.EntryID, func(e *domain.JournalEntry) {
		e.TotalAmount = d("5500.00")
	}))

	report, err := suite.l.integrity.VerifyChain(suite.ctx, temple)
	var tamper *apperrors.TamperDetectedError
	suite.Require().ErrorAs(err, &tamper)
	suite.ErrorIs(err, apperrors.ErrTamperDetected)

	suite.Require().NotNil(report)
	suite.False(report.Valid)
	suite.Require().Len(report.Mismatches, 1)
	suite.Equal("JE-2024-00042", report.Mismatches[0].EntryNumber)
	suite.Equal(target.IntegrityHash, report.Mismatches[0].StoredHash)
	suite.Len(report.Cascading, 3)

	suite.Require().Len(tamper.Mismatches, 1)
	suite.Equal("JE-2024-00042", tamper.Mismatches[0].EntryNumber)
	suite.Equal(3, tamper.Cascading)

	cached, err := suite.l.integrity.LastReport(suite.ctx, temple)
	suite.Require().NoError(err)
	suite.False(cached.Valid)
}

func (suite *IntegrityServiceTestSuite) TestVerifyChain_DetectsDeletedEntry() {
	suite.Require().NoError(suite.l.store.RemoveEntry(temple, suite.entries[9].EntryID))

	report, err := suite.l.integrity.VerifyChain(suite.ctx, temple)
	suite.ErrorIs(err, apperrors.ErrTamperDetected)
	suite.Require().NotNil(report)

	first, ok := report.FirstMismatch()
	suite.Require().True(ok)
	suite.Equal("JE-2024-00011", first.EntryNumber)
	suite.Len(report.Mismatches, 1)
	suite.Len(report.Cascading, 34)
	suite.Equal(44, report.Checked)
}

func (suite *IntegrityServiceTestSuite) TestPost_RefusesToExtendBrokenChain() {
	last := suite.entries[44]
	suite.Require().NoError(suite.l.store.TamperEntry(temple, last.EntryID, func(e *domain.JournalEntry) {
		e.IntegrityHash = ""
	}))
	// an unhashed tail behind hashed entries is not legacy data
	_, err := suite.l.journal.PostTransaction(suite.ctx, temple, transfer("2024-04-20", "10.00", "1000", "4000"), "clerk")
	suite.ErrorIs(err, apperrors.ErrTamperDetected)
}

func (suite *IntegrityServiceTestSuite) TestCrossCheckAuditLog_Clean() {
	report, err := suite.l.integrity.CrossCheckAuditLog(suite.ctx, temple)
	suite.Require().NoError(err)
	suite.Equal(45, report.RecordsRead)
	suite.Equal(45, report.EntriesChecked)
	suite.Empty(report.Discrepancies)
}

func (suite *IntegrityServiceTestSuite) TestCrossCheckAuditLog_FindsDisagreements() {
	suite.Require().NoError(suite.l.store.TamperEntry(temple, suite.entries[1].EntryID, func(e *domain.JournalEntry) {
		e.TotalAmount = d("50.00")
	}))
	suite.l.sink.mu.Lock()
	suite.l.sink.records = append(suite.l.sink.records[:4], suite.l.sink.records[5:]...)
	suite.l.sink.mu.Unlock()

	report, err := suite.l.integrity.CrossCheckAuditLog(suite.ctx, temple)
	suite.Require().NoError(err)
	suite.Require().Len(report.Discrepancies, 2)

	problems := map[string]domain.AuditDiscrepancy{}
	for _, disc := range report.Discrepancies {
		problems[disc.Problem] = disc
	}
	suite.Equal("5000.00", problems["amount differs"].LogValue)
	suite.Equal("50.00", problems["amount differs"].StoredValue)
	suite.Equal("JE-2024-00005", problems["posting missing from audit log"].EntryNumber)
}

func TestIntegrityService_BackfillsLegacyEntries(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	var entries []*domain.JournalEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, l.post(t, "2024-05-02", "100.00", "1100", "4100"))
	}
	for _, e := range entries[:3] {
		require.NoError(t, l.store.TamperEntry(temple, e.EntryID, func(e *domain.JournalEntry) { e.IntegrityHash = "" }))
	}

	report, err := l.integrity.VerifyChain(ctx, temple)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, 3, report.Backfilled)

	stored, err := l.journal.GetEntry(ctx, temple, entries[0].EntryID)
	require.NoError(t, err)
	assert.Equal(t, entries[0].IntegrityHash, stored.IntegrityHash)

	again, err := l.integrity.VerifyChain(ctx, temple)
	require.NoError(t, err)
	assert.Zero(t, again.Backfilled)
}

func TestIntegrityService_PostBackfillsLegacyTail(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	var entries []*domain.JournalEntry
	for i := 0; i < 3; i++ {
		entries = append(entries, l.post(t, "2024-05-02", "100.00", "1100", "4100"))
	}
	for _, e := range entries {
		require.NoError(t, l.store.TamperEntry(temple, e.EntryID, func(e *domain.JournalEntry) { e.IntegrityHash = "" }))
	}

	next := l.post(t, "2024-05-03", "100.00", "1100", "4100")
	assert.Equal(t, int64(4), next.ChainSeq)

	report, err := l.integrity.VerifyChain(ctx, temple)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Zero(t, report.Backfilled)
	assert.Equal(t, 4, report.Checked)
}

func TestIntegrityService_CrossCheckNeedsReader(t *testing.T) {
	l := newLedger(t)
	svc := services.NewIntegrityService(l.store)
	_, err := svc.CrossCheckAuditLog(context.Background(), temple)
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	_, err = svc.LastReport(context.Background(), temple)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIntegrityService_ChainFollowsPostingOrder(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	b := l.journal.BeginEntry(temple, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), "Annadanam provisions", domain.Reference{Kind: "PURCHASE", ID: "PO-31"}, "clerk")
	b.Lines = []domain.BuilderLine{{AccountCode: "5100", Debit: d("640")}, {AccountCode: "2000", Credit: d("640")}}
	draft, err := l.journal.SaveDraft(ctx, *b)
	require.NoError(t, err)

	first := l.post(t, "2024-04-08", "300.00", "1000", "4000")
	second := l.post(t, "2024-04-09", "450.00", "1000", "4000")
	posted, err := l.journal.PostDraft(ctx, temple, draft.EntryID, "treasurer", false)
	require.NoError(t, err)

	require.Less(t, posted.EntryID, first.EntryID)
	assert.Equal(t, int64(1), first.ChainSeq)
	assert.Equal(t, int64(2), second.ChainSeq)
	assert.Equal(t, int64(3), posted.ChainSeq)
	assert.Equal(t, "JE-2024-00003", posted.EntryNumber)

	chain, err := l.store.Journals().ListChain(ctx, temple)
	require.NoError(t, err)
	var ids []int64
	for _, e := range chain {
		ids = append(ids, e.EntryID)
	}
	assert.Equal(t, []int64{first.EntryID, second.EntryID, posted.EntryID}, ids)

	report, err := l.integrity.VerifyChain(ctx, temple)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, 3, report.Checked)

	// the break at the head invalidates the late-posted draft last, not first
	require.NoError(t, l.store.TamperEntry(temple, first.EntryID, func(e *domain.JournalEntry) {
		e.TotalAmount = d("3000.00")
	}))
	report, err = l.integrity.VerifyChain(ctx, temple)
	require.ErrorIs(t, err, apperrors.ErrTamperDetected)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, first.EntryID, report.Mismatches[0].EntryID)
	require.Len(t, report.Cascading, 2)
	assert.Equal(t, second.EntryID, report.Cascading[0].EntryID)
	assert.Equal(t, posted.EntryID, report.Cascading[1].EntryID)
	assert.Equal(t, int64(3), report.Cascading[1].ChainSeq)
}
