package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		acc := &domain.Account{TempleID: "t1", Code: "1000", Name: "Cash", AccountType: domain.Asset, IsActive: true}
		require.NoError(t, repos.Accounts().SaveAccount(ctx, acc))
		_, err := repos.Journals().NextEntrySequence(ctx, "t1", 1)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Accounts().FindAccountByCode(ctx, "t1", "1000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var seq int64
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		seq, err = repos.Journals().NextEntrySequence(ctx, "t1", 1)
		return err
	}))
	assert.Equal(t, int64(1), seq, "sequence allocation rolled back with the unit")
}

func TestAccountCodesAreUniquePerTemple(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Accounts()

	require.NoError(t, repo.SaveAccount(ctx, &domain.Account{TempleID: "t1", Code: "1000", AccountType: domain.Asset}))
	require.NoError(t, repo.SaveAccount(ctx, &domain.Account{TempleID: "t2", Code: "1000", AccountType: domain.Asset}))

	err := repo.SaveAccount(ctx, &domain.Account{TempleID: "t1", Code: "1000", AccountType: domain.Asset})
	var dup *apperrors.DuplicateCodeError
	assert.ErrorAs(t, err, &dup)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestSnapshotRejectsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	err := s.WithSnapshot(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		return repos.Accounts().SaveAccount(ctx, &domain.Account{TempleID: "t1", Code: "1"})
	})
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestSaveEntryEnforcesUniqueChainPosition(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Journals()
	date := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	first := &domain.JournalEntry{TempleID: "t1", EntryNumber: "JE-2024-00001", EntryDate: date, Status: domain.Posted, ChainSeq: 1,
		Lines: []domain.JournalLine{{AccountID: 1, Debit: decimal.NewFromInt(10), Credit: decimal.Zero}}}
	require.NoError(t, repo.SaveEntry(ctx, first))
	assert.NotZero(t, first.EntryID)
	assert.Equal(t, first.EntryID, first.Lines[0].EntryID)

	clash := &domain.JournalEntry{TempleID: "t1", EntryNumber: "JE-2024-00002", EntryDate: date, Status: domain.Posted, ChainSeq: 1}
	assert.ErrorIs(t, repo.SaveEntry(ctx, clash), apperrors.ErrDuplicate)

	seq, hash, err := repo.LastChainLink(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	assert.Empty(t, hash)
}

func TestUpsertOutstandingItemKeepsClearedItems(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Reconciliations()
	lineID := int64(7)

	item := &domain.OutstandingItem{TempleID: "t1", AccountID: 1, ReconciliationID: 1, JournalLineID: &lineID, ItemType: domain.ChequeNotCleared}
	require.NoError(t, repo.UpsertOutstandingItem(ctx, item))
	require.NoError(t, repo.ClearOutstandingBySource(ctx, "t1", &lineID, nil, 2, time.Now()))

	again := &domain.OutstandingItem{TempleID: "t1", AccountID: 1, ReconciliationID: 3, JournalLineID: &lineID, ItemType: domain.ChequeNotCleared}
	require.NoError(t, repo.UpsertOutstandingItem(ctx, again))
	assert.Equal(t, item.ItemID, again.ItemID)
	assert.True(t, again.Cleared)
	assert.Equal(t, int64(1), again.ReconciliationID, "cleared item left untouched")

	all, err := repo.ListOutstandingItems(ctx, "t1", 1, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
