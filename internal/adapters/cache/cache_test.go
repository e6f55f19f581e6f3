package cache

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountCache(t *testing.T) {
	c := NewAccountCache(time.Minute)
	acc := domain.Account{AccountID: 9, TempleID: "madurai", Code: "1000", Name: "Cash"}

	_, ok := c.Get("madurai", "1000")
	assert.False(t, ok)

	c.Set(acc)
	got, ok := c.Get("madurai", "1000")
	require.True(t, ok)
	assert.Equal(t, int64(9), got.AccountID)

	_, ok = c.Get("tirupati", "1000")
	assert.False(t, ok, "codes are scoped per temple")

	c.Invalidate("madurai", "1000")
	_, ok = c.Get("madurai", "1000")
	assert.False(t, ok)
}

func TestAccountCacheExpires(t *testing.T) {
	c := NewAccountCache(20 * time.Millisecond)
	c.Set(domain.Account{TempleID: "madurai", Code: "1000"})
	assert.Eventually(t, func() bool {
		_, ok := c.Get("madurai", "1000")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryReportCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryReportCache(time.Minute)

	_, err := c.GetReport(ctx, "madurai")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, c.PutReport(ctx, domain.ChainReport{TempleID: "madurai", Valid: true, Checked: 12}))
	got, err := c.GetReport(ctx, "madurai")
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, 12, got.Checked)
}
