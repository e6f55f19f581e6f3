package apperrors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"duplicate code", &DuplicateCodeError{Code: "1000"}, ErrDuplicate},
		{"invalid line", &InvalidLineError{AccountCode: "1000", Reason: "both sides set"}, ErrValidation},
		{"unbalanced", &UnbalancedEntryError{TotalDebit: decimal.NewFromInt(10), TotalCredit: decimal.NewFromInt(9)}, ErrValidation},
		{"period locked", &PeriodLockedError{Date: time.Now()}, ErrPeriodLocked},
		{"already cancelled", &AlreadyCancelledError{EntryNumber: "JE-2024-00001", Status: "CANCELLED"}, ErrConflict},
		{"open drafts", &OpenDraftsExistError{PeriodName: "Apr 2024", DraftCount: 2}, ErrConflict},
		{"tamper", &TamperDetectedError{TempleID: "t1"}, ErrTamperDetected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tc.err)
			assert.True(t, errors.Is(wrapped, tc.sentinel))
		})
	}
}

func TestUnbalancedEntryErrorReportsImbalance(t *testing.T) {
	err := &UnbalancedEntryError{TotalDebit: decimal.RequireFromString("1500.00"), TotalCredit: decimal.RequireFromString("1499.50")}
	assert.True(t, err.Imbalance().Equal(decimal.RequireFromString("0.50")))
	assert.Contains(t, err.Error(), "imbalance 0.50")
}

func TestAppErrorUnwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := NewAppError(500, "failed to begin transaction", base)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed to begin transaction: connection refused", err.Error())

	bare := NewAppError(500, "boom", nil)
	assert.ErrorIs(t, bare, ErrInternal)
}

func TestTamperDetectedErrorListsEveryEntry(t *testing.T) {
	err := &TamperDetectedError{
		TempleID: "t1",
		Mismatches: []ChainMismatchView{
			{EntryID: 42, EntryNumber: "JE-2024-00042", ExpectedHash: "abc", StoredHash: "def"},
		},
		Cascading: 3,
	}
	msg := err.Error()
	assert.Contains(t, msg, "#JE-2024-00042")
	assert.Contains(t, msg, "3 downstream")
}
