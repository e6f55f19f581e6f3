package apperrors

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DuplicateCodeError is returned when an account code already exists for the temple.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("account code %q already exists", e.Code)
}

func (e *DuplicateCodeError) Unwrap() error { return ErrDuplicate }

// InvalidLineError is returned for a malformed journal line.
type InvalidLineError struct {
	AccountCode string
	Reason      string
}

func (e *InvalidLineError) Error() string {
	if e.AccountCode == "" {
		return "invalid journal line: " + e.Reason
	}
	return fmt.Sprintf("invalid journal line for account %s: %s", e.AccountCode, e.Reason)
}

func (e *InvalidLineError) Unwrap() error { return ErrValidation }

// UnbalancedEntryError carries the totals of an entry whose debits and credits differ.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Imbalance is debit minus credit.
func (e *UnbalancedEntryError) Imbalance() decimal.Decimal {
	return e.TotalDebit.Sub(e.TotalCredit)
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("entry is unbalanced: debits %s, credits %s, imbalance %s",
		e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2), e.Imbalance().StringFixed(2))
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrValidation }

// PeriodLockedError is returned when a date falls outside any OPEN financial period.
type PeriodLockedError struct {
	Date       time.Time
	PeriodName string
	Status     string
	Reason     string
}

func (e *PeriodLockedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "date %s is not in an open period", e.Date.Format("2006-01-02"))
	if e.PeriodName != "" {
		fmt.Fprintf(&b, " (period %s is %s)", e.PeriodName, e.Status)
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	return b.String()
}

func (e *PeriodLockedError) Unwrap() error { return ErrPeriodLocked }

// AlreadyCancelledError is returned when cancel or reverse targets an entry that is not POSTED.
type AlreadyCancelledError struct {
	EntryNumber string
	Status      string
}

func (e *AlreadyCancelledError) Error() string {
	return fmt.Sprintf("entry %s cannot be changed: status is %s", e.EntryNumber, e.Status)
}

func (e *AlreadyCancelledError) Unwrap() error { return ErrConflict }

// OpenDraftsExistError is returned when a period still holds DRAFT entries at closing time.
type OpenDraftsExistError struct {
	PeriodName string
	DraftCount int
}

func (e *OpenDraftsExistError) Error() string {
	return fmt.Sprintf("period %s has %d draft entries; post or discard them before closing", e.PeriodName, e.DraftCount)
}

func (e *OpenDraftsExistError) Unwrap() error { return ErrConflict }

// ChainMismatchView is the display form of one broken link, used by TamperDetectedError.
type ChainMismatchView struct {
	EntryID      int64
	EntryNumber  string
	ExpectedHash string
	StoredHash   string
}

// TamperDetectedError enumerates every entry whose stored hash disagrees with the recomputed chain.
type TamperDetectedError struct {
	TempleID   string
	Mismatches []ChainMismatchView
	Cascading  int
}

func (e *TamperDetectedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tampering detected in ledger of temple %s: %d mismatched entries", e.TempleID, len(e.Mismatches))
	for _, m := range e.Mismatches {
		fmt.Fprintf(&b, "; #%s (id %d) expected %s stored %s", m.EntryNumber, m.EntryID, m.ExpectedHash, m.StoredHash)
	}
	if e.Cascading > 0 {
		fmt.Fprintf(&b, "; %d downstream entries invalidated", e.Cascading)
	}
	return b.String()
}

func (e *TamperDetectedError) Unwrap() error { return ErrTamperDetected }

// ReconciliationDiscrepancyError describes a non-zero reconciliation difference.
// Reconcile never returns it; BankReconciliation.DiscrepancyErr builds it from a stored result.
type ReconciliationDiscrepancyError struct {
	ReconciliationID int64
	Difference       decimal.Decimal
}

func (e *ReconciliationDiscrepancyError) Error() string {
	return fmt.Sprintf("reconciliation %d has an unexplained difference of %s", e.ReconciliationID, e.Difference.StringFixed(2))
}

func (e *ReconciliationDiscrepancyError) Unwrap() error { return ErrConflict }
