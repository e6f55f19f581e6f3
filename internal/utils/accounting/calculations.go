package accounting

import (
	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MinorUnits is the number of decimal places kept for rupee amounts.
const MinorUnits = 2

// HasValidScale reports whether amount carries no more than two decimal places.
func HasValidScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(MinorUnits))
}

// NaturalBalance turns a debit-minus-credit figure into the account type's natural sign.
// DEBIT-normal (ASSET/EXPENSE) keep the sign; CREDIT-normal (LIABILITY/EQUITY/INCOME) flip it.
func NaturalBalance(debitMinusCredit decimal.Decimal, accountType domain.AccountType) decimal.Decimal {
	if accountType.IsDebitNormal() {
		return debitMinusCredit
	}
	return debitMinusCredit.Neg()
}

// ValidateLineAmounts enforces the one-sided line rule: exactly one of debit and credit is nonzero,
// neither is negative, and both have at most two decimal places.
func ValidateLineAmounts(accountCode string, debit, credit decimal.Decimal) error {
	switch {
	case debit.IsNegative() || credit.IsNegative():
		return &apperrors.InvalidLineError{AccountCode: accountCode, Reason: "amounts must not be negative"}
	case !debit.IsZero() && !credit.IsZero():
		return &apperrors.InvalidLineError{AccountCode: accountCode, Reason: "a line cannot be both a debit and a credit"}
	case debit.IsZero() && credit.IsZero():
		return &apperrors.InvalidLineError{AccountCode: accountCode, Reason: "a line needs a nonzero debit or credit"}
	case !HasValidScale(debit) || !HasValidScale(credit):
		return &apperrors.InvalidLineError{AccountCode: accountCode, Reason: "amounts are limited to two decimal places"}
	}
	return nil
}

// ValidateBalance checks sum(debit) == sum(credit) and returns the common total.
func ValidateBalance(totalDebit, totalCredit decimal.Decimal) (decimal.Decimal, error) {
	if !totalDebit.Equal(totalCredit) {
		return decimal.Zero, &apperrors.UnbalancedEntryError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}
	return totalDebit, nil
}

// InvertLines swaps debit and credit on every line; used to build reversals.
func InvertLines(lines []domain.JournalLine) []domain.JournalLine {
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = domain.JournalLine{
			LineNo:        l.LineNo,
			AccountID:     l.AccountID,
			Debit:         l.Credit,
			Credit:        l.Debit,
			Description:   l.Description,
			InstrumentRef: l.InstrumentRef,
		}
	}
	return out
}
