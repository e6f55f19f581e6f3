package accounting

import (
	"testing"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestValidateLineAmounts(t *testing.T) {
	tests := []struct {
		name          string
		debit, credit string
		wantErr       bool
	}{
		{"debit only", "100.00", "0", false},
		{"credit only", "0", "0.01", false},
		{"both sides", "10", "10", true},
		{"neither side", "0", "0", true},
		{"negative", "-5", "0", true},
		{"three decimals", "1.005", "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLineAmounts("1000", dec(tt.debit), dec(tt.credit))
			if tt.wantErr {
				var lineErr *apperrors.InvalidLineError
				require.ErrorAs(t, err, &lineErr)
				assert.Equal(t, "1000", lineErr.AccountCode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBalance(t *testing.T) {
	total, err := ValidateBalance(dec("250.50"), dec("250.50"))
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("250.5")))

	_, err = ValidateBalance(dec("250.50"), dec("250.00"))
	var unbalanced *apperrors.UnbalancedEntryError
	require.ErrorAs(t, err, &unbalanced)
	assert.True(t, unbalanced.Imbalance().Equal(dec("0.50")))
}

func TestNaturalBalance(t *testing.T) {
	assert.True(t, NaturalBalance(dec("100"), domain.Asset).Equal(dec("100")))
	assert.True(t, NaturalBalance(dec("-100"), domain.Income).Equal(dec("100")))
	assert.True(t, NaturalBalance(dec("40"), domain.Liability).Equal(dec("-40")))
}

func TestInvertLines(t *testing.T) {
	lines := []domain.JournalLine{
		{LineNo: 1, AccountID: 1, Debit: dec("500"), Credit: decimal.Zero},
		{LineNo: 2, AccountID: 2, Debit: decimal.Zero, Credit: dec("500")},
	}
	inv := InvertLines(lines)
	assert.True(t, inv[0].Credit.Equal(dec("500")))
	assert.True(t, inv[0].Debit.IsZero())
	assert.True(t, inv[1].Debit.Equal(dec("500")))
	assert.Equal(t, int64(2), inv[1].AccountID)
}
