package dto

import (
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code          string             `json:"code" binding:"required,max=20,alphanum"`
	Name          string             `json:"name" binding:"required,max=200"`
	AccountType   domain.AccountType `json:"accountType" binding:"required,account_type"`
	Subtype       string             `json:"subtype" binding:"max=50"`
	ParentCode    *string            `json:"parentCode"` // Optional
	OpeningDebit  decimal.Decimal    `json:"openingDebit" binding:"decimal2"`
	OpeningCredit decimal.Decimal    `json:"openingCredit" binding:"decimal2"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name        *string             `json:"name" binding:"omitempty,max=200"`
	AccountType *domain.AccountType `json:"accountType" binding:"omitempty,account_type"`
	Subtype     *string             `json:"subtype" binding:"omitempty,max=50"`
	ParentCode  *string             `json:"parentCode"` // empty string detaches the account from its parent
	IsActive    *bool               `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       int64              `json:"accountID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	Subtype         string             `json:"subtype,omitempty"`
	ParentAccountID *int64             `json:"parentAccountID,omitempty"`
	IsActive        bool               `json:"isActive"`
	OpeningDebit    decimal.Decimal    `json:"openingDebit"`
	OpeningCredit   decimal.Decimal    `json:"openingCredit"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		Subtype:         acc.Subtype,
		ParentAccountID: acc.ParentAccountID,
		IsActive:        acc.IsActive,
		OpeningDebit:    acc.OpeningDebit.Round(2),
		OpeningCredit:   acc.OpeningCredit.Round(2),
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	IncludeInactive bool `form:"includeInactive"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// BalanceParams selects the as-of date of a balance query. Empty means today.
type BalanceParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// TrialBalanceRow is one account of the trial balance, with the balance split into debit and credit columns.
type TrialBalanceRow struct {
	AccountID   int64              `json:"accountID"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	Debit       decimal.Decimal    `json:"debit"`
	Credit      decimal.Decimal    `json:"credit"`
}

// TrialBalanceResponse is the trial balance as of a date.
type TrialBalanceResponse struct {
	AsOf        string            `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// ToTrialBalanceResponse lays balances out in debit/credit columns and totals them.
func ToTrialBalanceResponse(asOf time.Time, balances []domain.AccountBalance) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		AsOf:        asOf.Format(domain.DateLayout),
		Rows:        make([]TrialBalanceRow, 0, len(balances)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, b := range balances {
		row := TrialBalanceRow{
			AccountID:   b.AccountID,
			Code:        b.Code,
			Name:        b.Name,
			AccountType: b.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		net := b.TotalDebit.Sub(b.TotalCredit)
		if net.IsPositive() {
			row.Debit = net
		} else {
			row.Credit = net.Neg()
		}
		resp.TotalDebit = resp.TotalDebit.Add(row.Debit)
		resp.TotalCredit = resp.TotalCredit.Add(row.Credit)
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}
