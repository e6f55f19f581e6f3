package repositories

import (
	"context"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts
type AccountReader interface {
	// FindAccountByID retrieves an account by its internal identifier.
	FindAccountByID(ctx context.Context, templeID string, accountID int64) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its business code.
	FindAccountByCode(ctx context.Context, templeID string, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves several accounts keyed by code. Unknown codes are simply absent.
	FindAccountsByCodes(ctx context.Context, templeID string, codes []string) (map[string]domain.Account, error)

	// FindAccountsByIDs retrieves several accounts keyed by id.
	FindAccountsByIDs(ctx context.Context, templeID string, accountIDs []int64) (map[int64]domain.Account, error)

	// ListAccounts returns the temple's accounts ordered by code.
	ListAccounts(ctx context.Context, templeID string, includeInactive bool) ([]domain.Account, error)

	// AccountHasPostings reports whether any non-draft journal line references the account.
	AccountHasPostings(ctx context.Context, templeID string, accountID int64) (bool, error)
}

// AccountWriter defines write operations for the chart of accounts
type AccountWriter interface {
	// SaveAccount inserts a new account and sets its AccountID. A taken code yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account *domain.Account) error

	// UpdateAccount updates name, type, subtype, parent and active flag.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
