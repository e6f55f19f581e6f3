package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/SscSPs/temple_ledger/internal/utils/accounting"
	"github.com/SscSPs/temple_ledger/internal/utils/sanitize"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	store portsrepo.Store
	cache portsrepo.AccountCache
}

// AccountOption is a functional option for configuring the account service
type AccountOption func(*accountService)

// WithAccountCache puts a read-through cache in front of lookups by code
func WithAccountCache(cache portsrepo.AccountCache) AccountOption {
	return func(s *accountService) {
		s.cache = cache
	}
}

// WithAccountClock overrides the clock used for audit fields
func WithAccountClock(clock func() time.Time) AccountOption {
	return func(s *accountService) {
		s.clock = clock
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(store portsrepo.Store, options ...AccountOption) portssvc.AccountSvcFacade {
	svc := &accountService{store: store}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, templeID string, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	name := sanitize.Text(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.AccountType)
	}
	if err := validateOpening(req.OpeningDebit, req.OpeningCredit); err != nil {
		return nil, err
	}

	now := s.Now()
	account := domain.Account{
		TempleID:      templeID,
		Code:          code,
		Name:          name,
		AccountType:   req.AccountType,
		Subtype:       sanitize.Text(req.Subtype),
		IsActive:      true,
		OpeningDebit:  req.OpeningDebit.Round(2),
		OpeningCredit: req.OpeningCredit.Round(2),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		if req.ParentCode != nil && strings.TrimSpace(*req.ParentCode) != "" {
			parent, err := repos.Accounts().FindAccountByCode(ctx, templeID, strings.TrimSpace(*req.ParentCode))
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, *req.ParentCode)
				}
				return err
			}
			account.ParentAccountID = &parent.AccountID
		}
		return repos.Accounts().SaveAccount(ctx, &account)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to save account", slog.String("temple_id", templeID), slog.String("code", code))
		}
		return nil, err
	}

	s.cacheSet(account)
	s.LogInfo(ctx, "Account created", slog.String("temple_id", templeID), slog.String("code", code), slog.Int64("account_id", account.AccountID))
	return &account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, templeID string, code string) (*domain.Account, error) {
	if s.cache != nil {
		if acc, ok := s.cache.Get(templeID, code); ok {
			return &acc, nil
		}
	}
	account, err := s.store.Accounts().FindAccountByCode(ctx, templeID, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, err
	}
	s.cacheSet(*account)
	return account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, templeID string, accountID int64) (*domain.Account, error) {
	account, err := s.store.Accounts().FindAccountByID(ctx, templeID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.Int64("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, templeID string, includeInactive bool) ([]domain.Account, error) {
	accounts, err := s.store.Accounts().ListAccounts(ctx, templeID, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("temple_id", templeID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, templeID string, code string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error) {
	var updated domain.Account
	err := s.store.WithTx(ctx, func(ctx context.Context, repos portsrepo.Repositories) error {
		acc, err := repos.Accounts().FindAccountByCode(ctx, templeID, code)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := sanitize.Text(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
			}
			acc.Name = name
		}
		if req.Subtype != nil {
			acc.Subtype = sanitize.Text(*req.Subtype)
		}
		if req.AccountType != nil && *req.AccountType != acc.AccountType {
			if !req.AccountType.IsValid() {
				return fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, *req.AccountType)
			}
			// held until commit so no posting can land between the check and the update
			if err := repos.Journals().LockChain(ctx, templeID); err != nil {
				return err
			}
			used, err := repos.Accounts().AccountHasPostings(ctx, templeID, acc.AccountID)
			if err != nil {
				return err
			}
			if used {
				return fmt.Errorf("%w: account %s has postings, its type cannot change", apperrors.ErrConflict, code)
			}
			acc.AccountType = *req.AccountType
		}
		if req.ParentCode != nil {
			if err := s.reparent(ctx, repos, acc, strings.TrimSpace(*req.ParentCode)); err != nil {
				return err
			}
		}
		if req.IsActive != nil {
			acc.IsActive = *req.IsActive
		}

		acc.LastUpdatedAt = s.Now()
		acc.LastUpdatedBy = actor
		if err := repos.Accounts().UpdateAccount(ctx, *acc); err != nil {
			return err
		}
		updated = *acc
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to update account", slog.String("code", code))
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(templeID, code)
	}
	s.LogInfo(ctx, "Account updated", slog.String("temple_id", templeID), slog.String("code", code))
	return &updated, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, templeID string, code string, actor string) error {
	inactive := false
	_, err := s.UpdateAccount(ctx, templeID, code, dto.UpdateAccountRequest{IsActive: &inactive}, actor)
	return err
}

// reparent moves acc under the account with parentCode ("" detaches it), refusing cycles.
func (s *accountService) reparent(ctx context.Context, repos portsrepo.Repositories, acc *domain.Account, parentCode string) error {
	if parentCode == "" {
		acc.ParentAccountID = nil
		return nil
	}
	parent, err := repos.Accounts().FindAccountByCode(ctx, acc.TempleID, parentCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, parentCode)
		}
		return err
	}

	seen := map[int64]bool{}
	for cur := parent; ; {
		if cur.AccountID == acc.AccountID {
			return fmt.Errorf("%w: account %s cannot be its own ancestor", apperrors.ErrValidation, acc.Code)
		}
		if cur.ParentAccountID == nil || seen[cur.AccountID] {
			break
		}
		seen[cur.AccountID] = true
		if cur, err = repos.Accounts().FindAccountByID(ctx, acc.TempleID, *cur.ParentAccountID); err != nil {
			return err
		}
	}
	acc.ParentAccountID = &parent.AccountID
	return nil
}

func (s *accountService) cacheSet(acc domain.Account) {
	if s.cache != nil {
		s.cache.Set(acc)
	}
}

func validateOpening(debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}
	if !accounting.HasValidScale(debit) || !accounting.HasValidScale(credit) {
		return fmt.Errorf("%w: opening balance has more than two decimal places", apperrors.ErrValidation)
	}
	if debit.IsPositive() && credit.IsPositive() {
		return fmt.Errorf("%w: opening balance must sit on one side", apperrors.ErrValidation)
	}
	return nil
}
