package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

func (r *repos) FindAccountByID(_ context.Context, templeID string, accountID int64) (*domain.Account, error) {
	st, unlock := r.read()
	defer unlock()
	a, ok := st.accounts[accountID]
	if !ok || a.TempleID != templeID {
		return nil, notFound("account", accountID)
	}
	return &a, nil
}

func (r *repos) FindAccountByCode(_ context.Context, templeID string, code string) (*domain.Account, error) {
	st, unlock := r.read()
	defer unlock()
	if a, ok := st.accountByCode(templeID, code); ok {
		return &a, nil
	}
	return nil, notFound("account", code)
}

func (r *repos) FindAccountsByCodes(_ context.Context, templeID string, codes []string) (map[string]domain.Account, error) {
	st, unlock := r.read()
	defer unlock()
	out := make(map[string]domain.Account, len(codes))
	for _, c := range codes {
		if a, ok := st.accountByCode(templeID, c); ok {
			out[c] = a
		}
	}
	return out, nil
}

func (r *repos) FindAccountsByIDs(_ context.Context, templeID string, accountIDs []int64) (map[int64]domain.Account, error) {
	st, unlock := r.read()
	defer unlock()
	out := make(map[int64]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := st.accounts[id]; ok && a.TempleID == templeID {
			out[id] = a
		}
	}
	return out, nil
}

func (r *repos) ListAccounts(_ context.Context, templeID string, includeInactive bool) ([]domain.Account, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.Account
	for _, a := range st.accounts {
		if a.TempleID == templeID && (includeInactive || a.IsActive) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *repos) AccountHasPostings(_ context.Context, templeID string, accountID int64) (bool, error) {
	st, unlock := r.read()
	defer unlock()
	for _, e := range st.entries {
		if e.TempleID != templeID || e.Status == domain.Draft {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *repos) SaveAccount(_ context.Context, account *domain.Account) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	if _, taken := st.accountByCode(account.TempleID, account.Code); taken {
		return &apperrors.DuplicateCodeError{Code: account.Code}
	}
	account.AccountID = st.nextID("accounts")
	st.accounts[account.AccountID] = *account
	return nil
}

func (r *repos) UpdateAccount(_ context.Context, account domain.Account) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	cur, ok := st.accounts[account.AccountID]
	if !ok || cur.TempleID != account.TempleID {
		return notFound("account", account.AccountID)
	}
	cur.Name = account.Name
	cur.AccountType = account.AccountType
	cur.Subtype = account.Subtype
	cur.ParentAccountID = account.ParentAccountID
	cur.IsActive = account.IsActive
	cur.LastUpdatedAt = account.LastUpdatedAt
	cur.LastUpdatedBy = account.LastUpdatedBy
	st.accounts[account.AccountID] = cur
	return nil
}

func (s *state) accountByCode(templeID, code string) (domain.Account, bool) {
	for _, a := range s.accounts {
		if a.TempleID == templeID && a.Code == code {
			return a, true
		}
	}
	return domain.Account{}, false
}
