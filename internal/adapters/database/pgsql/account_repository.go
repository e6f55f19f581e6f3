package pgsql

import (
	"context"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/temple_ledger/internal/models"
	"github.com/SscSPs/temple_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// PgxAccountRepository reads and writes the chart of accounts.
type PgxAccountRepository struct {
	BaseRepository
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, temple_id, code, name, account_type, subtype, parent_account_id, is_active,
	opening_debit, opening_credit, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "accounts")
	}
	modelAccounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, translateError(err, "accounts")
	}
	return mapping.ToDomainAccounts(modelAccounts), nil
}

func (r *PgxAccountRepository) findOne(ctx context.Context, what string, query string, args ...any) (*domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, what)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, translateError(err, what)
	}
	a := mapping.ToDomainAccount(m)
	return &a, nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, templeID string, accountID int64) (*domain.Account, error) {
	return r.findOne(ctx, "account",
		`SELECT `+accountColumns+` FROM accounts WHERE temple_id = $1 AND account_id = $2`, templeID, accountID)
}

func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, templeID string, code string) (*domain.Account, error) {
	return r.findOne(ctx, "account "+code,
		`SELECT `+accountColumns+` FROM accounts WHERE temple_id = $1 AND code = $2`, templeID, code)
}

func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, templeID string, codes []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	accounts, err := r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE temple_id = $1 AND code = ANY($2)`, templeID, codes)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.Code] = a
	}
	return out, nil
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, templeID string, accountIDs []int64) (map[int64]domain.Account, error) {
	out := make(map[int64]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	accounts, err := r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE temple_id = $1 AND account_id = ANY($2)`, templeID, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	return out, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, templeID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE temple_id = $1`
	if !includeInactive {
		query += ` AND is_active`
	}
	return r.queryAccounts(ctx, query+` ORDER BY code`, templeID)
}

func (r *PgxAccountRepository) AccountHasPostings(ctx context.Context, templeID string, accountID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM journal_lines l
			JOIN journal_entries e ON e.entry_id = l.entry_id
			WHERE e.temple_id = $1 AND l.account_id = $2 AND e.status <> 'DRAFT'
		)`, templeID, accountID).Scan(&exists)
	if err != nil {
		return false, translateError(err, "account postings")
	}
	return exists, nil
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account *domain.Account) error {
	if err := r.writable(); err != nil {
		return err
	}
	m := mapping.ToModelAccount(*account)
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (temple_id, code, name, account_type, subtype, parent_account_id, is_active,
			opening_debit, opening_credit, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING account_id`,
		m.TempleID, m.Code, m.Name, m.AccountType, m.Subtype, m.ParentAccountID, m.IsActive,
		m.OpeningDebit, m.OpeningCredit, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	).Scan(&account.AccountID)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperrors.DuplicateCodeError{Code: account.Code}
		}
		return translateError(err, "account "+account.Code)
	}
	return nil
}

func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	if err := r.writable(); err != nil {
		return err
	}
	m := mapping.ToModelAccount(account)
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET name = $3, account_type = $4, subtype = $5, parent_account_id = $6, is_active = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE temple_id = $1 AND account_id = $2`,
		m.TempleID, m.AccountID, m.Name, m.AccountType, m.Subtype, m.ParentAccountID, m.IsActive,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "account "+account.Code)
	}
	if tag.RowsAffected() == 0 {
		return notFound("account", account.AccountID)
	}
	return nil
}
