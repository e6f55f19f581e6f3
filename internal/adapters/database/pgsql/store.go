// Package pgsql is the postgres implementation of the ledger Store, built on pgx/v5.
package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store binds the repositories to a connection pool and runs units of work as database transactions.
type Store struct {
	*repositories
	pool *pgxpool.Pool
}

var _ portsrepo.Store = (*Store)(nil)

// NewStore creates a Store over an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		repositories: newRepositories(BaseRepository{db: pool}),
		pool:         pool,
	}
}

// WithTx runs fn in a READ COMMITTED transaction; the posting path serialises per temple through LockChain.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, false, fn)
}

// WithSnapshot runs fn in a REPEATABLE READ, READ ONLY transaction so every query sees the same snapshot.
func (s *Store) WithSnapshot(ctx context.Context, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, true, fn)
}

func (s *Store) run(ctx context.Context, opts pgx.TxOptions, readOnly bool, fn func(ctx context.Context, repos portsrepo.Repositories) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) && err == nil {
			err = apperrors.NewAppError(500, "failed to rollback transaction", rbErr)
		}
	}()

	if err = fn(ctx, newRepositories(BaseRepository{db: tx, inTx: true, readOnly: readOnly})); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// repositories is the container handed to services, every repository sharing one DBTX.
type repositories struct {
	accounts        *PgxAccountRepository
	journals        *PgxJournalRepository
	periods         *PgxPeriodRepository
	reconciliations *PgxReconciliationRepository
}

func newRepositories(base BaseRepository) *repositories {
	return &repositories{
		accounts:        &PgxAccountRepository{BaseRepository: base},
		journals:        &PgxJournalRepository{BaseRepository: base},
		periods:         &PgxPeriodRepository{BaseRepository: base},
		reconciliations: &PgxReconciliationRepository{BaseRepository: base},
	}
}

func (r *repositories) Accounts() portsrepo.AccountRepositoryFacade { return r.accounts }
func (r *repositories) Journals() portsrepo.JournalRepositoryFacade { return r.journals }
func (r *repositories) Periods() portsrepo.PeriodRepositoryFacade   { return r.periods }
func (r *repositories) Reconciliations() portsrepo.ReconciliationRepositoryFacade {
	return r.reconciliations
}
