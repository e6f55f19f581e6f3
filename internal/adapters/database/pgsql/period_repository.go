package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/temple_ledger/internal/models"
	"github.com/SscSPs/temple_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// PgxPeriodRepository reads and writes financial years, periods and closing snapshots.
type PgxPeriodRepository struct {
	BaseRepository
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

const yearColumns = `year_id, temple_id, name, start_date, end_date, period_type,
	created_at, created_by, last_updated_at, last_updated_by`

const periodColumns = `period_id, year_id, temple_id, name, start_date, end_date, status,
	created_at, created_by, last_updated_at, last_updated_by`

const closingColumns = `closing_id, temple_id, period_id, total_income, total_expense, net_surplus,
	equity_account_id, closing_entry_id, closed_by, closed_at`

func (r *PgxPeriodRepository) queryYears(ctx context.Context, query string, args ...any) ([]domain.FinancialYear, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "financial years")
	}
	modelYears, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.FinancialYear])
	if err != nil {
		return nil, translateError(err, "financial years")
	}
	out := make([]domain.FinancialYear, len(modelYears))
	for i, m := range modelYears {
		out[i] = mapping.ToDomainFinancialYear(m)
	}
	return out, nil
}

func (r *PgxPeriodRepository) queryPeriods(ctx context.Context, query string, args ...any) ([]domain.FinancialPeriod, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "financial periods")
	}
	modelPeriods, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.FinancialPeriod])
	if err != nil {
		return nil, translateError(err, "financial periods")
	}
	out := make([]domain.FinancialPeriod, len(modelPeriods))
	for i, m := range modelPeriods {
		out[i] = mapping.ToDomainFinancialPeriod(m)
	}
	return out, nil
}

func (r *PgxPeriodRepository) FindYearByID(ctx context.Context, templeID string, yearID int64) (*domain.FinancialYear, error) {
	years, err := r.queryYears(ctx, `SELECT `+yearColumns+` FROM financial_years WHERE temple_id = $1 AND year_id = $2`,
		templeID, yearID)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, notFound("financial year", yearID)
	}
	return &years[0], nil
}

func (r *PgxPeriodRepository) ListYears(ctx context.Context, templeID string) ([]domain.FinancialYear, error) {
	return r.queryYears(ctx, `SELECT `+yearColumns+` FROM financial_years WHERE temple_id = $1 ORDER BY start_date`, templeID)
}

func (r *PgxPeriodRepository) YearOverlaps(ctx context.Context, templeID string, start, end time.Time) (bool, error) {
	var overlaps bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM financial_years WHERE temple_id = $1 AND start_date <= $3 AND end_date >= $2
		)`, templeID, start, end).Scan(&overlaps)
	if err != nil {
		return false, translateError(err, "financial year overlap")
	}
	return overlaps, nil
}

func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, templeID string, periodID int64) (*domain.FinancialPeriod, error) {
	periods, err := r.queryPeriods(ctx, `SELECT `+periodColumns+` FROM financial_periods WHERE temple_id = $1 AND period_id = $2`,
		templeID, periodID)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, notFound("financial period", periodID)
	}
	return &periods[0], nil
}

func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, templeID string, date time.Time) (*domain.FinancialPeriod, error) {
	periods, err := r.queryPeriods(ctx, `
		SELECT `+periodColumns+` FROM financial_periods
		WHERE temple_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date LIMIT 1`, templeID, date)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, notFound("financial period for", date.Format(domain.DateLayout))
	}
	return &periods[0], nil
}

func (r *PgxPeriodRepository) ListPeriodsByYear(ctx context.Context, templeID string, yearID int64) ([]domain.FinancialPeriod, error) {
	return r.queryPeriods(ctx, `
		SELECT `+periodColumns+` FROM financial_periods
		WHERE temple_id = $1 AND year_id = $2 ORDER BY start_date`, templeID, yearID)
}

func (r *PgxPeriodRepository) ListClosings(ctx context.Context, templeID string, periodID int64) ([]domain.PeriodClosing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+closingColumns+` FROM period_closings
		WHERE temple_id = $1 AND period_id = $2 ORDER BY closing_id`, templeID, periodID)
	if err != nil {
		return nil, translateError(err, "period closings")
	}
	modelClosings, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PeriodClosing])
	if err != nil {
		return nil, translateError(err, "period closings")
	}
	out := make([]domain.PeriodClosing, len(modelClosings))
	for i, m := range modelClosings {
		out[i] = mapping.ToDomainPeriodClosing(m)
	}
	return out, nil
}

func (r *PgxPeriodRepository) SaveYear(ctx context.Context, year *domain.FinancialYear, periods []domain.FinancialPeriod) error {
	if err := r.writable(); err != nil {
		return err
	}
	y := mapping.ToModelFinancialYear(*year)
	err := r.db.QueryRow(ctx, `
		INSERT INTO financial_years (temple_id, name, start_date, end_date, period_type,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING year_id`,
		y.TempleID, y.Name, y.StartDate, y.EndDate, y.PeriodType, y.CreatedAt, y.CreatedBy, y.LastUpdatedAt, y.LastUpdatedBy,
	).Scan(&year.YearID)
	if err != nil {
		return translateError(err, "financial year "+year.Name)
	}
	if len(periods) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range periods {
		periods[i].YearID = year.YearID
		p := mapping.ToModelFinancialPeriod(periods[i])
		batch.Queue(`
			INSERT INTO financial_periods (year_id, temple_id, name, start_date, end_date, status,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING period_id`,
			p.YearID, p.TempleID, p.Name, p.StartDate, p.EndDate, p.Status, p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy)
	}
	br := r.db.SendBatch(ctx, batch)
	for i := range periods {
		if err := br.QueryRow().Scan(&periods[i].PeriodID); err != nil {
			_ = br.Close()
			return translateError(err, fmt.Sprintf("financial period %s", periods[i].Name))
		}
	}
	if err := br.Close(); err != nil {
		return translateError(err, "financial periods batch")
	}
	return nil
}

func (r *PgxPeriodRepository) UpdatePeriodStatus(ctx context.Context, templeID string, periodID int64, status domain.PeriodStatus, actor string, at time.Time) error {
	if err := r.writable(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE financial_periods SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE temple_id = $1 AND period_id = $2`, templeID, periodID, string(status), at, actor)
	if err != nil {
		return translateError(err, "financial period")
	}
	if tag.RowsAffected() == 0 {
		return notFound("financial period", periodID)
	}
	return nil
}

func (r *PgxPeriodRepository) SaveClosing(ctx context.Context, closing *domain.PeriodClosing) error {
	if err := r.writable(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO period_closings (temple_id, period_id, total_income, total_expense, net_surplus,
			equity_account_id, closing_entry_id, closed_by, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING closing_id`,
		closing.TempleID, closing.PeriodID, closing.TotalIncome, closing.TotalExpense, closing.NetSurplus,
		closing.EquityAccountID, closing.ClosingEntryID, closing.ClosedBy, closing.ClosedAt,
	).Scan(&closing.ClosingID)
	if err != nil {
		return translateError(err, "period closing")
	}
	return nil
}
