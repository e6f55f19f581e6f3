package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
)

func (r *repos) FindYearByID(_ context.Context, templeID string, yearID int64) (*domain.FinancialYear, error) {
	st, unlock := r.read()
	defer unlock()
	y, ok := st.years[yearID]
	if !ok || y.TempleID != templeID {
		return nil, notFound("financial year", yearID)
	}
	return &y, nil
}

func (r *repos) ListYears(_ context.Context, templeID string) ([]domain.FinancialYear, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.FinancialYear
	for _, y := range st.years {
		if y.TempleID == templeID {
			out = append(out, y)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *repos) YearOverlaps(_ context.Context, templeID string, start, end time.Time) (bool, error) {
	st, unlock := r.read()
	defer unlock()
	for _, y := range st.years {
		if y.TempleID == templeID && !start.After(y.EndDate) && !end.Before(y.StartDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *repos) FindPeriodByID(_ context.Context, templeID string, periodID int64) (*domain.FinancialPeriod, error) {
	st, unlock := r.read()
	defer unlock()
	p, ok := st.periods[periodID]
	if !ok || p.TempleID != templeID {
		return nil, notFound("financial period", periodID)
	}
	return &p, nil
}

func (r *repos) FindPeriodForDate(_ context.Context, templeID string, date time.Time) (*domain.FinancialPeriod, error) {
	st, unlock := r.read()
	defer unlock()
	for _, p := range st.periods {
		if p.TempleID == templeID && p.Contains(date) {
			return &p, nil
		}
	}
	return nil, notFound("financial period for", date.Format(domain.DateLayout))
}

func (r *repos) ListPeriodsByYear(_ context.Context, templeID string, yearID int64) ([]domain.FinancialPeriod, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.FinancialPeriod
	for _, p := range st.periods {
		if p.TempleID == templeID && p.YearID == yearID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *repos) ListClosings(_ context.Context, templeID string, periodID int64) ([]domain.PeriodClosing, error) {
	st, unlock := r.read()
	defer unlock()
	var out []domain.PeriodClosing
	for _, c := range st.closings {
		if c.TempleID == templeID && c.PeriodID == periodID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClosingID < out[j].ClosingID })
	return out, nil
}

func (r *repos) SaveYear(_ context.Context, year *domain.FinancialYear, periods []domain.FinancialPeriod) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	year.YearID = st.nextID("financial_years")
	st.years[year.YearID] = *year
	for i := range periods {
		periods[i].PeriodID = st.nextID("financial_periods")
		periods[i].YearID = year.YearID
		st.periods[periods[i].PeriodID] = periods[i]
	}
	return nil
}

func (r *repos) UpdatePeriodStatus(_ context.Context, templeID string, periodID int64, status domain.PeriodStatus, actor string, at time.Time) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	p, ok := st.periods[periodID]
	if !ok || p.TempleID != templeID {
		return notFound("financial period", periodID)
	}
	p.Status = status
	p.LastUpdatedAt = at
	p.LastUpdatedBy = actor
	st.periods[periodID] = p
	return nil
}

func (r *repos) SaveClosing(_ context.Context, closing *domain.PeriodClosing) error {
	st, unlock, err := r.write()
	defer unlock()
	if err != nil {
		return err
	}
	closing.ClosingID = st.nextID("period_closings")
	st.closings[closing.ClosingID] = *closing
	return nil
}
