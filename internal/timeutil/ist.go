package timeutil

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// CalendarDate returns the IST calendar day of t as a UTC midnight value.
// Entry, statement and period dates are all stored in this form.
func CalendarDate(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current IST calendar day.
func Today() time.Time {
	return CalendarDate(time.Now())
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FiscalYearStart returns the first day of the fiscal year containing date, for years that begin
// on the first of startMonth (April for Indian trusts).
func FiscalYearStart(date time.Time, startMonth time.Month) time.Time {
	date = CalendarDate(date)
	year := date.Year()
	if date.Month() < startMonth {
		year--
	}
	return time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a calendar date by n days.
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	diff := CalendarDate(a).Sub(CalendarDate(b))
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
