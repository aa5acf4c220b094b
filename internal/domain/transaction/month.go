package transaction

import (
	"strconv"
	"strings"
	"time"

	"github.com/salesdash/backend/internal/domain/shared"
	"golang.org/x/text/cases"
)

var (
	// ErrInvalidMonth is returned when a month selector cannot be recognized
	ErrInvalidMonth = shared.NewDomainError("INVALID_MONTH", "Month must be a month name such as March or a number from 1 to 12")
	// ErrInvalidYear is returned when a year selector is out of range
	ErrInvalidYear = shared.NewDomainError("INVALID_YEAR", "Year must be between 1 and 9999")
)

// foldCase case-folds s. Casers are stateful and must not be shared.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

var monthsByName = func() map[string]time.Month {
	names := make(map[string]time.Month, 25)
	for m := time.January; m <= time.December; m++ {
		full := foldCase(m.String())
		names[full] = m
		names[full[:3]] = m
	}
	names["sept"] = time.September
	return names
}()

// ParseMonth resolves a month selector. It accepts an English month name,
// its three letter abbreviation or a number from 1 to 12, ignoring case and
// surrounding whitespace.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMonth
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, ErrInvalidMonth
		}
		return time.Month(n), nil
	}
	if m, ok := monthsByName[foldCase(s)]; ok {
		return m, nil
	}
	return 0, ErrInvalidMonth
}

// MonthFilter restricts records to a sale month and optionally a year.
// A zero Month matches every month; a zero Year matches every year.
type MonthFilter struct {
	Month time.Month
	Year  int
}

// NewMonthFilter builds a filter from raw selectors. An empty month and a
// zero year yield an unrestricted filter.
func NewMonthFilter(month string, year int) (MonthFilter, error) {
	var f MonthFilter
	if year < 0 || year > 9999 {
		return f, ErrInvalidYear
	}
	f.Year = year
	if strings.TrimSpace(month) != "" {
		m, err := ParseMonth(month)
		if err != nil {
			return f, err
		}
		f.Month = m
	}
	return f, nil
}

// IsZero reports whether the filter matches every record
func (f MonthFilter) IsZero() bool {
	return f.Month == 0 && f.Year == 0
}

// HasDateRange reports whether the filter is pinned to a concrete year and
// therefore maps onto a contiguous date range
func (f MonthFilter) HasDateRange() bool {
	return f.Year != 0
}

// Range returns the half-open UTC interval [start, end) covered by the filter.
// With only a month set the current year is assumed; with only a year set the
// whole year is covered.
func (f MonthFilter) Range() (time.Time, time.Time) {
	year := f.Year
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	if f.Month == 0 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
	start := time.Date(year, f.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Matches reports whether the given sale date satisfies the filter
func (f MonthFilter) Matches(t time.Time) bool {
	t = t.UTC()
	if f.Year != 0 {
		start, end := f.Range()
		return !t.Before(start) && t.Before(end)
	}
	if f.Month != 0 {
		return t.Month() == f.Month
	}
	return true
}

// CacheKey returns a stable textual form of the filter
func (f MonthFilter) CacheKey() string {
	return strconv.Itoa(int(f.Month)) + "-" + strconv.Itoa(f.Year)
}
