package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonth is returned when a year-month string cannot be parsed.
var ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")

// YearMonth is a calendar month with no day or time component.
type YearMonth struct {
	Year  int
	Month time.Month
}

// NewYearMonth normalises month overflow, so NewYearMonth(2024, 13) is 2025-01.
func NewYearMonth(year int, month time.Month) YearMonth {
	return fromIndex(year*12 + int(month) - 1)
}

// MonthOf returns the month containing t, in t's own location.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

func fromIndex(idx int) YearMonth {
	y := idx / 12
	m := idx % 12
	if m < 0 {
		m += 12
		y--
	}
	return YearMonth{Year: y, Month: time.Month(m + 1)}
}

// Index is a monotonically increasing month counter (year*12 + month-1).
func (ym YearMonth) Index() int {
	return ym.Year*12 + int(ym.Month) - 1
}

// AddMonths returns ym shifted by n months; n may be negative.
func (ym YearMonth) AddMonths(n int) YearMonth {
	return fromIndex(ym.Index() + n)
}

// MonthsSince returns how many months ym is after other (negative if before).
func (ym YearMonth) MonthsSince(other YearMonth) int {
	return ym.Index() - other.Index()
}

func (ym YearMonth) Before(other YearMonth) bool { return ym.Index() < other.Index() }
func (ym YearMonth) After(other YearMonth) bool  { return ym.Index() > other.Index() }
func (ym YearMonth) Equal(other YearMonth) bool  { return ym.Index() == other.Index() }

// IsZero reports whether ym is the zero value.
func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

// Start returns the first instant of the month in UTC.
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls in ym, using t's calendar fields.
func (ym YearMonth) Contains(t time.Time) bool {
	return MonthOf(t).Equal(ym)
}

// String formats as YYYY-MM.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// MonthRange returns every month from `from` to `to`, both inclusive.
// It returns nil when to is before from.
func MonthRange(from, to YearMonth) []YearMonth {
	if to.Before(from) {
		return nil
	}
	out := make([]YearMonth, 0, to.MonthsSince(from)+1)
	for cur := from; !cur.After(to); cur = cur.AddMonths(1) {
		out = append(out, cur)
	}
	return out
}

// Trailing returns the n months ending at ref, oldest first.
func Trailing(ref YearMonth, n int) []YearMonth {
	if n <= 0 {
		return nil
	}
	return MonthRange(ref.AddMonths(-(n - 1)), ref)
}
