package domain

import (
	"fmt"
	"time"
)

// YearMonth is a calendar month used to filter transactions.
// The zero value means no month is selected.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses a "YYYY-MM" key. An empty string yields the zero YearMonth.
func ParseYearMonth(s string) (YearMonth, error) {
	if s == "" {
		return YearMonth{}, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: month must be in YYYY-MM format", ErrInvalidMonth)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// YearMonthOf returns the calendar month containing t
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether no month is selected
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// Contains reports whether t falls within the month
func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

// String formats the month as "YYYY-MM", or "" for the zero value
func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}
