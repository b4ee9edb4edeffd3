package util

import (
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
)

// PreviousMonth returns the month before ym. The zero month is returned unchanged.
func PreviousMonth(ym domain.YearMonth) domain.YearMonth {
	if ym.IsZero() {
		return ym
	}
	if ym.Month == time.January {
		return domain.YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return domain.YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// NextMonth returns the month after ym. The zero month is returned unchanged.
func NextMonth(ym domain.YearMonth) domain.YearMonth {
	if ym.IsZero() {
		return ym
	}
	if ym.Month == time.December {
		return domain.YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return domain.YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// IsFutureMonth returns true if ym is after the month containing now
func IsFutureMonth(ym domain.YearMonth, now time.Time) bool {
	if ym.IsZero() {
		return false
	}
	if ym.Year != now.Year() {
		return ym.Year > now.Year()
	}
	return ym.Month > now.Month()
}
