package util

import (
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
)

func ym(year int, month time.Month) domain.YearMonth {
	return domain.YearMonth{Year: year, Month: month}
}

func TestPreviousMonth_SameYear(t *testing.T) {
	tests := []struct {
		in   domain.YearMonth
		want domain.YearMonth
	}{
		{ym(2026, time.June), ym(2026, time.May)},
		{ym(2026, time.December), ym(2026, time.November)},
		{ym(2026, time.February), ym(2026, time.January)},
	}

	for _, tt := range tests {
		if got := PreviousMonth(tt.in); got != tt.want {
			t.Errorf("PreviousMonth(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPreviousMonth_YearBoundary(t *testing.T) {
	got := PreviousMonth(ym(2026, time.January))
	if got != ym(2025, time.December) {
		t.Errorf("PreviousMonth(2026-01) = %s, want 2025-12", got)
	}
}

func TestNextMonth_YearBoundary(t *testing.T) {
	got := NextMonth(ym(2025, time.December))
	if got != ym(2026, time.January) {
		t.Errorf("NextMonth(2025-12) = %s, want 2026-01", got)
	}
	if got := NextMonth(ym(2024, time.February)); got != ym(2024, time.March) {
		t.Errorf("NextMonth(2024-02) = %s, want 2024-03", got)
	}
}

func TestZeroMonthHasNoNeighbours(t *testing.T) {
	if got := PreviousMonth(domain.YearMonth{}); !got.IsZero() {
		t.Errorf("PreviousMonth(zero) = %s, want zero", got)
	}
	if got := NextMonth(domain.YearMonth{}); !got.IsZero() {
		t.Errorf("NextMonth(zero) = %s, want zero", got)
	}
}

func TestIsFutureMonth(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		month    domain.YearMonth
		expected bool
	}{
		{"current month is not future", ym(2024, time.March), false},
		{"previous month is not future", ym(2024, time.February), false},
		{"next month is future", ym(2024, time.April), true},
		{"earlier year is not future", ym(2023, time.December), false},
		{"later year is future", ym(2025, time.January), true},
		{"zero month is not future", domain.YearMonth{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFutureMonth(tt.month, now); got != tt.expected {
				t.Errorf("IsFutureMonth(%s) = %v, want %v", tt.month, got, tt.expected)
			}
		})
	}
}
