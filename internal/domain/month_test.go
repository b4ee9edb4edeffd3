package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected YearMonth
		wantErr  bool
	}{
		{"valid", "2024-03", YearMonth{Year: 2024, Month: time.March}, false},
		{"december", "2023-12", YearMonth{Year: 2023, Month: time.December}, false},
		{"empty selects nothing", "", YearMonth{}, false},
		{"month out of range", "2024-13", YearMonth{}, true},
		{"missing zero padding", "2024-3", YearMonth{}, true},
		{"full date", "2024-03-01", YearMonth{}, true},
		{"garbage", "march", YearMonth{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseYearMonth(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMonth) {
					t.Errorf("ParseYearMonth(%q) error = %v, want ErrInvalidMonth", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseYearMonth(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseYearMonth(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestYearMonthString(t *testing.T) {
	if got := (YearMonth{Year: 2024, Month: time.February}).String(); got != "2024-02" {
		t.Errorf("String() = %q, want %q", got, "2024-02")
	}
	if got := (YearMonth{}).String(); got != "" {
		t.Errorf("zero String() = %q, want empty", got)
	}
}

func TestYearMonthContains(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.January}

	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{"first day", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"last day", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"next month", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"same month other year", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ym.Contains(tt.date); got != tt.expected {
				t.Errorf("Contains(%s) = %v, want %v", tt.date.Format(DateLayout), got, tt.expected)
			}
		})
	}
}

func TestYearMonthOf(t *testing.T) {
	got := YearMonthOf(time.Date(2024, 7, 19, 15, 4, 5, 0, time.UTC))
	if got != (YearMonth{Year: 2024, Month: time.July}) {
		t.Errorf("YearMonthOf() = %+v", got)
	}
	if got.IsZero() {
		t.Error("YearMonthOf() should not be zero")
	}
	if !(YearMonth{}).IsZero() {
		t.Error("zero YearMonth should report IsZero")
	}
}
