package domain

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{"future expiry", now.Add(time.Minute), false},
		{"past expiry", now.Add(-time.Minute), true},
		{"expires exactly now", now, true},
		{"no expiry", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Username: "alice", ExpiresAt: tt.expiresAt}
			if got := s.IsExpired(now); got != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}
