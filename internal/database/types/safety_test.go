package types

import (
	"testing"
	"time"

	"github.com/trygglabs/trygg/internal/database/types/enum"
)

func TestWatchlistLapsed(t *testing.T) {
	until := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	state := &SafetyState{Status: enum.SafetyStatusWatchlisted, WatchlistUntil: &until}

	if state.WatchlistLapsed(until.Add(-time.Second)) {
		t.Error("Watchlist should still be in effect before the end date")
	}

	if !state.WatchlistLapsed(until) {
		t.Error("Watchlist should lapse at exactly the end date")
	}

	state.Status = enum.SafetyStatusLocked
	if state.WatchlistLapsed(until.Add(time.Hour)) {
		t.Error("Only watchlisted states can lapse")
	}
}

func TestEffectiveStatus(t *testing.T) {
	until := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state SafetyState
		now   time.Time
		want  enum.SafetyStatus
	}{
		{
			name:  "locked stays locked",
			state: SafetyState{Status: enum.SafetyStatusLocked},
			now:   until,
			want:  enum.SafetyStatusLocked,
		},
		{
			name:  "watchlisted before the end date",
			state: SafetyState{Status: enum.SafetyStatusWatchlisted, WatchlistUntil: &until},
			now:   until.Add(-time.Hour),
			want:  enum.SafetyStatusWatchlisted,
		},
		{
			name:  "watchlisted past the end date reads as normal",
			state: SafetyState{Status: enum.SafetyStatusWatchlisted, WatchlistUntil: &until},
			now:   until.Add(time.Hour),
			want:  enum.SafetyStatusNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.EffectiveStatus(tt.now); got != tt.want {
				t.Errorf("Expected status %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSafetyStatusRestricted(t *testing.T) {
	restricted := map[enum.SafetyStatus]bool{
		enum.SafetyStatusNormal:      false,
		enum.SafetyStatusLocked:      true,
		enum.SafetyStatusEscalated:   true,
		enum.SafetyStatusResolved:    false,
		enum.SafetyStatusWatchlisted: false,
	}

	for status, want := range restricted {
		if got := status.Restricted(); got != want {
			t.Errorf("Expected Restricted()=%v for %s, got %v", want, status, got)
		}
	}
}
