package trigger

import (
	"testing"
	"time"

	"github.com/wakelight/sunrised/internal/profile"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		profile profile.Profile
		want    bool
	}{
		{
			name:    "match/offset_adjusted_hour",
			now:     at(6, 0),
			profile: profile.Profile{TriggerHour: 7, TriggerMinute: 0, UTCOffsetHours: 1},
			want:    true,
		},
		{
			name:    "no_match/minute_off_by_one",
			now:     at(6, 1),
			profile: profile.Profile{TriggerHour: 7, TriggerMinute: 0, UTCOffsetHours: 1},
			want:    false,
		},
		{
			name:    "no_match/hour_off_by_one",
			now:     at(7, 0),
			profile: profile.Profile{TriggerHour: 7, TriggerMinute: 0, UTCOffsetHours: 1},
			want:    false,
		},
		{
			name:    "match/zero_offset",
			now:     at(7, 30),
			profile: profile.Profile{TriggerHour: 7, TriggerMinute: 30, UTCOffsetHours: 0},
			want:    true,
		},
		{
			name:    "match/wraps_past_midnight",
			now:     at(23, 15),
			profile: profile.Profile{TriggerHour: 1, TriggerMinute: 15, UTCOffsetHours: 2},
			want:    true,
		},
		{
			name:    "match/negative_offset_wraps_backwards",
			now:     at(1, 45),
			profile: profile.Profile{TriggerHour: 22, TriggerMinute: 45, UTCOffsetHours: -3},
			want:    true,
		},
		{
			name:    "no_match/negative_offset",
			now:     at(2, 45),
			profile: profile.Profile{TriggerHour: 22, TriggerMinute: 45, UTCOffsetHours: -3},
			want:    false,
		},
		{
			name:    "match/second_precision_ignored",
			now:     time.Date(2024, 3, 10, 6, 0, 59, 0, time.UTC),
			profile: profile.Profile{TriggerHour: 7, TriggerMinute: 0, UTCOffsetHours: 1},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.now, tt.profile); got != tt.want {
				t.Errorf("Matches(%s, %s) = %v, want %v", tt.now, tt.profile, got, tt.want)
			}
		})
	}
}

func TestEvaluatorFiresOncePerMinute(t *testing.T) {
	p := profile.Profile{TriggerHour: 7, TriggerMinute: 0, UTCOffsetHours: 0}
	e := NewEvaluator()

	if !e.Fire(at(7, 0), p) {
		t.Fatal("first poll in matching minute should fire")
	}
	// Faster-than-minute polling within the same minute
	if e.Fire(time.Date(2024, 3, 10, 7, 0, 10, 0, time.UTC), p) {
		t.Error("second poll in same minute should not fire")
	}
	if e.Fire(time.Date(2024, 3, 10, 7, 0, 50, 0, time.UTC), p) {
		t.Error("third poll in same minute should not fire")
	}
	// Next day's matching minute fires again
	next := at(7, 0).Add(24 * time.Hour)
	if !e.Fire(next, p) {
		t.Error("matching minute on the next day should fire")
	}
}

func TestEvaluatorNonMatchingDoesNotFire(t *testing.T) {
	p := profile.Profile{TriggerHour: 7, TriggerMinute: 0, UTCOffsetHours: 0}
	e := NewEvaluator()

	if e.Fire(at(6, 59), p) {
		t.Error("minute before trigger should not fire")
	}
	if !e.Fire(at(7, 0), p) {
		t.Error("trigger minute should fire")
	}
	if e.Fire(at(7, 1), p) {
		t.Error("minute after trigger should not fire")
	}
}
