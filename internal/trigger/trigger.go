// Package trigger decides when the daily sunrise sequence should start.
package trigger

import (
	"time"

	"github.com/wakelight/sunrised/internal/profile"
)

// Matches reports whether the given UTC instant falls in the profile's
// trigger minute. The profile's UTC offset is added to the clock hour and
// wrapped around the day before comparing. This is a single-instant
// minute-resolution match: callers must poll at least once per minute.
func Matches(now time.Time, p profile.Profile) bool {
	now = now.UTC()
	hour := ((now.Hour()+p.UTCOffsetHours)%24 + 24) % 24
	return hour == p.TriggerHour && now.Minute() == p.TriggerMinute
}

// Evaluator wraps Matches with a debounce so that polling faster than once
// per minute fires at most once per matching minute.
type Evaluator struct {
	lastFired time.Time
}

// NewEvaluator creates an evaluator with no fired history.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Fire reports whether a sequence should start now. It returns true at most
// once per matching minute; subsequent calls within the same minute return
// false.
func (e *Evaluator) Fire(now time.Time, p profile.Profile) bool {
	if !Matches(now, p) {
		return false
	}
	minute := now.UTC().Truncate(time.Minute)
	if minute.Equal(e.lastFired) {
		return false
	}
	e.lastFired = minute
	return true
}
