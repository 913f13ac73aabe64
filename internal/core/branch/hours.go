// Package branch contains the pure rules for branch schedules.
// This is part of the Functional Core - no I/O, only pure functions.
package branch

import (
	"fmt"
	"time"
)

const clockLayout = "15:04"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// Day is one day of a weekly schedule. DayOfWeek follows time.Weekday.
type Day struct {
	DayOfWeek int
	IsOpen    bool
	OpenTime  string
	CloseTime string
}

// CanSetSchedule evaluates a weekly schedule.
// Rules: each weekday appears at most once, and open days close after they open.
func CanSetSchedule(days []Day) GuardResult {
	seen := map[int]bool{}
	for _, d := range days {
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return GuardResult{Allowed: false, Reason: fmt.Sprintf("day of week %d is outside 0-6", d.DayOfWeek)}
		}
		if seen[d.DayOfWeek] {
			return GuardResult{Allowed: false, Reason: fmt.Sprintf("%s appears more than once", time.Weekday(d.DayOfWeek))}
		}
		seen[d.DayOfWeek] = true

		if !d.IsOpen {
			continue
		}
		open, err := time.Parse(clockLayout, d.OpenTime)
		if err != nil {
			return GuardResult{Allowed: false, Reason: fmt.Sprintf("%s: invalid opening time %q", time.Weekday(d.DayOfWeek), d.OpenTime)}
		}
		closing, err := time.Parse(clockLayout, d.CloseTime)
		if err != nil {
			return GuardResult{Allowed: false, Reason: fmt.Sprintf("%s: invalid closing time %q", time.Weekday(d.DayOfWeek), d.CloseTime)}
		}
		if !closing.After(open) {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("%s: closes at %s, not after opening at %s", time.Weekday(d.DayOfWeek), d.CloseTime, d.OpenTime),
			}
		}
	}
	return GuardResult{Allowed: true}
}
