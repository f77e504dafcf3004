package testutil

import "time"

// RefTime is the instant most tests pretend it is
var RefTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// FixedClock always returns t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// StepClock starts at start and advances by step on every call
func StepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}
