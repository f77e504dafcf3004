package drivepool

import "time"

// SetClock swaps the engine clock and returns a func restoring it
func SetClock(clock func() time.Time) func() {
	prev := now
	now = clock
	return func() { now = prev }
}
