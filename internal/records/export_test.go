package records

import "time"

// SetClock replaces the clock of a store created by NewMemory.
func SetClock(s System, now func() time.Time) {
	s.(*memory).now = now
}
