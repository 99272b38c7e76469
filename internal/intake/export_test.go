package intake

import "time"

// SetClock replaces the clock of a system created by New.
func SetClock(s System, now func() time.Time) {
	s.(*intake).now = now
}
