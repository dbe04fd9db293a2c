package timex

import "time"

// Precision is the resolution timestamps are stored with. PostgreSQL keeps
// microseconds, so everything is truncated to that before it is persisted.
const Precision = time.Microsecond

// Now returns the current UTC time at storage precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(Precision)
}

// Touch returns a modification timestamp strictly after prev.
// When the clock has not moved past prev (coarse clocks, fast updates),
// prev plus one Precision step is returned instead.
func Touch(now, prev time.Time) time.Time {
	now = now.UTC().Truncate(Precision)
	if !now.After(prev) {
		return prev.UTC().Add(Precision)
	}
	return now
}
