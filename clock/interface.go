package clock

import "time"

// Clock defines the time operations identifier generation depends on,
// allowing substitution of the system clock with scripted clocks in tests.
type Clock interface {
	// Now returns current time according to the clock's time source.
	// Successive readings may repeat a millisecond or step backwards when
	// the underlying source is adjusted.
	Now() time.Time

	// Since calculates duration elapsed since time t.
	Since(t time.Time) time.Duration
}
