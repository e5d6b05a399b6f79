package clock

import "time"

// Clock abstracts "now" so lifecycle timestamps are testable. All times are UTC.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed is a test clock that returns a settable instant.
type Fixed struct {
	Instant time.Time
}

// NewFixed creates a Fixed clock starting at the given instant.
func NewFixed(instant time.Time) *Fixed {
	return &Fixed{Instant: instant.UTC()}
}

// Now returns the fixed instant.
func (f *Fixed) Now() time.Time { return f.Instant }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.Instant = f.Instant.Add(d) }
