package vts

// This file contains the Timestamp Source. Every timestamp that enters a
// signed payload is produced by FormatTimestamp, and the verifier uses the
// exact string it was handed, so the layout below is part of the protocol.

import (
	"fmt"
	"time"
)

// TimestampLayout is the canonical UTC instant: ISO 8601, microsecond
// precision, trailing 'Z'. Example: 2025-06-02T05:05:35.784383Z
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// TimestampSource supplies the current instant in canonical form. It is
// passed explicitly to the signer so that tests can pin the clock.
type TimestampSource interface {
	Now() string
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current UTC instant in canonical form.
func (SystemClock) Now() string {
	return FormatTimestamp(time.Now())
}

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant in canonical form.
func (fc FixedClock) Now() string {
	return FormatTimestamp(fc.Instant)
}

// ClockFunc adapts a function returning a time.Time into a TimestampSource.
type ClockFunc func() time.Time

// Now calls the function and formats its result.
func (f ClockFunc) Now() string {
	return FormatTimestamp(f())
}

// FormatTimestamp renders t in the canonical layout. Sub-microsecond
// precision is truncated, never rounded, so the rendered instant is never
// later than t.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(TimestampLayout)
}

// ParseTimestamp parses a canonical timestamp. Anything that would not
// re-render to the identical string is rejected, since a verifier that
// accepted an alternate spelling would be checking a different payload.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse timestamp %q: %v", s, err)
	}
	if FormatTimestamp(t) != s {
		return time.Time{}, fmt.Errorf("timestamp %q is not in canonical form", s)
	}
	return t, nil
}
