package service

import "time"

// Clock abstracts time.Now so session durations and daily reward dates can be
// pinned in tests.
type Clock interface {
	Now() time.Time
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}
