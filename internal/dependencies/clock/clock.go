// Package clock abstracts the wall clock so services can be tested with a fixed time.
package clock

import "time"

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// System reads the host clock
type System struct{}

// New returns the system clock
func New() System {
	return System{}
}

// Now returns the current time in UTC, so stored timestamps never carry a local zone
func (System) Now() time.Time {
	return time.Now().UTC()
}
