// Package system provides a real clock implementation.
package system

import "time"

// Clock implements scrape.Clock using the time package.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

// Sleep suspends the caller for d.
func (Clock) Sleep(d time.Duration) {
	time.Sleep(d)
}
