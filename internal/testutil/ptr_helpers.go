package testutil

import "time"

// Time returns a pointer to the given time.Time
func Time(t time.Time) *time.Time {
	return &t
}
