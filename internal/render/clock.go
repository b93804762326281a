package render

import "time"

// Clock is the wall clock used for the safety timeout.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
