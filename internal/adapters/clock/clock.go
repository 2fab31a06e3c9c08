package clock

import "time"

// Timer is a cancelable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler schedules one-shot callbacks. Clock and Fake both satisfy it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Clock provides current time and one-shot timers.
type Clock struct{}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now()
}

// NowUnix returns current unix seconds.
func (Clock) NowUnix() int64 {
	return time.Now().Unix()
}

// AfterFunc schedules f to run after d.
func (Clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
