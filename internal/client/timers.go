package client

import "time"

// Timer is a pending one-shot callback
type Timer interface {
	Stop() bool
}

// Timers schedules one-shot callbacks
type Timers interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemTimers schedules callbacks on the runtime timer
type SystemTimers struct{}

// AfterFunc calls f in its own goroutine after d
func (SystemTimers) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
