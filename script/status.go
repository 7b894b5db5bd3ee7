// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package script

import (
	"time"
)

// Status is the outcome of one Resume.
type Status int

//go:generate go tool stringer -type=Status
const (
	Completed = Status(0) // Script returned normally.
	Suspended = Status(1) // Script is waiting on a Request.
	Failed    = Status(2) // Script raised an error.
)

// Request is the reason a coroutine suspended.
type Request interface {
	isRequest()
}

// SleepFor asks to be resumed with Unit after Duration.
type SleepFor struct {
	Duration time.Duration
}

// AwaitResponse asks to be resumed with a Response once a payload starting
// with Pattern arrives, or on timeout. An empty Pattern matches anything.
type AwaitResponse struct {
	Pattern []byte
}

func (SleepFor) isRequest()      {}
func (AwaitResponse) isRequest() {}

// Resume is the value a suspended coroutine is resumed with.
type Resume interface {
	isResume()
}

// Unit resumes a sleep, or starts a coroutine.
type Unit struct{}

// Response resumes an AwaitResponse. Data is the full matching payload.
type Response struct {
	Matched bool
	Data    []byte
}

func (Unit) isResume()     {}
func (Response) isResume() {}

// Result is the tagged outcome of a Resume.
type Result struct {
	Status  Status
	Request Request // Set when Suspended.
	Err     error   // Set when Failed.
}
