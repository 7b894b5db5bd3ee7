// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

// State of the scheduler.
type State int

//go:generate go tool stringer -type=State
const (
	Idle                      = State(0) // No coroutine.
	Running                   = State(1) // Script is executing.
	SuspendedSleep            = State(2) // Waiting on the sleep timer.
	SuspendedAwaitingResponse = State(3) // Waiting on a matching payload or timeout.
	Completed                 = State(4) // Last script returned normally.
	Failed                    = State(5) // Last script raised an error.
)

// Alive reports whether a coroutine exists in this state.
func (state State) Alive() bool {
	switch state {
	case Running, SuspendedSleep, SuspendedAwaitingResponse:
		return true
	}
	return false
}
