// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"bytes"
	"time"
)

// DEFAULT_RESPONSE_TIMEOUT applies until a script calls setResponseTimeout.
const DEFAULT_RESPONSE_TIMEOUT = time.Second

// Session is the state of one script execution slot.
type Session struct {
	Source string // Source of the most recent run.

	state             State
	expectedPattern   []byte
	responseTimeout   time.Duration
	lastReceivedData  []byte
	hasUnconsumedData bool
}

// State of the run.
func (ss *Session) State() State {
	return ss.state
}

// Running is true while a coroutine is alive, running or suspended.
func (ss *Session) Running() bool {
	return ss.state.Alive()
}

// WaitingForResponse is true while suspended in awaitResponse.
func (ss *Session) WaitingForResponse() bool {
	return ss.state == SuspendedAwaitingResponse
}

// ExpectedPattern is the awaited prefix, nil when not waiting.
func (ss *Session) ExpectedPattern() []byte {
	return ss.expectedPattern
}

// ResponseTimeout for the next awaitResponse.
func (ss *Session) ResponseTimeout() time.Duration {
	return ss.responseTimeout
}

// LastReceivedData is the latest inbound payload.
func (ss *Session) LastReceivedData() []byte {
	return ss.lastReceivedData
}

// HasUnconsumedData is true until getLastData reads the latest payload.
func (ss *Session) HasUnconsumedData() bool {
	return ss.hasUnconsumedData
}

// reset prepares for a new run. Received data survives.
func (ss *Session) reset(source string, timeout time.Duration) {
	ss.Source = source
	ss.state = Idle
	ss.expectedPattern = nil
	ss.responseTimeout = timeout
}

// arrive replaces the latest payload.
func (ss *Session) arrive(data []byte) {
	ss.lastReceivedData = bytes.Clone(data)
	ss.hasUnconsumedData = true
}

// consume returns the unread payload, or an empty slice.
func (ss *Session) consume() (data []byte) {
	data = []byte{}
	if ss.hasUnconsumedData {
		data = bytes.Clone(ss.lastReceivedData)
		ss.hasUnconsumedData = false
	}

	return
}
