// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"time"
)

// Clock arms one-shot timers. The function must be invoked on the same
// goroutine as the Scheduler. The returned stop function reports whether
// it prevented the call.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Link is the outbound side of the active transport.
type Link interface {
	TrySend(data []byte) (n int, err error)
	SendTo(addr string, data []byte) (n int, err error)
}
