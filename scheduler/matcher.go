// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"bytes"
)

// Match reports whether the latest payload satisfies an awaited pattern:
// an empty pattern matches anything, otherwise data must start with it.
// Only a fixed prefix of this one payload is compared, never a stream.
func Match(data, pattern []byte) bool {
	return bytes.HasPrefix(data, pattern)
}
