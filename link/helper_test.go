// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"testing"
	"time"
)

const testWait = 5 * time.Second

type statusEvent struct {
	Connected bool
	Message   string
}

// recorder is a Handler that queues everything it sees.
type recorder struct {
	packets chan Packet
	status  chan statusEvent
}

func newRecorder() *recorder {
	return &recorder{
		packets: make(chan Packet, 256),
		status:  make(chan statusEvent, 256),
	}
}

func (r *recorder) Received(pkt Packet) {
	r.packets <- pkt
}

func (r *recorder) StatusChanged(connected bool, message string) {
	r.status <- statusEvent{Connected: connected, Message: message}
}

// waitStatus skips status events until one with the wanted state arrives.
func (r *recorder) waitStatus(t *testing.T, connected bool) (ev statusEvent) {
	t.Helper()

	timeout := time.After(testWait)
	for {
		select {
		case ev = <-r.status:
			if ev.Connected == connected {
				return
			}
		case <-timeout:
			t.Fatalf("no status event with connected=%v", connected)
		}
	}
}

// waitData collects payloads until at least size bytes arrived.
func (r *recorder) waitData(t *testing.T, size int) (data []byte, peer string) {
	t.Helper()

	timeout := time.After(testWait)
	for len(data) < size {
		select {
		case pkt := <-r.packets:
			data = append(data, pkt.Data...)
			peer = pkt.Peer
		case <-timeout:
			t.Fatalf("received %d of %d bytes", len(data), size)
		}
	}

	return
}
