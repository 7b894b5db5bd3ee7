// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"bytes"
	"io"
	"time"
)

const (
	READ_BUFFER_SIZE = 4096
)

// Packet is one inbound payload, exactly as a single read returned it.
type Packet struct {
	Data []byte    // Payload bytes.
	Peer string    // Remote address for TCP server and UDP, else the device.
	Time time.Time // Arrival time.
}

// Handler receives channel events. Methods are called from the channel's
// own goroutines, or from Activate and Deactivate.
type Handler interface {
	// Received delivers an inbound payload.
	Received(pkt Packet)
	// StatusChanged reports a change in the link state.
	StatusChanged(connected bool, message string)
}

// HandlerFuncs adapts a pair of functions to Handler. Nil members are skipped.
type HandlerFuncs struct {
	OnReceived func(pkt Packet)
	OnStatus   func(connected bool, message string)
}

var _ Handler = HandlerFuncs{}

func (hf HandlerFuncs) Received(pkt Packet) {
	if hf.OnReceived != nil {
		hf.OnReceived(pkt)
	}
}

func (hf HandlerFuncs) StatusChanged(connected bool, message string) {
	if hf.OnStatus != nil {
		hf.OnStatus(connected, message)
	}
}

// Channel is one byte transport.
type Channel interface {
	// Mode reports which transport this is.
	Mode() Mode
	// Activate opens OS resources and starts delivering events to h.
	Activate(cfg Config, h Handler) error
	// Deactivate releases all OS resources and stops all goroutines.
	Deactivate() error
	// TrySend queues data for transmission without blocking.
	TrySend(data []byte) (n int, err error)
}

// PeerSender is implemented by channels that can address an explicit peer.
type PeerSender interface {
	SendTo(addr string, data []byte) (n int, err error)
}

// receive reads r until it fails, delivering each read as one Packet.
func receive(r io.Reader, peer string, h Handler) (err error) {
	buf := make([]byte, READ_BUFFER_SIZE)
	for {
		var n int
		n, err = r.Read(buf)
		if n > 0 {
			h.Received(Packet{
				Data: bytes.Clone(buf[:n]),
				Peer: peer,
				Time: time.Now(),
			})
		}
		if err != nil {
			return
		}
	}
}
