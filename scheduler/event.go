// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"github.com/google/uuid"
)

// EventKind classifies an Event.
type EventKind int

//go:generate go tool stringer -type=EventKind -trimprefix=Event
const (
	EventOutput    = EventKind(0) // Script output, including load errors.
	EventStatus    = EventKind(1) // Link status change; Connected is set.
	EventData      = EventKind(2) // Inbound payload in Data.
	EventSent      = EventKind(3) // Outbound payload in Data.
	EventTimeout   = EventKind(4) // An awaitResponse timed out.
	EventStopped   = EventKind(5) // Script stopped on request.
	EventCompleted = EventKind(6) // Script returned normally.
	EventFailed    = EventKind(7) // Script raised; Err is set.
)

// Event is a notification for the front end.
type Event struct {
	Kind      EventKind
	RunID     uuid.UUID // Run that produced the event, uuid.Nil outside a run.
	Text      string    // Human readable message.
	Data      []byte
	Connected bool
	Err       error
}

// Listener receives events on the event loop goroutine.
type Listener func(ev Event)
