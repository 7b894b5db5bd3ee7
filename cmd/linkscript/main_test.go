// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/linkscript/scheduler"
)

func TestEventPrinter(t *testing.T) {
	assert := assert.New(t)

	var out bytes.Buffer
	finished := make(chan scheduler.Event, 1)
	listener := eventPrinter(&out, finished)

	listener(scheduler.Event{Kind: scheduler.EventOutput, Text: "hello"})
	listener(scheduler.Event{Kind: scheduler.EventData, Data: []byte{0xAA, 0x01}})
	listener(scheduler.Event{Kind: scheduler.EventSent, Data: []byte{0x02}})
	listener(scheduler.Event{Kind: scheduler.EventStatus, Text: "udp stopped"})
	assert.Empty(finished)

	listener(scheduler.Event{Kind: scheduler.EventCompleted, Text: "script completed"})
	listener(scheduler.Event{Kind: scheduler.EventStopped, Text: "script stopped"})

	assert.Equal("hello\n<< AA 01\n>> 02\n[Status] udp stopped\n[Completed] script completed\n[Stopped] script stopped\n", out.String())
	assert.Len(finished, 1)
	assert.Equal(scheduler.EventCompleted, (<-finished).Kind)
}
