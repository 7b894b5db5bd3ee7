// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"time"
)

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// fakeClock holds timers until a test fires them.
type fakeClock struct {
	timers []*fakeTimer
}

func (fc *fakeClock) AfterFunc(d time.Duration, fn func()) func() bool {
	timer := &fakeTimer{d: d, fn: fn}
	fc.timers = append(fc.timers, timer)
	return func() bool {
		if timer.stopped || timer.fired {
			return false
		}
		timer.stopped = true
		return true
	}
}

// pending timers, neither stopped nor fired.
func (fc *fakeClock) pending() (timers []*fakeTimer) {
	for _, timer := range fc.timers {
		if !timer.stopped && !timer.fired {
			timers = append(timers, timer)
		}
	}
	return
}

// fire the only pending timer.
func (fc *fakeClock) fire() bool {
	timers := fc.pending()
	if len(timers) != 1 {
		return false
	}
	timers[0].fired = true
	timers[0].fn()
	return true
}

type sendTo struct {
	Addr string
	Data []byte
}

type fakeLink struct {
	err    error
	sent   [][]byte
	sentTo []sendTo
	panic  bool
}

func (fl *fakeLink) TrySend(data []byte) (int, error) {
	if fl.panic {
		panic("link exploded")
	}
	if fl.err != nil {
		return 0, fl.err
	}
	fl.sent = append(fl.sent, data)
	return len(data), nil
}

func (fl *fakeLink) SendTo(addr string, data []byte) (int, error) {
	if fl.err != nil {
		return 0, fl.err
	}
	fl.sentTo = append(fl.sentTo, sendTo{Addr: addr, Data: data})
	return len(data), nil
}

// journal records events.
type journal struct {
	events []Event
	hook   func(ev Event)
}

func (jn *journal) listen(ev Event) {
	jn.events = append(jn.events, ev)
	if jn.hook != nil {
		jn.hook(ev)
	}
}

func (jn *journal) kinds() (kinds []EventKind) {
	for _, ev := range jn.events {
		kinds = append(kinds, ev.Kind)
	}
	return
}

func (jn *journal) output() (text []string) {
	for _, ev := range jn.events {
		if ev.Kind == EventOutput {
			text = append(text, ev.Text)
		}
	}
	return
}

func (jn *journal) count(kind EventKind) (n int) {
	for _, ev := range jn.events {
		if ev.Kind == kind {
			n++
		}
	}
	return
}

type fixture struct {
	clock   *fakeClock
	link    *fakeLink
	journal *journal
	sched   *Scheduler
}

func newFixture(cfg Config) (fx *fixture) {
	fx = &fixture{
		clock:   &fakeClock{},
		link:    &fakeLink{},
		journal: &journal{},
	}
	fx.sched = New(fx.link, fx.clock, fx.journal.listen, cfg, nil)
	return
}
