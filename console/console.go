// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package console ties a link, a scheduler and an event loop together.
//
// Every Console method is safe for concurrent use. Script execution, link
// arrivals, timers and events are all serialized on the console's loop,
// so the listener is only ever called from that one goroutine.
package console

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"

	"github.com/ezrec/linkscript/eventloop"
	"github.com/ezrec/linkscript/link"
	"github.com/ezrec/linkscript/scheduler"
)

// Console is a scriptable link tester.
type Console struct {
	log   *zap.Logger
	loop  *eventloop.Loop
	links *link.Manager
	sched *scheduler.Scheduler
}

// New console with no active link. Events go to listener, which may be
// nil.
func New(cfg scheduler.Config, listener scheduler.Listener, log *zap.Logger) (c *Console) {
	if log == nil {
		log = zap.NewNop()
	}

	c = &Console{
		log:  log,
		loop: eventloop.New(log.Named("loop")),
	}

	c.links = link.NewManager(link.HandlerFuncs{
		OnReceived: c.received,
		OnStatus:   c.status,
	}, log.Named("link"))

	c.sched = scheduler.New(c.links, c.loop, listener, cfg, log.Named("scheduler"))

	return
}

// Links is the console's transport manager.
func (c *Console) Links() *link.Manager {
	return c.links
}

// Addr is the local address of the active link, if it has one.
func (c *Console) Addr() net.Addr {
	return c.links.Addr()
}

// post fn to the loop, dropping it once the console is closed.
func (c *Console) post(what string, fn func()) {
	err := c.loop.Post(fn)
	if err != nil {
		c.log.Debug("console: dropped", zap.String("what", what), zap.Error(err))
	}
}

func (c *Console) received(pkt link.Packet) {
	c.post("data", func() {
		c.sched.DataArrived(pkt.Data)
	})
}

func (c *Console) status(connected bool, message string) {
	c.post("status", func() {
		c.sched.Emit(scheduler.Event{
			Kind:      scheduler.EventStatus,
			Text:      message,
			Connected: connected,
		})
	})
}

// Run the console's loop until ctx is cancelled or Close is called.
// Any script still running when the loop ends is stopped before Run
// returns.
func (c *Console) Run(ctx context.Context) (err error) {
	err = c.loop.Run(ctx)
	if errors.Is(err, eventloop.ErrRunning) {
		return
	}

	// The loop is finished, so this goroutine now owns the scheduler.
	c.sched.Close()
	return
}

// Close stops any script, releases the link and ends Run.
func (c *Console) Close() (err error) {
	c.post("close", c.sched.Close)
	c.loop.Close()

	err = c.links.Close()
	return
}

// ExecuteScript stops any running script and starts source. The outcome
// is that of the script's first resume.
func (c *Console) ExecuteScript(ctx context.Context, source string) (outcome scheduler.Outcome, err error) {
	err = c.loop.Call(ctx, func() {
		outcome = c.sched.ExecuteScript(source)
	})
	return
}

// StopScript stops the running script, if any.
func (c *Console) StopScript(ctx context.Context) error {
	return c.loop.Call(ctx, c.sched.Stop)
}

// State of the scheduler.
func (c *Console) State(ctx context.Context) (state scheduler.State, err error) {
	err = c.loop.Call(ctx, func() {
		state = c.sched.State()
	})
	return
}

// SwitchTransport tears down the active link, then activates mode.
func (c *Console) SwitchTransport(ctx context.Context, mode link.Mode, cfg link.Config) (err error) {
	if err = ctx.Err(); err != nil {
		return
	}

	err = cfg.Validate(mode)
	if err != nil {
		return
	}

	err = c.links.Switch(mode, cfg)
	if err != nil {
		c.log.Warn("console: switch", zap.Stringer("mode", mode), zap.Error(err))
	}

	return
}

// Send data on the active link, as a manual send outside any script.
func (c *Console) Send(ctx context.Context, data []byte) (err error) {
	return c.send(ctx, data, func() (int, error) {
		return c.links.TrySend(data)
	})
}

// SendTo sends data to an explicit literal "ip:port" peer.
func (c *Console) SendTo(ctx context.Context, addr string, data []byte) (err error) {
	return c.send(ctx, data, func() (int, error) {
		return c.links.SendTo(addr, data)
	})
}

func (c *Console) send(ctx context.Context, data []byte, transmit func() (int, error)) (err error) {
	callErr := c.loop.Call(ctx, func() {
		_, err = transmit()
		if err != nil {
			c.sched.Emit(scheduler.Event{
				Kind: scheduler.EventOutput,
				Text: f("send failed: %v", err),
				Err:  err,
			})
			return
		}
		c.sched.Emit(scheduler.Event{Kind: scheduler.EventSent, Data: data})
	})
	if callErr != nil {
		err = callErr
	}

	return
}
