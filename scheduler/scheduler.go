// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ezrec/linkscript/link"
	"github.com/ezrec/linkscript/script"
)

// DEFAULT_SCRIPT_NAME is used in error positions when Config.Name is empty.
const DEFAULT_SCRIPT_NAME = "script"

// Config of a Scheduler.
type Config struct {
	Name            string        // Script name used in error positions.
	ResponseTimeout time.Duration // Initial response timeout of every run.
	MaxSteps        uint64        // Starlark step budget per run, 0 for unlimited.
}

func (cfg Config) name() string {
	if len(cfg.Name) == 0 {
		return DEFAULT_SCRIPT_NAME
	}
	return cfg.Name
}

func (cfg Config) responseTimeout() time.Duration {
	if cfg.ResponseTimeout <= 0 {
		return DEFAULT_RESPONSE_TIMEOUT
	}
	return cfg.ResponseTimeout
}

// Outcome of the first resume of ExecuteScript.
type Outcome struct {
	Status script.Status
	Err    error
}

// Scheduler runs at most one script coroutine at a time.
type Scheduler struct {
	Config Config

	log      *zap.Logger
	link     Link
	clock    Clock
	listener Listener

	session Session
	co      *script.Coroutine
	runID   uuid.UUID

	timerStop func() bool
	timerGen  uint64

	resuming    bool
	stopPending bool
}

// New scheduler sending through ln and timing with clock. The listener
// may be nil.
func New(ln Link, clock Clock, listener Listener, cfg Config, log *zap.Logger) (s *Scheduler) {
	if log == nil {
		log = zap.NewNop()
	}

	s = &Scheduler{
		Config:   cfg,
		log:      log,
		link:     ln,
		clock:    clock,
		listener: listener,
	}
	s.session.responseTimeout = cfg.responseTimeout()

	return
}

// State of the current or last run.
func (s *Scheduler) State() State {
	return s.session.state
}

// Session of the current or last run.
func (s *Scheduler) Session() *Session {
	return &s.session
}

// RunID of the current or last run.
func (s *Scheduler) RunID() uuid.UUID {
	return s.runID
}

// Emit an event to the listener, stamped with the current run id.
func (s *Scheduler) Emit(ev Event) {
	if s.listener == nil {
		return
	}
	ev.RunID = s.runID
	s.listener(ev)
}

// ExecuteScript stops any current run, then compiles and starts source.
// The outcome is that of the first resume only.
func (s *Scheduler) ExecuteScript(source string) (outcome Outcome) {
	if s.resuming {
		s.log.Info("scheduler: busy", zap.Stringer("run", s.runID))
		s.Emit(Event{Kind: EventOutput, Text: f("script error: %v", ErrBusy), Err: ErrBusy})
		outcome = Outcome{Status: script.Failed, Err: ErrBusy}
		return
	}

	s.Stop()
	s.session.reset(source, s.Config.responseTimeout())
	s.runID = uuid.New()

	log := s.log.With(zap.Stringer("run", s.runID))

	prog, err := script.Compile(s.Config.name(), source)
	if err != nil {
		log.Info("scheduler: load", zap.Error(err))
		s.Emit(Event{Kind: EventOutput, Text: f("script error: %v", err), Err: err})
		outcome = Outcome{Status: script.Failed, Err: err}
		return
	}

	log.Info("scheduler: start", zap.String("name", prog.Name))
	s.co = script.NewCoroutine(prog, &bridge{s: s}, script.Options{MaxSteps: s.Config.MaxSteps})

	outcome = s.resume(script.Unit{})
	return
}

// Stop the current run. Safe to call at any time, any number of times.
// From inside a script callback the stop is applied once the script
// yields.
func (s *Scheduler) Stop() {
	if s.resuming {
		s.stopPending = true
		return
	}

	if s.co == nil {
		return
	}

	s.teardown(Idle)
	s.log.Info("scheduler: stop", zap.Stringer("run", s.runID))
	s.Emit(Event{Kind: EventStopped, Text: f("script stopped")})
}

// DataArrived records an inbound payload, then resumes an awaitResponse
// whose pattern it matches.
func (s *Scheduler) DataArrived(payload []byte) {
	s.session.arrive(payload)
	s.Emit(Event{Kind: EventData, Data: s.session.lastReceivedData})

	if s.session.state != SuspendedAwaitingResponse {
		return
	}

	if !Match(s.session.lastReceivedData, s.session.expectedPattern) {
		return
	}

	s.log.Debug("scheduler: matched",
		zap.Stringer("run", s.runID),
		zap.Int("bytes", len(s.session.lastReceivedData)),
	)

	s.disarm()
	s.session.expectedPattern = nil
	s.resume(script.Response{Matched: true, Data: bytes.Clone(s.session.lastReceivedData)})
}

// Close stops any run.
func (s *Scheduler) Close() {
	s.Stop()
}

// step resumes the coroutine, converting a panic into a failure.
func (s *Scheduler) step(value script.Resume) (result script.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler: panic", zap.Stringer("run", s.runID), zap.Any("panic", r))
			result = script.Result{Status: script.Failed, Err: &ErrPanic{Value: r}}
		}
	}()

	s.resuming = true
	defer func() { s.resuming = false }()

	result = s.co.Resume(value)
	return
}

// resume the coroutine with value and act on where it stops next.
func (s *Scheduler) resume(value script.Resume) (outcome Outcome) {
	s.session.state = Running

	result := s.step(value)

	if s.stopPending {
		s.stopPending = false
		if result.Status == script.Suspended {
			s.Stop()
			outcome = Outcome{Status: script.Failed, Err: script.ErrStopped}
			return
		}
	}

	switch result.Status {
	case script.Completed:
		s.teardown(Completed)
		s.log.Info("scheduler: completed", zap.Stringer("run", s.runID))
		s.Emit(Event{Kind: EventCompleted, Text: f("script completed")})
		outcome = Outcome{Status: script.Completed}
	case script.Failed:
		outcome = s.fail(result.Err)
	case script.Suspended:
		switch req := result.Request.(type) {
		case script.SleepFor:
			s.session.state = SuspendedSleep
			s.arm(req.Duration)
		case script.AwaitResponse:
			s.session.state = SuspendedAwaitingResponse
			s.session.expectedPattern = req.Pattern
			s.arm(s.session.responseTimeout)
		default:
			return s.fail(ErrRequestUnknown)
		}
		outcome = Outcome{Status: script.Suspended}
	}

	return
}

func (s *Scheduler) fail(err error) Outcome {
	s.teardown(Failed)
	s.log.Info("scheduler: failed", zap.Stringer("run", s.runID), zap.Error(err))
	s.Emit(Event{Kind: EventFailed, Text: f("script error: %v", err), Err: err})

	return Outcome{Status: script.Failed, Err: err}
}

// teardown releases the coroutine and timer, entering state.
func (s *Scheduler) teardown(state State) {
	s.disarm()
	if s.co != nil {
		s.co.Close()
		s.co = nil
	}
	s.session.expectedPattern = nil
	s.session.state = state
}

// arm the single timer. A previous timer is cancelled.
func (s *Scheduler) arm(d time.Duration) {
	s.disarm()

	gen := s.timerGen
	s.timerStop = s.clock.AfterFunc(d, func() {
		s.timerFired(gen)
	})
}

// disarm the timer, and invalidate a fire already queued.
func (s *Scheduler) disarm() {
	if s.timerStop != nil {
		s.timerStop()
		s.timerStop = nil
	}
	s.timerGen++
}

func (s *Scheduler) timerFired(gen uint64) {
	if gen != s.timerGen {
		return
	}
	s.timerStop = nil
	s.timerGen++

	switch s.session.state {
	case SuspendedSleep:
		s.resume(script.Unit{})
	case SuspendedAwaitingResponse:
		s.log.Info("scheduler: response timeout",
			zap.Stringer("run", s.runID),
			zap.Duration("timeout", s.session.responseTimeout),
		)
		s.session.expectedPattern = nil
		s.Emit(Event{Kind: EventTimeout, Text: f("response timeout")})
		s.resume(script.Response{Matched: false})
	}
}

// bridge is the script.Host of a Scheduler run.
type bridge struct {
	s *Scheduler
}

var _ script.Host = (*bridge)(nil)

func (b *bridge) sent(data []byte, err error) error {
	if err != nil {
		b.s.log.Info("scheduler: send", zap.Stringer("run", b.s.runID), zap.Error(err))
		b.s.Emit(Event{Kind: EventOutput, Text: f("send failed: %v", err), Err: err})
		return err
	}

	b.s.Emit(Event{Kind: EventSent, Data: data})
	return nil
}

func (b *bridge) Send(data []byte) error {
	if b.s.link == nil {
		return b.sent(data, link.ErrNotConnected)
	}

	_, err := b.s.link.TrySend(data)
	return b.sent(data, err)
}

func (b *bridge) SendTo(addr string, data []byte) error {
	if b.s.link == nil {
		return b.sent(data, link.ErrNotConnected)
	}

	_, err := b.s.link.SendTo(addr, data)
	return b.sent(data, err)
}

func (b *bridge) Print(text string) {
	b.s.Emit(Event{Kind: EventOutput, Text: text})
}

func (b *bridge) LastData() []byte {
	return b.s.session.consume()
}

func (b *bridge) SetResponseTimeout(ms int) {
	if ms > 0 {
		b.s.session.responseTimeout = script.Millis(ms)
	}
}
