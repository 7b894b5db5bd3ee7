// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package script

import (
	"errors"
	"iter"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// coroutineKey is the thread-local slot holding the running *Coroutine.
const coroutineKey = "linkscript.coroutine"

// Scripts are plain top-level programs, so allow control flow and
// reassignment outside of functions.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Options tune script execution.
type Options struct {
	MaxSteps uint64 // Starlark execution step budget per run, 0 for unlimited.
}

// Program is a compiled script.
type Program struct {
	Name   string
	Source string

	prog *starlark.Program
}

// Compile parses and resolves source. Errors are *ErrLoad.
func Compile(name, source string) (prog *Program, err error) {
	_, compiled, err := starlark.SourceProgramOptions(fileOptions, name, source, isPredeclared)
	if err != nil {
		err = &ErrLoad{Name: name, Err: err}
		return
	}

	prog = &Program{
		Name:   name,
		Source: source,
		prog:   compiled,
	}

	return
}

func newThread(name string, host Host, opts Options) (thread *starlark.Thread) {
	thread = &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			host.Print(msg)
		},
	}
	if opts.MaxSteps != 0 {
		thread.SetMaxExecutionSteps(opts.MaxSteps)
	}

	return
}

// Coroutine is one suspendable run of a Program.
//
// The script body only executes inside Resume, on the caller's goroutine.
// A Coroutine must not be used from more than one goroutine at a time.
type Coroutine struct {
	prog   *Program
	host   Host
	thread *starlark.Thread

	next  func() (Request, bool)
	stop  func()
	yield func(Request) bool

	value   Resume // Value for the suspended builtin.
	err     error  // Script error, once the body returned.
	done    bool
	closing bool
}

// NewCoroutine prepares a run of prog. Nothing executes until the first
// Resume, which must pass Unit.
func NewCoroutine(prog *Program, host Host, opts Options) (co *Coroutine) {
	co = &Coroutine{
		prog:   prog,
		host:   host,
		thread: newThread(prog.Name, host, opts),
	}
	co.thread.SetLocal(coroutineKey, co)
	co.next, co.stop = iter.Pull(co.body)

	return
}

func (co *Coroutine) body(yield func(Request) bool) {
	co.yield = yield
	_, co.err = co.prog.prog.Init(co.thread, Predeclared(co.host))
}

// Done reports whether the coroutine has finished or been closed.
func (co *Coroutine) Done() bool {
	return co.done
}

// Resume runs the script until it suspends, returns or fails.
func (co *Coroutine) Resume(value Resume) (result Result) {
	if co.done {
		result = Result{Status: Failed, Err: ErrFinished}
		return
	}

	co.value = value
	req, ok := co.next()
	co.value = nil

	if ok {
		result = Result{Status: Suspended, Request: req}
		return
	}

	co.done = true
	if co.err != nil {
		result = Result{Status: Failed, Err: runtimeError(co.err)}
		return
	}

	result = Result{Status: Completed}
	return
}

// Close abandons the coroutine. A suspended script is unwound; its
// pending builtin call fails with ErrStopped. Close is idempotent.
func (co *Coroutine) Close() {
	if co.closing {
		return
	}

	co.closing = true
	co.thread.Cancel(ErrStopped.Error())
	co.stop()
	co.done = true
}

// suspend yields req to the Resume caller and returns the value it is
// resumed with.
func (co *Coroutine) suspend(req Request) (value Resume, err error) {
	if co.closing || co.yield == nil {
		err = ErrStopped
		return
	}

	if !co.yield(req) {
		err = ErrStopped
		return
	}

	value = co.value
	return
}

// coroutineOf returns the coroutine thread is running in, if any.
func coroutineOf(thread *starlark.Thread) (co *Coroutine, ok bool) {
	co, ok = thread.Local(coroutineKey).(*Coroutine)
	return
}

// runtimeError attaches the innermost script position to err.
func runtimeError(err error) error {
	var evalErr *starlark.EvalError
	if !errors.As(err, &evalErr) {
		return &ErrRuntime{Err: err}
	}

	// Builtin frames carry a line 0 position.
	var pos syntax.Position
	for n := len(evalErr.CallStack) - 1; n >= 0; n-- {
		frame := evalErr.CallStack[n]
		if frame.Pos.IsValid() && frame.Pos.Line > 0 {
			pos = frame.Pos
			break
		}
	}

	return &ErrRuntime{Pos: pos, Err: evalErr}
}

// Exec runs prog to completion on the calling goroutine. sleep() blocks for
// real and awaitResponse() fails with ErrNotCoroutine.
func Exec(prog *Program, host Host, opts Options) (err error) {
	thread := newThread(prog.Name, host, opts)

	_, err = prog.prog.Init(thread, Predeclared(host))
	if err != nil {
		err = runtimeError(err)
	}

	return
}
