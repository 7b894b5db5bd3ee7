// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package script

import (
	"errors"

	"go.starlark.net/syntax"

	"github.com/ezrec/linkscript/translate"
)

var f = translate.From

var (
	ErrStopped      = errors.New(f("script stopped"))
	ErrFinished     = errors.New(f("script already finished"))
	ErrNotCoroutine = errors.New(f("not running as a coroutine"))
	ErrPrefixType   = errors.New(f("prefix must be str, bytes or None"))
	ErrTextType     = errors.New(f("text must be str or bytes"))

	ErrPrintKeywords = errors.New(f("print takes no keyword arguments"))
)

// ErrLoad reports a script that failed to parse or resolve.
type ErrLoad struct {
	Name string
	Err  error
}

func (err *ErrLoad) Error() string {
	return f("load %v: %v", err.Name, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}

// ErrRuntime indicates the script location of a runtime error.
type ErrRuntime struct {
	Pos syntax.Position
	Err error
}

func (err *ErrRuntime) Error() string {
	if !err.Pos.IsValid() {
		return err.Err.Error()
	}
	return f("%v: %v", err.Pos.String(), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
