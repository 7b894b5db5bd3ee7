// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package console

import (
	"github.com/ezrec/linkscript/translate"
)

var f = translate.From

// ErrScriptFile reports a script file that could not be read.
type ErrScriptFile struct {
	Path string
	Err  error
}

func (err *ErrScriptFile) Error() string {
	return f("script %v: %v", err.Path, err.Err)
}

func (err *ErrScriptFile) Unwrap() error {
	return err.Err
}
