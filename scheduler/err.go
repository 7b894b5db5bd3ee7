// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"errors"

	"github.com/ezrec/linkscript/translate"
)

var f = translate.From

var (
	ErrBusy           = errors.New(f("scheduler busy running a script"))
	ErrRequestUnknown = errors.New(f("unknown suspension request"))
)

// ErrPanic reports a panic recovered while resuming a script.
type ErrPanic struct {
	Value any
}

func (err *ErrPanic) Error() string {
	return f("script panic: %v", err.Value)
}
