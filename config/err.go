// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package config

import (
	"errors"

	"github.com/ezrec/linkscript/translate"
)

var f = translate.From

var (
	ErrResponseTimeoutInvalid = errors.New(f("response timeout must not be negative"))
	ErrWatchWithoutPath       = errors.New(f("watch requires a script path"))
)

// ErrLoad reports a profile that could not be read.
type ErrLoad struct {
	Path string
	Err  error
}

func (err *ErrLoad) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}

// ErrUnknownKey reports a profile key that no setting uses.
type ErrUnknownKey struct {
	Key string
}

func (err *ErrUnknownKey) Error() string {
	return f("unknown key %v", err.Key)
}
