// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"errors"

	"github.com/ezrec/linkscript/translate"
)

var f = translate.From

var (
	// Send errors
	ErrNotConnected    = errors.New(f("channel not connected"))
	ErrNoPeer          = errors.New(f("no remote peer"))
	ErrSendQueueFull   = errors.New(f("send queue full"))
	ErrPeerUnsupported = errors.New(f("channel does not support explicit peers"))

	// Configuration errors
	ErrModeInvalid     = errors.New(f("connection mode invalid"))
	ErrParityInvalid   = errors.New(f("parity invalid"))
	ErrStopBitsInvalid = errors.New(f("stop bits invalid"))
	ErrDataBitsInvalid = errors.New(f("data bits invalid"))
)

// ErrConfigMissing reports a required configuration field with no value.
type ErrConfigMissing struct {
	Mode  Mode
	Field string
}

func (err *ErrConfigMissing) Error() string {
	return f("%v: %v missing", err.Mode, err.Field)
}

// ErrPeerAddr reports an explicit peer that is not a literal "ip:port".
type ErrPeerAddr struct {
	Addr string
	Err  error
}

func (err *ErrPeerAddr) Error() string {
	return f("peer %q: %v", err.Addr, err.Err)
}

func (err *ErrPeerAddr) Unwrap() error {
	return err.Err
}

// ErrActivate wraps a failure to bring up a channel.
type ErrActivate struct {
	Mode Mode
	Err  error
}

func (err *ErrActivate) Error() string {
	return f("%v: %v", err.Mode, err.Err)
}

func (err *ErrActivate) Unwrap() error {
	return err.Err
}
