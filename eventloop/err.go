// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package eventloop

import (
	"errors"

	"github.com/ezrec/linkscript/translate"
)

var f = translate.From

var (
	ErrClosed  = errors.New(f("event loop closed"))
	ErrRunning = errors.New(f("event loop already running"))
)
