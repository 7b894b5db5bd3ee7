// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package script

import (
	"math"
	"slices"
	"strings"
	"time"

	"go.starlark.net/starlark"

	"github.com/ezrec/linkscript/hexfmt"
)

// MAX_MILLIS is the largest millisecond count a time.Duration can hold.
const MAX_MILLIS = math.MaxInt64 / int64(time.Millisecond)

// Millis converts a millisecond count to a Duration, clamped to
// [0, MAX_MILLIS] milliseconds.
func Millis(ms int) time.Duration {
	return time.Duration(min(max(int64(ms), 0), MAX_MILLIS)) * time.Millisecond
}

// Host is what scripts can reach outside of Starlark.
type Host interface {
	// Send transmits data on the active link.
	Send(data []byte) error
	// SendTo transmits data to an explicit "ip:port" peer.
	SendTo(addr string, data []byte) error
	// Print emits script output.
	Print(text string)
	// LastData returns the latest unread payload and marks it read.
	LastData() []byte
	// SetResponseTimeout sets the awaitResponse timeout in milliseconds.
	SetResponseTimeout(ms int)
}

var builtinNames = []string{
	"send",
	"sendHex",
	"sleep",
	"print",
	"getLastData",
	"setResponseTimeout",
	"awaitResponse",
}

func isPredeclared(name string) bool {
	return slices.Contains(builtinNames, name)
}

// Predeclared returns the builtins bound to host.
func Predeclared(host Host) starlark.StringDict {
	return starlark.StringDict{
		"send": starlark.NewBuiltin("send", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			return builtinSend(host, b, args, kwargs)
		}),
		"sendHex": starlark.NewBuiltin("sendHex", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			return builtinSendHex(host, b, args, kwargs)
		}),
		"sleep": starlark.NewBuiltin("sleep", builtinSleep),
		"print": starlark.NewBuiltin("print", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			return builtinPrint(host, b, args, kwargs)
		}),
		"getLastData": starlark.NewBuiltin("getLastData", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0)
			if err != nil {
				return nil, err
			}
			return starlark.Bytes(host.LastData()), nil
		}),
		"setResponseTimeout": starlark.NewBuiltin("setResponseTimeout", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var ms int
			err := starlark.UnpackArgs(b.Name(), args, kwargs, "ms", &ms)
			if err != nil {
				return nil, err
			}
			if ms > 0 {
				host.SetResponseTimeout(ms)
			}
			return starlark.None, nil
		}),
		"awaitResponse": starlark.NewBuiltin("awaitResponse", builtinAwaitResponse),
	}
}

// transmit sends data and folds a link failure into a False result.
func transmit(host Host, to string, data []byte) starlark.Value {
	var err error
	if len(to) == 0 {
		err = host.Send(data)
	} else {
		err = host.SendTo(to, data)
	}

	return starlark.Bool(err == nil)
}

func builtinSend(host Host, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text starlark.Value
	var to string
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text, "to?", &to)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch v := text.(type) {
	case starlark.String:
		data = []byte(string(v))
	case starlark.Bytes:
		data = []byte(string(v))
	default:
		return nil, ErrTextType
	}

	return transmit(host, to, data), nil
}

func builtinSendHex(host Host, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	var to string
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "hex", &text, "to?", &to)
	if err != nil {
		return nil, err
	}

	return transmit(host, to, hexfmt.Decode(text)), nil
}

func builtinSleep(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var ms int
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "ms", &ms)
	if err != nil {
		return nil, err
	}

	duration := Millis(ms)

	co, ok := coroutineOf(thread)
	if !ok {
		time.Sleep(duration)
		return starlark.None, nil
	}

	_, err = co.suspend(SleepFor{Duration: duration})
	if err != nil {
		return nil, err
	}

	return starlark.None, nil
}

// FormatPrint renders print() arguments: strings and bytes as-is, numbers
// as numeric text, booleans as true/false and anything else as nil.
func FormatPrint(args starlark.Tuple) string {
	words := make([]string, len(args))
	for n, arg := range args {
		switch v := arg.(type) {
		case starlark.String:
			words[n] = string(v)
		case starlark.Bytes:
			words[n] = string(v)
		case starlark.Int:
			words[n] = v.String()
		case starlark.Float:
			words[n] = v.String()
		case starlark.Bool:
			if v {
				words[n] = "true"
			} else {
				words[n] = "false"
			}
		default:
			words[n] = "nil"
		}
	}

	return strings.Join(words, " ")
}

func builtinPrint(host Host, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) != 0 {
		return nil, ErrPrintKeywords
	}

	host.Print(FormatPrint(args))

	return starlark.None, nil
}

func builtinAwaitResponse(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var prefix starlark.Value = starlark.String("")
	var isHex bool
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "prefix?", &prefix, "hex?", &isHex)
	if err != nil {
		return nil, err
	}

	var pattern []byte
	switch v := prefix.(type) {
	case starlark.String:
		if isHex {
			pattern = hexfmt.Decode(string(v))
		} else {
			pattern = []byte(string(v))
		}
	case starlark.Bytes:
		pattern = []byte(string(v))
	case starlark.NoneType:
	default:
		return nil, ErrPrefixType
	}

	co, ok := coroutineOf(thread)
	if !ok {
		return nil, ErrNotCoroutine
	}

	value, err := co.suspend(AwaitResponse{Pattern: pattern})
	if err != nil {
		return nil, err
	}

	response, _ := value.(Response)
	if !response.Matched {
		return starlark.Tuple{starlark.False, starlark.None}, nil
	}

	return starlark.Tuple{starlark.True, starlark.String(hexfmt.Encode(response.Data))}, nil
}
