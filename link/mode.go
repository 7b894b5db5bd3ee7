// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

// Mode selects which transport is active.
type Mode int

const (
	ModeNone      = Mode(0) // No transport.
	ModeSerial    = Mode(1) // Serial port.
	ModeTcpClient = Mode(2) // Outbound TCP connection.
	ModeTcpServer = Mode(3) // Listening TCP server, fan-out to clients.
	ModeUdp       = Mode(4) // Bound UDP socket.
)

var modeNames = [...]string{
	ModeNone:      "none",
	ModeSerial:    "serial",
	ModeTcpClient: "tcp-client",
	ModeTcpServer: "tcp-server",
	ModeUdp:       "udp",
}

func (mode Mode) String() string {
	if mode < 0 || int(mode) >= len(modeNames) {
		return f("mode(%d)", int(mode))
	}
	return modeNames[mode]
}

// ParseMode converts a mode name back into a Mode.
func ParseMode(text string) (mode Mode, err error) {
	for n, name := range modeNames {
		if name == text {
			mode = Mode(n)
			return
		}
	}

	err = ErrModeInvalid
	return
}

// MarshalText implements encoding.TextMarshaler.
func (mode Mode) MarshalText() (text []byte, err error) {
	if mode < 0 || int(mode) >= len(modeNames) {
		err = ErrModeInvalid
		return
	}
	text = []byte(modeNames[mode])
	return
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (mode *Mode) UnmarshalText(text []byte) (err error) {
	*mode, err = ParseMode(string(text))
	return
}
