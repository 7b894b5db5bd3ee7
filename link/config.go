// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"net"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

const (
	DEFAULT_BAUD_RATE  = 115200
	DEFAULT_DATA_BITS  = 8
	DEFAULT_SEND_QUEUE = 64
)

// SerialConfig describes a serial port.
type SerialConfig struct {
	Port     string `toml:"port"`      // Device name, e.g. /dev/ttyUSB0 or COM3.
	BaudRate int    `toml:"baud_rate"` // Zero selects DEFAULT_BAUD_RATE.
	DataBits int    `toml:"data_bits"` // 5..8, zero selects DEFAULT_DATA_BITS.
	StopBits string `toml:"stop_bits"` // "1", "1.5" or "2"; empty is "1".
	Parity   string `toml:"parity"`    // none, even, odd, mark or space; empty is none.
}

// TcpClientConfig describes an outbound TCP connection.
type TcpClientConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// TcpServerConfig describes a listening TCP server.
type TcpServerConfig struct {
	ListenAddr string `toml:"listen_addr"` // Empty listens on all interfaces.
	Port       int    `toml:"port"`        // Zero picks an ephemeral port.
}

// UdpConfig describes a bound UDP socket and its default peer.
type UdpConfig struct {
	LocalPort  int    `toml:"local_port"`
	RemoteHost string `toml:"remote_host"`
	RemotePort int    `toml:"remote_port"`
}

// Config carries the settings of every transport. Only the section for the
// selected mode is read.
type Config struct {
	Mode      Mode            `toml:"mode"`
	SendQueue int             `toml:"send_queue"` // Outbox depth per connection.
	Serial    SerialConfig    `toml:"serial"`
	TcpClient TcpClientConfig `toml:"tcp_client"`
	TcpServer TcpServerConfig `toml:"tcp_server"`
	Udp       UdpConfig       `toml:"udp"`
}

func (cfg *Config) sendQueue() int {
	if cfg.SendQueue <= 0 {
		return DEFAULT_SEND_QUEUE
	}
	return cfg.SendQueue
}

// Validate checks that the section for mode has what the transport needs.
func (cfg *Config) Validate(mode Mode) (err error) {
	switch mode {
	case ModeNone:
	case ModeSerial:
		if len(cfg.Serial.Port) == 0 {
			err = &ErrConfigMissing{Mode: mode, Field: "port"}
			return
		}
		_, err = cfg.Serial.serialMode()
	case ModeTcpClient:
		if len(cfg.TcpClient.Host) == 0 {
			err = &ErrConfigMissing{Mode: mode, Field: "host"}
			return
		}
		if cfg.TcpClient.Port <= 0 {
			err = &ErrConfigMissing{Mode: mode, Field: "port"}
			return
		}
	case ModeTcpServer:
	case ModeUdp:
		if len(cfg.Udp.RemoteHost) != 0 && cfg.Udp.RemotePort <= 0 {
			err = &ErrConfigMissing{Mode: mode, Field: "remote_port"}
			return
		}
	default:
		err = ErrModeInvalid
	}

	return
}

var parityMap = map[string]serial.Parity{
	"":      serial.NoParity,
	"none":  serial.NoParity,
	"even":  serial.EvenParity,
	"odd":   serial.OddParity,
	"mark":  serial.MarkParity,
	"space": serial.SpaceParity,
}

var stopBitsMap = map[string]serial.StopBits{
	"":    serial.OneStopBit,
	"1":   serial.OneStopBit,
	"1.5": serial.OnePointFiveStopBits,
	"2":   serial.TwoStopBits,
}

// serialMode converts the configuration into a go.bug.st/serial mode.
func (sc *SerialConfig) serialMode() (mode *serial.Mode, err error) {
	parity, ok := parityMap[strings.ToLower(sc.Parity)]
	if !ok {
		err = ErrParityInvalid
		return
	}

	stopBits, ok := stopBitsMap[sc.StopBits]
	if !ok {
		err = ErrStopBitsInvalid
		return
	}

	dataBits := sc.DataBits
	if dataBits == 0 {
		dataBits = DEFAULT_DATA_BITS
	}
	if dataBits < 5 || dataBits > 8 {
		err = ErrDataBitsInvalid
		return
	}

	baudRate := sc.BaudRate
	if baudRate == 0 {
		baudRate = DEFAULT_BAUD_RATE
	}

	mode = &serial.Mode{
		BaudRate: baudRate,
		DataBits: dataBits,
		Parity:   parity,
		StopBits: stopBits,
	}

	return
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
