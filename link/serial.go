// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"io"
	"sync"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// SerialPort is the subset of serial.Port the channel uses.
type SerialPort interface {
	io.ReadWriteCloser
}

// SerialOpener opens a named port with the given mode.
type SerialOpener func(name string, mode *serial.Mode) (SerialPort, error)

func openSerialPort(name string, mode *serial.Mode) (port SerialPort, err error) {
	sp, err := serial.Open(name, mode)
	if err != nil {
		return
	}
	port = sp
	return
}

// ListPorts returns the names of the serial ports present on the host.
func ListPorts() (ports []string, err error) {
	return serial.GetPortsList()
}

// Serial is a serial port channel.
type Serial struct {
	Open SerialOpener // Port opener, defaults to go.bug.st/serial.

	log *zap.Logger

	mu      sync.Mutex
	name    string
	port    SerialPort
	out     *outbox
	handler Handler
	wg      sync.WaitGroup
}

var _ Channel = (*Serial)(nil)

// NewSerial creates an inactive serial channel.
func NewSerial(log *zap.Logger) *Serial {
	return &Serial{
		Open: openSerialPort,
		log:  log,
	}
}

func (sc *Serial) Mode() Mode {
	return ModeSerial
}

// Activate opens the port and starts the reader and writer.
func (sc *Serial) Activate(cfg Config, h Handler) (err error) {
	err = cfg.Validate(ModeSerial)
	if err != nil {
		return
	}

	mode, err := cfg.Serial.serialMode()
	if err != nil {
		return
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	port, err := sc.Open(cfg.Serial.Port, mode)
	if err != nil {
		sc.log.Warn("serial: open failed",
			zap.String("port", cfg.Serial.Port),
			zap.Error(err),
		)
		h.StatusChanged(false, f("serial port %v failed: %v", cfg.Serial.Port, err))
		err = &ErrActivate{Mode: ModeSerial, Err: err}
		return
	}

	sc.name = cfg.Serial.Port
	sc.port = port
	sc.handler = h
	sc.out = newOutbox(cfg.sendQueue())

	sc.wg.Add(2)
	go func(out *outbox) {
		defer sc.wg.Done()
		out.drain(port, sc.log)
	}(sc.out)
	go func(out *outbox) {
		defer sc.wg.Done()
		err := receive(port, cfg.Serial.Port, h)
		out.close()

		// A port still installed was lost, not deactivated.
		sc.mu.Lock()
		lost := sc.port == port
		if lost {
			sc.port = nil
			sc.out = nil
			sc.handler = nil
		}
		sc.mu.Unlock()

		if !lost {
			sc.log.Debug("serial: reader done", zap.String("port", cfg.Serial.Port), zap.Error(err))
			return
		}

		port.Close()
		sc.log.Warn("serial: port lost", zap.String("port", cfg.Serial.Port), zap.Error(err))
		h.StatusChanged(false, f("serial port lost: %v", err))
	}(sc.out)

	sc.log.Info("serial: opened",
		zap.String("port", sc.name),
		zap.Int("baud", mode.BaudRate),
	)
	h.StatusChanged(true, f("serial port connected: %v", sc.name))

	return
}

// Deactivate closes the port and waits for the reader and writer to exit.
func (sc *Serial) Deactivate() (err error) {
	sc.mu.Lock()
	port := sc.port
	out := sc.out
	h := sc.handler
	name := sc.name
	sc.port = nil
	sc.out = nil
	sc.handler = nil
	sc.mu.Unlock()

	if port == nil {
		return
	}

	out.close()
	err = port.Close()
	sc.wg.Wait()

	sc.log.Info("serial: closed", zap.String("port", name))
	h.StatusChanged(false, f("serial port closed"))

	return
}

// TrySend queues data for the port.
func (sc *Serial) TrySend(data []byte) (n int, err error) {
	sc.mu.Lock()
	out := sc.out
	sc.mu.Unlock()

	if out == nil {
		err = ErrNotConnected
		return
	}

	return out.offer(data)
}
