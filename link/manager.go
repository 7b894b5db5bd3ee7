// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"net"
	"sync"

	"go.uber.org/zap"
)

// Factory creates a fresh, inactive channel.
type Factory func(log *zap.Logger) Channel

// DefaultFactories maps every mode to its channel implementation.
func DefaultFactories() map[Mode]Factory {
	return map[Mode]Factory{
		ModeSerial:    func(log *zap.Logger) Channel { return NewSerial(log) },
		ModeTcpClient: func(log *zap.Logger) Channel { return NewTcpClient(log) },
		ModeTcpServer: func(log *zap.Logger) Channel { return NewTcpServer(log) },
		ModeUdp:       func(log *zap.Logger) Channel { return NewUdp(log) },
	}
}

// Manager owns the single active channel.
type Manager struct {
	Factories map[Mode]Factory // Channel constructors by mode.

	log     *zap.Logger
	handler Handler

	mu     sync.Mutex
	active Channel
}

// NewManager creates a manager with no active channel. Events from every
// channel it activates go to h.
func NewManager(h Handler, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		Factories: DefaultFactories(),
		log:       log,
		handler:   h,
	}
}

// Mode returns the mode of the active channel.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return ModeNone
	}
	return m.active.Mode()
}

// Addr returns the local address of the active channel, when it has one.
func (m *Manager) Addr() net.Addr {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	addressed, ok := active.(interface{ Addr() net.Addr })
	if !ok {
		return nil
	}
	return addressed.Addr()
}

// Switch deactivates the current channel, then activates a new one for
// mode. Switching to ModeNone only deactivates. When activation fails the
// manager is left with no active channel.
func (m *Manager) Switch(mode Mode, cfg Config) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		old := m.active
		m.active = nil
		deactivateErr := old.Deactivate()
		if deactivateErr != nil {
			m.log.Warn("link: deactivate",
				zap.Stringer("mode", old.Mode()),
				zap.Error(deactivateErr),
			)
		}
	}

	if mode == ModeNone {
		return
	}

	factory, ok := m.Factories[mode]
	if !ok {
		err = ErrModeInvalid
		return
	}

	ch := factory(m.log)
	err = ch.Activate(cfg, m.handler)
	if err != nil {
		return
	}

	m.active = ch
	m.log.Debug("link: switched", zap.Stringer("mode", mode))

	return
}

// TrySend hands data to the active channel without blocking.
func (m *Manager) TrySend(data []byte) (n int, err error) {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if active == nil {
		err = ErrNotConnected
		return
	}

	return active.TrySend(data)
}

// SendTo sends data to an explicit peer, if the active channel allows it.
func (m *Manager) SendTo(addr string, data []byte) (n int, err error) {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if active == nil {
		err = ErrNotConnected
		return
	}

	sender, ok := active.(PeerSender)
	if !ok {
		err = ErrPeerUnsupported
		return
	}

	return sender.SendTo(addr, data)
}

// Close deactivates the active channel.
func (m *Manager) Close() error {
	return m.Switch(ModeNone, Config{})
}
