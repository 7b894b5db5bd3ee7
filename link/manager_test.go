// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeChannel records its lifecycle in a shared journal.
type fakeChannel struct {
	mode        Mode
	journal     *[]string
	activateErr error
	active      bool
	sent        [][]byte
}

func (fc *fakeChannel) Mode() Mode {
	return fc.mode
}

func (fc *fakeChannel) Activate(cfg Config, h Handler) error {
	*fc.journal = append(*fc.journal, "activate "+fc.mode.String())
	if fc.activateErr != nil {
		return fc.activateErr
	}
	fc.active = true
	return nil
}

func (fc *fakeChannel) Deactivate() error {
	*fc.journal = append(*fc.journal, "deactivate "+fc.mode.String())
	fc.active = false
	return nil
}

func (fc *fakeChannel) TrySend(data []byte) (int, error) {
	if !fc.active {
		return 0, ErrNotConnected
	}
	fc.sent = append(fc.sent, data)
	return len(data), nil
}

type fakeFactory struct {
	journal  []string
	channels []*fakeChannel
	fail     map[Mode]error
}

func (ff *fakeFactory) install(m *Manager) {
	for _, mode := range []Mode{ModeSerial, ModeTcpClient, ModeTcpServer, ModeUdp} {
		m.Factories[mode] = func(log *zap.Logger) Channel {
			fc := &fakeChannel{mode: mode, journal: &ff.journal, activateErr: ff.fail[mode]}
			ff.channels = append(ff.channels, fc)
			return fc
		}
	}
}

func TestManager_Switch(t *testing.T) {
	assert := assert.New(t)

	ff := &fakeFactory{}
	m := NewManager(HandlerFuncs{}, nil)
	ff.install(m)

	assert.Equal(ModeNone, m.Mode())

	assert.NoError(m.Switch(ModeSerial, Config{}))
	assert.Equal(ModeSerial, m.Mode())

	assert.NoError(m.Switch(ModeUdp, Config{}))
	assert.Equal(ModeUdp, m.Mode())

	assert.NoError(m.Switch(ModeTcpServer, Config{}))
	assert.Equal(ModeTcpServer, m.Mode())

	assert.NoError(m.Close())
	assert.Equal(ModeNone, m.Mode())

	assert.Equal([]string{
		"activate serial",
		"deactivate serial",
		"activate udp",
		"deactivate udp",
		"activate tcp-server",
		"deactivate tcp-server",
	}, ff.journal)

	// Only one channel was ever active at a time, and none is now.
	for _, fc := range ff.channels {
		assert.False(fc.active)
	}
}

func TestManager_SwitchFailure(t *testing.T) {
	assert := assert.New(t)

	boom := errors.New("boom")
	ff := &fakeFactory{fail: map[Mode]error{ModeTcpClient: boom}}
	m := NewManager(HandlerFuncs{}, nil)
	ff.install(m)

	assert.NoError(m.Switch(ModeSerial, Config{}))

	err := m.Switch(ModeTcpClient, Config{})
	assert.ErrorIs(err, boom)
	assert.Equal(ModeNone, m.Mode())
	assert.Equal([]string{
		"activate serial",
		"deactivate serial",
		"activate tcp-client",
	}, ff.journal)

	err = m.Switch(Mode(99), Config{})
	assert.ErrorIs(err, ErrModeInvalid)
}

func TestManager_TrySend(t *testing.T) {
	assert := assert.New(t)

	ff := &fakeFactory{}
	m := NewManager(HandlerFuncs{}, nil)
	ff.install(m)

	_, err := m.TrySend([]byte("AB"))
	assert.ErrorIs(err, ErrNotConnected)

	_, err = m.SendTo("127.0.0.1:9", []byte("AB"))
	assert.ErrorIs(err, ErrNotConnected)

	assert.NoError(m.Switch(ModeSerial, Config{}))
	n, err := m.TrySend([]byte("AB"))
	assert.NoError(err)
	assert.Equal(2, n)
	assert.Equal([][]byte{[]byte("AB")}, ff.channels[0].sent)

	_, err = m.SendTo("127.0.0.1:9", []byte("AB"))
	assert.ErrorIs(err, ErrPeerUnsupported)

	assert.Nil(m.Addr())
}
