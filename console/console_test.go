// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package console

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/linkscript/link"
	"github.com/ezrec/linkscript/scheduler"
	"github.com/ezrec/linkscript/script"
)

const waitTimeout = 2 * time.Second

type harness struct {
	console *Console
	events  chan scheduler.Event
	ctx     context.Context
}

func newHarness(t *testing.T) (h *harness) {
	h = &harness{
		events: make(chan scheduler.Event, 256),
	}

	h.console = New(scheduler.Config{Name: "test.star"}, func(ev scheduler.Event) {
		h.events <- ev
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	h.ctx = ctx

	go h.console.Run(ctx)
	t.Cleanup(func() {
		h.console.Close()
		cancel()
	})

	return
}

// wait for an event satisfying match, skipping others.
func (h *harness) wait(t *testing.T, match func(ev scheduler.Event) bool) (ev scheduler.Event) {
	t.Helper()

	deadline := time.After(waitTimeout)
	for {
		select {
		case ev = <-h.events:
			if match(ev) {
				return
			}
		case <-deadline:
			require.FailNow(t, "event never arrived")
		}
	}
}

func kind(kind scheduler.EventKind) func(ev scheduler.Event) bool {
	return func(ev scheduler.Event) bool {
		return ev.Kind == kind
	}
}

func output(text string) func(ev scheduler.Event) bool {
	return func(ev scheduler.Event) bool {
		return ev.Kind == scheduler.EventOutput && ev.Text == text
	}
}

func TestConsole_TcpServerAwait(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	h := newHarness(t)

	cfg := link.Config{
		TcpServer: link.TcpServerConfig{ListenAddr: "127.0.0.1"},
	}
	require.NoError(h.console.SwitchTransport(h.ctx, link.ModeTcpServer, cfg))
	require.NotNil(h.console.Addr())

	client, err := net.Dial("tcp", h.console.Addr().String())
	require.NoError(err)
	defer client.Close()

	h.wait(t, func(ev scheduler.Event) bool {
		return ev.Kind == scheduler.EventStatus && strings.Contains(ev.Text, "client connected")
	})

	outcome, err := h.console.ExecuteScript(h.ctx, `
send("ping")
ok, data = awaitResponse("PO")
print(ok, data)
`)
	require.NoError(err)
	require.Equal(script.Suspended, outcome.Status)

	state, err := h.console.State(h.ctx)
	require.NoError(err)
	assert.Equal(scheduler.SuspendedAwaitingResponse, state)

	buf := make([]byte, 16)
	client.SetReadDeadline(time.Now().Add(waitTimeout))
	n, err := client.Read(buf)
	require.NoError(err)
	assert.Equal("ping", string(buf[:n]))

	_, err = client.Write([]byte("PONG"))
	require.NoError(err)

	h.wait(t, output("true 50 4F 4E 47"))
	h.wait(t, kind(scheduler.EventCompleted))
}

func TestConsole_Timeout(t *testing.T) {
	require := require.New(t)

	h := newHarness(t)

	outcome, err := h.console.ExecuteScript(h.ctx, `
setResponseTimeout(20)
ok, data = awaitResponse()
print(ok, data)
`)
	require.NoError(err)
	require.Equal(script.Suspended, outcome.Status)

	h.wait(t, kind(scheduler.EventTimeout))
	h.wait(t, output("false nil"))
}

func TestConsole_Sleep(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	h := newHarness(t)

	start := time.Now()
	outcome, err := h.console.ExecuteScript(h.ctx, `
sleep(30)
print("woke")
`)
	require.NoError(err)
	require.Equal(script.Suspended, outcome.Status)

	h.wait(t, output("woke"))
	assert.GreaterOrEqual(time.Since(start), 30*time.Millisecond)
}

func TestConsole_StopScript(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	h := newHarness(t)

	_, err := h.console.ExecuteScript(h.ctx, `sleep(10000)`)
	require.NoError(err)

	require.NoError(h.console.StopScript(h.ctx))
	require.NoError(h.console.StopScript(h.ctx))
	h.wait(t, kind(scheduler.EventStopped))

	state, err := h.console.State(h.ctx)
	require.NoError(err)
	assert.Equal(scheduler.Idle, state)
}

func TestConsole_SendNotConnected(t *testing.T) {
	assert := assert.New(t)

	h := newHarness(t)

	err := h.console.Send(h.ctx, []byte("x"))
	assert.ErrorIs(err, link.ErrNotConnected)

	ev := h.wait(t, kind(scheduler.EventOutput))
	assert.ErrorIs(ev.Err, link.ErrNotConnected)
}

func TestConsole_UdpSendTo(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	h := newHarness(t)

	peer, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(err)
	defer peer.Close()

	require.NoError(h.console.SwitchTransport(h.ctx, link.ModeUdp, link.Config{}))

	require.NoError(h.console.SendTo(h.ctx, peer.LocalAddr().String(), []byte{0x01, 0x02}))
	ev := h.wait(t, kind(scheduler.EventSent))
	assert.Equal([]byte{0x01, 0x02}, ev.Data)

	buf := make([]byte, 16)
	peer.SetReadDeadline(time.Now().Add(waitTimeout))
	n, _, err := peer.ReadFrom(buf)
	require.NoError(err)
	assert.Equal([]byte{0x01, 0x02}, buf[:n])
}

func TestConsole_WatchScript(t *testing.T) {
	require := require.New(t)

	h := newHarness(t)

	path := filepath.Join(t.TempDir(), "watched.star")
	require.NoError(os.WriteFile(path, []byte(`print("one")`), 0o644))

	ctx, cancel := context.WithCancel(h.ctx)
	done := make(chan error, 1)
	go func() { done <- h.console.WatchScript(ctx, path) }()

	h.wait(t, output("one"))

	require.NoError(os.WriteFile(path, []byte(`print("two")`), 0o644))
	h.wait(t, output("two"))

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(err, context.Canceled)
	case <-time.After(waitTimeout):
		require.FailNow("watch did not stop")
	}
}

func TestConsole_ExecuteFileMissing(t *testing.T) {
	assert := assert.New(t)

	h := newHarness(t)

	_, err := h.console.ExecuteFile(h.ctx, filepath.Join(t.TempDir(), "missing.star"))
	var fileErr *ErrScriptFile
	assert.ErrorAs(err, &fileErr)
}

func TestConsole_Close(t *testing.T) {
	assert := assert.New(t)

	c := New(scheduler.Config{}, nil, nil)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	_, err := c.ExecuteScript(context.Background(), `sleep(10000)`)
	assert.NoError(err)

	assert.NoError(c.Close())
	select {
	case err := <-done:
		assert.NoError(err)
	case <-time.After(waitTimeout):
		assert.Fail("run did not return")
	}

	_, err = c.ExecuteScript(context.Background(), `print(1)`)
	assert.Error(err)
}

func TestConsole_CancelStopsScript(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	events := make(chan scheduler.Event, 16)
	c := New(scheduler.Config{}, func(ev scheduler.Event) {
		events <- ev
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	outcome, err := c.ExecuteScript(context.Background(), `sleep(10000)`)
	require.NoError(err)
	require.Equal(script.Suspended, outcome.Status)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(err, context.Canceled)
	case <-time.After(waitTimeout):
		require.FailNow("run did not return")
	}

	assert.NoError(c.Close())

	var kinds []scheduler.EventKind
	for len(events) > 0 {
		kinds = append(kinds, (<-events).Kind)
	}
	assert.Equal([]scheduler.EventKind{scheduler.EventStopped}, kinds)
	assert.Equal(scheduler.Idle, c.sched.State())
}
