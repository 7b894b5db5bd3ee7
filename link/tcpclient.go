// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	TCP_DIAL_TIMEOUT = 5 * time.Second
)

// TcpClient is an outbound TCP connection. Activate returns before the
// connection is established; the outcome is reported through the Handler.
type TcpClient struct {
	DialTimeout time.Duration

	log *zap.Logger

	mu      sync.Mutex
	addr    string
	conn    net.Conn
	out     *outbox
	handler Handler
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ Channel = (*TcpClient)(nil)

// NewTcpClient creates an inactive TCP client channel.
func NewTcpClient(log *zap.Logger) *TcpClient {
	return &TcpClient{
		DialTimeout: TCP_DIAL_TIMEOUT,
		log:         log,
	}
}

func (tc *TcpClient) Mode() Mode {
	return ModeTcpClient
}

// Activate starts connecting in the background.
func (tc *TcpClient) Activate(cfg Config, h Handler) (err error) {
	err = cfg.Validate(ModeTcpClient)
	if err != nil {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	tc.addr = hostPort(cfg.TcpClient.Host, cfg.TcpClient.Port)
	tc.handler = h
	tc.cancel = cancel

	tc.wg.Add(1)
	go tc.run(ctx, tc.addr, cfg.sendQueue(), h)

	tc.log.Info("tcp: connecting", zap.String("addr", tc.addr))
	h.StatusChanged(false, f("connecting to tcp server %v", tc.addr))

	return
}

func (tc *TcpClient) run(ctx context.Context, addr string, depth int, h Handler) {
	defer tc.wg.Done()

	dialer := net.Dialer{Timeout: tc.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() == nil {
			tc.log.Warn("tcp: dial failed", zap.String("addr", addr), zap.Error(err))
			h.StatusChanged(false, f("tcp error: %v", err))
		}
		return
	}

	out := newOutbox(depth)

	tc.mu.Lock()
	if ctx.Err() != nil {
		tc.mu.Unlock()
		conn.Close()
		return
	}
	tc.conn = conn
	tc.out = out
	tc.mu.Unlock()

	tc.wg.Add(1)
	go func() {
		defer tc.wg.Done()
		out.drain(conn, tc.log)
	}()

	tc.log.Info("tcp: connected", zap.String("addr", addr))
	h.StatusChanged(true, f("tcp server connected: %v", addr))

	err = receive(conn, addr, h)

	tc.mu.Lock()
	if tc.conn == conn {
		tc.conn = nil
		tc.out = nil
	}
	tc.mu.Unlock()

	out.close()
	conn.Close()

	if ctx.Err() == nil {
		tc.log.Info("tcp: disconnected", zap.String("addr", addr), zap.Error(err))
		h.StatusChanged(false, f("tcp connection lost"))
	}
}

// Deactivate aborts any dial in progress, closes the connection and waits
// for the goroutines to exit.
func (tc *TcpClient) Deactivate() (err error) {
	tc.mu.Lock()
	cancel := tc.cancel
	conn := tc.conn
	out := tc.out
	h := tc.handler
	tc.cancel = nil
	tc.conn = nil
	tc.out = nil
	tc.handler = nil
	tc.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	if out != nil {
		out.close()
	}
	if conn != nil {
		err = conn.Close()
	}
	tc.wg.Wait()

	tc.log.Info("tcp: closed", zap.String("addr", tc.addr))
	h.StatusChanged(false, f("tcp connection closed"))

	return
}

// TrySend queues data for the connection.
func (tc *TcpClient) TrySend(data []byte) (n int, err error) {
	tc.mu.Lock()
	out := tc.out
	tc.mu.Unlock()

	if out == nil {
		err = ErrNotConnected
		return
	}

	return out.offer(data)
}
