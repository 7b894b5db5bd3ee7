// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"net"
	"sync"

	"go.uber.org/zap"
)

// TcpServer listens for TCP clients. Inbound data from every client is
// delivered with the client address; sends fan out to all clients.
type TcpServer struct {
	log *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	clients  map[net.Conn]*outbox
	handler  Handler
	wg       sync.WaitGroup
}

var _ Channel = (*TcpServer)(nil)

// NewTcpServer creates an inactive TCP server channel.
func NewTcpServer(log *zap.Logger) *TcpServer {
	return &TcpServer{
		log: log,
	}
}

func (ts *TcpServer) Mode() Mode {
	return ModeTcpServer
}

// Addr returns the listening address, or nil when inactive.
func (ts *TcpServer) Addr() net.Addr {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.listener == nil {
		return nil
	}
	return ts.listener.Addr()
}

// Clients returns the number of connected clients.
func (ts *TcpServer) Clients() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return len(ts.clients)
}

// Activate starts listening and accepting clients.
func (ts *TcpServer) Activate(cfg Config, h Handler) (err error) {
	err = cfg.Validate(ModeTcpServer)
	if err != nil {
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	addr := hostPort(cfg.TcpServer.ListenAddr, cfg.TcpServer.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		ts.log.Warn("tcp server: listen failed", zap.String("addr", addr), zap.Error(err))
		h.StatusChanged(false, f("tcp server failed to start: %v", err))
		err = &ErrActivate{Mode: ModeTcpServer, Err: err}
		return
	}

	ts.listener = ln
	ts.handler = h
	ts.clients = make(map[net.Conn]*outbox)

	ts.wg.Add(1)
	go ts.accept(ln, cfg.sendQueue(), h)

	ts.log.Info("tcp server: listening", zap.Stringer("addr", ln.Addr()))
	h.StatusChanged(true, f("tcp server started: %v", ln.Addr()))

	return
}

func (ts *TcpServer) accept(ln net.Listener, depth int, h Handler) {
	defer ts.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			ts.log.Debug("tcp server: accept done", zap.Error(err))
			return
		}

		out := newOutbox(depth)

		ts.mu.Lock()
		if ts.listener != ln {
			ts.mu.Unlock()
			conn.Close()
			return
		}
		ts.clients[conn] = out
		ts.mu.Unlock()

		peer := conn.RemoteAddr().String()
		ts.log.Info("tcp server: client connected", zap.String("peer", peer))
		h.StatusChanged(true, f("client connected: %v", peer))

		ts.wg.Add(2)
		go func() {
			defer ts.wg.Done()
			out.drain(conn, ts.log)
		}()
		go ts.serve(conn, peer, out, h)
	}
}

func (ts *TcpServer) serve(conn net.Conn, peer string, out *outbox, h Handler) {
	defer ts.wg.Done()

	err := receive(conn, peer, h)

	ts.mu.Lock()
	_, owned := ts.clients[conn]
	delete(ts.clients, conn)
	ts.mu.Unlock()

	out.close()
	conn.Close()

	if owned {
		ts.log.Info("tcp server: client disconnected", zap.String("peer", peer), zap.Error(err))
		h.StatusChanged(true, f("client disconnected: %v", peer))
	}
}

// Deactivate stops listening, drops every client and waits for all
// goroutines to exit.
func (ts *TcpServer) Deactivate() (err error) {
	ts.mu.Lock()
	ln := ts.listener
	clients := ts.clients
	h := ts.handler
	ts.listener = nil
	ts.clients = nil
	ts.handler = nil
	ts.mu.Unlock()

	if ln == nil {
		return
	}

	err = ln.Close()
	for conn, out := range clients {
		out.close()
		conn.Close()
	}
	ts.wg.Wait()

	ts.log.Info("tcp server: stopped", zap.Stringer("addr", ln.Addr()))
	h.StatusChanged(false, f("tcp server stopped"))

	return
}

// TrySend queues data for every connected client.
func (ts *TcpServer) TrySend(data []byte) (n int, err error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if len(ts.clients) == 0 {
		err = ErrNotConnected
		return
	}

	for _, out := range ts.clients {
		_, sendErr := out.offer(data)
		if sendErr != nil {
			err = sendErr
			continue
		}
		n = len(data)
	}

	if n > 0 {
		err = nil
	}

	return
}
