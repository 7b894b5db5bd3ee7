// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"bytes"
	"net"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	UDP_MAX_DATAGRAM = 65535
)

// Udp is a bound UDP socket with an optional default peer.
type Udp struct {
	log *zap.Logger

	mu      sync.Mutex
	conn    *net.UDPConn
	remote  *net.UDPAddr
	handler Handler
	wg      sync.WaitGroup
}

var _ Channel = (*Udp)(nil)
var _ PeerSender = (*Udp)(nil)

// NewUdp creates an inactive UDP channel.
func NewUdp(log *zap.Logger) *Udp {
	return &Udp{
		log: log,
	}
}

func (uc *Udp) Mode() Mode {
	return ModeUdp
}

// Addr returns the bound local address, or nil when inactive.
func (uc *Udp) Addr() net.Addr {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.conn == nil {
		return nil
	}
	return uc.conn.LocalAddr()
}

// Activate binds the local port and remembers the default peer.
func (uc *Udp) Activate(cfg Config, h Handler) (err error) {
	err = cfg.Validate(ModeUdp)
	if err != nil {
		return
	}

	var remote *net.UDPAddr
	if len(cfg.Udp.RemoteHost) != 0 {
		remote, err = net.ResolveUDPAddr("udp", hostPort(cfg.Udp.RemoteHost, cfg.Udp.RemotePort))
		if err != nil {
			h.StatusChanged(false, f("udp failed to start: %v", err))
			err = &ErrActivate{Mode: ModeUdp, Err: err}
			return
		}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: cfg.Udp.LocalPort})
	if err != nil {
		uc.log.Warn("udp: bind failed", zap.Int("port", cfg.Udp.LocalPort), zap.Error(err))
		h.StatusChanged(false, f("udp failed to start: %v", err))
		err = &ErrActivate{Mode: ModeUdp, Err: err}
		return
	}

	uc.conn = conn
	uc.remote = remote
	uc.handler = h

	uc.wg.Add(1)
	go uc.read(conn, h)

	uc.log.Info("udp: listening",
		zap.Stringer("addr", conn.LocalAddr()),
		zap.Stringer("remote", remote),
	)
	h.StatusChanged(true, f("udp listening on %v", conn.LocalAddr()))

	return
}

func (uc *Udp) read(conn *net.UDPConn, h Handler) {
	defer uc.wg.Done()

	buf := make([]byte, UDP_MAX_DATAGRAM)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			uc.log.Debug("udp: reader done", zap.Error(err))
			return
		}
		h.Received(Packet{
			Data: bytes.Clone(buf[:n]),
			Peer: addr.String(),
			Time: time.Now(),
		})
	}
}

// Deactivate closes the socket and waits for the reader to exit.
func (uc *Udp) Deactivate() (err error) {
	uc.mu.Lock()
	conn := uc.conn
	h := uc.handler
	uc.conn = nil
	uc.remote = nil
	uc.handler = nil
	uc.mu.Unlock()

	if conn == nil {
		return
	}

	err = conn.Close()
	uc.wg.Wait()

	uc.log.Info("udp: stopped")
	h.StatusChanged(false, f("udp stopped"))

	return
}

// TrySend sends one datagram to the default peer.
func (uc *Udp) TrySend(data []byte) (n int, err error) {
	uc.mu.Lock()
	conn := uc.conn
	remote := uc.remote
	uc.mu.Unlock()

	if conn == nil {
		err = ErrNotConnected
		return
	}
	if remote == nil {
		err = ErrNoPeer
		return
	}

	return conn.WriteToUDP(data, remote)
}

// SendTo sends one datagram to an explicit peer. The peer must be a
// literal "ip:port"; host names are refused rather than resolved, as
// SendTo runs on the caller's event loop.
func (uc *Udp) SendTo(addr string, data []byte) (n int, err error) {
	uc.mu.Lock()
	conn := uc.conn
	uc.mu.Unlock()

	if conn == nil {
		err = ErrNotConnected
		return
	}

	remote, err := netip.ParseAddrPort(addr)
	if err != nil {
		err = &ErrPeerAddr{Addr: addr, Err: err}
		return
	}

	return conn.WriteToUDPAddrPort(data, remote)
}
