// Package netserver accepts scene clients over UDP. It owns the connection
// lifecycle (handshake, keepalive, idle timeout, disconnect) and turns
// delivered messages into events for the host loop.
package netserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/solar-scene/internal/protocol"
)

// Config holds configuration for the server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":32000").
	Address string

	// IdleTimeout disconnects sessions without traffic. Quiet sessions are
	// pinged after half of it.
	IdleTimeout time.Duration

	// SweepInterval is how often idle sessions are checked.
	SweepInterval time.Duration

	// MessageRate and MessageBurst limit messages per session.
	MessageRate  float64
	MessageBurst int

	// EventBuffer is the capacity of the events channel.
	EventBuffer int
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:       fmt.Sprintf(":%d", protocol.DefaultPort),
		IdleTimeout:   2 * time.Minute,
		SweepInterval: time.Second,
		MessageRate:   50,
		MessageBurst:  100,
		EventBuffer:   256,
	}
}

// Server is a UDP scene server.
type Server struct {
	config   Config
	conn     net.PacketConn
	sessions *SessionRegistry
	events   chan Event
	logger   *log.Logger

	closeOnce sync.Once
	lastSweep time.Time
}

// Listen binds the server's UDP socket.
func Listen(cfg Config, logger *log.Logger) (*Server, error) {
	def := DefaultConfig()
	if cfg.Address == "" {
		cfg.Address = def.Address
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.MessageRate <= 0 {
		cfg.MessageRate = def.MessageRate
	}
	if cfg.MessageBurst <= 0 {
		cfg.MessageBurst = def.MessageBurst
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	conn, err := net.ListenPacket("udp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("netserver: binding to udp %s: %w", cfg.Address, err)
	}

	return &Server{
		config:   cfg,
		conn:     conn,
		sessions: NewSessionRegistry(),
		events:   make(chan Event, cfg.EventBuffer),
		logger:   logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Events returns the event stream. It is closed when Serve returns.
func (s *Server) Events() <-chan Event {
	return s.events
}

// Sessions returns the session registry.
func (s *Server) Sessions() *SessionRegistry {
	return s.sessions
}

// Serve processes packets until ctx is cancelled or the server is closed.
func (s *Server) Serve(ctx context.Context) error {
	defer close(s.events)

	stop := context.AfterFunc(ctx, func() {
		s.Close()
	})
	defer stop()

	s.logger.Info("listening", "address", s.Addr().String())
	s.lastSweep = time.Now()

	buf := make([]byte, 2048)
	for {
		//nolint:errcheck // Deadline errors resurface on ReadFrom
		s.conn.SetReadDeadline(time.Now().Add(s.config.SweepInterval))
		n, addr, err := s.conn.ReadFrom(buf)
		now := time.Now()
		if err != nil {
			var ne net.Error
			switch {
			case errors.As(err, &ne) && ne.Timeout():
				s.sweep(ctx, now)
				continue
			case errors.Is(err, net.ErrClosed):
				s.shutdown()
				return nil
			default:
				s.logger.Warn("read failed", "error", err)
				continue
			}
		}

		s.handle(ctx, addr, buf[:n], now)

		if now.Sub(s.lastSweep) >= s.config.SweepInterval {
			s.sweep(ctx, now)
		}
	}
}

// Close tells connected peers goodbye and stops the server.
// Safe to call more than once.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, sess := range s.sessions.all() {
			s.send(sess.addr, protocol.Control(protocol.KindDisconnect))
		}
		err = s.conn.Close()
	})
	return err
}

func (s *Server) handle(ctx context.Context, addr net.Addr, buf []byte, now time.Time) {
	p, err := protocol.Decode(buf)
	if err != nil {
		s.logger.Debug("dropping packet", "remote", addr.String(), "error", err)
		return
	}

	switch p.Kind {
	case protocol.KindConnect:
		s.handleConnect(ctx, addr, now)

	case protocol.KindDisconnect:
		if sess, ok := s.sessions.unregister(addr); ok {
			s.emit(ctx, ClientDisconnected{Session: sess.id, Addr: addr, Reason: ReasonClosed})
		}

	case protocol.KindPing:
		s.sessions.touch(addr, now)
		s.send(addr, protocol.Control(protocol.KindPong))

	case protocol.KindPong:
		s.sessions.touch(addr, now)

	case protocol.KindMessage:
		s.handleMessage(ctx, addr, p, now)

	case protocol.KindAck, protocol.KindAccept:
		s.sessions.touch(addr, now)
	}
}

func (s *Server) handleConnect(ctx context.Context, addr net.Addr, now time.Time) {
	// A repeated connect means our accept was lost.
	if _, ok := s.sessions.touch(addr, now); ok {
		s.send(addr, protocol.Control(protocol.KindAccept))
		return
	}

	sess := &session{
		id:          NewSessionID(),
		addr:        addr,
		inbox:       protocol.NewInbox(),
		limiter:     rate.NewLimiter(rate.Limit(s.config.MessageRate), s.config.MessageBurst),
		connectedAt: now,
		lastSeen:    now,
	}
	s.sessions.register(sess)
	s.send(addr, protocol.Control(protocol.KindAccept))
	s.emit(ctx, ClientConnected{Session: sess.id, Addr: addr})
}

func (s *Server) handleMessage(ctx context.Context, addr net.Addr, p protocol.Packet, now time.Time) {
	sess, ok := s.sessions.touch(addr, now)
	if !ok {
		s.logger.Debug("message from unknown peer", "remote", addr.String())
		s.send(addr, protocol.Control(protocol.KindDisconnect))
		return
	}

	// Unacked reliable messages come back later; unreliable ones are lost.
	if !sess.limiter.AllowN(now, 1) {
		s.logger.Warn("rate limit exceeded", "session", sess.id, "remote", addr.String())
		return
	}

	deliver, ack := sess.inbox.Receive(p)
	if ack {
		s.send(addr, protocol.Ack(p.Seq))
	}
	for _, m := range deliver {
		s.sessions.countMessage(sess)
		s.emit(ctx, NetworkMessage{
			Session: sess.id,
			Addr:    addr,
			MsgID:   m.MsgID,
			Payload: append([]byte(nil), m.Payload...),
		})
	}
}

func (s *Server) sweep(ctx context.Context, now time.Time) {
	s.lastSweep = now

	expired, quiet := s.sessions.idle(now, s.config.IdleTimeout)
	for _, sess := range expired {
		s.sessions.unregister(sess.addr)
		s.send(sess.addr, protocol.Control(protocol.KindDisconnect))
		s.emit(ctx, ClientDisconnected{Session: sess.id, Addr: sess.addr, Reason: ReasonTimeout})
	}
	for _, sess := range quiet {
		s.send(sess.addr, protocol.Control(protocol.KindPing))
	}
}

// shutdown reports every remaining session as gone.
func (s *Server) shutdown() {
	for _, sess := range s.sessions.all() {
		s.sessions.unregister(sess.addr)
		select {
		case s.events <- ClientDisconnected{Session: sess.id, Addr: sess.addr, Reason: ReasonShutdown}:
		default:
		}
	}
	s.logger.Info("stopped")
}

func (s *Server) send(addr net.Addr, p protocol.Packet) {
	buf, err := p.MarshalBinary()
	if err != nil {
		s.logger.Error("encode failed", "kind", p.Kind, "error", err)
		return
	}
	if _, err := s.conn.WriteTo(buf, addr); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("write failed", "remote", addr.String(), "kind", p.Kind, "error", err)
	}
}

// emit blocks while the host is busy so that delivery order is preserved.
func (s *Server) emit(ctx context.Context, evt Event) {
	select {
	case s.events <- evt:
	case <-ctx.Done():
	}
}
