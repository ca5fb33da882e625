package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrHandshakeTimeout is returned by Dial when the host never accepts.
	ErrHandshakeTimeout = errors.New("protocol: handshake timed out")

	// ErrClosed is returned by operations on a closed connection.
	ErrClosed = errors.New("protocol: connection closed")

	// ErrClosedByPeer is returned after the host sent a disconnect.
	ErrClosedByPeer = errors.New("protocol: connection closed by peer")
)

// Options configure a client connection.
type Options struct {
	HandshakeTimeout time.Duration
	RetryInterval    time.Duration
	MaxRetries       int
	Logger           *log.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: 5 * time.Second,
		RetryInterval:    DefaultRetryInterval,
		MaxRetries:       DefaultMaxRetries,
	}
}

// Conn is a client connection to a scene host.
type Conn struct {
	conn   net.Conn
	outbox *Outbox
	logger *log.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	err    error
	notify chan struct{} // signalled when the outbox shrinks or the conn fails

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Dial connects to addr and performs the handshake.
func Dial(ctx context.Context, addr string, opts Options) (*Conn, error) {
	def := DefaultOptions()
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = def.HandshakeTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("protocol: dial %s: %w", addr, err)
	}

	c := &Conn{
		conn:   nc,
		outbox: NewOutbox(opts.RetryInterval, opts.MaxRetries),
		logger: opts.Logger,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	if err := c.handshake(ctx, opts.HandshakeTimeout); err != nil {
		nc.Close()
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.retransmitLoop()
	return c, nil
}

func (c *Conn) handshake(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	buf := make([]byte, 64)
	for time.Now().Before(deadline) {
		if err := c.write(Control(KindConnect)); err != nil {
			return err
		}

		wait := time.Now().Add(c.outbox.RetryInterval())
		if wait.After(deadline) {
			wait = deadline
		}
		for {
			if err := c.conn.SetReadDeadline(wait); err != nil {
				return fmt.Errorf("protocol: set deadline: %w", err)
			}
			n, err := c.conn.Read(buf)
			if err != nil {
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					break
				}
				// ICMP port unreachable surfaces as a read error on a
				// connected UDP socket; keep retrying until the deadline.
				c.logger.Debug("handshake read failed", "error", err)
				time.Sleep(time.Until(wait))
				break
			}
			p, err := Decode(buf[:n])
			if err == nil && p.Kind == KindAccept {
				return c.conn.SetReadDeadline(time.Time{})
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrHandshakeTimeout, c.conn.RemoteAddr())
}

// RemoteAddr returns the host address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send transmits a message. Reliable messages are retransmitted until acked.
func (c *Conn) Send(msgID uint16, reliable, inOrder bool, payload []byte) error {
	if err := c.Err(); err != nil {
		return err
	}
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	body := append([]byte(nil), payload...)
	p := c.outbox.Stamp(Message(msgID, reliable, inOrder, body), time.Now())
	return c.write(p)
}

// SendText sends line as a reliable, in-order scene command.
func (c *Conn) SendText(line string) error {
	return c.Send(MsgGame, true, true, []byte(line))
}

// Pending returns the number of unacknowledged reliable messages.
func (c *Conn) Pending() int {
	return c.outbox.Pending()
}

// Flush blocks until every reliable message has been acknowledged.
func (c *Conn) Flush(ctx context.Context) error {
	for {
		if err := c.Err(); err != nil {
			return err
		}
		if c.outbox.Pending() == 0 {
			return nil
		}
		select {
		case <-c.notify:
		case <-c.done:
			return c.errOr(ErrClosed)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Err returns the error that broke the connection, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close sends a disconnect and releases the socket. Safe to call repeatedly.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.Err() == nil {
			//nolint:errcheck // Best-effort goodbye
			c.write(Control(KindDisconnect))
		}
		c.fail(ErrClosed)
		close(c.done)
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}

func (c *Conn) write(p Packet) error {
	buf, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("protocol: write %s: %w", p.Kind, err)
	}
	return nil
}

func (c *Conn) readLoop() {
	defer c.wg.Done()

	buf := make([]byte, messageSize+MaxPayload)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			// Connected UDP sockets report ICMP errors here; the host may
			// just not be up yet, so keep reading.
			c.logger.Debug("read failed", "error", err)
			time.Sleep(c.outbox.RetryInterval() / 4)
			continue
		}

		p, err := Decode(buf[:n])
		if err != nil {
			c.logger.Debug("dropping packet", "error", err)
			continue
		}

		switch p.Kind {
		case KindAck:
			if c.outbox.Ack(p.Seq) {
				c.signal()
			}
		case KindPing:
			//nolint:errcheck // Best-effort reply
			c.write(Control(KindPong))
		case KindDisconnect:
			c.logger.Info("host closed the connection")
			c.fail(ErrClosedByPeer)
			return
		}
	}
}

func (c *Conn) retransmitLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.outbox.RetryInterval() / 2)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			resend, failed := c.outbox.Due(now)
			for _, p := range resend {
				if err := c.write(p); err != nil {
					c.logger.Debug("retransmit failed", "seq", p.Seq, "error", err)
				}
			}
			if len(failed) > 0 {
				c.fail(fmt.Errorf("%w: seq %d", ErrUnacked, failed[0].Seq))
			}
		}
	}
}

func (c *Conn) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	c.signal()
}

func (c *Conn) errOr(fallback error) error {
	if err := c.Err(); err != nil {
		return err
	}
	return fallback
}

func (c *Conn) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}
