package protocol

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closedAddr returns a loopback UDP address nobody listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := pc.LocalAddr().String()
	require.NoError(t, pc.Close())
	return addr
}

func TestDialHandshakeTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.HandshakeTimeout = 300 * time.Millisecond
	opts.RetryInterval = 50 * time.Millisecond

	start := time.Now()
	c, err := Dial(context.Background(), closedAddr(t), opts)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, ErrHandshakeTimeout), "got %v", err)
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

// fakeHost accepts one peer, acks reliable messages and records payloads.
type fakeHost struct {
	pc       net.PacketConn
	received chan string
	gone     chan struct{}
	once     sync.Once
}

func startFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeHost{pc: pc, received: make(chan string, 16), gone: make(chan struct{})}
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.serve()
	}()
	t.Cleanup(func() {
		pc.Close()
		<-done
	})
	return f
}

func (f *fakeHost) serve() {
	buf := make([]byte, 2048)
	for {
		n, addr, err := f.pc.ReadFrom(buf)
		if err != nil {
			return
		}
		p, err := Decode(buf[:n])
		if err != nil {
			continue
		}
		switch p.Kind {
		case KindConnect:
			f.reply(addr, Control(KindAccept))
		case KindMessage:
			if p.Reliable() {
				f.reply(addr, Ack(p.Seq))
			}
			select {
			case f.received <- string(p.Payload):
			default:
			}
		case KindDisconnect:
			f.once.Do(func() { close(f.gone) })
		}
	}
}

func (f *fakeHost) reply(addr net.Addr, p Packet) {
	buf, err := p.MarshalBinary()
	if err != nil {
		return
	}
	//nolint:errcheck // Test peer
	f.pc.WriteTo(buf, addr)
}

func TestConnSendFlushClose(t *testing.T) {
	f := startFakeHost(t)

	opts := DefaultOptions()
	opts.RetryInterval = 50 * time.Millisecond
	c, err := Dial(context.Background(), f.pc.LocalAddr().String(), opts)
	require.NoError(t, err)

	require.NoError(t, c.SendText("CRP home 1 2 3"))

	select {
	case got := <-f.received:
		assert.Equal(t, "CRP home 1 2 3", got)
	case <-time.After(3 * time.Second):
		t.Fatal("message never arrived")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, c.Flush(ctx))
	assert.Zero(t, c.Pending())

	require.NoError(t, c.Close())
	select {
	case <-f.gone:
	case <-time.After(3 * time.Second):
		t.Fatal("disconnect never arrived")
	}

	assert.ErrorIs(t, c.SendText("MOV a b"), ErrClosed)
}

func TestSendRejectsOversizedPayload(t *testing.T) {
	f := startFakeHost(t)

	c, err := Dial(context.Background(), f.pc.LocalAddr().String(), DefaultOptions())
	require.NoError(t, err)
	defer c.Close()

	err = c.Send(MsgGame, true, true, make([]byte, MaxPayload+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Zero(t, c.Pending())
}
