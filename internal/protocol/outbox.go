package protocol

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrUnacked is reported for reliable messages that exhausted their retries.
var ErrUnacked = errors.New("protocol: message not acknowledged")

const (
	DefaultRetryInterval = 200 * time.Millisecond
	DefaultMaxRetries    = 25
)

type outgoing struct {
	packet   Packet
	attempts int
	lastSent time.Time
}

// Outbox is the send side of a reliable stream. It numbers reliable messages
// and tracks them until acknowledged. Safe for concurrent use.
type Outbox struct {
	retryInterval time.Duration
	maxRetries    int

	mu      sync.Mutex
	nextSeq uint32
	pending map[uint32]*outgoing
}

// NewOutbox creates an outbox. Zero values select the defaults.
func NewOutbox(retryInterval time.Duration, maxRetries int) *Outbox {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Outbox{
		retryInterval: retryInterval,
		maxRetries:    maxRetries,
		nextSeq:       1,
		pending:       make(map[uint32]*outgoing),
	}
}

// Stamp assigns a sequence number to a reliable message and starts tracking
// it as sent at now. Unreliable packets are returned unchanged.
func (o *Outbox) Stamp(p Packet, now time.Time) Packet {
	if !p.Reliable() {
		return p
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	p.Seq = o.nextSeq
	o.nextSeq++
	o.pending[p.Seq] = &outgoing{packet: p, attempts: 1, lastSent: now}
	return p
}

// Ack stops tracking seq. It reports whether seq was pending.
func (o *Outbox) Ack(seq uint32) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.pending[seq]; !ok {
		return false
	}
	delete(o.pending, seq)
	return true
}

// Due returns the packets to retransmit at now, in sequence order, and the
// packets that ran out of retries. Failed packets are no longer tracked.
func (o *Outbox) Due(now time.Time) (resend, failed []Packet) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for seq, out := range o.pending {
		if now.Sub(out.lastSent) < o.retryInterval {
			continue
		}
		if out.attempts >= o.maxRetries {
			failed = append(failed, out.packet)
			delete(o.pending, seq)
			continue
		}
		out.attempts++
		out.lastSent = now
		resend = append(resend, out.packet)
	}
	sort.Slice(resend, func(i, j int) bool { return resend[i].Seq < resend[j].Seq })
	sort.Slice(failed, func(i, j int) bool { return failed[i].Seq < failed[j].Seq })
	return resend, failed
}

// Pending returns the number of unacknowledged reliable messages.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// RetryInterval returns the retransmission interval.
func (o *Outbox) RetryInterval() time.Duration {
	return o.retryInterval
}
