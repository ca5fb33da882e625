package protocol

import "sort"

// Window bounds how far ahead of the oldest missing sequence number an Inbox
// accepts reliable messages.
const Window = 1024

// Inbox is the receive side of one peer's reliable stream. It drops
// duplicates and holds in-order messages until every earlier reliable message
// has arrived. Not safe for concurrent use.
type Inbox struct {
	low      uint32            // every seq below low has been received
	received map[uint32]bool   // received seqs at or above low
	held     map[uint32]Packet // in-order messages waiting on a gap
}

// NewInbox creates an inbox expecting sequence number 1 first.
func NewInbox() *Inbox {
	return &Inbox{
		low:      1,
		received: make(map[uint32]bool),
		held:     make(map[uint32]Packet),
	}
}

// Receive accepts a message packet and returns the messages now deliverable,
// in delivery order. ack reports whether the sender should be acknowledged;
// it is true for duplicates and false for packets outside the window.
func (in *Inbox) Receive(p Packet) (deliver []Packet, ack bool) {
	if !p.Reliable() {
		return []Packet{p}, false
	}
	if p.Seq < in.low || in.received[p.Seq] {
		return nil, true
	}
	if p.Seq >= in.low+Window {
		return nil, false
	}

	in.received[p.Seq] = true
	if p.InOrder() {
		// Payload aliases the read buffer.
		p.Payload = append([]byte(nil), p.Payload...)
		in.held[p.Seq] = p
	} else {
		deliver = append(deliver, p)
	}

	for in.received[in.low] {
		delete(in.received, in.low)
		in.low++
	}

	if len(in.held) > 0 {
		ready := make([]uint32, 0, len(in.held))
		for seq := range in.held {
			if seq < in.low {
				ready = append(ready, seq)
			}
		}
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		for _, seq := range ready {
			deliver = append(deliver, in.held[seq])
			delete(in.held, seq)
		}
	}
	return deliver, true
}

// Held returns the number of in-order messages waiting on a gap.
func (in *Inbox) Held() int {
	return len(in.held)
}
