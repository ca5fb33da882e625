// Package protocol defines the datagram framing spoken between the scene host
// and its clients: a small connection handshake plus reliable, optionally
// in-order, application messages identified by a numeric message id.
//
// Every packet starts with a two byte magic and a one byte kind; the remaining
// fields are big endian:
//
//	Connect, Accept, Disconnect, Ping, Pong: no body
//	Message: seq u32 | msgID u16 | flags u8 | length u16 | payload
//	Ack:     seq u32
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic prefixes every packet ("SN").
	Magic uint16 = 0x534e

	// MsgGame carries a scene command line.
	MsgGame uint16 = 32

	// DefaultPort is the scene host's UDP port.
	DefaultPort = 32000

	// MaxPayload bounds a single message body.
	MaxPayload = 1024

	headerSize  = 3
	messageSize = headerSize + 4 + 2 + 1 + 2
	ackSize     = headerSize + 4
)

// Kind is the packet type.
type Kind uint8

const (
	KindConnect Kind = iota + 1
	KindAccept
	KindMessage
	KindAck
	KindDisconnect
	KindPing
	KindPong
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindAccept:
		return "accept"
	case KindMessage:
		return "message"
	case KindAck:
		return "ack"
	case KindDisconnect:
		return "disconnect"
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Flags modify message delivery.
type Flags uint8

const (
	// FlagReliable requests acknowledgement and retransmission.
	FlagReliable Flags = 1 << iota

	// FlagInOrder holds a reliable message until every earlier reliable
	// message from the same peer has been received.
	FlagInOrder
)

var (
	ErrBadMagic        = errors.New("protocol: bad magic")
	ErrShortPacket     = errors.New("protocol: short packet")
	ErrUnknownKind     = errors.New("protocol: unknown packet kind")
	ErrPayloadTooLarge = errors.New("protocol: payload too large")
)

// Packet is a decoded datagram.
type Packet struct {
	Kind    Kind
	Seq     uint32 // reliable sequence number, 0 for unreliable messages
	MsgID   uint16
	Flags   Flags
	Payload []byte
}

// Reliable reports whether the packet is a reliable message.
func (p Packet) Reliable() bool {
	return p.Kind == KindMessage && p.Flags&FlagReliable != 0
}

// InOrder reports whether the packet is a reliable in-order message.
func (p Packet) InOrder() bool {
	return p.Reliable() && p.Flags&FlagInOrder != 0
}

// Control builds a packet without a body.
func Control(k Kind) Packet {
	return Packet{Kind: k}
}

// Ack builds an acknowledgement for seq.
func Ack(seq uint32) Packet {
	return Packet{Kind: KindAck, Seq: seq}
}

// Message builds an application message. The sequence number is assigned by
// an Outbox for reliable messages.
func Message(msgID uint16, reliable, inOrder bool, payload []byte) Packet {
	var flags Flags
	if reliable {
		flags |= FlagReliable
		if inOrder {
			flags |= FlagInOrder
		}
	}
	return Packet{Kind: KindMessage, MsgID: msgID, Flags: flags, Payload: payload}
}

// MarshalBinary encodes the packet.
func (p Packet) MarshalBinary() ([]byte, error) {
	switch p.Kind {
	case KindConnect, KindAccept, KindDisconnect, KindPing, KindPong:
		buf := make([]byte, headerSize)
		putHeader(buf, p.Kind)
		return buf, nil

	case KindAck:
		buf := make([]byte, ackSize)
		putHeader(buf, p.Kind)
		binary.BigEndian.PutUint32(buf[3:], p.Seq)
		return buf, nil

	case KindMessage:
		if len(p.Payload) > MaxPayload {
			return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(p.Payload))
		}
		buf := make([]byte, messageSize+len(p.Payload))
		putHeader(buf, p.Kind)
		binary.BigEndian.PutUint32(buf[3:], p.Seq)
		binary.BigEndian.PutUint16(buf[7:], p.MsgID)
		buf[9] = byte(p.Flags)
		binary.BigEndian.PutUint16(buf[10:], uint16(len(p.Payload)))
		copy(buf[messageSize:], p.Payload)
		return buf, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownKind, p.Kind)
}

// Decode parses a datagram. The returned payload aliases b.
func Decode(b []byte) (Packet, error) {
	if len(b) < headerSize {
		return Packet{}, ErrShortPacket
	}
	if binary.BigEndian.Uint16(b) != Magic {
		return Packet{}, ErrBadMagic
	}

	p := Packet{Kind: Kind(b[2])}
	switch p.Kind {
	case KindConnect, KindAccept, KindDisconnect, KindPing, KindPong:
		return p, nil

	case KindAck:
		if len(b) < ackSize {
			return Packet{}, ErrShortPacket
		}
		p.Seq = binary.BigEndian.Uint32(b[3:])
		return p, nil

	case KindMessage:
		if len(b) < messageSize {
			return Packet{}, ErrShortPacket
		}
		p.Seq = binary.BigEndian.Uint32(b[3:])
		p.MsgID = binary.BigEndian.Uint16(b[7:])
		p.Flags = Flags(b[9])
		n := int(binary.BigEndian.Uint16(b[10:]))
		if n > MaxPayload {
			return Packet{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
		}
		if len(b) < messageSize+n {
			return Packet{}, ErrShortPacket
		}
		p.Payload = b[messageSize : messageSize+n]
		return p, nil
	}
	return Packet{}, fmt.Errorf("%w: %d", ErrUnknownKind, b[2])
}

func putHeader(buf []byte, k Kind) {
	binary.BigEndian.PutUint16(buf, Magic)
	buf[2] = byte(k)
}
