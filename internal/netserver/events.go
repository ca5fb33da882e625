package netserver

import "net"

// Event is emitted by the server for the host to consume.
type Event interface {
	netEvent()
}

// ClientConnected is emitted after a successful handshake.
type ClientConnected struct {
	Session SessionID
	Addr    net.Addr
}

func (ClientConnected) netEvent() {}

// ClientDisconnected is emitted when a session ends.
type ClientDisconnected struct {
	Session SessionID
	Addr    net.Addr
	Reason  DisconnectReason
}

func (ClientDisconnected) netEvent() {}

// NetworkMessage carries one delivered application message.
type NetworkMessage struct {
	Session SessionID
	Addr    net.Addr
	MsgID   uint16
	Payload []byte
}

func (NetworkMessage) netEvent() {}

// DisconnectReason describes why a session ended.
type DisconnectReason int

const (
	ReasonClosed   DisconnectReason = iota // Client sent a disconnect
	ReasonTimeout                          // No traffic within the idle timeout
	ReasonShutdown                         // Server stopped
)

func (r DisconnectReason) String() string {
	switch r {
	case ReasonClosed:
		return "closed"
	case ReasonTimeout:
		return "timeout"
	case ReasonShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
