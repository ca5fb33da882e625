package netserver

import (
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/solar-scene/internal/protocol"
)

// SessionID uniquely identifies a client connection.
type SessionID string

// NewSessionID returns a fresh random session id.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// session is the per-peer state owned by the server's read loop.
type session struct {
	id          SessionID
	addr        net.Addr
	inbox       *protocol.Inbox
	limiter     *rate.Limiter
	connectedAt time.Time
	lastSeen    time.Time
	messages    int
}

// SessionInfo is a read-only snapshot of a connected client.
type SessionInfo struct {
	ID          SessionID
	Addr        string
	ConnectedAt time.Time
	LastSeen    time.Time
	Messages    int
}

// SessionRegistry tracks connected peers keyed by remote address.
// Thread-safe for concurrent access.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionRegistry creates a new session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*session),
	}
}

func (r *SessionRegistry) register(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.addr.String()] = s
}

func (r *SessionRegistry) unregister(addr net.Addr) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[addr.String()]
	if ok {
		delete(r.sessions, addr.String())
	}
	return s, ok
}

// touch records activity from addr and returns its session.
func (r *SessionRegistry) touch(addr net.Addr, now time.Time) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[addr.String()]
	if ok {
		s.lastSeen = now
	}
	return s, ok
}

func (r *SessionRegistry) countMessage(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.messages++
}

// idle partitions sessions by inactivity at now.
func (r *SessionRegistry) idle(now time.Time, timeout time.Duration) (expired, quiet []*session) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		since := now.Sub(s.lastSeen)
		switch {
		case since >= timeout:
			expired = append(expired, s)
		case since >= timeout/2:
			quiet = append(quiet, s)
		}
	}
	return expired, quiet
}

func (r *SessionRegistry) all() []*session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// List returns snapshots of every connected session, oldest first.
func (r *SessionRegistry) List() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, SessionInfo{
			ID:          s.id,
			Addr:        s.addr.String(),
			ConnectedAt: s.connectedAt,
			LastSeen:    s.lastSeen,
			Messages:    s.messages,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
