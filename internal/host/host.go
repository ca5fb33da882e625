// Package host runs the scene: it owns the World, consumes network events,
// advances rotators at a fixed tick rate and applies command lines.
package host

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/solar-scene/internal/command"
	"github.com/vovakirdan/solar-scene/internal/netserver"
	"github.com/vovakirdan/solar-scene/internal/protocol"
	"github.com/vovakirdan/solar-scene/internal/world"
)

// ErrStopped is returned by Submit when the host loop is not running.
var ErrStopped = errors.New("host: stopped")

// Origin identifies where a command line came from.
type Origin string

const (
	OriginNetwork Origin = "udp"
	OriginSSH     Origin = "ssh"
	OriginReplay  Origin = "replay"
	OriginExec    Origin = "exec"
)

// Config holds configuration for the host loop.
type Config struct {
	TickRate      int // Scene updates per second
	HistorySize   int // Results kept for Recent
	SubmitBacklog int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TickRate:      60,
		HistorySize:   100,
		SubmitBacklog: 16,
	}
}

// Journal persists executed commands and session lifecycle.
// This allows the host to record history without depending on the storage package.
type Journal interface {
	JournalCommand(rec CommandRecord) error
	JournalSession(rec SessionRecord) error
}

// CommandRecord contains one executed command for persistence.
type CommandRecord struct {
	Session string
	Remote  string
	Origin  string
	Line    string
	Opcode  string
	Err     string // Empty on success
}

// SessionRecord describes a session opening or closing.
type SessionRecord struct {
	Session  string
	Remote   string
	Closed   bool
	Reason   string
	Messages int
}

// Result is the outcome of one command line.
type Result struct {
	Origin  Origin
	Session string
	Line    string
	Opcode  string
	Err     error
	At      time.Time
}

// OK reports whether the command was applied.
func (r Result) OK() bool { return r.Err == nil }

type submitRequest struct {
	origin Origin
	line   string
	reply  chan Result
}

type peer struct {
	remote   string
	messages int
}

// Host serializes every world mutation onto one goroutine.
type Host struct {
	config  Config
	world   *world.World
	journal Journal // Optional, can be nil
	logger  *log.Logger

	submits chan submitRequest
	done    chan struct{}

	// Only touched by the loop goroutine
	peers map[netserver.SessionID]*peer

	historyMu sync.RWMutex
	history   []Result
}

// New creates a host for w. A nil logger discards output.
func New(cfg Config, w *world.World, logger *log.Logger) *Host {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Host{
		config:  cfg,
		world:   w,
		logger:  logger,
		submits: make(chan submitRequest, cfg.SubmitBacklog),
		done:    make(chan struct{}),
		peers:   make(map[netserver.SessionID]*peer),
	}
}

// SetJournal sets the journal for command history.
func (h *Host) SetJournal(j Journal) {
	h.journal = j
}

// World returns the hosted world.
func (h *Host) World() *world.World {
	return h.world
}

// Replay applies lines in order before the loop starts. Failures are logged
// and skipped. Returns the number of applied commands.
func (h *Host) Replay(lines []string) int {
	applied := 0
	for _, line := range lines {
		if res := h.execute(OriginReplay, "", "", line); res.OK() {
			applied++
		}
	}
	h.logger.Info("replay finished", "applied", applied, "failed", len(lines)-applied)
	return applied
}

// Run processes events and submissions until ctx is cancelled. A nil or
// closed events channel leaves the loop serving local submissions only.
func (h *Host) Run(ctx context.Context, events <-chan netserver.Event) error {
	defer close(h.done)

	tickDuration := time.Second / time.Duration(h.config.TickRate)
	ticker := time.NewTicker(tickDuration)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			h.world.Update(float32(now.Sub(last).Seconds()))
			last = now

		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			h.handleEvent(evt)

		case req := <-h.submits:
			req.reply <- h.execute(req.origin, "", "", req.line)

		case <-ctx.Done():
			return nil
		}
	}
}

// Submit runs line on the host goroutine and waits for its result.
func (h *Host) Submit(ctx context.Context, origin Origin, line string) (Result, error) {
	req := submitRequest{origin: origin, line: line, reply: make(chan Result, 1)}

	select {
	case h.submits <- req:
	case <-h.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res, nil
	case <-h.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Recent returns up to n of the latest results, newest first.
func (h *Host) Recent(n int) []Result {
	h.historyMu.RLock()
	defer h.historyMu.RUnlock()

	if n <= 0 || n > len(h.history) {
		n = len(h.history)
	}
	out := make([]Result, 0, n)
	for i := len(h.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.history[i])
	}
	return out
}

func (h *Host) handleEvent(evt netserver.Event) {
	switch e := evt.(type) {
	case netserver.ClientConnected:
		h.handleConnected(e)
	case netserver.ClientDisconnected:
		h.handleDisconnected(e)
	case netserver.NetworkMessage:
		h.handleMessage(e)
	}
}

func (h *Host) handleConnected(e netserver.ClientConnected) {
	remote := e.Addr.String()
	h.peers[e.Session] = &peer{remote: remote}
	h.logger.Info("client connected", "session", e.Session, "remote", remote)
	h.journalSession(SessionRecord{Session: string(e.Session), Remote: remote})
}

func (h *Host) handleDisconnected(e netserver.ClientDisconnected) {
	remote := e.Addr.String()
	messages := 0
	if p, ok := h.peers[e.Session]; ok {
		messages = p.messages
		delete(h.peers, e.Session)
	}
	h.logger.Info("client disconnected", "session", e.Session, "remote", remote, "reason", e.Reason)
	h.journalSession(SessionRecord{
		Session:  string(e.Session),
		Remote:   remote,
		Closed:   true,
		Reason:   e.Reason.String(),
		Messages: messages,
	})
}

func (h *Host) handleMessage(e netserver.NetworkMessage) {
	line := string(e.Payload)
	remote := e.Addr.String()
	h.logger.Info("message received", "session", e.Session, "id", e.MsgID, "payload", line)

	if p, ok := h.peers[e.Session]; ok {
		p.messages++
	}

	if e.MsgID != protocol.MsgGame {
		h.logger.Warn("ignoring message", "session", e.Session, "id", e.MsgID)
		return
	}

	h.execute(OriginNetwork, string(e.Session), remote, line)
}

func (h *Host) execute(origin Origin, session, remote, line string) Result {
	cmd, err := command.Execute(h.world, line)

	res := Result{
		Origin:  origin,
		Session: session,
		Line:    line,
		Err:     err,
		At:      time.Now(),
	}
	if cmd != nil {
		res.Opcode = string(cmd.Opcode())
	}

	if err != nil {
		h.logger.Warn("command failed", "origin", origin, "line", line, "error", err)
	} else {
		h.logger.Debug("command applied", "origin", origin, "opcode", res.Opcode)
	}

	h.remember(res)

	if h.journal != nil {
		rec := CommandRecord{
			Session: session,
			Remote:  remote,
			Origin:  string(origin),
			Line:    line,
			Opcode:  res.Opcode,
		}
		if err != nil {
			rec.Err = err.Error()
		}
		if jerr := h.journal.JournalCommand(rec); jerr != nil {
			h.logger.Error("journal write failed", "error", jerr)
		}
	}

	return res
}

func (h *Host) journalSession(rec SessionRecord) {
	if h.journal == nil {
		return
	}
	if err := h.journal.JournalSession(rec); err != nil {
		h.logger.Error("journal write failed", "error", err)
	}
}

func (h *Host) remember(res Result) {
	h.historyMu.Lock()
	defer h.historyMu.Unlock()

	h.history = append(h.history, res)
	if over := len(h.history) - h.config.HistorySize; over > 0 {
		h.history = append(h.history[:0], h.history[over:]...)
	}
}
