// Package tui provides the operator console served over SSH via Wish.
// Each session gets a Bubble Tea program showing the live scene tables and
// an input line that submits commands to the host.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RefreshMsg is sent to trigger a table refresh.
type RefreshMsg time.Time

// refreshCmd returns a Bubble Tea command that sends refresh messages at the specified interval.
func refreshCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return RefreshMsg(t)
	})
}
