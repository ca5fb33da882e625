package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/solar-scene/internal/storage"
)

var (
	flagHistoryLimit int
	flagSessions     bool
	flagClear        bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled commands and sessions",
	Long: `Display the most recent commands recorded by 'solar serve', or the
client sessions with --sessions.

Examples:
  solar history
  solar history --limit 100
  solar history --sessions
  solar history --clear`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().BoolVar(&flagSessions, "sessions", false, "Show client sessions instead of commands")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the command journal")
}

func runHistory(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Open journal
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearCommands(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing journal: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Command journal cleared.")
	case flagSessions:
		showSessions(store)
	default:
		showCommands(store)
	}
}

func showCommands(store *storage.Store) {
	entries, err := store.RecentCommands(flagHistoryLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving commands: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Recent commands")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No commands recorded yet.")
		fmt.Println()
		fmt.Println("Run 'solar serve' and send some with 'solar client'.")
		return
	}

	// Print header
	fmt.Printf("  %-14s  %-6s  %-6s  %-21s  %s\n", "When", "Origin", "Status", "Remote", "Line")
	fmt.Printf("  %-14s  %-6s  %-6s  %-21s  %s\n", "----", "------", "------", "------", "----")

	// Oldest first reads naturally
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		line := e.Line
		if e.Error != "" {
			line += "  (" + e.Error + ")"
		}
		fmt.Printf("  %-14s  %-6s  %-6s  %-21s  %s\n", humanize.Time(e.CreatedAt), e.Origin, e.Status, e.Remote, line)
	}

	// Show totals
	stats, err := store.CommandStats()
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("Total: %s commands, %s failed", humanize.Comma(int64(stats.Total)), humanize.Comma(int64(stats.Failed)))
	if !stats.LastAt.IsZero() {
		fmt.Printf(", last %s", humanize.Time(stats.LastAt))
	}
	fmt.Println()

	ops := make([]string, 0, len(stats.ByOpcode))
	for op := range stats.ByOpcode {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		name := op
		if name == "" {
			name = "(unparsed)"
		}
		fmt.Printf("  %-10s %s\n", name, humanize.Comma(int64(stats.ByOpcode[op])))
	}
}

func showSessions(store *storage.Store) {
	sessions, err := store.RecentSessions(flagHistoryLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Recent sessions")
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		return
	}

	fmt.Printf("  %-36s  %-21s  %-14s  %-10s  %-8s  %s\n", "Session", "Remote", "Connected", "Duration", "Messages", "Reason")
	fmt.Printf("  %-36s  %-21s  %-14s  %-10s  %-8s  %s\n", "-------", "------", "---------", "--------", "--------", "------")

	for _, s := range sessions {
		duration := "active"
		reason := s.Reason
		if !s.DisconnectedAt.IsZero() {
			duration = s.DisconnectedAt.Sub(s.ConnectedAt).Round(time.Second).String()
		}
		fmt.Printf("  %-36s  %-21s  %-14s  %-10s  %-8d  %s\n",
			s.SessionID, s.Remote, humanize.Time(s.ConnectedAt), duration, s.Messages, reason)
	}
}
