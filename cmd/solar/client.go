package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/solar-scene/internal/logging"
	"github.com/vovakirdan/solar-scene/internal/protocol"
)

var flagScript string

var clientCmd = &cobra.Command{
	Use:   "client [host] [port]",
	Short: "Send command lines to a scene host",
	Long: `Connects to a scene host and sends each input line as a reliable,
in-order message. A line starting with X ends the session.

Commands:
  CRO name px py pz sx sy sz qx qy qz model mat1 mat2 vis
  CRT name point sx sy sz qx qy qz model mat1 mat2 vis
  CRP name px py pz
  MOV name point

Examples:
  solar client 127.0.0.1 32000
  solar client --file demo.txt`,
	Args: cobra.MaximumNArgs(2),
	Run:  runClient,
}

func init() {
	clientCmd.Flags().StringVarP(&flagScript, "file", "f", "", "Read lines from a file instead of stdin")
}

func runClient(cmd *cobra.Command, args []string) {
	cfg, logger, closer := mustSetup(cmd)
	defer closer.Close()

	hostName := "127.0.0.1"
	port := strconv.Itoa(protocol.DefaultPort)
	if len(args) > 0 {
		hostName = args[0]
	}
	if len(args) > 1 {
		port = args[1]
	}
	addr := net.JoinHostPort(hostName, port)

	var in io.Reader = os.Stdin
	prompt := term.IsTerminal(int(os.Stdin.Fd()))
	if flagScript != "" {
		f, err := os.Open(flagScript)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
		prompt = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := protocol.Dial(ctx, addr, protocol.Options{
		HandshakeTimeout: cfg.Client.HandshakeTimeout,
		RetryInterval:    cfg.Client.RetryInterval,
		MaxRetries:       cfg.Client.MaxRetries,
		Logger:           logging.Component(logger, "client"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	if prompt {
		fmt.Printf("Connected to %s. Type X to quit.\n", addr)
	}

	if _, err := sendLines(ctx, conn, in, os.Stdout, prompt); err != nil {
		fmt.Fprintf(os.Stderr, "Error sending: %v\n", err)
		os.Exit(1)
	}

	// Wait for acks so queued commands are not lost on exit
	flushCtx, cancel := context.WithTimeout(ctx, cfg.Client.FlushTimeout)
	defer cancel()
	if err := conn.Flush(flushCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %d message(s) not acknowledged: %v\n", conn.Pending(), err)
	}
}

// lineSender is the part of protocol.Conn the input loop needs.
type lineSender interface {
	SendText(line string) error
}

// sendLines reads lines from r and sends each one until EOF or a line whose
// first character is X. Blank lines are skipped. Returns the number sent.
func sendLines(ctx context.Context, s lineSender, r io.Reader, out io.Writer, prompt bool) (int, error) {
	sent := 0
	scanner := bufio.NewScanner(r)
	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return sent, scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "X") {
			return sent, nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := s.SendText(line); err != nil {
			return sent, err
		}
		fmt.Fprintf(out, "message sent: [%s]\n", line)
		sent++
	}
}
