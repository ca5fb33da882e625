package main

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingSender struct {
	lines []string
	err   error
}

func (r *recordingSender) SendText(line string) error {
	if r.err != nil {
		return r.err
	}
	r.lines = append(r.lines, line)
	return nil
}

func TestSendLines(t *testing.T) {
	in := strings.NewReader("CRP p1 1 2 3\r\n\nMOV ship p1\nX\nCRP never 0 0 0\n")
	var out strings.Builder
	s := &recordingSender{}

	sent, err := sendLines(context.Background(), s, in, &out, false)
	if err != nil {
		t.Fatalf("sendLines() failed: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}

	want := []string{"CRP p1 1 2 3", "MOV ship p1"}
	if len(s.lines) != len(want) {
		t.Fatalf("lines = %v, want %v", s.lines, want)
	}
	for i := range want {
		if s.lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, s.lines[i], want[i])
		}
	}

	if got := out.String(); got != "message sent: [CRP p1 1 2 3]\nmessage sent: [MOV ship p1]\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSendLinesPrompt(t *testing.T) {
	var out strings.Builder
	if _, err := sendLines(context.Background(), &recordingSender{}, strings.NewReader("Xit\n"), &out, true); err != nil {
		t.Fatalf("sendLines() failed: %v", err)
	}
	if out.String() != "> " {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestSendLinesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := sendLines(context.Background(), &recordingSender{err: boom}, strings.NewReader("CRP a 0 0 0\n"), &strings.Builder{}, false)
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func TestSendLinesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &recordingSender{}
	_, err := sendLines(ctx, s, strings.NewReader("CRP a 0 0 0\n"), &strings.Builder{}, false)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(s.lines) != 0 {
		t.Errorf("Expected nothing sent, got %v", s.lines)
	}
}
