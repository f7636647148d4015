package main

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRunPrintsVersionAndExits(t *testing.T) {
	var stdout, stderr strings.Builder
	code := run([]string{"-v"}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), programName+" v.") {
		t.Fatalf("expected the version banner, got %q", stdout.String())
	}
}

func TestRunPrintsUsageForHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {"-?"}} {
		var stdout, stderr strings.Builder
		code := run(args, strings.NewReader(""), &stdout, &stderr)
		if code != 0 {
			t.Fatalf("%v: expected exit 0, got %d", args, code)
		}
		if !strings.Contains(stdout.String(), "Usage:") {
			t.Fatalf("%v: expected usage text, got %q", args, stdout.String())
		}
	}
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	var stdout, stderr strings.Builder
	code := run([]string{"--frobnicate"}, strings.NewReader(""), &stdout, &stderr)
	if code == 0 {
		t.Fatal("expected a non-zero exit for an unknown flag")
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("expected usage on stderr, got %q", stderr.String())
	}
}

func TestRunRejectsPositionalArguments(t *testing.T) {
	var stdout, stderr strings.Builder
	code := run([]string{"extra"}, strings.NewReader(""), &stdout, &stderr)
	if code == 0 {
		t.Fatal("expected a non-zero exit for a positional argument")
	}
}

func TestRunRejectsBadConfiguration(t *testing.T) {
	t.Setenv("FSWAKE_IDLE_INTERVAL", "whenever")
	var stdout, stderr strings.Builder
	code := run(nil, strings.NewReader(""), &stdout, &stderr)
	if code == 0 {
		t.Fatal("expected a non-zero exit for bad configuration")
	}
	if !strings.Contains(stderr.String(), "FSWAKE_IDLE_INTERVAL") {
		t.Fatalf("expected the offending variable to be named, got %q", stderr.String())
	}
}

// syncWriter makes a strings.Builder safe for the logger and console
// goroutines that write concurrently during run.
type syncWriter struct {
	mu      sync.Mutex
	builder strings.Builder
}

func (writer *syncWriter) Write(data []byte) (int, error) {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	return writer.builder.Write(data)
}

func (writer *syncWriter) String() string {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	return writer.builder.String()
}

func TestRunQuitsCleanlyOnQ(t *testing.T) {
	t.Setenv("FSWAKE_WATCH_PATH", t.TempDir())
	t.Setenv("FSWAKE_IDLE_INTERVAL", "20ms")

	stdout := &syncWriter{}
	done := make(chan int, 1)
	go func() {
		done <- run(nil, strings.NewReader("x\nq\n"), stdout, io.Discard)
	}()

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not exit after the quit command")
	}

	output := stdout.String()
	if !strings.Contains(output, "q - quit from the program") {
		t.Fatalf("expected the help reminder for the unknown key, got %q", output)
	}
	if !strings.Contains(output, "Received QUIT command") {
		t.Fatalf("expected the quit acknowledgement, got %q", output)
	}
	if !strings.Contains(output, "all workers stopped") {
		t.Fatalf("expected the workers to report stopped, got %q", output)
	}
}

func TestRunTreatsStdinEOFAsQuit(t *testing.T) {
	t.Setenv("FSWAKE_WATCH_PATH", t.TempDir())
	t.Setenv("FSWAKE_IDLE_INTERVAL", "20ms")

	done := make(chan int, 1)
	go func() {
		done <- run(nil, strings.NewReader(""), &syncWriter{}, io.Discard)
	}()

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not exit on stdin EOF")
	}
}
