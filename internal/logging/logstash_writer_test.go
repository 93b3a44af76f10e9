package logging

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

func TestLogstashWriterForwardsRecords(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	lines := make(chan string, 2)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	w, err := NewLogstashWriter(ln.Addr().String())
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	defer w.Close()

	logger := New(w, "info")
	logger.Info("catalog loaded", "count", 3)

	select {
	case line := <-lines:
		if !strings.Contains(line, `"msg":"catalog loaded"`) || !strings.Contains(line, `"count":3`) {
			t.Fatalf("unexpected record %s", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for record")
	}
}

func TestLogstashWriterDropsWhileUnreachable(t *testing.T) {
	dials := 0
	w, err := NewLogstashWriter("logstash:5000", WithRetryInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	w.dial = func(network, addr string, timeout time.Duration) (net.Conn, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	for i := 0; i < 3; i++ {
		n, err := w.Write([]byte(`{"msg":"x"}`))
		if err != nil || n != len(`{"msg":"x"}`) {
			t.Fatalf("expected silent drop, got n=%d err=%v", n, err)
		}
	}
	if dials != 1 {
		t.Fatalf("expected a single dial inside the cooldown window, got %d", dials)
	}
	if w.Dropped() != 3 {
		t.Fatalf("expected 3 dropped records, got %d", w.Dropped())
	}

	w.Close()
	if _, err := w.Write([]byte("late")); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected ErrClosedPipe after close, got %v", err)
	}
}

func TestNewLogstashWriterRejectsEmptyAddress(t *testing.T) {
	if _, err := NewLogstashWriter("  "); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG").String() != "DEBUG" || ParseLevel("warning").String() != "WARN" || ParseLevel("").String() != "INFO" {
		t.Fatalf("unexpected level parsing")
	}
}
