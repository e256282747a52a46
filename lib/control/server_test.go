// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package control_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/axiomhive/bark/lib/codec"
	"github.com/axiomhive/bark/lib/control"
	"github.com/axiomhive/bark/lib/testutil"
)

type echoRequest struct {
	Action string `cbor:"action"`
	Text   string `cbor:"text,omitempty"`
}

type echoReply struct {
	Text string `cbor:"1,keyasint"`
}

// startServer serves on a fresh socket and returns a client for it.
// The server is shut down when the test completes.
func startServer(t *testing.T, register func(*control.Server)) *control.Client {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "control.sock")
	server := control.NewServer(socketPath, nil)
	register(server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	})

	// Wait for the socket to appear.
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return control.NewClient(socketPath)
		}
		if time.Now().After(deadline) {
			t.Fatalf("socket %s never came up: %v", socketPath, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCallRoundTrip(t *testing.T) {
	client := startServer(t, func(server *control.Server) {
		server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
			var request echoRequest
			if err := codec.Unmarshal(raw, &request); err != nil {
				return nil, err
			}
			return echoReply{Text: request.Text}, nil
		})
	})

	var reply echoReply
	if err := client.Call(echoRequest{Action: "echo", Text: "ping"}, &reply); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if reply.Text != "ping" {
		t.Errorf("reply.Text = %q, want %q", reply.Text, "ping")
	}
}

func TestCallNoPayload(t *testing.T) {
	client := startServer(t, func(server *control.Server) {
		server.Handle("noop", func(ctx context.Context, raw []byte) (any, error) {
			return nil, nil
		})
	})

	if err := client.Call(echoRequest{Action: "noop"}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestCallHandlerError(t *testing.T) {
	client := startServer(t, func(server *control.Server) {
		server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
			return nil, errors.New("entropy ceiling exceeded")
		})
	})

	err := client.Call(echoRequest{Action: "fail"}, nil)
	var callErr *control.CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("Call error = %v, want *CallError", err)
	}
	if callErr.Action != "fail" {
		t.Errorf("CallError.Action = %q, want %q", callErr.Action, "fail")
	}
	if callErr.Message != "entropy ceiling exceeded" {
		t.Errorf("CallError.Message = %q", callErr.Message)
	}
}

func TestCallUnknownAction(t *testing.T) {
	client := startServer(t, func(server *control.Server) {})

	err := client.Call(echoRequest{Action: "no-such-action"}, nil)
	var callErr *control.CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("Call error = %v, want *CallError", err)
	}
}

func TestCallMissingAction(t *testing.T) {
	client := startServer(t, func(server *control.Server) {})

	err := client.Call(struct {
		Text string `cbor:"text"`
	}{Text: "no action here"}, nil)
	var callErr *control.CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("Call error = %v, want *CallError", err)
	}
}

func TestHandlePanicsOnDuplicate(t *testing.T) {
	server := control.NewServer("/tmp/unused.sock", nil)
	server.Handle("x", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Handle did not panic")
		}
	}()
	server.Handle("x", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
}

func TestServeRemovesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "control.sock")

	// Leave a dead socket file behind, as after an unclean shutdown.
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: socketPath, Net: "unixgram"})
	if err != nil {
		t.Fatalf("creating stale socket: %v", err)
	}
	conn.Close()
	if _, err := os.Stat(socketPath); err != nil {
		t.Fatalf("stale socket missing: %v", err)
	}

	server := control.NewServer(socketPath, nil)
	server.Handle("noop", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()

	client := control.NewClient(socketPath)
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := client.Call(echoRequest{Action: "noop"}, nil); err == nil {
			return
		} else if time.Now().After(deadline) {
			t.Fatalf("server never served on reclaimed socket: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
