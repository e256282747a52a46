// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/axiomhive/bark/lib/codec"
)

// dialTimeout covers only the connect phase.
const dialTimeout = 5 * time.Second

// responseReadTimeout is how long the client waits for a response
// after writing its request. Matched to the server's read plus write
// timeouts to account for handler execution.
const responseReadTimeout = 45 * time.Second

// maxResponseSize matches the server's request cap for symmetry.
const maxResponseSize = 64 * 1024

// CallError is returned by Call when the server responds ok=false.
type CallError struct {
	Action  string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("control error on %q: %s", e.Action, e.Message)
}

// Client sends requests to a barkd control socket. Each Call opens a
// new connection, matching the server's one-request-per-connection
// model.
type Client struct {
	socketPath string
}

// NewClient returns a client for the given socket path.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Call encodes request (which must carry its action field), sends it,
// and decodes the response's data payload into result. Pass a nil
// result to discard the payload. A server-side failure surfaces as a
// *CallError.
func (c *Client) Call(request any, result any) error {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(responseReadTimeout))

	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if !response.OK {
		action := "unknown"
		var header struct {
			Action string `cbor:"action"`
		}
		if data, marshalErr := codec.Marshal(request); marshalErr == nil {
			if codec.Unmarshal(data, &header) == nil && header.Action != "" {
				action = header.Action
			}
		}
		return &CallError{Action: action, Message: response.Error}
	}

	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response payload: %w", err)
		}
	}
	return nil
}
