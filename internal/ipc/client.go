package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	ferrors "tomatick/internal/foundation/errors"
)

// DefaultClientTimeout bounds connect, write and read on the client side.
const DefaultClientTimeout = 5 * time.Second

// Client sends one command per connection.
type Client struct {
	address string
	appName string
	timeout time.Duration
}

// NewClient creates a client for the instance listening on address.
func NewClient(address, appName string) *Client {
	return &Client{address: address, appName: appName, timeout: DefaultClientTimeout}
}

// WithTimeout returns a copy using timeout for every phase.
func (client *Client) WithTimeout(timeout time.Duration) *Client {
	clone := *client
	clone.timeout = timeout
	return &clone
}

// Send connects, writes cmd, and reads one response line.
func (client *Client) Send(ctx context.Context, cmd Command) (Response, error) {
	data, err := MarshalCommand(cmd)
	if err != nil {
		return nil, ferrors.InternalError("encode command").WithCause(err).Build()
	}

	dialer := net.Dialer{Timeout: client.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", client.address)
	if err != nil {
		return nil, ferrors.ConnectionError(
			fmt.Sprintf("Cannot connect to %s. Is it running? (%v)", client.appName, err),
		).WithContext("address", client.address).WithCause(err).Build()
	}
	defer conn.Close()

	deadline := time.Now().Add(client.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, client.transportError("Failed to send command", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, client.transportError("Failed to read response", err)
	}

	return ParseResponse(line)
}

// Ping reports whether an instance answers with Pong.
func (client *Client) Ping(ctx context.Context) bool {
	resp, err := client.Send(ctx, PingCommand{})
	if err != nil {
		return false
	}
	_, ok := resp.(PongResponse)
	return ok
}

// transportError classifies read and write failures, timeouts included, as connection errors.
func (client *Client) transportError(message string, err error) error {
	detail := err.Error()
	if errors.Is(err, os.ErrDeadlineExceeded) {
		detail = "timed out"
	}
	return ferrors.ConnectionError(fmt.Sprintf("%s: %s", message, detail)).WithCause(err).Build()
}
