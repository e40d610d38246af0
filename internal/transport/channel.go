// Package transport carries raw protocol payloads between the client and
// the poker5 server.
package transport

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Receive once the server has closed the channel.
var ErrClosed = errors.New("transport: channel closed")

// writeTimeout bounds every outbound write.
const writeTimeout = 5 * time.Second

// Channel is a bidirectional message channel to the server. Receive and
// Send may be called from different goroutines.
type Channel interface {
	Receive(ctx context.Context) ([]byte, error)
	Send(ctx context.Context, data []byte) error
	Close() error
}
