package table

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/poker5/internal/transport"
)

// chanChannel is an in-memory transport.Channel. Closing in ends the session.
type chanChannel struct {
	in  chan []byte
	out chan []byte
}

func newChanChannel() *chanChannel {
	return &chanChannel{in: make(chan []byte), out: make(chan []byte, 16)}
}

func (c *chanChannel) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data, ok := <-c.in:
		if !ok {
			return nil, transport.ErrClosed
		}
		return data, nil
	}
}

func (c *chanChannel) Send(_ context.Context, data []byte) error {
	c.out <- data
	return nil
}

func (c *chanChannel) Close() error { return nil }

func (c *chanChannel) Endpoint() string { return "mem://table" }

func (c *chanChannel) next(t *testing.T) string {
	t.Helper()
	select {
	case data := <-c.out:
		return string(data)
	case <-time.After(2 * time.Second):
		t.Fatal("no outbound message")
		return ""
	}
}

func TestRunServesChannelUntilClose(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sc := newScreen()
	s := New(sc, logger)

	ch := newChanChannel()
	actions := make(chan Action)
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), ch, actions) }()

	ch.in <- []byte(`{"message_type":"ping"}`)
	assert.JSONEq(t, `{"message_type":"pong"}`, ch.next(t))

	for _, msg := range []string{msgConnect, msgInit2, msgNewGame2, msgCards, msgBetTurnP1} {
		ch.in <- []byte(msg)
	}
	require.Eventually(t, func() bool {
		return sc.snapshot().Controls.Mode == ModeBet
	}, 2*time.Second, 10*time.Millisecond)

	actions <- BetAction{Amount: 40}
	assert.JSONEq(t, `{"message_type":"bet","bet":40}`, ch.next(t))

	close(ch.in)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, transport.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the channel closed")
	}

	assert.Equal(t, "Disconnected", sc.lastLog())
	assert.Equal(t, "mem://table", s.Conn.Endpoint)
	assert.False(t, s.Conn.Connected)
	assert.Equal(t, StateNoRoom, s.Room.Current())
}

func TestRunStopsOnCancel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sc := newScreen()
	s := New(sc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, newChanChannel(), nil) }()

	require.Eventually(t, func() bool {
		sc.mu.Lock()
		defer sc.mu.Unlock()
		return len(sc.logs) > 0
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, "Disconnected", sc.lastLog())
}
