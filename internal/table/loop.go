package table

import (
	"context"
	"time"

	"github.com/jason-s-yu/poker5/internal/transport"
)

// tickInterval is how often the countdown is redrawn.
const tickInterval = time.Second

// Endpointer is implemented by channels that know their remote address.
type Endpointer interface {
	Endpoint() string
}

// Run drives the session until the channel closes or ctx is done. Inbound
// messages, user actions and countdown ticks are handled one at a time on
// the calling goroutine. It returns transport.ErrClosed after a clean
// server close.
func (s *Synchronizer) Run(ctx context.Context, ch transport.Channel, actions <-chan Action) error {
	if s.SendFn == nil {
		s.SendFn = ch.Send
	}

	inbound := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			data, err := ch.Receive(ctx)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case inbound <- data:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
	}()

	ticker := s.Clock.NewTicker(tickInterval)
	defer ticker.Stop()

	endpoint := ""
	if e, ok := ch.(Endpointer); ok {
		endpoint = e.Endpoint()
	}
	s.HandleOpen(endpoint)

	for {
		select {
		case <-ctx.Done():
			s.HandleClose(ctx.Err())
			return ctx.Err()
		case err := <-readErr:
			s.HandleClose(err)
			return err
		case data := <-inbound:
			s.Handle(ctx, data)
		case a, ok := <-actions:
			if !ok {
				actions = nil
				continue
			}
			s.Perform(ctx, a)
		case <-ticker.Chan():
			s.Tick()
		}
	}
}
