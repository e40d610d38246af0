package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// queueSize is how many finished hands may wait for the store.
const queueSize = 16

// saveTimeout bounds a single SaveHand call.
const saveTimeout = 10 * time.Second

// Recorder collects the updates of each hand and saves finished hands in
// the background. Its methods never block on the store.
type Recorder struct {
	store  Store
	logger *logrus.Logger

	mu      sync.Mutex
	current *Hand
	closed  bool

	queue chan Hand
	done  chan struct{}
}

// NewRecorder starts the background writer.
func NewRecorder(store Store, logger *logrus.Logger) *Recorder {
	r := &Recorder{
		store:  store,
		logger: logger,
		queue:  make(chan Hand, queueSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Begin starts a new hand, dropping any hand that never finished.
func (r *Recorder) Begin(gameID, gameType string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.logger.WithField("game_id", r.current.GameID).Debug("Dropping unfinished hand")
	}
	r.current = &Hand{ID: uuid.New(), GameID: gameID, GameType: gameType, StartedAt: at}
}

// Record appends one update to the current hand. Updates outside a hand are ignored.
func (r *Recorder) Record(event string, payload []byte, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return
	}
	r.current.Events = append(r.current.Events, Event{
		Name:    event,
		Payload: append([]byte(nil), payload...),
		At:      at,
	})
}

// Finish queues the current hand for saving.
func (r *Recorder) Finish(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.closed {
		return
	}
	h := *r.current
	h.EndedAt = at
	r.current = nil

	select {
	case r.queue <- h:
	default:
		r.logger.WithField("game_id", h.GameID).Warn("History queue full; dropping hand")
	}
}

// Close waits for queued hands to be saved, then closes the store.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
	r.store.Close()
}

func (r *Recorder) run() {
	defer close(r.done)
	for h := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := r.store.SaveHand(ctx, h); err != nil {
			r.logger.WithField("game_id", h.GameID).Errorf("Failed to save hand: %v", err)
		}
		cancel()
	}
}
