package table

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/poker5/internal/models"
)

// screen is a Renderer that keeps only the latest state of every entity.
type screen struct {
	mu         sync.Mutex
	seats      map[int]SeatView
	hand       HandView
	pots       []models.Pot
	badges     map[string]string
	shared     []CardView
	controls   ControlsView
	timers     map[string]time.Duration
	started    []string
	animations map[string]int
	logs       []string
	flushes    int
}

func newScreen() *screen {
	return &screen{
		seats:      map[int]SeatView{},
		timers:     map[string]time.Duration{},
		animations: map[string]int{},
	}
}

func (sc *screen) RenderSeat(v SeatView) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.seats[v.Index] = v
}

func (sc *screen) RenderHand(v HandView) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.hand = v
}

func (sc *screen) RenderPots(p []models.Pot) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.pots = p
}

func (sc *screen) RenderBetBadges(b map[string]string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.badges = b
}

func (sc *screen) RenderSharedCards(c []CardView) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.shared = c
}

func (sc *screen) RenderControls(v ControlsView) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.controls = v
}

func (sc *screen) AnimateCardsChange(playerID string, n int) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.animations[playerID] += n
}

func (sc *screen) StartTimer(playerID string, remaining time.Duration) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.timers[playerID] = remaining
	sc.started = append(sc.started, playerID)
}

func (sc *screen) UpdateTimer(playerID string, remaining time.Duration) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.timers[playerID] = remaining
}

func (sc *screen) StopTimer(playerID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.timers, playerID)
}

func (sc *screen) Log(line string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.logs = append(sc.logs, line)
}

func (sc *screen) Flush() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.flushes++
}

func (sc *screen) lastLog() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if len(sc.logs) == 0 {
		return ""
	}
	return sc.logs[len(sc.logs)-1]
}

// view is everything visible on the table, normalized so that empty and
// nil collections compare equal.
type view struct {
	Seats    map[int]SeatView
	Hand     HandView
	Pots     []models.Pot
	Badges   map[string]string
	Shared   []CardView
	Controls ControlsView
	Timers   map[string]time.Duration
}

func (sc *screen) snapshot() view {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	v := view{
		Seats:    map[int]SeatView{},
		Hand:     sc.hand,
		Controls: sc.controls,
		Timers:   map[string]time.Duration{},
	}
	for k, s := range sc.seats {
		if len(s.Cards) == 0 {
			s.Cards = nil
		}
		v.Seats[k] = s
	}
	if len(sc.pots) > 0 {
		v.Pots = append(v.Pots, sc.pots...)
	}
	if len(sc.badges) > 0 {
		v.Badges = map[string]string{}
		for k, b := range sc.badges {
			v.Badges[k] = b
		}
	}
	if len(sc.shared) > 0 {
		v.Shared = append(v.Shared, sc.shared...)
	}
	if len(v.Hand.Cards) == 0 {
		v.Hand.Cards = nil
	}
	for k, d := range sc.timers {
		v.Timers[k] = d
	}
	return v
}

// mockSender records outbound payloads instead of writing them to a socket.
type mockSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mockSender) send(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, string(data))
	return nil
}

func (m *mockSender) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type fixture struct {
	sync   *Synchronizer
	screen *screen
	sender *mockSender
	clock  *clockwork.FakeClock
	hook   *test.Hook
}

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	sc := newScreen()
	snd := &mockSender{}
	clock := clockwork.NewFakeClockAt(testEpoch)

	s := New(sc, logger)
	s.SendFn = snd.send
	s.Clock = clock
	return &fixture{sync: s, screen: sc, sender: snd, clock: clock, hook: hook}
}

func (f *fixture) feed(t *testing.T, payloads ...string) {
	t.Helper()
	for _, p := range payloads {
		f.sync.Handle(context.Background(), []byte(p))
	}
}

func (f *fixture) requireNoErrors(t *testing.T) {
	t.Helper()
	for _, e := range f.hook.AllEntries() {
		require.Greater(t, e.Level, logrus.WarnLevel, "unexpected %s log: %s", e.Level, e.Message)
	}
}

const (
	msgConnect = `{"message_type":"connect","server_id":"srv-1","player":{"id":"p1","name":"Alice","money":1000}}`

	msgInit2 = `{"message_type":"room-update","event":"init","room_id":"r1","player_ids":["p1",null,"p2",null],
		"players":{"p1":{"id":"p1","name":"Alice","money":1000},"p2":{"id":"p2","name":"Bob","money":1000}}}`

	msgInit3 = `{"message_type":"room-update","event":"init","room_id":"r1","player_ids":["p1","p2","p3",null],
		"players":{"p1":{"id":"p1","name":"Alice","money":1000},"p2":{"id":"p2","name":"Bob","money":1000},"p3":{"id":"p3","name":"Carol","money":1000}}}`

	msgNewGame2 = `{"message_type":"game-update","event":"new-game","game_id":"g1","game_type":"traditional",
		"players":[{"id":"p1","name":"Alice","money":1000},{"id":"p2","name":"Bob","money":1000}],"dealer_id":"p2","blind_bets":{}}`

	msgNewGame3 = `{"message_type":"game-update","event":"new-game","game_id":"g1","game_type":"traditional",
		"players":[{"id":"p1","name":"Alice","money":1000},{"id":"p2","name":"Bob","money":1000},{"id":"p3","name":"Carol","money":1000}],"dealer_id":"p1","blind_bets":{}}`

	msgCards = `{"message_type":"game-update","event":"cards-assignment","target":"p1",
		"cards":[[14,0],[13,1],[12,2],[11,3],[10,0]],"score":{"category":4,"cards":[[14,0],[13,1],[12,2],[11,3],[10,0]]}}`

	msgBetTurnP1 = `{"message_type":"game-update","event":"player-action","action":"bet","player":{"id":"p1","name":"Alice","money":1000},
		"min_bet":10,"max_bet":200,"timeout":30,"timeout_date":"2024-03-01 12:00:30+0000"}`

	msgGameOver = `{"message_type":"game-update","event":"game-over"}`
)
