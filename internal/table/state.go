package table

import (
	"errors"
	"time"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/poker5/internal/models"
)

// Room and game lifecycle states.
const (
	StateNoRoom = "no-room"
	StateSeated = "room"

	StateNoGame     = "no-game"
	StateInProgress = "in-progress"
)

const (
	roomEventInit  = "init"
	roomEventClose = "close"

	gameEventNewGame  = "new-game"
	gameEventGameOver = "game-over"
)

// ConnectionState is what the client knows about its server link.
type ConnectionState struct {
	Endpoint  string
	ServerID  string
	PlayerID  string
	Connected bool
}

// RoomState mirrors the seat layout of the current room. Empty seats are "".
type RoomState struct {
	ID      string
	Seats   []string
	Players map[string]*models.Player

	sm *fsm.FSM
}

func newRoomState(logger *logrus.Logger) *RoomState {
	r := &RoomState{Players: map[string]*models.Player{}}
	r.sm = fsm.NewFSM(
		StateNoRoom,
		fsm.Events{
			{Name: roomEventInit, Src: []string{StateNoRoom, StateSeated}, Dst: StateSeated},
			{Name: roomEventClose, Src: []string{StateNoRoom, StateSeated}, Dst: StateNoRoom},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				logger.Debugf("Room state: %s -> %s", e.Src, e.Dst)
			},
		},
	)
	return r
}

// Current returns the room lifecycle state.
func (r *RoomState) Current() string {
	return r.sm.Current()
}

// SeatOf returns the seat index holding playerID, or -1.
func (r *RoomState) SeatOf(playerID string) int {
	if playerID == "" {
		return -1
	}
	for i, id := range r.Seats {
		if id == playerID {
			return i
		}
	}
	return -1
}

// Occupied counts seats holding a player.
func (r *RoomState) Occupied() int {
	n := 0
	for _, id := range r.Seats {
		if id != "" {
			n++
		}
	}
	return n
}

func (r *RoomState) reset() {
	r.ID = ""
	r.Seats = nil
	r.Players = map[string]*models.Player{}
}

// GameState is the hand currently being played in the room.
type GameState struct {
	ID           string
	Type         string
	DealerID     string
	Participants []string

	Pots        []models.Pot
	Bets        map[string]float64
	SharedCards []models.Card

	Folded   map[string]bool
	Winners  map[string]bool
	Revealed map[string]revealedHand

	Hand          []models.Card
	Score         *models.Score
	AllowedToOpen bool

	sm *fsm.FSM
}

type revealedHand struct {
	Cards []models.Card
	Score *models.Score
}

func newGameState(logger *logrus.Logger) *GameState {
	g := &GameState{}
	g.clear()
	g.sm = fsm.NewFSM(
		StateNoGame,
		fsm.Events{
			{Name: gameEventNewGame, Src: []string{StateNoGame, StateInProgress}, Dst: StateInProgress},
			{Name: gameEventGameOver, Src: []string{StateNoGame, StateInProgress}, Dst: StateNoGame},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				logger.Debugf("Game state: %s -> %s", e.Src, e.Dst)
			},
		},
	)
	return g
}

// Current returns the game lifecycle state.
func (g *GameState) Current() string {
	return g.sm.Current()
}

// InProgress reports whether a hand is being played.
func (g *GameState) InProgress() bool {
	return g.sm.Current() == StateInProgress
}

// Participates reports whether playerID was dealt into the hand.
func (g *GameState) Participates(playerID string) bool {
	for _, id := range g.Participants {
		if id == playerID {
			return true
		}
	}
	return false
}

func (g *GameState) clear() {
	g.ID = ""
	g.Type = ""
	g.DealerID = ""
	g.Participants = nil
	g.Pots = nil
	g.Bets = nil
	g.SharedCards = nil
	g.Folded = map[string]bool{}
	g.Winners = map[string]bool{}
	g.Revealed = map[string]revealedHand{}
	g.Hand = nil
	g.Score = nil
	g.AllowedToOpen = false
}

// Controls are the per-turn UI flags. At most one mode is active.
type Controls struct {
	Mode     Mode
	MinBet   float64
	MaxBet   float64
	Opening  bool
	PassOnly bool
}

// turnTimer is the countdown of the player currently on the clock.
type turnTimer struct {
	playerID string
	deadline time.Time
}

// transition fires a lifecycle event. Re-entering the current state is not an error.
func transition(sm *fsm.FSM, event string) error {
	err := sm.Event(event)
	var noTransition fsm.NoTransitionError
	if err == nil || errors.As(err, &noTransition) {
		return nil
	}
	return err
}
