package protocol

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jason-s-yu/poker5/internal/models"
)

// Game update events.
const (
	EventNewGame           = "new-game"
	EventCardsAssignment   = "cards-assignment"
	EventBet               = "bet"
	EventPotsUpdate        = "pots-update"
	EventPlayerAction      = "player-action"
	EventDeadPlayer        = "dead-player"
	EventFold              = "fold"
	EventCardsChange       = "cards-change"
	EventSharedCards       = "shared-cards"
	EventAddSharedCards    = "add-shared-cards"
	EventWinnerDesignation = "winner-designation"
	EventShowdown          = "showdown"
	EventGameOver          = "game-over"
)

// Actions requested from a player in a player-action event.
const (
	ActionBet         = "bet"
	ActionCardsChange = "cards-change"

	actionChangeCardsLegacy = "change-cards"
)

// TimeoutDateLayout is the format of player-action timeout_date values.
const TimeoutDateLayout = "2006-01-02 15:04:05-0700"

// GameUpdate wraps one game event. Bets is nil when the server sent none.
type GameUpdate struct {
	GameID string
	Bets   map[string]float64
	Event  GameEvent
}

func (GameUpdate) Type() string { return TypeGameUpdate }

// GameEvent is the payload of a game-update.
type GameEvent interface {
	EventName() string
}

// Roster is an ordered player list. The server sends it either as a list
// or as a map keyed by player id; maps are ordered by id.
type Roster []*models.Player

func (r *Roster) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if data[0] == '[' {
		var list []*models.Player
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*r = list
		return nil
	}
	var byID map[string]*models.Player
	if err := json.Unmarshal(data, &byID); err != nil {
		return err
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make(Roster, 0, len(ids))
	for _, id := range ids {
		p := byID[id]
		if p == nil {
			continue
		}
		if p.ID == "" {
			p.ID = id
		}
		out = append(out, p)
	}
	*r = out
	return nil
}

// NewGame starts a hand. Traditional games list players, hold'em games only ids.
type NewGame struct {
	GameID    string             `json:"game_id"`
	GameType  string             `json:"game_type"`
	Players   Roster             `json:"players"`
	PlayerIDs []string           `json:"player_ids"`
	DealerID  string             `json:"dealer_id"`
	BlindBets map[string]float64 `json:"blind_bets"`
}

func (NewGame) EventName() string { return EventNewGame }

// Participants returns the ids of the players in the hand, in seat order.
func (e NewGame) Participants() []string {
	if len(e.PlayerIDs) > 0 {
		return e.PlayerIDs
	}
	ids := make([]string, 0, len(e.Players))
	for _, p := range e.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// CardsAssignment delivers a private hand. An empty Target means the receiver.
type CardsAssignment struct {
	Target        string        `json:"target"`
	Cards         []models.Card `json:"cards"`
	Score         *models.Score `json:"score"`
	AllowedToOpen bool          `json:"allowed_to_open"`
}

func (CardsAssignment) EventName() string { return EventCardsAssignment }

// BetPlaced reports a bet by Player. Player carries the updated money.
type BetPlaced struct {
	Player  models.Player `json:"player"`
	Bet     float64       `json:"bet"`
	BetType string        `json:"bet_type"`
}

func (BetPlaced) EventName() string { return EventBet }

type PotsUpdate struct {
	Pots    []models.Pot `json:"pots"`
	Players Roster       `json:"players"`
}

func (PotsUpdate) EventName() string { return EventPotsUpdate }

// PlayerAction asks Player to act before a deadline.
type PlayerAction struct {
	Action      string        `json:"action"`
	Player      models.Player `json:"player"`
	MinBet      float64       `json:"min_bet"`
	MaxBet      float64       `json:"max_bet"`
	Opening     bool          `json:"opening"`
	Timeout     float64       `json:"timeout"`
	TimeoutDate string        `json:"timeout_date"`
}

func (PlayerAction) EventName() string { return EventPlayerAction }

// Deadline prefers the absolute timeout_date and falls back to now + timeout seconds.
func (e PlayerAction) Deadline(now time.Time) time.Time {
	if e.TimeoutDate != "" {
		if t, err := time.Parse(TimeoutDateLayout, e.TimeoutDate); err == nil {
			return t
		}
	}
	return now.Add(time.Duration(e.Timeout * float64(time.Second)))
}

type DeadPlayer struct {
	Player models.Player `json:"player"`
}

func (DeadPlayer) EventName() string { return EventDeadPlayer }

type Fold struct {
	Player models.Player `json:"player"`
}

func (Fold) EventName() string { return EventFold }

// CardsChange reports how many cards a player swapped.
type CardsChange struct {
	Player   models.Player `json:"player"`
	NumCards int           `json:"num_cards"`
}

func (CardsChange) EventName() string { return EventCardsChange }

// SharedCards adds community cards to the board.
type SharedCards struct {
	Cards []models.Card `json:"cards"`
}

func (SharedCards) EventName() string { return EventSharedCards }

// WinnerDesignation settles one pot. Pots holds the pots still to settle.
type WinnerDesignation struct {
	Pot     models.Pot   `json:"pot"`
	Pots    []models.Pot `json:"pots"`
	Players Roster       `json:"players"`
}

func (WinnerDesignation) EventName() string { return EventWinnerDesignation }

type ShowdownHand struct {
	Cards []models.Card `json:"cards"`
	Score *models.Score `json:"score"`
}

type Showdown struct {
	Players map[string]ShowdownHand `json:"players"`
}

func (Showdown) EventName() string { return EventShowdown }

type GameOver struct{}

func (GameOver) EventName() string { return EventGameOver }

type UnknownGameEvent struct {
	Name string
}

func (u UnknownGameEvent) EventName() string { return u.Name }

type gameUpdateWire struct {
	Event  string             `json:"event"`
	GameID string             `json:"game_id"`
	Bets   map[string]float64 `json:"bets"`
}

func decodeGameUpdate(data []byte) (Message, error) {
	var w gameUpdateWire
	if err := unmarshal(TypeGameUpdate, data, &w); err != nil {
		return nil, err
	}
	m := GameUpdate{GameID: w.GameID, Bets: w.Bets}

	var ev GameEvent
	var err error
	switch w.Event {
	case EventNewGame:
		var e NewGame
		err = json.Unmarshal(data, &e)
		ev = e
	case EventCardsAssignment:
		var e CardsAssignment
		err = json.Unmarshal(data, &e)
		ev = e
	case EventBet:
		var e BetPlaced
		err = json.Unmarshal(data, &e)
		ev = e
	case EventPotsUpdate:
		var e PotsUpdate
		err = json.Unmarshal(data, &e)
		ev = e
	case EventPlayerAction:
		var e PlayerAction
		err = json.Unmarshal(data, &e)
		if e.Action == actionChangeCardsLegacy {
			e.Action = ActionCardsChange
		}
		ev = e
	case EventDeadPlayer:
		var e DeadPlayer
		err = json.Unmarshal(data, &e)
		ev = e
	case EventFold:
		var e Fold
		err = json.Unmarshal(data, &e)
		ev = e
	case EventCardsChange:
		var e CardsChange
		err = json.Unmarshal(data, &e)
		ev = e
	case EventSharedCards, EventAddSharedCards:
		var e SharedCards
		err = json.Unmarshal(data, &e)
		ev = e
	case EventWinnerDesignation:
		var e WinnerDesignation
		err = json.Unmarshal(data, &e)
		ev = e
	case EventShowdown:
		var e Showdown
		err = json.Unmarshal(data, &e)
		ev = e
	case EventGameOver:
		ev = GameOver{}
	default:
		ev = UnknownGameEvent{Name: w.Event}
	}
	if err != nil {
		return nil, fmt.Errorf("protocol: malformed %s event: %w", w.Event, err)
	}
	m.Event = ev
	return m, nil
}
