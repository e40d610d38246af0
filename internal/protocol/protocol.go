// Package protocol decodes the tagged JSON messages pushed by the poker5
// server and encodes the few messages the client sends back.
package protocol

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/jason-s-yu/poker5/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Inbound message tags.
const (
	TypePing       = "ping"
	TypeConnect    = "connect"
	TypeDisconnect = "disconnect"
	TypeRoomUpdate = "room-update"
	TypeGameUpdate = "game-update"
	TypeSetCards   = "set-cards"
	TypeError      = "error"
	TypeTimeout    = "timeout"
)

// ErrMissingType is returned when a payload carries neither message_type nor msg_id.
var ErrMissingType = errors.New("protocol: message has no type")

// Message is any decoded inbound message.
type Message interface {
	Type() string
}

type Ping struct{}

func (Ping) Type() string { return TypePing }

// Connect is the server's handshake reply.
type Connect struct {
	ServerID string        `json:"server_id"`
	Player   models.Player `json:"player"`
}

func (Connect) Type() string { return TypeConnect }

type Disconnect struct{}

func (Disconnect) Type() string { return TypeDisconnect }

// Room update events.
const (
	RoomInit          = "init"
	RoomPlayerAdded   = "player-added"
	RoomPlayerRemoved = "player-removed"
)

// RoomUpdate describes the seat layout. Empty seats are "" in PlayerIDs.
type RoomUpdate struct {
	Event     string
	RoomID    string
	PlayerIDs []string
	Players   map[string]*models.Player
	PlayerID  string
}

func (RoomUpdate) Type() string { return TypeRoomUpdate }

type roomUpdateWire struct {
	Event     string                    `json:"event"`
	RoomID    string                    `json:"room_id"`
	PlayerIDs []*string                 `json:"player_ids"`
	Players   map[string]*models.Player `json:"players"`
	PlayerID  string                    `json:"player_id"`
}

// SetCards is the private hand message used before cards-assignment existed.
type SetCards struct {
	Cards         []models.Card `json:"cards"`
	Score         *models.Score `json:"score"`
	AllowedToOpen bool          `json:"allowed_to_open"`
}

func (SetCards) Type() string { return TypeSetCards }

// Error carries a server-side error description.
type Error struct {
	Error string `json:"error"`
}

func (Error) Type() string { return TypeError }

type Timeout struct{}

func (Timeout) Type() string { return TypeTimeout }

// Unknown is returned for tags this client does not handle.
type Unknown struct {
	Tag string
}

func (u Unknown) Type() string { return u.Tag }

type envelope struct {
	MessageType string `json:"message_type"`
	MsgID       string `json:"msg_id"`
}

// Decode parses one inbound payload. The discriminant is message_type,
// falling back to the older msg_id field.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: invalid JSON: %w", err)
	}
	tag := env.MessageType
	if tag == "" {
		tag = env.MsgID
	}

	switch tag {
	case "":
		return nil, ErrMissingType
	case TypePing:
		return Ping{}, nil
	case TypeDisconnect:
		return Disconnect{}, nil
	case TypeTimeout:
		return Timeout{}, nil
	case TypeConnect:
		var m Connect
		if err := unmarshal(tag, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeError:
		var m Error
		if err := unmarshal(tag, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeSetCards:
		var m SetCards
		if err := unmarshal(tag, data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeRoomUpdate:
		return decodeRoomUpdate(data)
	case TypeGameUpdate:
		return decodeGameUpdate(data)
	default:
		return Unknown{Tag: tag}, nil
	}
}

func unmarshal(tag string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("protocol: malformed %s: %w", tag, err)
	}
	return nil
}

func decodeRoomUpdate(data []byte) (Message, error) {
	var w roomUpdateWire
	if err := unmarshal(TypeRoomUpdate, data, &w); err != nil {
		return nil, err
	}
	m := RoomUpdate{
		Event:     w.Event,
		RoomID:    w.RoomID,
		PlayerIDs: make([]string, len(w.PlayerIDs)),
		Players:   w.Players,
		PlayerID:  w.PlayerID,
	}
	for i, id := range w.PlayerIDs {
		if id != nil {
			m.PlayerIDs[i] = *id
		}
	}
	if m.Players == nil {
		m.Players = map[string]*models.Player{}
	}
	return m, nil
}
