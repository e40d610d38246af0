package protocol

import "github.com/jason-s-yu/poker5/internal/models"

// Outbound message tags.
const (
	TypePong        = "pong"
	TypeBet         = "bet"
	TypeCardsChange = "cards-change"
)

// FoldBet is the bet amount that folds, or passes during the opening round.
const FoldBet = -1

type pongMessage struct {
	MessageType string `json:"message_type"`
}

type betMessage struct {
	MessageType string  `json:"message_type"`
	Bet         float64 `json:"bet"`
}

type cardsChangeMessage struct {
	MessageType string `json:"message_type"`
	Cards       []int  `json:"cards"`
}

type connectMessage struct {
	MessageType string        `json:"message_type"`
	Player      models.Player `json:"player"`
	SessionID   string        `json:"session_id"`
}

// EncodePong answers a ping.
func EncodePong() ([]byte, error) {
	return json.Marshal(pongMessage{MessageType: TypePong})
}

// EncodeBet submits a bet; FoldBet folds.
func EncodeBet(amount float64) ([]byte, error) {
	return json.Marshal(betMessage{MessageType: TypeBet, Bet: amount})
}

// EncodeCardsChange submits the hand slot indices to discard.
func EncodeCardsChange(slots []int) ([]byte, error) {
	if slots == nil {
		slots = []int{}
	}
	return json.Marshal(cardsChangeMessage{MessageType: TypeCardsChange, Cards: slots})
}

// EncodeConnect is the lobby handshake used by list-based transports.
func EncodeConnect(p models.Player, sessionID string) ([]byte, error) {
	return json.Marshal(connectMessage{MessageType: TypeConnect, Player: p, SessionID: sessionID})
}
