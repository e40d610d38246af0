package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/poker5/internal/models"
)

func TestDecodeSimpleMessages(t *testing.T) {
	msg, err := Decode([]byte(`{"message_type":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, Ping{}, msg)

	msg, err = Decode([]byte(`{"message_type":"connect","server_id":"srv-1","player":{"id":"p1","name":"Alice","money":1000.0}}`))
	require.NoError(t, err)
	conn, ok := msg.(Connect)
	require.True(t, ok)
	assert.Equal(t, "srv-1", conn.ServerID)
	assert.Equal(t, "p1", conn.Player.ID)
	assert.Equal(t, 1000.0, conn.Player.Money)

	msg, err = Decode([]byte(`{"message_type":"error","error":"Invalid bet"}`))
	require.NoError(t, err)
	assert.Equal(t, Error{Error: "Invalid bet"}, msg)

	msg, err = Decode([]byte(`{"message_type":"timeout"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeTimeout, msg.Type())
}

func TestDecodeLegacyMsgID(t *testing.T) {
	msg, err := Decode([]byte(`{"msg_id":"room-update","event":"init","room_id":"r1","player_ids":["p1",null,"p2"],"players":{"p1":{"id":"p1","name":"A","money":10},"p2":{"id":"p2","name":"B","money":20}}}`))
	require.NoError(t, err)
	ru, ok := msg.(RoomUpdate)
	require.True(t, ok)
	assert.Equal(t, RoomInit, ru.Event)
	assert.Equal(t, []string{"p1", "", "p2"}, ru.PlayerIDs)
	assert.Len(t, ru.Players, 2)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"event":"init"}`))
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = Decode([]byte(`{"message_type":"game-update","event":"bet","player":"p1"}`))
	assert.Error(t, err)

	msg, err := Decode([]byte(`{"message_type":"chat","text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, Unknown{Tag: "chat"}, msg)
}

func gameEvent(t *testing.T, payload string) (GameUpdate, GameEvent) {
	t.Helper()
	msg, err := Decode([]byte(payload))
	require.NoError(t, err)
	gu, ok := msg.(GameUpdate)
	require.True(t, ok, "expected game-update, got %T", msg)
	return gu, gu.Event
}

func TestDecodeNewGameRosterShapes(t *testing.T) {
	_, ev := gameEvent(t, `{"message_type":"game-update","event":"new-game","game_id":"g1","game_type":"traditional",
		"players":[{"id":"p2","name":"B","money":10},{"id":"p1","name":"A","money":10}],"dealer_id":"p2","blind_bets":{}}`)
	ng := ev.(NewGame)
	assert.Equal(t, models.GameTraditional, ng.GameType)
	assert.Equal(t, []string{"p2", "p1"}, ng.Participants())

	gu, ev := gameEvent(t, `{"message_type":"game-update","event":"new-game","game_id":"g2","game_type":"texas-holdem",
		"player_ids":["p1","p3"],"dealer_id":"p1","blind_bets":{"p1":5,"p3":10},"bets":{"p1":5,"p3":10}}`)
	ng = ev.(NewGame)
	assert.Equal(t, []string{"p1", "p3"}, ng.Participants())
	assert.Equal(t, 10.0, ng.BlindBets["p3"])
	assert.Equal(t, map[string]float64{"p1": 5, "p3": 10}, gu.Bets)

	_, ev = gameEvent(t, `{"message_type":"game-update","event":"pots-update","pots":[{"money":30,"player_ids":["p1","p3"]}],
		"players":{"p3":{"id":"p3","name":"C","money":90},"p1":{"id":"p1","name":"A","money":95}}}`)
	pu := ev.(PotsUpdate)
	require.Len(t, pu.Players, 2)
	assert.Equal(t, "p1", pu.Players[0].ID)
	assert.Equal(t, 30.0, pu.Pots[0].Money)
}

func TestDecodeGameEvents(t *testing.T) {
	gu, ev := gameEvent(t, `{"message_type":"game-update","event":"bet","player":{"id":"p1","name":"A","money":950},"bet":50,"bet_type":"raise","bets":{"p1":50}}`)
	assert.Equal(t, BetPlaced{Player: models.Player{ID: "p1", Name: "A", Money: 950}, Bet: 50, BetType: "raise"}, ev)
	assert.Equal(t, map[string]float64{"p1": 50}, gu.Bets)

	_, ev = gameEvent(t, `{"message_type":"game-update","event":"cards-assignment","target":"p1","cards":[[14,0],[13,0]],"score":{"category":0,"cards":[[14,0]]}}`)
	ca := ev.(CardsAssignment)
	assert.Equal(t, "p1", ca.Target)
	assert.Equal(t, []models.Card{{Rank: 14, Suit: 0}, {Rank: 13, Suit: 0}}, ca.Cards)
	require.NotNil(t, ca.Score)

	_, ev = gameEvent(t, `{"message_type":"game-update","event":"player-action","action":"change-cards","player":{"id":"p1"},"timeout":30}`)
	assert.Equal(t, ActionCardsChange, ev.(PlayerAction).Action)

	_, ev = gameEvent(t, `{"message_type":"game-update","event":"add-shared-cards","cards":[[2,3]]}`)
	assert.Equal(t, SharedCards{Cards: []models.Card{{Rank: 2, Suit: 3}}}, ev)

	_, ev = gameEvent(t, `{"message_type":"game-update","event":"winner-designation","pot":{"money":300,"player_ids":["p1","p2","p3"],"winner_ids":["p2"],"money_split":300},"pots":[],"players":{}}`)
	wd := ev.(WinnerDesignation)
	assert.True(t, wd.Pot.HasWinner("p2"))
	assert.False(t, wd.Pot.HasWinner("p1"))

	_, ev = gameEvent(t, `{"message_type":"game-update","event":"showdown","players":{"p1":{"cards":[[2,1]],"score":{"category":1,"cards":[]}}}}`)
	assert.Len(t, ev.(Showdown).Players["p1"].Cards, 1)

	_, ev = gameEvent(t, `{"message_type":"game-update","event":"game-over"}`)
	assert.Equal(t, GameOver{}, ev)

	_, ev = gameEvent(t, `{"message_type":"game-update","event":"side-bet"}`)
	assert.Equal(t, UnknownGameEvent{Name: "side-bet"}, ev)
}

func TestPlayerActionDeadline(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pa := PlayerAction{Timeout: 30, TimeoutDate: "2024-03-01 12:00:20+0000"}
	assert.True(t, pa.Deadline(now).Equal(now.Add(20*time.Second)))

	pa = PlayerAction{Timeout: 30}
	assert.True(t, pa.Deadline(now).Equal(now.Add(30*time.Second)))

	pa = PlayerAction{Timeout: 15, TimeoutDate: "garbage"}
	assert.True(t, pa.Deadline(now).Equal(now.Add(15*time.Second)))
}

func TestEncodeOutbound(t *testing.T) {
	data, err := EncodePong()
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_type":"pong"}`, string(data))

	data, err = EncodeBet(FoldBet)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_type":"bet","bet":-1}`, string(data))

	data, err = EncodeBet(25.5)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_type":"bet","bet":25.5}`, string(data))

	data, err = EncodeCardsChange(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_type":"cards-change","cards":[]}`, string(data))

	data, err = EncodeCardsChange([]int{0, 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_type":"cards-change","cards":[0,3]}`, string(data))

	data, err = EncodeConnect(models.Player{ID: "p1", Name: "A", Money: 1000}, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_type":"connect","player":{"id":"p1","name":"A","money":1000},"session_id":"s1"}`, string(data))
}
