// Package table keeps the client's picture of the poker room in sync with
// the server. A Synchronizer owns the connection, room and game state,
// applies every inbound message to them and tells a Renderer what changed.
package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/poker5/internal/models"
	"github.com/jason-s-yu/poker5/internal/protocol"
	"github.com/jason-s-yu/poker5/internal/sprite"
)

// HandRecorder receives the game updates of each hand. It must not block.
type HandRecorder interface {
	Begin(gameID, gameType string, at time.Time)
	Record(event string, payload []byte, at time.Time)
	Finish(at time.Time)
}

// Synchronizer is the single controller of a client session. It is not
// safe for concurrent use; Run serializes all access.
type Synchronizer struct {
	Conn     ConnectionState
	Room     *RoomState
	Game     *GameState
	Controls Controls

	// SendFn delivers an outbound payload. Run defaults it to the channel's Send.
	SendFn func(ctx context.Context, data []byte) error
	// Clock drives the turn countdown.
	Clock clockwork.Clock
	// Sheets places face-up cards on their sprite sheet.
	Sheets sprite.Sheets
	// Recorder, when set, gets every game update.
	Recorder HandRecorder

	renderer Renderer
	logger   *logrus.Logger
	timer    *turnTimer
}

// New creates a synchronizer for a fresh session.
func New(renderer Renderer, logger *logrus.Logger) *Synchronizer {
	return &Synchronizer{
		Room:     newRoomState(logger),
		Game:     newGameState(logger),
		Clock:    clockwork.NewRealClock(),
		Sheets:   sprite.DefaultSheets(),
		renderer: renderer,
		logger:   logger,
	}
}

// LocalPlayerID is the id the server assigned to this client.
func (s *Synchronizer) LocalPlayerID() string {
	return s.Conn.PlayerID
}

// HandleOpen records an established connection.
func (s *Synchronizer) HandleOpen(endpoint string) {
	s.Conn.Endpoint = endpoint
	s.Conn.Connected = true
	s.renderer.Log("Connected")
	s.renderer.Flush()
}

// HandleClose tears down every room, game and player entity. This is the
// only full reset; nothing reconnects afterwards.
func (s *Synchronizer) HandleClose(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WithField("error", err).Debug("Connection closed")
	}
	s.Conn.Connected = false
	s.resetTransient()

	seats := len(s.Room.Seats)
	s.Game.clear()
	if err := transition(s.Game.sm, gameEventGameOver); err != nil {
		s.logger.Warnf("game state on close: %v", err)
	}
	s.Room.reset()
	if err := transition(s.Room.sm, roomEventClose); err != nil {
		s.logger.Warnf("room state on close: %v", err)
	}

	for i := 0; i < seats; i++ {
		s.renderer.RenderSeat(SeatView{Index: i, Empty: true})
	}
	s.renderer.RenderHand(HandView{})
	s.renderer.RenderPots(nil)
	s.renderer.RenderBetBadges(map[string]string{})
	s.renderer.RenderSharedCards(nil)
	s.renderer.Log("Disconnected")
	s.renderer.Flush()
}

// Handle decodes and applies one inbound payload. Malformed payloads are
// logged and dropped.
func (s *Synchronizer) Handle(ctx context.Context, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		s.logger.WithField("payload", string(data)).Warnf("Ignoring inbound message: %v", err)
		return
	}
	if gu, ok := msg.(protocol.GameUpdate); ok && s.Recorder != nil {
		s.recordUpdate(gu, data)
	}
	s.Dispatch(ctx, msg)
	s.renderer.Flush()
}

// Dispatch applies a decoded message.
func (s *Synchronizer) Dispatch(ctx context.Context, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Ping:
		s.send(ctx, protocol.EncodePong)
	case protocol.Connect:
		s.onConnect(m)
	case protocol.Disconnect:
		// the transport close does the teardown
	case protocol.RoomUpdate:
		s.onRoomUpdate(m)
	case protocol.GameUpdate:
		s.onGameUpdate(m)
	case protocol.SetCards:
		s.resetTransient()
		s.applyHand(m.Cards, m.Score, m.AllowedToOpen)
	case protocol.Error:
		s.renderer.Log("Error received: " + m.Error)
	case protocol.Timeout:
		s.onTimeout()
	default:
		s.logger.Debugf("Ignoring message of unknown type %q", msg.Type())
	}
}

func (s *Synchronizer) send(ctx context.Context, encode func() ([]byte, error)) bool {
	data, err := encode()
	if err != nil {
		s.logger.Errorf("Failed to encode outbound message: %v", err)
		return false
	}
	if s.SendFn == nil {
		s.logger.Warn("No outbound channel; dropping message")
		return false
	}
	if err := s.SendFn(ctx, data); err != nil {
		s.logger.Warnf("Failed to send message: %v", err)
		return false
	}
	return true
}

func (s *Synchronizer) onConnect(m protocol.Connect) {
	s.Conn.ServerID = m.ServerID
	s.Conn.PlayerID = m.Player.ID
	s.logger.WithFields(logrus.Fields{
		"server_id": m.ServerID,
		"player_id": m.Player.ID,
	}).Info("Session established")
	s.renderer.Log("Connection established with poker5 server: " + m.ServerID)
}

func (s *Synchronizer) onTimeout() {
	s.renderer.Log("Time is up!")
	s.resetTransient()
}

func (s *Synchronizer) onRoomUpdate(m protocol.RoomUpdate) {
	log := s.logger.WithFields(logrus.Fields{"room_id": m.RoomID, "event": m.Event})

	switch m.Event {
	case protocol.RoomInit:
		s.Room.ID = m.RoomID
		s.Room.Seats = append([]string(nil), m.PlayerIDs...)
		s.Room.Players = m.Players
		if err := transition(s.Room.sm, roomEventInit); err != nil {
			log.Warnf("room state: %v", err)
		}
		for i := range s.Room.Seats {
			s.renderSeat(i)
		}
		log.Infof("Joined room: %d of %d seats taken", s.Room.Occupied(), len(s.Room.Seats))

	case protocol.RoomPlayerAdded:
		seat := -1
		for i, id := range m.PlayerIDs {
			if id == m.PlayerID && m.PlayerID != "" {
				seat = i
				break
			}
		}
		player := m.Players[m.PlayerID]
		if seat < 0 || player == nil {
			log.Warnf("player-added for unknown player %q", m.PlayerID)
			return
		}
		s.ensureSeats(seat + 1)
		s.Room.Seats[seat] = m.PlayerID
		s.Room.Players[m.PlayerID] = player
		s.renderSeat(seat)
		s.renderer.Log(player.DisplayName(s.Conn.PlayerID) + " joined the room")

	case protocol.RoomPlayerRemoved:
		seat := s.Room.SeatOf(m.PlayerID)
		if seat < 0 {
			log.Warnf("player-removed for unseated player %q", m.PlayerID)
			return
		}
		player := s.Room.Players[m.PlayerID]
		s.Room.Seats[seat] = ""
		delete(s.Room.Players, m.PlayerID)
		s.renderSeat(seat)
		name := m.PlayerID
		if player != nil {
			name = player.DisplayName(s.Conn.PlayerID)
		}
		s.renderer.Log(name + " left the room")

	default:
		log.Debug("Ignoring unknown room event")
	}
}

func (s *Synchronizer) ensureSeats(n int) {
	for len(s.Room.Seats) < n {
		s.Room.Seats = append(s.Room.Seats, "")
	}
}

// resetTransient hides the action controls and stops any countdown.
func (s *Synchronizer) resetTransient() {
	s.resetControls()
	if s.timer != nil {
		s.renderer.StopTimer(s.timer.playerID)
		s.timer = nil
	}
}

func (s *Synchronizer) playerName(id string) string {
	if p, ok := s.Room.Players[id]; ok {
		return p.DisplayName(s.Conn.PlayerID)
	}
	if id == s.Conn.PlayerID && id != "" {
		return "You"
	}
	return id
}

// updateMoney applies server-reported balances to the roster and redraws the affected seats.
func (s *Synchronizer) updateMoney(players ...*models.Player) {
	for _, p := range players {
		if p == nil || p.ID == "" {
			continue
		}
		cur, ok := s.Room.Players[p.ID]
		if !ok {
			s.logger.Warnf("money update for player %q not in room", p.ID)
			continue
		}
		cur.Money = p.Money
		if p.Name != "" {
			cur.Name = p.Name
		}
		if seat := s.Room.SeatOf(p.ID); seat >= 0 {
			s.renderSeat(seat)
		}
	}
}

func (s *Synchronizer) renderAllSeats() {
	for i := range s.Room.Seats {
		s.renderSeat(i)
	}
}

// renderSeat redraws one seat from scratch. A seat whose cards cannot be
// placed is not drawn at all.
func (s *Synchronizer) renderSeat(i int) {
	id := s.Room.Seats[i]
	if id == "" {
		s.renderer.RenderSeat(SeatView{Index: i, Empty: true})
		return
	}
	p, ok := s.Room.Players[id]
	if !ok || p == nil {
		s.logger.Warnf("seat %d holds %q, missing from the roster", i, id)
		return
	}
	view := SeatView{
		Index:    i,
		PlayerID: id,
		Name:     p.DisplayName(s.Conn.PlayerID),
		Money:    p.Money,
		IsLocal:  id == s.Conn.PlayerID,
		IsDealer: id == s.Game.DealerID,
		Folded:   s.Game.Folded[id],
		Winner:   s.Game.Winners[id],
	}
	if rev, ok := s.Game.Revealed[id]; ok {
		cards, err := s.cardViews(rev.Cards, sprite.Small)
		if err != nil {
			s.logger.WithField("player_id", id).Errorf("cannot render revealed hand: %v", err)
			return
		}
		view.Cards = cards
		if rev.Score != nil {
			view.ScoreLabel = models.CategoryLabel(s.Game.Type, rev.Score.Category)
		}
	} else if s.Game.InProgress() && s.Game.Participates(id) {
		view.Cards = make([]CardView, models.HandSize(s.Game.Type))
	}
	s.renderer.RenderSeat(view)
}

func (s *Synchronizer) renderHand() {
	if s.Game.Hand == nil {
		s.renderer.RenderHand(HandView{})
		return
	}
	cards, err := s.cardViews(s.Game.Hand, sprite.Large)
	if err != nil {
		s.logger.Errorf("cannot render own hand: %v", err)
		return
	}
	view := HandView{
		Visible:    true,
		Cards:      cards,
		Selectable: s.Controls.Mode == ModeCardsChange,
	}
	if s.Game.Score != nil {
		view.ScoreLabel = models.CategoryLabel(s.Game.Type, s.Game.Score.Category)
		view.Description = describeScore(s.Game.Type, s.Game.Score)
	}
	s.renderer.RenderHand(view)
}

func (s *Synchronizer) renderBadges() {
	badges := make(map[string]string, len(s.Game.Bets))
	for id, bet := range s.Game.Bets {
		badges[id] = models.FormatMoney(bet)
	}
	s.renderer.RenderBetBadges(badges)
}

func (s *Synchronizer) renderShared() {
	cards, err := s.cardViews(s.Game.SharedCards, sprite.Medium)
	if err != nil {
		s.logger.Errorf("cannot render shared cards: %v", err)
		return
	}
	s.renderer.RenderSharedCards(cards)
}

// cardViews places face-up cards; any invalid card fails the whole set.
func (s *Synchronizer) cardViews(cards []models.Card, variant string) ([]CardView, error) {
	sheet := s.Sheets.Get(variant)
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		off, err := sprite.Offset(c.Rank, c.Suit, sheet)
		if err != nil {
			return nil, fmt.Errorf("card %v: %w", c, err)
		}
		out = append(out, CardView{
			Card:    c.Normalize(),
			FaceUp:  true,
			Sheet:   sheet.URL,
			Variant: variant,
			Offset:  off,
		})
	}
	return out, nil
}

func (s *Synchronizer) recordUpdate(gu protocol.GameUpdate, raw []byte) {
	now := s.Clock.Now()
	if ng, ok := gu.Event.(protocol.NewGame); ok {
		s.Recorder.Begin(ng.GameID, ng.GameType, now)
	}
	s.Recorder.Record(gu.Event.EventName(), raw, now)
	if _, ok := gu.Event.(protocol.GameOver); ok {
		s.Recorder.Finish(now)
	}
}
