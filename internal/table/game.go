package table

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/poker5/internal/models"
	"github.com/jason-s-yu/poker5/internal/protocol"
)

// onGameUpdate applies one game event. Controls and countdowns from the
// previous turn are always cleared first, and the bet badges are replaced
// by the bets the server attached to the update.
func (s *Synchronizer) onGameUpdate(m protocol.GameUpdate) {
	s.resetTransient()
	s.Game.Bets = m.Bets

	switch e := m.Event.(type) {
	case protocol.NewGame:
		s.onNewGame(m, e)
	case protocol.CardsAssignment:
		if e.Target != "" && e.Target != s.Conn.PlayerID {
			s.logger.Debugf("Ignoring cards assigned to %q", e.Target)
			break
		}
		s.applyHand(e.Cards, e.Score, e.AllowedToOpen)
	case protocol.BetPlaced:
		s.onBet(e)
	case protocol.PotsUpdate:
		s.Game.Pots = e.Pots
		s.Game.Bets = nil
		s.updateMoney(e.Players...)
		s.renderer.RenderPots(s.Game.Pots)
	case protocol.PlayerAction:
		s.onPlayerAction(e)
	case protocol.DeadPlayer:
		s.markFolded(e.Player.ID)
		s.renderer.Log(s.playerName(e.Player.ID) + " left the game")
	case protocol.Fold:
		s.markFolded(e.Player.ID)
		s.renderer.Log(s.playerName(e.Player.ID) + " folded")
	case protocol.CardsChange:
		s.renderer.AnimateCardsChange(e.Player.ID, e.NumCards)
		s.renderer.Log(fmt.Sprintf("%s changed %d cards", s.playerName(e.Player.ID), e.NumCards))
	case protocol.SharedCards:
		s.Game.SharedCards = append(s.Game.SharedCards, e.Cards...)
		s.renderShared()
	case protocol.WinnerDesignation:
		s.onWinnerDesignation(e)
	case protocol.Showdown:
		s.onShowdown(e)
	case protocol.GameOver:
		s.onGameOver()
	default:
		s.logger.Debugf("Ignoring unknown game event %q", m.Event.EventName())
	}

	s.renderBadges()
}

func (s *Synchronizer) onNewGame(m protocol.GameUpdate, e protocol.NewGame) {
	s.Game.clear()
	s.Game.ID = e.GameID
	if s.Game.ID == "" {
		s.Game.ID = m.GameID
	}
	s.Game.Type = e.GameType
	s.Game.DealerID = e.DealerID
	s.Game.Participants = e.Participants()
	s.Game.Bets = m.Bets
	if s.Game.Bets == nil && len(e.BlindBets) > 0 {
		s.Game.Bets = e.BlindBets
	}
	if err := transition(s.Game.sm, gameEventNewGame); err != nil {
		s.logger.Warnf("game state: %v", err)
	}

	s.logger.WithFields(logrus.Fields{
		"game_id":   s.Game.ID,
		"game_type": s.Game.Type,
		"players":   len(s.Game.Participants),
	}).Info("New game")

	s.updateMoney(e.Players...)
	s.renderAllSeats()
	s.renderHand()
	s.renderer.RenderPots(nil)
	s.renderShared()
	s.renderer.Log("New game started, dealer: " + s.playerName(s.Game.DealerID))
}

// applyHand shows the local player's private cards.
func (s *Synchronizer) applyHand(cards []models.Card, score *models.Score, allowedToOpen bool) {
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			s.logger.Errorf("cannot render own hand: %v", err)
			return
		}
	}
	s.Game.Hand = append([]models.Card(nil), cards...)
	s.Game.Score = score
	s.Game.AllowedToOpen = allowedToOpen
	s.renderHand()
}

func (s *Synchronizer) onBet(e protocol.BetPlaced) {
	s.updateMoney(&e.Player)
	name := s.playerName(e.Player.ID)
	switch {
	case e.Bet < 0:
		s.renderer.Log(name + " passed")
	case e.BetType != "":
		s.renderer.Log(fmt.Sprintf("%s: %s %s", name, e.BetType, models.FormatMoney(e.Bet)))
	default:
		s.renderer.Log(fmt.Sprintf("%s bet %s", name, models.FormatMoney(e.Bet)))
	}
}

func (s *Synchronizer) onPlayerAction(e protocol.PlayerAction) {
	id := e.Player.ID
	if e.Action != protocol.ActionBet && e.Action != protocol.ActionCardsChange {
		s.logger.Warnf("Ignoring player-action with unknown action %q", e.Action)
		return
	}

	s.startTimer(id, e.Deadline(s.Clock.Now()))

	if id != s.Conn.PlayerID || id == "" {
		what := "bet"
		if e.Action == protocol.ActionCardsChange {
			what = "change cards"
		}
		s.renderer.Log(fmt.Sprintf("Waiting for %s to %s...", s.playerName(id), what))
		return
	}

	if e.Action == protocol.ActionCardsChange {
		s.Controls = Controls{Mode: ModeCardsChange}
		s.renderer.Log("Your turn to change cards")
		s.renderHand()
	} else {
		s.Controls = Controls{
			Mode:     ModeBet,
			MinBet:   e.MinBet,
			MaxBet:   e.MaxBet,
			Opening:  e.Opening,
			PassOnly: e.Opening && !s.Game.AllowedToOpen,
		}
		s.renderer.Log("Your turn to bet")
	}
	view := s.controlsView()
	view.Focus = true
	s.renderer.RenderControls(view)
}

func (s *Synchronizer) controlsView() ControlsView {
	c := s.Controls
	label := "Fold"
	if c.Opening {
		label = "Pass"
	}
	return ControlsView{
		Mode:      c.Mode,
		MinBet:    c.MinBet,
		MaxBet:    c.MaxBet,
		Opening:   c.Opening,
		PassOnly:  c.PassOnly,
		FoldLabel: label,
	}
}

// markFolded flags a player inactive. The seat stays; only a room update removes it.
func (s *Synchronizer) markFolded(id string) {
	seat := s.Room.SeatOf(id)
	if seat < 0 {
		s.logger.Warnf("fold for unseated player %q", id)
		return
	}
	s.Game.Folded[id] = true
	s.renderSeat(seat)
}

func (s *Synchronizer) onWinnerDesignation(e protocol.WinnerDesignation) {
	s.Game.Pots = e.Pots
	s.updateMoney(e.Players...)
	s.renderer.RenderPots(s.Game.Pots)

	winners := make([]string, 0, len(e.Pot.WinnerIDs))
	for _, id := range e.Pot.PlayerIDs {
		// A player who won an earlier pot of this hand stays a winner.
		if e.Pot.HasWinner(id) {
			s.Game.Winners[id] = true
			delete(s.Game.Folded, id)
		} else if !s.Game.Winners[id] {
			s.Game.Folded[id] = true
		}
		if seat := s.Room.SeatOf(id); seat >= 0 {
			s.renderSeat(seat)
		}
	}
	for _, id := range e.Pot.WinnerIDs {
		winners = append(winners, s.playerName(id))
	}
	if len(winners) > 0 {
		s.renderer.Log(fmt.Sprintf("%s won %s", strings.Join(winners, ", "), models.FormatMoney(e.Pot.Money)))
	}
}

func (s *Synchronizer) onShowdown(e protocol.Showdown) {
	for id, hand := range e.Players {
		s.Game.Revealed[id] = revealedHand{Cards: hand.Cards, Score: hand.Score}
		seat := s.Room.SeatOf(id)
		if seat < 0 {
			s.logger.Warnf("showdown hand for unseated player %q", id)
			continue
		}
		s.renderSeat(seat)
	}
}

// onGameOver drops every per-hand mark; seat occupancy is untouched.
func (s *Synchronizer) onGameOver() {
	s.Game.clear()
	if err := transition(s.Game.sm, gameEventGameOver); err != nil {
		s.logger.Warnf("game state: %v", err)
	}
	s.renderAllSeats()
	s.renderHand()
	s.renderer.RenderPots(nil)
	s.renderShared()
}
