package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/jason-s-yu/poker5/internal/protocol"
)

// MaxDiscards is the most cards a player may change in one draw.
const MaxDiscards = 4

var (
	ErrNotYourTurn  = errors.New("not your turn")
	ErrInvalidBet   = errors.New("invalid bet")
	ErrInvalidSlots = errors.New("invalid card selection")
	ErrSendFailed   = errors.New("failed to send action")
)

// Action is a user command executed on the event loop.
type Action interface {
	apply(ctx context.Context, s *Synchronizer) error
}

// BetAction bets Amount; protocol.FoldBet folds or passes.
type BetAction struct {
	Amount float64
}

func (a BetAction) apply(ctx context.Context, s *Synchronizer) error {
	return s.Bet(ctx, a.Amount)
}

// FoldAction folds, or passes during the opening round.
type FoldAction struct{}

func (FoldAction) apply(ctx context.Context, s *Synchronizer) error {
	return s.Fold(ctx)
}

// ChangeCardsAction discards the given hand slots.
type ChangeCardsAction struct {
	Slots []int
}

func (a ChangeCardsAction) apply(ctx context.Context, s *Synchronizer) error {
	return s.ChangeCards(ctx, a.Slots)
}

// Perform runs an action and reports a failure on the status log.
func (s *Synchronizer) Perform(ctx context.Context, a Action) error {
	err := a.apply(ctx, s)
	if err != nil {
		s.renderer.Log(err.Error())
	}
	s.renderer.Flush()
	return err
}

// Bet submits a bet in bet mode. Controls are hidden as soon as it is sent.
func (s *Synchronizer) Bet(ctx context.Context, amount float64) error {
	c := s.Controls
	if c.Mode != ModeBet {
		return ErrNotYourTurn
	}
	if amount != protocol.FoldBet {
		if c.PassOnly {
			return fmt.Errorf("%w: you are not allowed to open", ErrInvalidBet)
		}
		if amount < c.MinBet || amount > c.MaxBet {
			return fmt.Errorf("%w: must be between %v and %v", ErrInvalidBet, c.MinBet, c.MaxBet)
		}
	}
	if !s.send(ctx, func() ([]byte, error) { return protocol.EncodeBet(amount) }) {
		return ErrSendFailed
	}
	s.resetControls()
	return nil
}

// Fold bets FoldBet.
func (s *Synchronizer) Fold(ctx context.Context) error {
	return s.Bet(ctx, protocol.FoldBet)
}

// ChangeCards discards the given hand slots in card-change mode. An empty
// selection keeps the whole hand.
func (s *Synchronizer) ChangeCards(ctx context.Context, slots []int) error {
	if s.Controls.Mode != ModeCardsChange {
		return ErrNotYourTurn
	}
	seen := make(map[int]bool, len(slots))
	unique := make([]int, 0, len(slots))
	for _, i := range slots {
		if i < 0 || i >= len(s.Game.Hand) {
			return fmt.Errorf("%w: no card in slot %d", ErrInvalidSlots, i)
		}
		if !seen[i] {
			seen[i] = true
			unique = append(unique, i)
		}
	}
	if len(unique) > MaxDiscards {
		return fmt.Errorf("%w: at most %d cards", ErrInvalidSlots, MaxDiscards)
	}
	if !s.send(ctx, func() ([]byte, error) { return protocol.EncodeCardsChange(unique) }) {
		return ErrSendFailed
	}
	s.resetControls()
	return nil
}

// resetControls hides the controls without touching the countdown, which
// keeps running until the server moves on.
func (s *Synchronizer) resetControls() {
	s.Controls = Controls{}
	s.renderer.RenderControls(ControlsView{Mode: ModeNone})
	if s.Game.Hand != nil {
		s.renderHand()
	}
}
