package table

import (
	"time"

	"github.com/jason-s-yu/poker5/internal/models"
	"github.com/jason-s-yu/poker5/internal/sprite"
)

// Renderer draws the table. All calls come from the synchronizer's event
// loop, one at a time, and each call carries the complete state of the
// entity it names.
type Renderer interface {
	RenderSeat(SeatView)
	RenderHand(HandView)
	RenderPots([]models.Pot)
	// RenderBetBadges replaces every badge; players absent from the map show none.
	RenderBetBadges(map[string]string)
	RenderSharedCards([]CardView)
	RenderControls(ControlsView)
	AnimateCardsChange(playerID string, numCards int)

	StartTimer(playerID string, remaining time.Duration)
	UpdateTimer(playerID string, remaining time.Duration)
	StopTimer(playerID string)

	// Log appends a line to the status log.
	Log(line string)
	// Flush is called once after each handled message, action or tick.
	Flush()
}

// CardView is a card placed on its sheet. Face-down cards carry no sprite.
type CardView struct {
	Card    models.Card
	FaceUp  bool
	Sheet   string
	Variant string
	Offset  sprite.Point
}

// SeatView is one seat around the table.
type SeatView struct {
	Index int
	Empty bool

	PlayerID string
	Name     string
	Money    float64
	IsLocal  bool
	IsDealer bool
	Folded   bool
	Winner   bool

	Cards      []CardView
	ScoreLabel string
}

// HandView is the local player's own hand panel.
type HandView struct {
	Visible     bool
	Cards       []CardView
	ScoreLabel  string
	Description string
	Selectable  bool
}

// Mode is the action the local player is being asked for.
type Mode int

const (
	ModeNone Mode = iota
	ModeBet
	ModeCardsChange
)

func (m Mode) String() string {
	switch m {
	case ModeBet:
		return "bet"
	case ModeCardsChange:
		return "cards-change"
	default:
		return "none"
	}
}

// ControlsView describes the visible action controls.
type ControlsView struct {
	Mode     Mode
	MinBet   float64
	MaxBet   float64
	Opening  bool
	PassOnly bool
	// FoldLabel is "Pass" during the opening round and "Fold" otherwise.
	FoldLabel string
	// Focus asks the renderer to bring the controls into view.
	Focus bool
}
