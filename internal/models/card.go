package models

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Suits in wire order.
const (
	Spades = iota
	Clubs
	Diamonds
	Hearts
)

// AceHigh is the rank the server uses for aces in scored hands.
const AceHigh = 14

// ErrInvalidCard is returned for ranks outside 1..14 or suits outside 0..3.
var ErrInvalidCard = errors.New("invalid card")

// Card is a single playing card as sent on the wire: [rank, suit].
type Card struct {
	Rank int
	Suit int
}

// UnmarshalJSON decodes the two-element array form.
func (c *Card) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("card: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("card: expected [rank, suit], got %d elements", len(pair))
	}
	c.Rank, c.Suit = pair[0], pair[1]
	return nil
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Rank, c.Suit})
}

// Normalize folds the high ace onto rank 1.
func (c Card) Normalize() Card {
	if c.Rank == AceHigh {
		c.Rank = 1
	}
	return c
}

// Validate reports ErrInvalidCard for anything the card sheet cannot show.
func (c Card) Validate() error {
	n := c.Normalize()
	if n.Rank < 1 || n.Rank > 13 {
		return fmt.Errorf("%w: rank %d", ErrInvalidCard, c.Rank)
	}
	if n.Suit < Spades || n.Suit > Hearts {
		return fmt.Errorf("%w: suit %d", ErrInvalidCard, c.Suit)
	}
	return nil
}

var suitGlyphs = [...]string{"♠", "♣", "♦", "♥"}

var faceRanks = map[int]string{1: "A", 11: "J", 12: "Q", 13: "K"}

// RankLabel returns "A", "2".."10", "J", "Q" or "K".
func (c Card) RankLabel() string {
	n := c.Normalize()
	if s, ok := faceRanks[n.Rank]; ok {
		return s
	}
	return fmt.Sprintf("%d", n.Rank)
}

// Glyph returns the suit symbol, or "?" for an unknown suit.
func (c Card) Glyph() string {
	if c.Suit < Spades || c.Suit > Hearts {
		return "?"
	}
	return suitGlyphs[c.Suit]
}

// IsRed is true for diamonds and hearts.
func (c Card) IsRed() bool {
	return c.Suit == Diamonds || c.Suit == Hearts
}

func (c Card) String() string {
	return c.RankLabel() + c.Glyph()
}
