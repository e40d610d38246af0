package table

import (
	"github.com/paulhankin/poker"

	"github.com/jason-s-yu/poker5/internal/models"
)

var pokerSuits = [...]poker.Suit{
	models.Spades:   poker.Spade,
	models.Clubs:    poker.Club,
	models.Diamonds: poker.Diamond,
	models.Hearts:   poker.Heart,
}

// describeScore spells out a complete hold'em hand, e.g. "ace-high flush".
// It returns "" when the hand cannot be described.
func describeScore(gameType string, score *models.Score) string {
	if gameType != models.GameTexasHoldem || score == nil || len(score.Cards) != 5 {
		return ""
	}
	cards := make([]poker.Card, 0, len(score.Cards))
	for _, c := range score.Cards {
		n := c.Normalize()
		if n.Validate() != nil {
			return ""
		}
		pc, err := poker.MakeCard(pokerSuits[n.Suit], poker.Rank(n.Rank))
		if err != nil {
			return ""
		}
		cards = append(cards, pc)
	}
	desc, err := poker.Describe(cards)
	if err != nil {
		return ""
	}
	return desc
}
