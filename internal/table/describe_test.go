package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jason-s-yu/poker5/internal/models"
)

func TestDescribeScore(t *testing.T) {
	flush := &models.Score{Category: 5, Cards: []models.Card{
		{Rank: 14, Suit: models.Hearts},
		{Rank: 13, Suit: models.Hearts},
		{Rank: 9, Suit: models.Hearts},
		{Rank: 6, Suit: models.Hearts},
		{Rank: 2, Suit: models.Hearts},
	}}

	tests := []struct {
		name     string
		gameType string
		score    *models.Score
		want     bool
	}{
		{"holdem flush", models.GameTexasHoldem, flush, true},
		{"traditional is not described", models.GameTraditional, flush, false},
		{"nil score", models.GameTexasHoldem, nil, false},
		{"partial hand", models.GameTexasHoldem, &models.Score{Cards: flush.Cards[:2]}, false},
		{"invalid card", models.GameTexasHoldem, &models.Score{Cards: []models.Card{
			{Rank: 20, Suit: 0}, {Rank: 2, Suit: 0}, {Rank: 3, Suit: 0}, {Rank: 4, Suit: 0}, {Rank: 5, Suit: 0},
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeScore(tt.gameType, tt.score)
			if tt.want {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}
