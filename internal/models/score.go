package models

// Score is the server's evaluation of a hand.
type Score struct {
	Category int    `json:"category"`
	Cards    []Card `json:"cards"`
}

// Game types as named by the server.
const (
	GameTraditional = "traditional"
	GameTexasHoldem = "texas-holdem"
)

var traditionalCategories = map[int]string{
	0: "Highest card",
	1: "Pair",
	2: "Double pair",
	3: "Three of a kind",
	4: "Straight",
	5: "Full house",
	6: "Flush",
	7: "Four of a kind",
	8: "Straight flush",
}

// Hold'em ranks a flush below a full house.
var holdemOverrides = map[int]string{
	5: "Flush",
	6: "Full house",
}

// CategoryLabel maps a score category to its display text for the given game type.
func CategoryLabel(gameType string, category int) string {
	if gameType == GameTexasHoldem {
		if s, ok := holdemOverrides[category]; ok {
			return s
		}
	}
	if s, ok := traditionalCategories[category]; ok {
		return s
	}
	return ""
}

// HandSize is the number of private cards dealt per player.
func HandSize(gameType string) int {
	if gameType == GameTexasHoldem {
		return 2
	}
	return 5
}
