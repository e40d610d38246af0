package models

// Pot is a main or side pot with its contributors.
type Pot struct {
	Money     float64  `json:"money"`
	PlayerIDs []string `json:"player_ids"`

	// Set only in winner designation.
	WinnerIDs  []string `json:"winner_ids,omitempty"`
	MoneySplit float64  `json:"money_split,omitempty"`
}

// HasWinner reports whether id is among the pot winners.
func (p Pot) HasWinner(id string) bool {
	for _, w := range p.WinnerIDs {
		if w == id {
			return true
		}
	}
	return false
}
