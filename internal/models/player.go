package models

import "strconv"

// Player is a participant as last reported by the server.
type Player struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Money float64 `json:"money"`
}

// DisplayName returns "You" for the local player.
func (p *Player) DisplayName(localID string) string {
	if p == nil {
		return "unknown player"
	}
	if p.ID == localID {
		return "You"
	}
	return p.Name
}

// FormatMoney renders an amount the way badges show it, e.g. "$50" or "$12.5".
func FormatMoney(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}
