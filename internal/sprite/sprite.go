// Package sprite locates a card inside a card sheet image.
//
// A sheet has one two-column cell per rank, ace first. Inside a cell the
// red suits sit on the top row, black on the bottom; hearts and clubs in
// the left column, diamonds and spades in the right one. Offsets are the
// negative background position that brings the card to the origin.
package sprite

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCard is returned when a rank or suit cannot be placed on the sheet.
var ErrInvalidCard = errors.New("sprite: invalid card")

// Variant names.
const (
	Small  = "small"
	Medium = "medium"
	Large  = "large"
)

// Variant describes one sheet image.
type Variant struct {
	URL        string `yaml:"url"`
	CardWidth  int    `yaml:"card_width"`
	CardHeight int    `yaml:"card_height"`
}

// CellWidth is the horizontal distance between consecutive ranks.
func (v Variant) CellWidth() int {
	return 2 * v.CardWidth
}

// Point is a background offset in pixels.
type Point struct {
	X int
	Y int
}

// column/row of each suit inside a rank cell, indexed by wire suit.
var suitCell = [4]struct{ col, row int }{
	{1, 1}, // spades
	{0, 1}, // clubs
	{1, 0}, // diamonds
	{0, 0}, // hearts
}

// Offset returns the sheet offset of a card. Rank 14 is drawn as the ace.
func Offset(rank, suit int, v Variant) (Point, error) {
	if rank == 14 {
		rank = 1
	}
	if rank < 1 || rank > 13 {
		return Point{}, fmt.Errorf("%w: rank %d", ErrInvalidCard, rank)
	}
	if suit < 0 || suit >= len(suitCell) {
		return Point{}, fmt.Errorf("%w: suit %d", ErrInvalidCard, suit)
	}
	cell := suitCell[suit]
	return Point{
		X: -(rank-1)*v.CellWidth() - cell.col*v.CardWidth,
		Y: -cell.row * v.CardHeight,
	}, nil
}

// Sheets maps variant names to their sheet.
type Sheets map[string]Variant

// DefaultSheets are used when no sprite config is given.
func DefaultSheets() Sheets {
	return Sheets{
		Small:  {URL: "/static/cards-small.png", CardWidth: 45, CardHeight: 75},
		Medium: {URL: "/static/cards-medium.png", CardWidth: 60, CardHeight: 100},
		Large:  {URL: "/static/cards.png", CardWidth: 75, CardHeight: 125},
	}
}

// Get returns the named variant, falling back to the small sheet.
func (s Sheets) Get(name string) Variant {
	if v, ok := s[name]; ok {
		return v
	}
	return s[Small]
}

type sheetsFile struct {
	Variants map[string]Variant `yaml:"variants"`
}

// LoadSheets reads variant overrides from a YAML file on top of the defaults.
// An empty path returns the defaults.
func LoadSheets(path string) (Sheets, error) {
	sheets := DefaultSheets()
	if path == "" {
		return sheets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sprite config: %w", err)
	}
	var f sheetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sprite config %s: %w", path, err)
	}
	for name, v := range f.Variants {
		if v.CardWidth <= 0 || v.CardHeight <= 0 {
			return nil, fmt.Errorf("sprite variant %q: card size must be positive", name)
		}
		sheets[name] = v
	}
	return sheets, nil
}
