// Package render draws the table in a terminal with pterm.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"

	"github.com/jason-s-yu/poker5/internal/models"
	"github.com/jason-s-yu/poker5/internal/table"
)

// logLines is how many status lines stay on screen.
const logLines = 5

// Terminal is a table.Renderer. Render calls only update its model; Flush
// draws the whole frame.
type Terminal struct {
	mu sync.Mutex

	out  io.Writer
	area *pterm.AreaPrinter

	seats    map[int]table.SeatView
	hand     table.HandView
	pots     []models.Pot
	badges   map[string]string
	shared   []table.CardView
	controls table.ControlsView
	timers   map[string]time.Duration
	changes  map[string]int
	log      []string
}

// NewTerminal draws into a live pterm area on stdout.
func NewTerminal() (*Terminal, error) {
	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return nil, fmt.Errorf("render: start area: %w", err)
	}
	t := newTerminal()
	t.area = area
	return t, nil
}

// NewWriter appends every frame to out. Used for logs and tests.
func NewWriter(out io.Writer) *Terminal {
	t := newTerminal()
	t.out = out
	return t
}

func newTerminal() *Terminal {
	return &Terminal{
		seats:   map[int]table.SeatView{},
		badges:  map[string]string{},
		timers:  map[string]time.Duration{},
		changes: map[string]int{},
	}
}

// Stop releases the terminal area.
func (t *Terminal) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.area == nil {
		return nil
	}
	return t.area.Stop()
}

func (t *Terminal) RenderSeat(v table.SeatView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.seats[v.Index]; ok && len(v.Cards) == 0 {
		delete(t.changes, prev.PlayerID)
	}
	t.seats[v.Index] = v
}

func (t *Terminal) RenderHand(v table.HandView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hand = v
}

func (t *Terminal) RenderPots(pots []models.Pot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pots = pots
}

func (t *Terminal) RenderBetBadges(badges map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.badges = badges
}

func (t *Terminal) RenderSharedCards(cards []table.CardView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shared = cards
}

func (t *Terminal) RenderControls(v table.ControlsView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.controls = v
}

// AnimateCardsChange marks the seat until it is drawn without cards.
func (t *Terminal) AnimateCardsChange(playerID string, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.changes[playerID] = n
}

func (t *Terminal) StartTimer(playerID string, remaining time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timers = map[string]time.Duration{playerID: remaining}
}

func (t *Terminal) UpdateTimer(playerID string, remaining time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timers[playerID] = remaining
}

func (t *Terminal) StopTimer(playerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.timers, playerID)
}

// Log appends a status line, dropping the oldest past logLines.
func (t *Terminal) Log(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = append(t.log, line)
	if len(t.log) > logLines {
		t.log = t.log[len(t.log)-logLines:]
	}
}

func (t *Terminal) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	frame := t.frame()
	if t.area != nil {
		t.area.Update(frame)
		return
	}
	if t.out != nil {
		fmt.Fprintln(t.out, frame)
	}
}

// Frame renders the current table without drawing it.
func (t *Terminal) Frame() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame()
}

func (t *Terminal) frame() string {
	idx := make([]int, 0, len(t.seats))
	for i := range t.seats {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	var seats []pterm.Panel
	var local pterm.Panel
	hasLocal := false
	for _, i := range idx {
		v := t.seats[i]
		p := pterm.Panel{Data: t.seatBox(v)}
		if v.IsLocal {
			local, hasLocal = p, true
			continue
		}
		seats = append(seats, p)
	}

	rows := [][]pterm.Panel{}
	if len(seats) > 0 {
		rows = append(rows, seats)
	}
	rows = append(rows, []pterm.Panel{{Data: t.boardBox()}})
	dashboard := []pterm.Panel{}
	if hasLocal {
		dashboard = append(dashboard, local)
	}
	if t.hand.Visible {
		dashboard = append(dashboard, pterm.Panel{Data: t.handBox()})
	}
	if len(dashboard) > 0 {
		rows = append(rows, dashboard)
	}

	out, err := pterm.DefaultPanel.WithPanels(rows).Srender()
	if err != nil {
		out = err.Error()
	}

	var b strings.Builder
	b.WriteString(out)
	if c := t.controlsLine(); c != "" {
		b.WriteString("\n")
		b.WriteString(c)
	}
	for _, line := range t.log {
		b.WriteString("\n")
		b.WriteString(pterm.Gray("> ") + line)
	}
	return b.String()
}

func (t *Terminal) seatBox(v table.SeatView) string {
	box := pterm.DefaultBox.WithHorizontalPadding(2)
	if v.Empty {
		return titledBox(box.WithTitleTopLeft(), fmt.Sprintf("Seat %d", v.Index+1), []string{pterm.Gray("empty")})
	}

	title := v.Name
	if v.IsDealer {
		title += " (D)"
	}
	var status string
	switch {
	case v.Winner:
		status = pterm.LightGreen("Winner")
	case v.Folded:
		status = pterm.LightRed("Folded")
	default:
		status = pterm.LightCyan("Playing")
	}
	lines := []string{status, "Money: " + models.FormatMoney(v.Money)}
	if badge, ok := t.badges[v.PlayerID]; ok {
		lines = append(lines, "Bet: "+pterm.LightYellow(badge))
	}
	if d, ok := t.timers[v.PlayerID]; ok {
		lines = append(lines, "Time: "+formatCountdown(d))
	}
	if n, ok := t.changes[v.PlayerID]; ok {
		lines = append(lines, fmt.Sprintf("Changed %d cards", n))
	}
	if len(v.Cards) > 0 {
		lines = append(lines, cardsLine(v.Cards))
	}
	if v.ScoreLabel != "" {
		lines = append(lines, v.ScoreLabel)
	}
	return titledBox(box.WithTitleTopLeft(), title, lines)
}

func (t *Terminal) boardBox() string {
	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	lines := []string{}
	if len(t.shared) > 0 {
		lines = append(lines, cardsLine(t.shared))
	}
	for i, p := range t.pots {
		lines = append(lines, fmt.Sprintf("Pot %d: %s", i+1, models.FormatMoney(p.Money)))
	}
	if len(lines) == 0 {
		lines = append(lines, pterm.Gray("waiting for a game"))
	}
	return titledBox(box.WithTitleTopCenter(), pterm.LightYellow("|TABLE|"), lines)
}

func (t *Terminal) handBox() string {
	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	slots := make([]string, len(t.hand.Cards))
	for i := range t.hand.Cards {
		slots[i] = fmt.Sprintf("%-3d", i+1)
	}
	lines := []string{cardsLine(t.hand.Cards)}
	if t.hand.Selectable {
		lines = append(lines, strings.Join(slots, " "))
	}
	label := t.hand.ScoreLabel
	if t.hand.Description != "" {
		label += " (" + t.hand.Description + ")"
	}
	if label != "" {
		lines = append(lines, label)
	}
	return titledBox(box.WithTitleTopCenter(), pterm.LightYellow("|YOUR HAND|"), lines)
}

func (t *Terminal) controlsLine() string {
	c := t.controls
	switch c.Mode {
	case table.ModeBet:
		if c.PassOnly {
			return pterm.BgGreen.Sprintf(" Your turn: %s (you cannot open) ", strings.ToLower(c.FoldLabel))
		}
		return pterm.BgGreen.Sprintf(" Your turn: bet %s-%s or %s ",
			models.FormatMoney(c.MinBet), models.FormatMoney(c.MaxBet), strings.ToLower(c.FoldLabel))
	case table.ModeCardsChange:
		return pterm.BgGreen.Sprintf(" Your turn: change <slots> (up to %d) or change to keep ", table.MaxDiscards)
	}
	return ""
}

// titledBox draws lines in box under title. pterm needs the padded body to
// be at least four columns wider than the title, so the first line is
// padded with spaces when the content is narrower.
func titledBox(box *pterm.BoxPrinter, title string, lines []string) string {
	if len(lines) == 0 {
		lines = []string{""}
	}
	need := visibleWidth(title) + 4 - box.LeftPadding - box.RightPadding
	widest := 0
	for _, l := range lines {
		if w := visibleWidth(l); w > widest {
			widest = w
		}
	}
	if widest < need {
		lines = append([]string(nil), lines...)
		lines[0] += strings.Repeat(" ", need-visibleWidth(lines[0]))
	}
	return box.WithTitle(title).Sprint(strings.Join(lines, "\n"))
}

func visibleWidth(s string) int {
	return runewidth.StringWidth(pterm.RemoveColorFromString(s))
}

func cardsLine(cards []table.CardView) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, cardText(c))
	}
	return strings.Join(parts, " ")
}

func cardText(c table.CardView) string {
	if !c.FaceUp {
		return pterm.Gray("[##]")
	}
	label := fmt.Sprintf("[%s]", c.Card)
	if c.Card.IsRed() {
		return pterm.LightRed(label)
	}
	return pterm.LightWhite(label)
}

func formatCountdown(d time.Duration) string {
	secs := int(d / time.Second)
	text := fmt.Sprintf("%ds", secs)
	if secs <= 5 {
		return pterm.LightRed(text)
	}
	return text
}

var _ table.Renderer = (*Terminal)(nil)
