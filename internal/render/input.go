package render

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/poker5/internal/table"
)

var (
	// ErrQuit is returned for the quit command.
	ErrQuit = errors.New("quit")
	// ErrUnknownCommand is returned for input that is not a command.
	ErrUnknownCommand = errors.New("unknown command")
)

// Help lists the commands ParseCommand understands.
const Help = "commands: bet <amount> | fold | pass | change [slot ...] | quit"

// ParseCommand turns one input line into an action. Card slots are typed
// 1-based, as shown under the hand.
func ParseCommand(line string) (table.Action, error) {
	fields := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(fields) == 0 {
		return nil, ErrUnknownCommand
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "bet", "b", "raise", "call":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: usage: bet <amount>", ErrUnknownCommand)
		}
		amount, err := strconv.ParseFloat(strings.TrimPrefix(args[0], "$"), 64)
		if err != nil || amount < 0 {
			return nil, fmt.Errorf("%w: bad amount %q", ErrUnknownCommand, args[0])
		}
		return table.BetAction{Amount: amount}, nil
	case "fold", "f", "pass", "p":
		return table.FoldAction{}, nil
	case "change", "c", "keep":
		slots := make([]int, 0, len(args))
		for _, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: bad card slot %q", ErrUnknownCommand, a)
			}
			slots = append(slots, n-1)
		}
		return table.ChangeCardsAction{Slots: slots}, nil
	case "quit", "exit", "q":
		return nil, ErrQuit
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}

// ReadCommands parses lines from r and delivers the actions until r ends,
// the user quits or ctx is done. Bad lines are reported through report.
func ReadCommands(ctx context.Context, r io.Reader, actions chan<- table.Action, report func(string), logger *logrus.Logger) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		a, err := ParseCommand(line)
		if errors.Is(err, ErrQuit) {
			return ErrQuit
		}
		if err != nil {
			logger.Debugf("Rejected input %q: %v", line, err)
			report(err.Error() + "; " + Help)
			continue
		}
		select {
		case actions <- a:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sc.Err()
}
