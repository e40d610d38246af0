package main

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/poker5/internal/auth"
	"github.com/jason-s-yu/poker5/internal/config"
	"github.com/jason-s-yu/poker5/internal/history"
	"github.com/jason-s-yu/poker5/internal/models"
	"github.com/jason-s-yu/poker5/internal/render"
	"github.com/jason-s-yu/poker5/internal/sprite"
	"github.com/jason-s-yu/poker5/internal/table"
	"github.com/jason-s-yu/poker5/internal/transport"
)

var flags Flags

type Flags struct {
	verbose bool
	plain   bool
}

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-v":
			flags.verbose = true
		case "-plain":
			flags.plain = true
		}
	}

	logger := logrus.New()
	if err := run(logger); err != nil && !errors.Is(err, transport.ErrClosed) && !errors.Is(err, render.ErrQuit) {
		logger.Errorf("poker5: %v", err)
		os.Exit(1)
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)
	if flags.verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Debug("Verbose mode enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AuthToken != "" {
		if err := checkToken(cfg, logger); err != nil {
			return err
		}
	}

	sheets := sprite.DefaultSheets()
	if cfg.SpriteConfig != "" {
		if sheets, err = sprite.LoadSheets(cfg.SpriteConfig); err != nil {
			return err
		}
	}

	ch, kind, err := dial(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer ch.Close()

	var term *render.Terminal
	if flags.plain {
		term = render.NewWriter(os.Stdout)
	} else {
		if term, err = render.NewTerminal(); err != nil {
			return err
		}
	}
	defer term.Stop()

	synchronizer := table.New(term, logger)
	synchronizer.Sheets = sheets

	if cfg.HistoryEnabled() {
		store, err := history.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		rec := history.NewRecorder(store, logger)
		defer rec.Close()
		synchronizer.Recorder = rec
	}

	actions := make(chan table.Action)
	inputDone := make(chan error, 1)
	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	go func() {
		report := func(line string) {
			term.Log(line)
			term.Flush()
		}
		inputDone <- render.ReadCommands(inputCtx, os.Stdin, actions, report, logger)
	}()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		select {
		case err := <-inputDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Debugf("Input stopped: %v", err)
			}
			cancelRun()
		case <-runCtx.Done():
		}
	}()

	err = synchronizer.Run(runCtx, ch, actions)
	transport.LogDisconnect(logger, kind, endpointOf(ch), err)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func checkToken(cfg *config.Config, logger *logrus.Logger) error {
	var pub ed25519.PublicKey
	if cfg.PublicKeyPath != "" {
		var err error
		if pub, err = auth.LoadPublicKey(cfg.PublicKeyPath); err != nil {
			return err
		}
	}
	now := time.Now()
	session, err := auth.ParseSession(cfg.AuthToken, pub, now)
	if err != nil {
		return fmt.Errorf("auth token: %w", err)
	}
	if session.Expired(now) {
		return auth.ErrTokenExpired
	}
	logger.WithField("subject", session.Subject).Debug("Using session token")
	if session.Subject != "" && os.Getenv("POKER5_PLAYER_ID") == "" {
		cfg.PlayerID = session.Subject
	}
	return nil
}

func dial(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (transport.Channel, string, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	switch cfg.Transport {
	case config.TransportRedis:
		ch, err := transport.DialRedis(dialCtx, transport.RedisOptions{
			URL:      cfg.RedisURL,
			LobbyKey: transport.DefaultLobbyKey,
			Player:   models.Player{ID: cfg.PlayerID, Name: cfg.PlayerName, Money: cfg.PlayerMoney},
		}, logger)
		if err != nil {
			return nil, "", err
		}
		return ch, "redis", nil
	default:
		ch, err := transport.DialWebSocket(dialCtx, transport.WebSocketOptions{
			ServerURL: cfg.ServerURL,
			Path:      cfg.WSPath,
			AuthToken: cfg.AuthToken,
		}, logger)
		if err != nil {
			return nil, "", err
		}
		return ch, "websocket", nil
	}
}

func endpointOf(ch transport.Channel) string {
	if e, ok := ch.(table.Endpointer); ok {
		return e.Endpoint()
	}
	return ""
}
