// Package history keeps a local record of the hands this client watched.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Hand is one game from new-game to game-over.
type Hand struct {
	ID        uuid.UUID
	GameID    string
	GameType  string
	StartedAt time.Time
	EndedAt   time.Time
	Events    []Event
}

// Event is one game update as it arrived from the server.
type Event struct {
	Name    string
	Payload []byte
	At      time.Time
}

// Store persists finished hands.
type Store interface {
	SaveHand(ctx context.Context, h Hand) error
	Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS hands (
	id         UUID PRIMARY KEY,
	game_id    TEXT NOT NULL,
	game_type  TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS hand_events (
	hand_id     UUID NOT NULL REFERENCES hands (id) ON DELETE CASCADE,
	event_index INT NOT NULL,
	event       TEXT NOT NULL,
	payload     JSONB NOT NULL,
	received_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (hand_id, event_index)
);`

// PostgresStore writes hands to PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

// Connect opens a pool, checks it answers and creates the tables.
func Connect(ctx context.Context, url string, logger *logrus.Logger) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create history tables: %w", err)
	}

	logger.WithField("host", config.ConnConfig.Host).Info("Connected to hand history database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// SaveHand inserts the hand and all its events in one transaction.
func (s *PostgresStore) SaveHand(ctx context.Context, h Hand) error {
	err := beginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO hands (id, game_id, game_type, started_at, ended_at)
			VALUES ($1, $2, $3, $4, $5)
		`, h.ID, h.GameID, h.GameType, h.StartedAt, h.EndedAt)
		if err != nil {
			return fmt.Errorf("insert hand: %w", err)
		}

		batch := &pgx.Batch{}
		for i, e := range h.Events {
			batch.Queue(`
				INSERT INTO hand_events (hand_id, event_index, event, payload, received_at)
				VALUES ($1, $2, $3, $4, $5)
			`, h.ID, i, e.Name, string(e.Payload), e.At)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"game_id": h.GameID,
		"events":  len(h.Events),
	}).Debug("Saved hand")
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// beginTxFunc runs f in a transaction, committing on success and rolling back otherwise.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}
