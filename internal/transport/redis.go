package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/poker5/internal/models"
	"github.com/jason-s-yu/poker5/internal/protocol"
)

// DefaultLobbyKey is the list the server watches for new sessions.
const DefaultLobbyKey = "poker5:lobby"

// queueExpiry is refreshed on every push so abandoned queues disappear.
const queueExpiry = 5 * time.Second

const popTimeout = time.Second

// RedisOptions configures DialRedis.
type RedisOptions struct {
	URL       string
	LobbyKey  string
	Player    models.Player
	SessionID string
}

// RedisChannel exchanges messages through a pair of per-session Redis lists.
type RedisChannel struct {
	rdb       *redis.Client
	inbound   string
	outbound  string
	sessionID string
	logger    *logrus.Logger
}

// SessionKeys returns the inbound and outbound list names of a session,
// seen from the client.
func SessionKeys(playerID, sessionID string) (in, out string) {
	prefix := fmt.Sprintf("poker5:player-%s:session-%s", playerID, sessionID)
	return prefix + ":O", prefix + ":I"
}

// DialRedis connects to Redis and announces the player in the lobby. The
// server answers with a connect message on the session's inbound list.
func DialRedis(ctx context.Context, opts RedisOptions, logger *logrus.Logger) (*RedisChannel, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redisOpts.Addr, err)
	}

	ch, err := newRedisChannel(ctx, rdb, opts, logger)
	if err != nil {
		rdb.Close()
		return nil, err
	}
	return ch, nil
}

func newRedisChannel(ctx context.Context, rdb *redis.Client, opts RedisOptions, logger *logrus.Logger) (*RedisChannel, error) {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	lobby := opts.LobbyKey
	if lobby == "" {
		lobby = DefaultLobbyKey
	}

	in, out := SessionKeys(opts.Player.ID, opts.SessionID)
	ch := &RedisChannel{
		rdb:       rdb,
		inbound:   in,
		outbound:  out,
		sessionID: opts.SessionID,
		logger:    logger,
	}

	hello, err := protocol.EncodeConnect(opts.Player, opts.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connect message: %w", err)
	}
	if err := ch.push(ctx, lobby, hello); err != nil {
		return nil, err
	}

	LogConnect(logger, "redis", in)
	return ch, nil
}

// SessionID identifies this connection on the server.
func (r *RedisChannel) SessionID() string {
	return r.sessionID
}

func (r *RedisChannel) push(ctx context.Context, key string, data []byte) error {
	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.Expire(ctx, key, queueExpiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to LPush to Redis list '%s': %w", key, err)
	}
	return nil
}

// Receive pops the oldest message of the inbound list, waiting until one
// arrives or ctx is done.
func (r *RedisChannel) Receive(ctx context.Context) ([]byte, error) {
	for {
		res, err := r.rdb.BRPop(ctx, popTimeout, r.inbound).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil, ErrClosed
			}
			return nil, fmt.Errorf("BRPop %s: %w", r.inbound, err)
		}
		// res[0] is the list name and res[1] the payload.
		if len(res) < 2 {
			continue
		}
		return []byte(res[1]), nil
	}
}

func (r *RedisChannel) Send(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return r.push(ctx, r.outbound, data)
}

func (r *RedisChannel) Close() error {
	return r.rdb.Close()
}
