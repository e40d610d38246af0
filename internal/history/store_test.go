package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgresStore needs a scratch database in POKER5_TEST_DATABASE_URL.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("POKER5_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("POKER5_TEST_DATABASE_URL not set")
	}
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Connect(ctx, url, logger)
	require.NoError(t, err)
	defer store.Close()

	h := Hand{
		ID:        uuid.New(),
		GameID:    "g-" + uuid.NewString(),
		GameType:  "traditional",
		StartedAt: t0,
		EndedAt:   t0.Add(time.Minute),
		Events: []Event{
			{Name: "new-game", Payload: []byte(`{"event":"new-game"}`), At: t0},
			{Name: "game-over", Payload: []byte(`{"event":"game-over"}`), At: t0.Add(time.Minute)},
		},
	}
	require.NoError(t, store.SaveHand(ctx, h))

	var n int
	err = store.pool.QueryRow(ctx, `SELECT count(*) FROM hand_events WHERE hand_id = $1`, h.ID).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Same id twice violates the primary key and nothing is half-written.
	assert.Error(t, store.SaveHand(ctx, h))
}
