package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/calculator"
)

func sampleState(t *testing.T) calculator.State {
	t.Helper()
	e := calculator.New("owner")
	require.NoError(t, e.SetParticipants("bob"))
	require.NoError(t, e.SetFlat(decimal.NewFromInt(40), decimal.Zero, decimal.Zero))
	return e.Snapshot()
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }

	st := sampleState(t)
	require.NoError(t, store.Save(ctx, "d1", st))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, st.Owner, got.Owner)
	assert.True(t, got.Base.Equal(decimal.NewFromInt(40)))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	now = now.Add(59 * time.Minute)
	require.NoError(t, store.Save(ctx, "d1", st))
	now = now.Add(59 * time.Minute)
	_, err = store.Get(ctx, "d1")
	assert.NoError(t, err, "save should restart the TTL")

	now = now.Add(time.Hour)
	_, err = store.Get(ctx, "d1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "d2", st))
	require.NoError(t, store.Delete(ctx, "d2"))
	_, err = store.Get(ctx, "d2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	st := sampleState(t)
	data, err := json.Marshal(st)
	require.NoError(t, err)

	t.Run("save sets JSON with expiry", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisStore(client, 30*time.Minute)

		mock.ExpectSet("billsplit:draft:d1", string(data), 30*time.Minute).SetVal("OK")

		require.NoError(t, store.Save(ctx, "d1", st))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get decodes the state", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisStore(client, 0)

		mock.ExpectGet("billsplit:draft:d1").SetVal(string(data))

		got, err := store.Get(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, calculator.ParticipantID("owner"), got.Owner)
		assert.Equal(t, []calculator.ParticipantID{"bob"}, got.Participants)
		assert.True(t, got.Base.Equal(decimal.NewFromInt(40)))
	})

	t.Run("missing key", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisStore(client, 0)

		mock.ExpectGet("billsplit:draft:gone").RedisNil()

		_, err := store.Get(ctx, "gone")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("corrupt value", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisStore(client, 0)

		mock.ExpectGet("billsplit:draft:bad").SetVal("{not json")

		_, err := store.Get(ctx, "bad")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisStore(client, 0)

		mock.ExpectDel("billsplit:draft:d1").SetVal(1)

		require.NoError(t, store.Delete(ctx, "d1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("connection error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisStore(client, 0)

		mock.ExpectGet("billsplit:draft:d1").SetErr(errors.New("connection refused"))

		_, err := store.Get(ctx, "d1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
