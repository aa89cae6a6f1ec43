package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns what set stored", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "token", []byte("payload"), 0))

		val, ok, err := m.Get(ctx, "token")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("payload"), val)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		m := NewMemory()
		_, ok, err := m.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("entries expire by ttl", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		m := NewMemoryWithClock(clock)
		require.NoError(t, m.Set(ctx, "token", []byte("payload"), time.Minute))

		_, ok, err := m.Get(ctx, "token")
		require.NoError(t, err)
		assert.True(t, ok, "fresh entry is served")

		clock.Advance(time.Minute + time.Second)
		_, ok, err = m.Get(ctx, "token")
		require.NoError(t, err)
		assert.False(t, ok, "expired entry is a miss")
		assert.Zero(t, m.Len(), "expired entry is dropped on read")
	})

	t.Run("stored value is copied", func(t *testing.T) {
		m := NewMemory()
		buf := []byte("original")
		require.NoError(t, m.Set(ctx, "token", buf, 0))
		buf[0] = 'X'

		val, ok, err := m.Get(ctx, "token")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("original"), val)
	})
}

func TestRedis(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	defer srv.Close()

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := NewRedis(client, "dash")
	ctx := context.Background()

	t.Run("roundtrip", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "snap", []byte("payload"), time.Hour))

		val, ok, err := store.Get(ctx, "snap")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("payload"), val)
	})

	t.Run("keys are namespaced by prefix", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "snap", []byte("payload"), 0))
		assert.True(t, srv.Exists("dash:snap"))
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "brief", []byte("x"), time.Minute))
		srv.FastForward(2 * time.Minute)

		_, ok, err := store.Get(ctx, "brief")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEncodeDecode(t *testing.T) {
	type payload struct {
		ID    string   `msgpack:"id"`
		Count int      `msgpack:"count"`
		Tags  []string `msgpack:"tags"`
	}
	in := payload{ID: "snapshot-1", Count: 42, Tags: []string{"사고", "낙석"}}

	data, err := Encode(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, Decode(data, &out))
	assert.Equal(t, in, out)
}
