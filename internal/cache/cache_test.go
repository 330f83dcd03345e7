package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (RevocationStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	store, err := NewRedisStore("redis://"+mr.Addr(), "refresh_token:", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestPutGet_RoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "alice@example.com", "token-1", time.Hour))

	got, found, err := store.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "token-1", got)

	// Ключ лежит под ожидаемым префиксом и с TTL.
	require.True(t, mr.Exists("refresh_token:alice@example.com"))
	require.Greater(t, mr.TTL("refresh_token:alice@example.com"), time.Duration(0))
}

func TestGet_Missing(t *testing.T) {
	store, _ := newTestStore(t)

	_, found, err := store.Get(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.False(t, found)
}

func TestValidate_Match(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u@example.com", "token-1", time.Hour))

	res, err := store.Validate(ctx, "u@example.com", "token-1")
	require.NoError(t, err)
	require.Equal(t, ValidationMatch, res)
}

func TestValidate_MismatchAfterRotation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u@example.com", "token-1", time.Hour))
	// Ротация: новый токен перезаписывает текущий.
	require.NoError(t, store.Put(ctx, "u@example.com", "token-2", time.Hour))

	res, err := store.Validate(ctx, "u@example.com", "token-1")
	require.NoError(t, err)
	require.Equal(t, ValidationMismatch, res)

	res, err = store.Validate(ctx, "u@example.com", "token-2")
	require.NoError(t, err)
	require.Equal(t, ValidationMatch, res)
}

func TestValidate_MissingAfterInvalidate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u@example.com", "token-1", time.Hour))

	removed, err := store.Invalidate(ctx, "u@example.com")
	require.NoError(t, err)
	require.True(t, removed)

	res, err := store.Validate(ctx, "u@example.com", "token-1")
	require.NoError(t, err)
	require.Equal(t, ValidationMissing, res)
}

func TestValidate_MissingAfterTTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u@example.com", "token-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	res, err := store.Validate(ctx, "u@example.com", "token-1")
	require.NoError(t, err)
	require.Equal(t, ValidationMissing, res)
}

func TestInvalidate_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Удаление несуществующего ключа — не ошибка, просто "нечего удалять".
	removed, err := store.Invalidate(ctx, "u@example.com")
	require.NoError(t, err)
	require.False(t, removed)

	require.NoError(t, store.Put(ctx, "u@example.com", "token-1", time.Hour))

	removed, err = store.Invalidate(ctx, "u@example.com")
	require.NoError(t, err)
	require.True(t, removed)

	// Повторный вызов: ключа уже нет, второй результат false без ошибки.
	removed, err = store.Invalidate(ctx, "u@example.com")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestUnavailable_SignalsErrUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u@example.com", "token-1", time.Hour))

	mr.Close()

	res, err := store.Validate(ctx, "u@example.com", "token-1")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, ValidationUnavailable, res)

	require.ErrorIs(t, store.Put(ctx, "u@example.com", "token-2", time.Hour), ErrUnavailable)

	_, err = store.Invalidate(ctx, "u@example.com")
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, store.Available(ctx))
}

func TestAvailable(t *testing.T) {
	store, _ := newTestStore(t)
	require.True(t, store.Available(context.Background()))
}
