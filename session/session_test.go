package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestAppSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	s := NewAppSessionStore(rdb, time.Hour)

	require.NoError(t, s.Create(ctx, "sid-1", "user-1"))
	as, err := s.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", as.UserID)
	assert.Greater(t, as.ExpiresAt, as.IssuedAt)

	require.NoError(t, s.Delete(ctx, "sid-1"))
	_, err = s.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRevokeAllForUser(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	s := NewAppSessionStore(rdb, time.Hour)

	require.NoError(t, s.Create(ctx, "a", "u"))
	require.NoError(t, s.Create(ctx, "b", "u"))
	require.NoError(t, s.Create(ctx, "c", "other"))

	require.NoError(t, s.RevokeAllForUser(ctx, "u"))
	for _, sid := range []string{"a", "b"} {
		_, err := s.Get(ctx, sid)
		assert.ErrorIs(t, err, ErrNoSession, sid)
	}
	_, err := s.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewAppSessionStore(rdb, time.Minute)

	require.NoError(t, s.Create(ctx, "sid", "u"))
	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFlashesPopOnce(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	s := NewAppSessionStore(rdb, time.Hour)

	require.NoError(t, s.PushFlash(ctx, "sid", Flash{Level: FlashSuccess, Text: "Hire created"}))
	require.NoError(t, s.PushFlash(ctx, "sid", Flash{Level: FlashError, Text: "second"}))

	got, err := s.PopFlashes(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Hire created", got[0].Text)
	assert.Equal(t, FlashError, got[1].Level)

	got, err = s.PopFlashes(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCeremonyIsSingleUse(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	s := NewCeremonyStore(rdb, 5*time.Minute)

	require.NoError(t, s.SaveLogin(ctx, "tmp", &webauthnSessionFixture))
	sd, err := s.TakeLogin(ctx, "tmp")
	require.NoError(t, err)
	assert.Equal(t, webauthnSessionFixture.Challenge, sd.Challenge)

	_, err = s.TakeLogin(ctx, "tmp")
	assert.ErrorIs(t, err, redis.Nil)
}

var webauthnSessionFixture = webauthn.SessionData{Challenge: "c2lnbi1tZS1pbg"}
