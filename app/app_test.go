package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"Gin_postgres_redis_fleet_tool/db"
	"Gin_postgres_redis_fleet_tool/models"
	"Gin_postgres_redis_fleet_tool/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())))
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	if cfg.RPID == "" {
		cfg.RPID = "localhost"
		cfg.RPOrigins = []string{"http://localhost:3001"}
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}
	a, err := New(cfg, conn, redis.NewClient(&redis.Options{Addr: mr.Addr()}), blobs)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestBootstrapFirstAdmin(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(prev) })

	ctx := context.Background()
	a := newTestApp(t, Config{WebOrigin: "https://fleet.example", BootstrapEmail: "boss@fleet.example"})

	BootstrapFirstAdmin(ctx, a)
	var invites []models.Invite
	require.NoError(t, a.DB.Find(&invites).Error)
	require.Len(t, invites, 1)
	assert.True(t, invites[0].IsAdmin)
	assert.Equal(t, "Manager", invites[0].Position)
	assert.Len(t, invites[0].Token, 32)
	assert.Contains(t, buf.String(), "https://fleet.example/login?inviteToken="+invites[0].Token)

	// 已有管理员时不再生成
	u := &models.User{ID: uuid.NewString(), Username: "boss@fleet.example", DisplayName: "Boss"}
	require.NoError(t, a.Repo().CreateStaffUser(ctx, u, "Manager"))
	require.NoError(t, a.Repo().SetUserAdmin(ctx, u.ID, true))
	BootstrapFirstAdmin(ctx, a)
	var n int64
	require.NoError(t, a.DB.Model(&models.Invite{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestIsAdminEmail(t *testing.T) {
	cfg := Config{AdminEmails: []string{"ops@fleet.example"}}
	assert.True(t, cfg.IsAdminEmail("OPS@fleet.example"))
	assert.False(t, cfg.IsAdminEmail("tech@fleet.example"))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WEB_ORIGIN", "https://staff.example/")
	t.Setenv("RP_ORIGINS", "")
	t.Setenv("ADMIN_EMAILS", " A@x.com, ,b@x.com")
	t.Setenv("SESSION_TTL_SECONDS", "600")
	t.Setenv("PORT", "")

	cfg := LoadConfig()
	assert.Equal(t, "https://staff.example", cfg.WebOrigin)
	assert.Equal(t, []string{"https://staff.example"}, cfg.RPOrigins)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, cfg.AdminEmails)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "3001", cfg.Port)
}

func TestLoadConfigWarnsWithoutWebOrigin(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(prev) })

	t.Setenv("WEB_ORIGIN", "")
	t.Setenv("RP_ORIGINS", "")

	cfg := LoadConfig()
	assert.Equal(t, DefaultWebOrigin, cfg.WebOrigin)
	assert.Equal(t, []string{DefaultWebOrigin}, cfg.RPOrigins)
	assert.Contains(t, buf.String(), "WEB_ORIGIN not set")

	buf.Reset()
	t.Setenv("WEB_ORIGIN", "https://staff.example")
	LoadConfig()
	assert.NotContains(t, buf.String(), "WEB_ORIGIN not set")
}
