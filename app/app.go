package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_fleet_tool/config"
	"Gin_postgres_redis_fleet_tool/db"
	"Gin_postgres_redis_fleet_tool/session"
	"Gin_postgres_redis_fleet_tool/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	WA     *webauthn.WebAuthn
	Blobs  storage.BlobStore
	Config Config

	repo       *db.Repo
	appSess    *session.AppSessionStore
	ceremonies *session.CeremonyStore
}

// Config 从环境变量读取
type Config struct {
	DatabaseURL    string
	RedisAddr      string
	RedisPwd       string
	WebOrigin      string
	RPID           string
	RPOrigins      []string
	SessionTTL     time.Duration
	AdminEmails    []string
	MediaDir       string
	Port           string
	BootstrapEmail string
}

func (a *App) Repo() *db.Repo                        { return a.repo }
func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }
func (a *App) Ceremonies() *session.CeremonyStore    { return a.ceremonies }
func (a *App) SecureCookies() bool                   { return strings.HasPrefix(a.Config.WebOrigin, "https://") }

// IsAdminEmail ADMIN_EMAILS 里的账号始终视为管理员
func (c Config) IsAdminEmail(email string) bool { return containsFold(c.AdminEmails, email) }

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// MustNew 连接 Postgres/Redis，任何一步失败直接退出
func MustNew() *App {
	cfg := LoadConfig()

	dbConn, err := db.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		fatal("database", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fatal("redis", err)
	}

	blobs, err := storage.NewLocalStore(cfg.MediaDir)
	if err != nil {
		fatal("storage", err)
	}

	a, err := New(cfg, dbConn, rdb, blobs)
	if err != nil {
		fatal("app", err)
	}
	return a
}

// New wires an App from already-open connections; tests pass sqlite and miniredis.
func New(cfg Config, dbConn *gorm.DB, rdb *redis.Client, blobs storage.BlobStore) (*App, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Fleet Staff Passkeys",
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}

	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())
	useCORS(r, cfg)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, WA: wa, Blobs: blobs, Config: cfg,
		repo:       db.NewRepo(dbConn),
		appSess:    session.NewAppSessionStore(rdb, cfg.SessionTTL),
		ceremonies: session.NewCeremonyStore(rdb, 5*time.Minute),
	}, nil
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// DefaultWebOrigin 本地开发用
const DefaultWebOrigin = "http://localhost:3001"

func LoadConfig() Config {
	// 业务会话默认 1 天
	ttl := 24 * time.Hour
	if sec, err := strconv.Atoi(config.Get("SESSION_TTL_SECONDS", "")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}
	webOrigin := strings.TrimRight(config.Get("WEB_ORIGIN", ""), "/")
	if webOrigin == "" {
		// 二维码标签里的链接只用配置的 origin，不看请求 Host
		logger.Warn("WEB_ORIGIN not set; QR links and passkeys fall back to the default origin",
			slog.String("origin", DefaultWebOrigin))
		webOrigin = DefaultWebOrigin
	}
	origins := config.CSV("RP_ORIGINS")
	if len(origins) == 0 {
		origins = []string{webOrigin}
	}
	var admins []string
	for _, s := range config.CSV("ADMIN_EMAILS") { // 例如: "admin@ex.com,ops@ex.com"
		admins = append(admins, strings.ToLower(s))
	}
	return Config{
		DatabaseURL:    db.DSN(),
		RedisAddr:      config.Get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		WebOrigin:      webOrigin,
		RPID:           config.Get("RP_ID", "localhost"),
		RPOrigins:      origins,
		SessionTTL:     ttl,
		AdminEmails:    admins,
		MediaDir:       config.Get("MEDIA_DIR", "media"),
		Port:           config.Get("PORT", "3001"),
		BootstrapEmail: strings.ToLower(config.Get("BOOTSTRAP_ADMIN_EMAIL", "")),
	}
}

func fatal(what string, err error) {
	logger.Error("startup failed", slog.String("component", what), slog.Any("err", err))
	os.Exit(1)
}

// NewUserID 员工 ID；WebAuthn userHandle 取其字节
func NewUserID() string { return uuid.NewString() }
