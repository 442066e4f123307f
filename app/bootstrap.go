// app/bootstrap.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_fleet_tool/models"
)

// NewInviteToken 32 位十六进制一次性 token
func NewInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// InviteLink 前端登录页带上 token 即进入注册流程
func (c Config) InviteLink(token string) string {
	return fmt.Sprintf("%s/login?inviteToken=%s", c.WebOrigin, token)
}

// BootstrapFirstAdmin 库里还没有管理员时，为 BOOTSTRAP_ADMIN_EMAIL 生成管理员邀请并打印链接
func BootstrapFirstAdmin(ctx context.Context, a *App) {
	email := a.Config.BootstrapEmail
	if email == "" {
		return
	}
	n, err := a.Repo().CountAdmins(ctx)
	if err != nil {
		logger.Warn("bootstrap: count admins", slog.Any("err", err))
		return
	}
	if n > 0 {
		return // 已经有管理员，跳过
	}

	token, err := NewInviteToken()
	if err != nil {
		logger.Error("bootstrap: token", slog.Any("err", err))
		return
	}
	inv := &models.Invite{
		Email:     email,
		Token:     token,
		Position:  "Manager",
		IsAdmin:   true,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedBy: "bootstrap",
	}
	if err := a.Repo().CreateInvite(ctx, inv); err != nil {
		logger.Error("bootstrap invite failed", slog.Any("err", err))
		return
	}

	logger.Info("no admin found, created an admin invite",
		slog.String("email", email),
		slog.String("link", a.Config.InviteLink(token)),
	)
}
