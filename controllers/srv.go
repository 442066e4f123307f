// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/db"
	"Gin_postgres_redis_fleet_tool/models"
	"Gin_postgres_redis_fleet_tool/session"
	"Gin_postgres_redis_fleet_tool/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Srv 各控制器共享的依赖
type Srv struct {
	App        *app.App
	Repo       *db.Repo
	AppSess    *session.AppSessionStore
	Ceremonies *session.CeremonyStore
	Blobs      storage.BlobStore
	Cfg        app.Config

	// 测试里可替换
	Now func() time.Time
}

func NewSrv(a *app.App) *Srv {
	return &Srv{
		App:        a,
		Repo:       a.Repo(),
		AppSess:    a.AppSessions(),
		Ceremonies: a.Ceremonies(),
		Blobs:      a.Blobs,
		Cfg:        a.Config,
		Now:        time.Now,
	}
}

func (s *Srv) today() time.Time {
	y, m, d := s.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- session helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.App.SecureCookies(),
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID string, ip, ua string) error {
	if err := s.Repo.TouchUserLogin(ctx, userID, ip, ua); err != nil {
		app.Logger().Warn("touch login", slog.String("user", userID), slog.Any("err", err)) // 不阻塞
	}
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.AppSess.TTL())
	return nil
}

func currentUserID(c *gin.Context) string { return c.GetString(app.CtxUserID) }

// --- responses ---

// respondErr 哨兵错误 → HTTP 状态码
func respondErr(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, app.H{"errors": ve.Fields})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, models.ErrNoStock):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"error": "already exists or was changed concurrently"})
	default:
		_ = c.Error(err)
		app.Logger().Error("handler failed",
			slog.String("path", c.FullPath()),
			slog.Any("err", err),
		)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
	}
}

// invalid 校验失败：把输入原样带回，前端重新展示表单
func invalid(c *gin.Context, err error, form any) {
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusUnprocessableEntity, app.H{"errors": ve.Fields, "form": form})
}

// done 成功：写一次性提示，303 跳转到结果页
func (s *Srv) done(c *gin.Context, msg, location string) {
	if sid := c.GetString(app.CtxSessionID); sid != "" {
		if err := s.AppSess.PushFlash(c.Request.Context(), sid, session.Flash{Level: session.FlashSuccess, Text: msg}); err != nil {
			app.Logger().Warn("push flash", slog.Any("err", err))
		}
	}
	c.Redirect(http.StatusSeeOther, location)
}

// view GET 页面：数据 + 当前员工 + 待显示的提示
func (s *Srv) view(c *gin.Context, data app.H) {
	messages := []session.Flash{}
	if sid := c.GetString(app.CtxSessionID); sid != "" {
		if fs, err := s.AppSess.PopFlashes(c.Request.Context(), sid); err == nil {
			messages = fs
		}
	}
	data["messages"] = messages
	data["user"] = app.H{
		"id":       currentUserID(c),
		"username": c.GetString(app.CtxUsername),
		"isAdmin":  c.GetBool(app.CtxIsAdmin),
	}
	c.JSON(http.StatusOK, data)
}

// logActivity 写员工操作日志，失败只记日志
func (s *Srv) logActivity(c *gin.Context, action string) {
	if err := s.Repo.LogActivity(c.Request.Context(), currentUserID(c), action); err != nil {
		app.Logger().Warn("activity log", slog.String("action", action), slog.Any("err", err))
	}
}

// pathID 解析 :name 路由参数；非法 id 直接 404
func pathID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
		return 0, false
	}
	return uint(n), true
}
