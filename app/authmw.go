package app

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"Gin_postgres_redis_fleet_tool/models"
	"Gin_postgres_redis_fleet_tool/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// gin.Context 里的键
const (
	CtxUserID    = "userID"
	CtxUsername  = "username"
	CtxIsAdmin   = "isAdmin"
	CtxSessionID = "sessionID"
)

// wantsHTML 浏览器直接访问时跳登录页，API 调用返回 401 JSON
func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

func unauthorized(c *gin.Context, msg string) {
	if wantsHTML(c) && c.Request.Method == http.MethodGet {
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": msg})
}

func AuthRequired(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			unauthorized(c, "unauthorized")
			return
		}
		ctx := c.Request.Context()
		as, err := a.AppSessions().Get(ctx, ck.Value)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				logger.Warn("session lookup failed", "err", err)
			}
			unauthorized(c, "invalid session")
			return
		}

		// 确认员工账号仍存在，isAdmin 只查一次
		u, err := a.Repo().FindUserByID(ctx, as.UserID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				_ = a.AppSessions().Delete(ctx, ck.Value)
			}
			unauthorized(c, "unauthorized")
			return
		}
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUsername, u.Username)
		c.Set(CtxSessionID, ck.Value)
		c.Set(CtxIsAdmin, u.IsAdmin || a.Config.IsAdminEmail(u.Username))

		c.Next()
	}
}

// AdminOnly 必须挂在 AuthRequired 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !c.GetBool(CtxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
