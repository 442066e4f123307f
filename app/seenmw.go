// app/seenmw.go
package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// TouchLastSeen 用 Redis SETNX 节流，每个员工每 throttle 最多写一次库
func TouchLastSeen(a *App, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserID)
		if uid == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "fleet:lastseen:" + uid
		if ok, _ := a.RDB.SetNX(ctx, key, "1", throttle).Result(); ok {
			if err := a.Repo().TouchUserSeen(ctx, uid); err != nil {
				logger.Warn("touch last seen", slog.String("user", uid), slog.Any("err", err)) // 不阻塞请求
			}
		}
		c.Next()
	}
}
