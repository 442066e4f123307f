package app

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// 进程级 logger；main 或测试可以用 SetLogger 替换
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs l as the app logger. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func Logger() *slog.Logger { return logger }

// RequestLogger 每个请求一行：方法、路径、状态码、耗时、当前员工
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
		}
		if uid := c.GetString(CtxUserID); uid != "" {
			attrs = append(attrs, slog.String("user", uid))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", attrs...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}
