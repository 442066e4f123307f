package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/config"
	"Gin_postgres_redis_fleet_tool/routes"
)

func main() {
	config.LoadEnv()
	application := app.MustNew()
	defer application.Close()

	// 没有管理员时生成首个管理员邀请
	app.BootstrapFirstAdmin(context.Background(), application)

	r := application.Router
	routes.RegisterRoutes(r, application)

	srv := &http.Server{
		Addr:              ":" + application.Config.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		app.Logger().Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger().Error("server", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		app.Logger().Error("shutdown", slog.Any("err", err))
		return
	}
	app.Logger().Info("server stopped")
}
