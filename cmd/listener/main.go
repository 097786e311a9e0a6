package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/fuellog/internal/config"
	"github.com/geocoder89/fuellog/internal/listener"
	"github.com/geocoder89/fuellog/internal/observability"
	"github.com/geocoder89/fuellog/internal/redisclient"
)

// listener follows the notification channel and logs every notification, standing
// in for a desktop popup on the machine that runs it.
func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	if cfg.RedisAddr == "" {
		log.Error("REDIS_ADDR is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	l := listener.New(
		listener.Config{Channel: cfg.NotificationsChannel},
		rdb,
		listener.LogHandler(log),
		log,
	)

	healthSrv := &http.Server{
		Addr:              cfg.ListenerHealthAddr,
		Handler:           l.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("listener has started", "channel", cfg.NotificationsChannel)

	if err := l.Run(ctx); err != nil {
		log.Error("listener stopped with error", "err", err)
	}

	sctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(sctx)

	log.Info("listener shutdown complete", "received", l.Received())
}
