package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/geocoder89/fuellog/docs"
	"github.com/geocoder89/fuellog/internal/auth"
	"github.com/geocoder89/fuellog/internal/config"
	httpx "github.com/geocoder89/fuellog/internal/http"
	"github.com/geocoder89/fuellog/internal/notifications"
	"github.com/geocoder89/fuellog/internal/observability"
	"github.com/geocoder89/fuellog/internal/redisclient"
	"github.com/geocoder89/fuellog/internal/repo/memory"
	"github.com/geocoder89/fuellog/internal/report"
	"github.com/geocoder89/fuellog/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// tracing is optional
	var serviceName string
	if cfg.OTelEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: cfg.OTelServiceName,
			Endpoint:    cfg.OTelEndpoint,
			Env:         cfg.Env,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			serviceName = cfg.OTelServiceName
			defer func() {
				sctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdown(sctx)
			}()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(registry)

	// in-memory state, reset on restart
	users := memory.NewUsersRepo(memory.SeedUsers(cfg.SeedPassword)...)
	records := memory.NewRecordsRepo()
	gate := session.NewGate(users)
	reporter := report.NewReporter(records, cfg.ReportCacheTTL)

	// notification sinks
	hub := notifications.NewHub(32)
	sinks := notifications.Fanout{hub, notifications.NewLogNotifier(log)}

	deps := httpx.Deps{}

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		sinks = append(sinks, notifications.NewProtectedNotifier(
			notifications.NewRedisNotifier(rdb, cfg.NotificationsChannel),
			notifications.ProtectedNotifierConfig{},
		))
		deps.Redis = rdb
		log.Info("publishing notifications to redis", "addr", cfg.RedisAddr, "channel", cfg.NotificationsChannel)
	}

	sim := notifications.NewSimulator(sinks, notifications.SimulatorConfig{
		ReviewDelay: cfg.ReviewDelay,
		Permission:  notifications.ParsePermission(cfg.NotificationPermission),
		Decide:      notifications.RandomDecider(cfg.ApprovalRate),
	}, log).WithRecorder(prom)

	// asked once; a denial is final for this process
	pctx, cancel := config.WithTimeout(3 * time.Second)
	sim.Init(pctx)
	cancel()

	deps.Log = log
	deps.Users = users
	deps.Records = records
	deps.Gate = gate
	deps.JWT = auth.NewManager(cfg.JWTSecret)
	deps.Reporter = reporter
	deps.Simulator = sim
	deps.Hub = hub
	deps.Prom = prom
	deps.Registry = registry
	deps.Location = cfg.Location()
	deps.CORSAllowedOrigins = cfg.CORSAllowedOrigins
	deps.MaxBodyBytes = cfg.MaxBodyBytes
	deps.ServiceName = serviceName
	deps.OpenAPI = docs.OpenAPI
	deps.ReleaseMode = cfg.Env != "dev"

	router := httpx.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// no write timeout: /notifications/stream stays open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "users", users.Len())
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
