package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"weekendly/internal/api"
	"weekendly/internal/config"
	"weekendly/internal/domain/activity"
	"weekendly/internal/domain/plan"
	datasync "weekendly/internal/domain/sync"
	"weekendly/internal/netmon"
	"weekendly/internal/sqlite"
	"weekendly/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	scheduledRepo := sqlite.NewScheduledRepository(db)
	cacheRepo := sqlite.NewCacheRepository(db)
	prefRepo := sqlite.NewPreferenceRepository(db)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), cacheRepo, cfg.API.CacheTTL(), logger)

	monitor := netmon.NewMonitor(netmon.Config{
		Probe:         client.Ping,
		MaxAttempts:   uint64(cfg.Queue.MaxAttempts),
		BackoffBase:   cfg.Queue.BackoffBase(),
		DrainInterval: cfg.Queue.DrainInterval(),
		ProbeInterval: cfg.Queue.ProbeInterval(),
	}, logger)

	catalog, err := activity.NewStaticCatalog()
	if err != nil {
		logger.Error("failed to load bundled activities", "error", err)
		os.Exit(1)
	}

	planner := plan.NewPlanner(logger)
	activitySvc := activity.NewService(client, cacheRepo, monitor, catalog, logger)

	coordinator := datasync.NewCoordinator(planner, scheduledRepo, prefRepo, cacheRepo, datasync.Config{
		Interval:            cfg.Sync.Interval(),
		MaintenanceInterval: cfg.Sync.MaintenanceInterval(),
		ReconnectDelay:      cfg.Sync.ReconnectDelay(),
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := coordinator.InitialSync(ctx); err != nil {
		logger.Error("initial sync failed", "error", err)
	}

	monitor.Start(ctx)
	defer monitor.Stop()
	coordinator.Start(ctx, monitor)
	defer coordinator.Stop()

	router := transport.NewRouter(transport.Deps{
		Planner:     planner,
		Activities:  activitySvc,
		Coordinator: coordinator,
		Monitor:     monitor,
		Scheduled:   scheduledRepo,
		Stats:       db,
		Logger:      logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
