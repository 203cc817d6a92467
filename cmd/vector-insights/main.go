package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/database"
	"github.com/radiusdt/vector-insights/internal/httpserver"
	"github.com/radiusdt/vector-insights/internal/logging"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/middleware"
	"github.com/radiusdt/vector-insights/internal/reporting"
	"github.com/radiusdt/vector-insights/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Vector-Insights",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("stats", cfg.Storage.StatsBackend),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace, nil)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	b := connectBackends(ctx, cfg, logger, m)
	defer b.close()

	svc := reporting.NewService(b.store, reporting.Options{
		Locale:       cfg.Report.Locale,
		TopCampaigns: cfg.Report.TopCampaigns,
		RecentEvents: cfg.Report.RecentEvents,
	}, logger, m)

	rl := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger, m)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(10 * time.Minute)
			}
		}
	}()

	handler := httpserver.NewServer(&httpserver.Dependencies{
		Reports:     svc,
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
		RateLimiter: rl,
		Checks:      b.checks,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// backends is the storage wiring chosen from configuration.
type backends struct {
	store   storage.Store
	checks  map[string]httpserver.HealthChecker
	closers []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// connectBackends opens the configured stores. A backend that cannot be
// reached is replaced by the in-memory store and the service keeps running.
func connectBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *backends {
	mem := storage.NewMemoryStore()
	b := &backends{
		store:  mem.Store(),
		checks: make(map[string]httpserver.HealthChecker),
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var pg *storage.PostgresStore
	if cfg.Storage.Backend == config.BackendPostgres {
		db, err := database.NewPostgresDB(dialCtx, cfg.Database, logger)
		if err != nil {
			logger.Warn("PostgreSQL not available, using in-memory storage", zap.Error(err))
		} else {
			b.closers = append(b.closers, db.Close)
			b.checks["postgres"] = db
			if m != nil {
				go db.ExportPoolStats(ctx, m, 15*time.Second)
			}

			pg = storage.NewPostgresStore(db.Pool)
			if cfg.Database.AutoMigrate {
				if err := pg.Migrate(dialCtx); err != nil {
					logger.Error("schema migration failed", zap.Error(err))
				}
			}
			b.store = pg.Store()
		}
	}

	switch cfg.Storage.StatsBackend {
	case config.BackendPostgres:
		if pg == nil {
			b.store.Stats = mem
		}
	case config.BackendMemory:
		b.store.Stats = mem
	case config.BackendRedis:
		rdb, err := database.NewRedisDB(dialCtx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis not available, using in-memory daily stats", zap.Error(err))
			b.store.Stats = mem
			break
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.checks["redis"] = rdb
		b.store.Stats = storage.NewRedisStatsStore(rdb.Client)
	case config.BackendClickHouse:
		ch, err := database.NewClickHouseDB(dialCtx, cfg.ClickHouse, logger)
		if err != nil {
			logger.Warn("ClickHouse not available, using in-memory daily stats", zap.Error(err))
			b.store.Stats = mem
			break
		}
		stats, err := storage.NewClickHouseStatsStore(ch.Conn, cfg.ClickHouse.Table)
		if err != nil {
			logger.Error("invalid ClickHouse stats table, using in-memory daily stats", zap.Error(err))
			_ = ch.Close()
			b.store.Stats = mem
			break
		}
		b.closers = append(b.closers, func() { _ = ch.Close() })
		b.checks["clickhouse"] = ch
		b.store.Stats = stats
	}

	return b
}
