package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/api"
	"github.com/coachhub/coachapi/internal/config"
	"github.com/coachhub/coachapi/internal/db"
	"github.com/coachhub/coachapi/internal/logging"
	"github.com/coachhub/coachapi/internal/metrics"
	"github.com/coachhub/coachapi/internal/queue"
	"github.com/coachhub/coachapi/internal/ratelimiter"
	"github.com/coachhub/coachapi/internal/repository"
	"github.com/coachhub/coachapi/internal/service"
	"github.com/coachhub/coachapi/internal/worker"
)

var serveFlags struct {
	skipMigrations bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&serveFlags.skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// ---- configuration ----
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if !serveFlags.skipMigrations {
		if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, db.Up); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	// ---- core dependencies ----
	q := queue.New(cfg.AuditQueueSize)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, q.Depth)

	resources := repository.NewPgResourceRepository(pool)
	audits := repository.NewPgAuditRepository(pool)
	svc := service.NewResourceService(resources, audits, q)
	limiter := ratelimiter.New(cfg.RateLimit, cfg.RateBurst)

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	onWritten, onFailed := m.WorkerHooks()
	auditPool := worker.NewPool(cfg, q, audits, logger, worker.MetricHooks{
		OnWritten: onWritten,
		OnFailed:  onFailed,
	})
	auditPool.Start(workerCtx)

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		limiter.RunSweeper(workerCtx, cfg.RateLimitIdle)
	}()

	// ---- HTTP server ----
	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Service:  svc,
		Queue:    q,
		Limiter:  limiter,
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
		Version:  Version,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
		runErr = err
	}

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal all workers to stop taking new queue items.
	cancelWorkers()

	// 3. Wait for in-flight writes, then flush what is still buffered.
	auditPool.Wait()
	<-sweeperDone
	if n := auditPool.Drain(shutdownCtx); n > 0 {
		logger.Info("audit queue drained", zap.Int("records", n))
	}

	logger.Info("server stopped cleanly")
	return runErr
}
