// Package server initializes and runs the applylog server: it opens the
// database, applies migrations, builds the services and runs the gRPC and
// HTTP endpoints until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/server/config"
	"github.com/dmitrijs2005/applylog/internal/server/ratelimit"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/applylog/internal/server/rest"
	"github.com/dmitrijs2005/applylog/internal/server/services"

	gs "github.com/dmitrijs2005/applylog/internal/server/grpc"
)

const (
	housekeepingInterval = 10 * time.Minute
	limiterIdleTimeout   = 30 * time.Minute
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	users   *services.UserService
	limiter *ratelimit.Limiter
	grpc    runner
	http    runner
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger, repomanager.NewPostgresRepositoryManager())
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, rm, c, logger)
	js := services.NewJobService(db, rm, c, logger)
	ts := services.NewTagService(db, rm, logger)
	ss := services.NewStatsService(db, rm)
	es := services.NewExportService(js, c, logger)

	limiter := ratelimit.New(c.RateLimitPerMinute)

	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Services{
		Users:   us,
		Jobs:    js,
		Tags:    ts,
		Stats:   ss,
		Exports: es,
	}, limiter)

	router := rest.NewRouter(logger, us, es, limiter, c.CORSAllowedOrigins)
	httpServer := rest.NewHTTPServer(c.EndpointAddrHTTP, logger, router)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		users:   us,
		limiter: limiter,
		grpc:    grpcServer,
		http:    httpServer,
	}, nil
}

// housekeeping drops expired refresh tokens and idle rate-limit buckets.
func (app *App) housekeeping(ctx context.Context) {
	if _, err := app.users.PurgeExpiredRefreshTokens(ctx); err != nil {
		app.logger.Warn(ctx, "purging refresh tokens failed", "error", err)
	}
	app.limiter.Sweep(limiterIdleTimeout)
}

func (app *App) startHousekeeping(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.housekeeping(ctx)
		}
	}
}

func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc, name string, s runner) {
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "grpc", app.config.EndpointAddrGRPC, "http", app.config.EndpointAddrHTTP)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc, "grpc", app.grpc)
	}()
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc, "http", app.http)
	}()
	go func() {
		defer wg.Done()
		app.startHousekeeping(ctx, housekeepingInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
