// Package server wires the profile service together: storage backend,
// templates, rate limiters, the update gate, and the HTTP and gRPC health
// servers, and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/ratelimit"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/gate"
	"github.com/dmitrijs2005/profilekeeper/internal/server/health"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/dmitrijs2005/profilekeeper/internal/server/views"
	"github.com/dmitrijs2005/profilekeeper/internal/server/web"

	gs "github.com/dmitrijs2005/profilekeeper/internal/server/grpc"
)

// dbStartupTimeout bounds the initial ping and migrations.
const dbStartupTimeout = 15 * time.Second

// seams for tests
var (
	logOutput io.Writer = os.Stdout

	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newPostgresRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger

	db        *sql.DB
	handlers  *web.Handlers
	readiness *health.Service

	globalLimiter   *ratelimit.Limiter
	mutatingLimiter *ratelimit.Limiter
	gate            *gate.BasicAuth
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(logOutput, c.LogLevel, c.LogFormat)

	app := &App{config: c, logger: logger}

	rm, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	src, err := views.SourceFor(ctx, c.ViewsDir, views.S3Options{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("views source: %w", err)
	}
	tpl, err := views.Load(ctx, src)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("views: %w", err)
	}

	app.globalLimiter = ratelimit.New(c.GlobalRateLimit, c.GlobalRateWindow)
	app.mutatingLimiter = ratelimit.New(c.MutatingRateLimit, c.MutatingRateWindow)

	app.gate = gate.NewBasicAuth(gate.Credentials{
		Username:     c.BasicAuthUser,
		Password:     c.BasicAuthPass,
		PasswordHash: c.BasicAuthPassHash,
	})
	if !app.gate.Enabled() && c.BasicAuthUser != "" {
		logger.Warn(ctx, "BASIC_AUTH_USER is set without a password; update gate disabled")
	}

	profiles := services.NewProfileService(app.db, rm)
	app.handlers = web.NewHandlers(profiles, tpl, app.readiness, logger)

	logger.Info(ctx, "App initialized",
		"storage", c.Storage,
		"views", viewsLabel(c.ViewsDir),
		"update_gate", app.gate.Enabled(),
	)

	return app, nil
}

func viewsLabel(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}

func (app *App) initStorage(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.Storage == config.StorageMemory {
		app.readiness = health.NewService()
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	db, err := openDB(app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	ctx, cancel := context.WithTimeout(ctx, dbStartupTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app.readiness = health.NewService(health.DBChecker{DB: db})
	return rm, nil
}

// Close releases the database handle, if any.
func (app *App) Close() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	app.db = nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	fiberApp := web.NewApp(app.handlers, web.RouterConfig{
		GlobalLimiter:   app.globalLimiter,
		MutatingLimiter: app.mutatingLimiter,
		Gate:            app.gate,
		PublicDir:       app.config.PublicDir,
	}, app.logger)

	s := web.NewHTTPServer(app.config.Address, fiberApp, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.readiness)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives, or a
// server fails. It closes the database before returning.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCHealthServer(ctx, cancelFunc)
		}()
	}

	for _, l := range []*ratelimit.Limiter{app.globalLimiter, app.mutatingLimiter} {
		wg.Add(1)
		go func(l *ratelimit.Limiter) {
			defer wg.Done()
			l.RunJanitor(ctx, app.config.RateLimitSweepInterval)
		}(l)
	}

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
}
