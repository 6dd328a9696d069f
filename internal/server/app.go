// Package server wires configuration, storage, services and the gRPC
// transport into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/convokeeper/internal/logging"
	"github.com/dmitrijs2005/convokeeper/internal/server/config"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/convokeeper/internal/server/services"

	gs "github.com/dmitrijs2005/convokeeper/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	services gs.Services
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		services: buildServices(db, rm, c, logger),
	}, nil
}

func buildServices(db *sql.DB, rm repomanager.RepositoryManager, c *config.Config, logger logging.Logger) gs.Services {
	throttle := services.NewMemoryThrottle(c.LoginRetryDelay)
	roles := services.NewRoleMutator(db, rm, logger)

	return gs.Services{
		Credentials: services.NewCredentialVerifier(db, rm, c, throttle, logger),
		Access:      services.NewAccessGuard(db, rm),
		Roles:       roles,
		Join:        services.NewTokenJoinFlow(db, rm, roles, logger),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	limiter := gs.NewLimiterStore(app.config.RateLimitPerMinute, app.config.RateLimitBurst)
	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services, limiter)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// Run serves until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing db", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
