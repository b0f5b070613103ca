// Package server initializes and runs the sync API server: database and
// migrations, services, the HTTP listener, and graceful shutdown on OS
// signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebergstrom/daybreak/internal/logging"
	"github.com/ebergstrom/daybreak/internal/server/config"
	"github.com/ebergstrom/daybreak/internal/server/httpapi"
	"github.com/ebergstrom/daybreak/internal/server/repositories/repomanager"
	"github.com/ebergstrom/daybreak/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	userService   *services.UserService
	recordService *services.RecordService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	var logger logging.Logger
	if cfg.LogFilePath != "" {
		logger = logging.NewRotatingFileLogger(cfg.LogFilePath)
	} else {
		logger = logging.NewJSONLogger(os.Stdout)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		userService:   services.NewUserService(db, rm, cfg),
		recordService: services.NewRecordService(db, rm, cfg),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	router := httpapi.NewRouter(app.userService, app.recordService, []byte(app.config.SecretKey), app.logger)
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: router.Handler(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err)
	}
}
