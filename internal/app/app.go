// Package app initializes and runs the users page service.
// It configures logging, storage, validation, hashing and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/usersweb/internal/config"
	"github.com/patric-chuzhbe/usersweb/internal/db/jsondb"
	"github.com/patric-chuzhbe/usersweb/internal/db/memorystorage"
	"github.com/patric-chuzhbe/usersweb/internal/db/postgresdb"
	"github.com/patric-chuzhbe/usersweb/internal/logger"
	"github.com/patric-chuzhbe/usersweb/internal/models"
	"github.com/patric-chuzhbe/usersweb/internal/password"
	"github.com/patric-chuzhbe/usersweb/internal/router"
	"github.com/patric-chuzhbe/usersweb/internal/service"
	"github.com/patric-chuzhbe/usersweb/internal/user"
	"github.com/patric-chuzhbe/usersweb/internal/validation"
	"github.com/patric-chuzhbe/usersweb/internal/views"
)

type userKeeper interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
	UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error
	DeleteUser(ctx context.Context, userID string) error
}

type storage interface {
	userKeeper
	Ping(ctx context.Context) error
	Close() error
}

// App holds the configuration, storage and HTTP handler of the service.
type App struct {
	cfg         *config.Config
	db          storage
	httpHandler http.Handler
}

// New initializes a new App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - building the validator, hasher, views and router
func New() (*App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	return NewWithConfig(cfg)
}

// NewWithConfig is New with an already loaded configuration.
func NewWithConfig(cfg *config.Config) (*App, error) {
	var err error
	app := &App{cfg: cfg}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	formValidator, err := validation.New()
	if err != nil {
		return nil, err
	}

	hasher, err := password.New(app.cfg.PasswordHashCost)
	if err != nil {
		return nil, err
	}

	pageRenderer, err := views.New()
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		service.New(app.db, formValidator, hasher),
		pageRenderer,
		app.cfg.BasePath,
		router.WithGetDelete(app.cfg.AllowGetDelete),
		router.WithCORSAllowedOrigins(app.cfg.CORSAllowedOrigins),
	)

	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.serve(ctx)
}

func (a *App) serve(ctx context.Context) error {
	logger.Log.Infow("server running", "RunAddr", a.cfg.RunAddr, "BasePath", a.cfg.BasePath)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		if closeErr := a.db.Close(); closeErr != nil {
			logger.Log.Errorw("storage close error", "error", closeErr)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Fprintln(os.Stderr, "Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
