package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditstore "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/database/relations"
	"github.com/mrlokans/bookstore/internal/database/users"
	http_controllers "github.com/mrlokans/bookstore/internal/http"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the wired router and the resources it needs released.
type App struct {
	Router *gin.Engine
	db     *database.Database
	stop   func()
}

// Close stops background goroutines and closes the database.
func (a *App) Close() error {
	if a.stop != nil {
		a.stop()
	}
	return a.db.Close()
}

// NewApp opens the database and builds the router from cfg.
func NewApp(cfg *config.Config, version string) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	// Get underlying SQL DB for session store
	sqlDB, err := db.DB.DB()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := csrfKey(cfg.Auth)
	if err != nil {
		db.Close()
		return nil, err
	}

	if hasUsers, err := authService.HasUsers(context.Background()); err == nil && !hasUsers {
		logrus.Warn("No users found. Create one with the createuser command.")
	}

	router, stop := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Books:          books.NewRepository(db.DB),
		Relations:      relations.NewRepository(db.DB),
		Audit:          audit.NewService(auditstore.NewRepository(db.DB), cfg.Audit.Enabled),
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthConfig:     cfg.Auth,
		CSRFSecret:     csrfSecret,
		RateLimit:      cfg.RateLimit,
		Version:        version,
	})

	return &App{Router: router, db: db, stop: stop}, nil
}

// csrfKey decodes AUTH_SESSION_SECRET or generates a per-process key.
func csrfKey(cfg config.Auth) ([]byte, error) {
	if !cfg.CSRFEnabled {
		return nil, nil
	}
	if cfg.SessionSecret != "" {
		key, err := auth.DecodeSessionSecret(cfg.SessionSecret)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTH_SESSION_SECRET: %w", err)
		}
		return key, nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	logrus.Info("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return auth.DecodeSessionSecret(secret)
}

func Serve(router http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	// Wait for SIGINT or SIGTERM, then give in-flight requests the
	// configured timeout to finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Infof("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server Shutdown")
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	logrus.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logrus.Infof("Starting bookstore v%s", version)
	gin.SetMode(gin.ReleaseMode)

	app, err := NewApp(cfg, version)
	if err != nil {
		logrus.Fatal(err)
	}

	Serve(app.Router, cfg, func(ctx context.Context) {
		if err := app.Close(); err != nil {
			logrus.WithError(err).Error("Error closing database")
		}
	})
}
