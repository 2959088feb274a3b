package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formaplus/elearning-backend/internal/db"
	"github.com/formaplus/elearning-backend/internal/observability"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/server"
)

type App struct {
	Config Config
	Log    *logger.Logger
	Router *gin.Engine

	postgres        *db.PostgresService
	tracingShutdown func(context.Context) error
	httpServer      *http.Server
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	cfg := LoadConfig(log)

	tracingShutdown, err := observability.SetupTracing(ctx, log, cfg.TracingMode)
	if err != nil {
		return nil, err
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		return nil, err
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		return nil, err
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	reposet := wireRepos(postgresService.DB(), log)
	svcs := wireServices(postgresService.DB(), log, cfg, reposet, clients)
	mw := wireMiddleware(log, svcs)
	hdl := wireHandlers(log, cfg, svcs)

	router := server.NewRouter(server.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Tracing:     cfg.TracingMode != "" && cfg.TracingMode != "off",

		AuthMiddleware:   mw.Auth,
		AuthHandler:      hdl.Auth,
		UserHandler:      hdl.User,
		FormationHandler: hdl.Formation,
		SelectionHandler: hdl.Selection,
		ChatHandler:      hdl.Chat,
	})

	// Local mode serves uploaded media straight off disk; GCS links are
	// absolute and never hit this route.
	if mode, merr := ResolveStorageMode(cfg.StorageMode); merr == nil && mode == StorageModeLocal {
		router.Static(cfg.StorageBaseURL, cfg.StorageRoot)
	}

	return &App{
		Config:          cfg,
		Log:             log,
		Router:          router,
		postgres:        postgresService,
		tracingShutdown: tracingShutdown,
	}, nil
}

func (a *App) Run() error {
	a.httpServer = &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.Log.Info("Starting HTTP server", "port", a.Config.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
