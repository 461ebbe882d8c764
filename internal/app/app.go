package app

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/novo-contact-backend/internal/data/db"
	httpserver "github.com/yungbote/novo-contact-backend/internal/http"
	"github.com/yungbote/novo-contact-backend/internal/modules/dialog"
	"github.com/yungbote/novo-contact-backend/internal/observability"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Server   *httpserver.Server

	dbService     *db.Service
	traceShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects and migrates the schema.
func OpenDB(log *logger.Logger) (*db.Service, error) {
	svc, err := db.NewService(log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return svc, nil
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	traceShutdown := observability.InitTracing(ctx, log, cfg.Tracing)

	dbService, err := OpenDB(log)
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, err
	}
	theDB := dbService.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		_ = traceShutdown(ctx)
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, clients, reposet, hub, metrics)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		_ = traceShutdown(ctx)
		return nil, err
	}

	return &App{
		Log:           log,
		DB:            theDB,
		Cfg:           cfg,
		Clients:       clients,
		Repos:         reposet,
		Services:      serviceset,
		SSEHub:        hub,
		Server:        wireServer(log, cfg, clients, serviceset, hub, metrics),
		dbService:     dbService,
		traceShutdown: traceShutdown,
	}, nil
}

// Run serves HTTP and runs the background loops until ctx is cancelled or
// one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Services.Bus != nil {
		if err := a.Services.Bus.StartForwarder(gctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}
	if a.Services.Emitter != nil {
		g.Go(func() error { return a.Services.Emitter.Run(gctx) })
	}
	if mem, ok := a.Services.Registry.(*dialog.MemoryRegistry); ok {
		g.Go(func() error { return mem.Run(gctx) })
	}
	if mem, ok := a.Services.Clips.(*dialog.MemoryClipStore); ok {
		g.Go(func() error { return mem.Run(gctx) })
	}
	switch {
	case a.Services.Sweeper != nil:
		g.Go(func() error { return a.Services.Sweeper.Run(gctx) })
	case a.Services.Worker != nil:
		g.Go(func() error { return a.Services.Worker.Run(gctx) })
	}
	g.Go(func() error {
		addr := ":" + a.Cfg.Port
		a.Log.Info("HTTP server listening", "addr", addr, "base_url", a.Cfg.BaseURL)
		return a.Server.Run(gctx, addr)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Bus != nil {
		_ = a.Services.Bus.Close()
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.traceShutdown != nil {
		_ = a.traceShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
