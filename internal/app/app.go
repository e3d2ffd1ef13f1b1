package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"imagereceiver/internal/config"
	"imagereceiver/internal/logger"
	"imagereceiver/internal/repository/sqlite"
	"imagereceiver/internal/routes"
	"imagereceiver/internal/services"
	"imagereceiver/internal/services/cache"
	"imagereceiver/internal/services/stats"
	"imagereceiver/internal/services/watcher"
	"imagereceiver/internal/services/websocket"
	"imagereceiver/internal/store"
)

// App owns every long-lived component. Constructed once at startup; Stop
// releases watchers, viewer sockets and the database.
type App struct {
	config  *config.Config
	logger  *logger.Logger
	store   *store.Store
	db      *sqlite.DB
	cache   *cache.Cache
	stats   *stats.Stats
	hub     *websocket.HubService
	watcher *watcher.Service
	manager *services.Manager
	server  *http.Server
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	st := store.New(cfg.ImageBasePath)
	if err := st.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to prepare image directories: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to prepare database directory: %w", err)
	}
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	imageCache := cache.New()
	statistics := stats.New()
	hub := websocket.NewHubService(imageCache, statistics, log, time.Duration(cfg.PingInterval)*time.Second)
	fileWatcher := watcher.NewService(st, imageCache, hub, statistics, log)

	defects := sqlite.NewDefectRepository(db)
	manager := services.NewManager(st, imageCache, hub, statistics, defects, log)

	return &App{
		config:  cfg,
		logger:  log,
		store:   st,
		db:      db,
		cache:   imageCache,
		stats:   statistics,
		hub:     hub,
		watcher: fileWatcher,
		manager: manager,
	}, nil
}

func (a *App) Run() error {
	go a.hub.Run()
	a.watcher.Start()

	router := routes.SetupRoutes(a.manager, a.config, a.logger)
	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}

	a.logger.Info("🚀 Image Receiver Service")
	a.logger.Info("📍 Port: %d", a.config.Port)
	a.logger.Info("📁 Images: %s", a.config.ImageBasePath)
	a.logger.Info("🗄️  Database: %s", a.config.DBPath)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the service down in dependency order: HTTP first so no new
// work arrives, then the watcher, the hub, and finally the database.
func (a *App) Stop() {
	a.logger.Info("Shutting down...")

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP shutdown error: %v", err)
		}
	}

	a.watcher.Stop()
	a.hub.Stop()

	if err := a.db.Close(); err != nil {
		a.logger.Error("Database close error: %v", err)
	}

	a.logger.Info("Shutdown complete")
}
