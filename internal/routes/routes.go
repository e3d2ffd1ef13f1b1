package routes

import (
	"net/http"

	"imagereceiver/internal/config"
	"imagereceiver/internal/handlers"
	"imagereceiver/internal/logger"
	"imagereceiver/internal/middleware"
	"imagereceiver/internal/services"
)

// SetupRoutes registers the HTTP surface and wraps it with CORS.
func SetupRoutes(manager *services.Manager, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Image API
	mux.HandleFunc("GET /health", handlers.HealthHandler(manager))
	mux.HandleFunc("GET /stats", handlers.StatsHandler(manager))
	mux.HandleFunc("GET /latest/{type}", handlers.LatestImageHandler(manager))
	mux.HandleFunc("GET /list/{type}", handlers.ListImagesHandler(manager, logger))
	mux.HandleFunc("POST /upload/pair", handlers.UploadPairHandler(manager, cfg, logger))
	mux.HandleFunc("GET /image/{type}/{filename}", handlers.ViewImageHandler(manager))

	// Viewer push channel
	mux.HandleFunc("/ws", handlers.ViewWebsocketHandler(manager, logger))

	// Log endpoints
	mux.HandleFunc("GET /logs/info", handlers.ShowInfoLogsHandler(cfg))
	mux.HandleFunc("GET /logs/warning", handlers.ShowWarningLogsHandler(cfg))
	mux.HandleFunc("GET /logs/error", handlers.ShowErrorLogsHandler(cfg))

	mux.HandleFunc("/logs/info/clear", handlers.ClearInfoLogsHandler(logger))
	mux.HandleFunc("/logs/warning/clear", handlers.ClearWarningLogsHandler(logger))
	mux.HandleFunc("/logs/error/clear", handlers.ClearErrorLogsHandler(logger))

	return middleware.CORSMiddleware(mux)
}
