package services

import (
	"imagereceiver/internal/logger"
	"imagereceiver/internal/repository"
	"imagereceiver/internal/services/cache"
	"imagereceiver/internal/services/stats"
	"imagereceiver/internal/services/websocket"
	"imagereceiver/internal/store"
)

// Manager aggregates the service-layer dependencies handed to HTTP handlers.
type Manager struct {
	store   *store.Store
	cache   *cache.Cache
	hub     *websocket.HubService
	stats   *stats.Stats
	defects repository.DefectRepository
	logger  *logger.Logger
}

func NewManager(st *store.Store, imageCache *cache.Cache, hub *websocket.HubService, statistics *stats.Stats, defects repository.DefectRepository, logger *logger.Logger) *Manager {
	return &Manager{
		store:   st,
		cache:   imageCache,
		hub:     hub,
		stats:   statistics,
		defects: defects,
		logger:  logger,
	}
}

func (m *Manager) GetStore() *store.Store {
	return m.store
}

func (m *Manager) GetCache() *cache.Cache {
	return m.cache
}

func (m *Manager) GetHub() *websocket.HubService {
	return m.hub
}

func (m *Manager) GetStats() *stats.Stats {
	return m.stats
}

func (m *Manager) GetDefectRepository() repository.DefectRepository {
	return m.defects
}
