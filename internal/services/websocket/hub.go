package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"imagereceiver/internal/logger"
	"imagereceiver/internal/models"
	"imagereceiver/internal/services/cache"
	"imagereceiver/internal/services/stats"

	"github.com/gorilla/websocket"
)

// Message is the server-to-client frame. Data is either a keyed ImageInfo
// map (current_images), a single ImageInfo (image_update) or a deletion
// marker.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// deletionMarker is broadcast when the last image of a type disappears.
type deletionMarker struct {
	Type    string `json:"type"`
	Deleted bool   `json:"deleted"`
}

// HubService fans cache updates out to every connected viewer. All socket
// writes happen inside Run so each connection sees a strictly ordered
// message stream.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}

	cache        *cache.Cache
	stats        *stats.Stats
	logger       *logger.Logger
	pingInterval time.Duration

	mutex sync.RWMutex
}

func NewHubService(imageCache *cache.Cache, statistics *stats.Stats, logger *logger.Logger, pingInterval time.Duration) *HubService {
	return &HubService{
		clients:      make(map[*websocket.Conn]bool),
		broadcast:    make(chan []byte, 16),
		register:     make(chan *websocket.Conn),
		unregister:   make(chan *websocket.Conn),
		done:         make(chan struct{}),
		cache:        imageCache,
		stats:        statistics,
		logger:       logger,
		pingInterval: pingInterval,
	}
}

func (h *HubService) Run() {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.stats.SetConnectedClients(total)
			h.logger.Info("Viewer connected. Total: %d", total)

			h.sendCurrentImages(client)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.stats.SetConnectedClients(total)
			h.logger.Info("Viewer disconnected. Total: %d", total)

		case message := <-h.broadcast:
			for _, client := range h.snapshotClients() {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message to viewer: %v", err)
					h.drop(client)
				}
			}

		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			for _, client := range h.snapshotClients() {
				if err := client.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					h.logger.Error("Viewer failed ping: %v", err)
					h.drop(client)
				}
			}

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			h.stats.SetConnectedClients(0)
			return
		}
	}
}

// Register adds a viewer connection; the hub immediately sends it the
// current_images snapshot.
func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes and closes a viewer connection.
func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastImageUpdate pushes a new latest image to every viewer.
func (h *HubService) BroadcastImageUpdate(info models.ImageInfo) {
	h.send(Message{Type: "image_update", Data: info, Timestamp: time.Now().UnixMilli()})
}

// BroadcastImageDeleted tells viewers the last image of a type is gone.
func (h *HubService) BroadcastImageDeleted(imageType string) {
	h.send(Message{
		Type:      "image_update",
		Data:      deletionMarker{Type: imageType, Deleted: true},
		Timestamp: time.Now().UnixMilli(),
	})
}

// GetClientCount returns the number of connected viewers.
func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Stop closes every viewer connection and ends the run loop.
func (h *HubService) Stop() {
	close(h.done)
}

func (h *HubService) send(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error encoding broadcast message: %v", err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

// sendCurrentImages delivers the full cache snapshot to one freshly
// connected viewer so late joiners are not blind until the next event.
func (h *HubService) sendCurrentImages(client *websocket.Conn) {
	msg := Message{
		Type:      "current_images",
		Data:      h.cache.Snapshot(),
		Timestamp: time.Now().UnixMilli(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error encoding current images: %v", err)
		return
	}

	if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.logger.Error("Error sending current images: %v", err)
		h.drop(client)
	}
}

// snapshotClients copies the client set so broadcast iteration tolerates
// concurrent registration.
func (h *HubService) snapshotClients() []*websocket.Conn {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

func (h *HubService) drop(client *websocket.Conn) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Close()
	}
	total := len(h.clients)
	h.mutex.Unlock()
	h.stats.SetConnectedClients(total)
}
