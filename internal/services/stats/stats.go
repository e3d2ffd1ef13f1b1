package stats

import (
	"sync"
	"time"

	"imagereceiver/internal/models"
)

// Snapshot is the stats payload exposed by /stats and /health.
type Snapshot struct {
	TotalImages      int        `json:"total_images"`
	OriginalImages   int        `json:"original_images"`
	LabeledImages    int        `json:"labeled_images"`
	Errors           int        `json:"errors"`
	TotalSize        int64      `json:"total_size"`
	LastImageTime    *time.Time `json:"last_image_time"`
	ConnectedClients int        `json:"connected_clients"`
	UptimeMillis     int64      `json:"uptime"`
}

// Stats tracks running service counters.
type Stats struct {
	mu               sync.Mutex
	totalImages      int
	originalImages   int
	labeledImages    int
	errors           int
	totalSize        int64
	lastImageTime    *time.Time
	connectedClients int
	startTime        time.Time
}

func New() *Stats {
	return &Stats{startTime: time.Now()}
}

// RecordImage counts one received image of the given type.
func (s *Stats) RecordImage(imageType string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalImages++
	s.totalSize += size
	now := time.Now()
	s.lastImageTime = &now

	switch imageType {
	case models.ImageTypeOriginal:
		s.originalImages++
	case models.ImageTypeLabeled:
		s.labeledImages++
	}
}

// RecordError counts one failed operation.
func (s *Stats) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}

// SetConnectedClients records the current viewer count.
func (s *Stats) SetConnectedClients(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectedClients = n
}

// Snapshot returns a consistent copy of all counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		TotalImages:      s.totalImages,
		OriginalImages:   s.originalImages,
		LabeledImages:    s.labeledImages,
		Errors:           s.errors,
		TotalSize:        s.totalSize,
		LastImageTime:    s.lastImageTime,
		ConnectedClients: s.connectedClients,
		UptimeMillis:     time.Since(s.startTime).Milliseconds(),
	}
}
