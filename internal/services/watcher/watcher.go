package watcher

import (
	"os"
	"path/filepath"
	"sync"

	"imagereceiver/internal/filename"
	"imagereceiver/internal/logger"
	"imagereceiver/internal/models"
	"imagereceiver/internal/services/cache"
	"imagereceiver/internal/services/stats"
	"imagereceiver/internal/store"

	"github.com/fsnotify/fsnotify"
)

// Op classifies a filesystem event for the dispatch loop.
type Op int

const (
	OpAdd Op = iota // file created or rewritten
	OpRemove
)

// Event is one observed filesystem change on a watched type directory.
type Event struct {
	Op        Op
	Path      string
	ImageType string
}

// Broadcaster receives cache changes for fan-out to viewers.
type Broadcaster interface {
	BroadcastImageUpdate(info models.ImageInfo)
	BroadcastImageDeleted(imageType string)
}

// Service watches one directory per image type and applies every observed
// change to the latest-image cache. The cache has exactly one writer: the
// dispatch goroutine draining the event channel.
type Service struct {
	store  *store.Store
	cache  *cache.Cache
	hub    Broadcaster
	stats  *stats.Stats
	logger *logger.Logger

	events   chan Event
	watchers []*fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewService(st *store.Store, imageCache *cache.Cache, hub Broadcaster, statistics *stats.Stats, logger *logger.Logger) *Service {
	return &Service{
		store:  st,
		cache:  imageCache,
		hub:    hub,
		stats:  statistics,
		logger: logger,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

// Start begins watching every image type directory. A directory that cannot
// be watched is logged and skipped; the remaining types keep running.
func (s *Service) Start() {
	for _, imageType := range models.ImageTypes {
		if err := s.watchType(imageType); err != nil {
			s.logger.Error("File watcher failed for %s: %v", imageType, err)
			s.stats.RecordError()
		}
	}

	s.wg.Add(1)
	go s.dispatch()
}

// Stop shuts down the fsnotify watchers and the dispatch loop.
func (s *Service) Stop() {
	close(s.done)
	for _, w := range s.watchers {
		w.Close()
	}
	s.wg.Wait()
	s.logger.Info("File watchers stopped")
}

// watchType ensures the type directory exists and starts forwarding its
// fsnotify events onto the shared channel.
func (s *Service) watchType(imageType string) error {
	dir := s.store.Dir(imageType)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	s.watchers = append(s.watchers, w)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				switch {
				case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
					s.enqueue(Event{Op: OpAdd, Path: ev.Name, ImageType: imageType})
				case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					s.enqueue(Event{Op: OpRemove, Path: ev.Name, ImageType: imageType})
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Error("File watcher error (%s): %v", imageType, err)
			case <-s.done:
				return
			}
		}
	}()

	s.logger.Info("File watcher started: %s", dir)
	return nil
}

func (s *Service) enqueue(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// dispatch is the single cache writer. It seeds the cache from the files
// already on disk, then applies live events in arrival order.
func (s *Service) dispatch() {
	defer s.wg.Done()

	for _, imageType := range models.ImageTypes {
		s.scanExisting(imageType)
	}

	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
		case <-s.done:
			return
		}
	}
}

// scanExisting populates the cache with the newest pre-existing file per key
// without broadcasting or touching the counters.
func (s *Service) scanExisting(imageType string) {
	images, err := s.store.ListImages(imageType)
	if err != nil {
		s.logger.Warning("No existing images loaded (%s): %v", imageType, err)
		return
	}
	if len(images) == 0 {
		return
	}

	s.cache.Set(imageType, images[0])
	for _, img := range images {
		s.cache.Update(models.CacheKey(imageType, img.CoilNumber), img)
	}
	s.logger.Info("Loaded existing latest image (%s): %s", imageType, images[0].Filename)
}

// apply performs the cache update for one event.
func (s *Service) apply(ev Event) {
	if !filename.IsImageFile(ev.Path) {
		return
	}

	switch ev.Op {
	case OpAdd:
		s.handleAdd(ev)
	case OpRemove:
		s.handleRemove(ev)
	}
}

func (s *Service) handleAdd(ev Event) {
	fi, err := os.Stat(ev.Path)
	if err != nil {
		// File vanished between event and stat.
		s.logger.Warning("Could not stat %s: %v", ev.Path, err)
		return
	}

	name := filepath.Base(ev.Path)
	ts, coil := filename.Parse(name)
	mod := fi.ModTime()
	info := models.ImageInfo{
		Filename:   name,
		URL:        "/image/" + ev.ImageType + "/" + name,
		Timestamp:  ts,
		Type:       ev.ImageType,
		CoilNumber: coil,
		Size:       fi.Size(),
		CreatedAt:  &mod,
	}

	updatedCoil := s.cache.Update(models.CacheKey(ev.ImageType, coil), info)
	updatedType := s.cache.Update(ev.ImageType, info)

	// A change event for an already-cached file updates neither key, so the
	// same image is never counted or broadcast twice.
	if updatedCoil || updatedType {
		s.stats.RecordImage(ev.ImageType, fi.Size())
		s.hub.BroadcastImageUpdate(info)
		s.logger.Info("New image detected (%s): %s", ev.ImageType, name)
	}
}

// handleRemove re-derives the newest surviving image for the affected type
// by re-listing its directory.
func (s *Service) handleRemove(ev Event) {
	s.logger.Info("Image removed (%s): %s", ev.ImageType, filepath.Base(ev.Path))

	images, err := s.store.ListImages(ev.ImageType)
	if err != nil {
		s.logger.Error("Failed to re-scan %s after removal: %v", ev.ImageType, err)
		s.stats.RecordError()
		return
	}

	s.cache.DeleteType(ev.ImageType)

	if len(images) == 0 {
		s.hub.BroadcastImageDeleted(ev.ImageType)
		return
	}

	// Listing is newest first, so Update keeps the first entry seen per coil.
	s.cache.Set(ev.ImageType, images[0])
	for _, img := range images {
		s.cache.Update(models.CacheKey(ev.ImageType, img.CoilNumber), img)
	}
	s.hub.BroadcastImageUpdate(images[0])
}
