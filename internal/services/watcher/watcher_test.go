package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"imagereceiver/internal/config"
	"imagereceiver/internal/logger"
	"imagereceiver/internal/models"
	"imagereceiver/internal/services/cache"
	"imagereceiver/internal/services/stats"
	"imagereceiver/internal/store"
)

// recordingBroadcaster captures hub notifications for assertions.
type recordingBroadcaster struct {
	updates   []models.ImageInfo
	deletions []string
}

func (r *recordingBroadcaster) BroadcastImageUpdate(info models.ImageInfo) {
	r.updates = append(r.updates, info)
}

func (r *recordingBroadcaster) BroadcastImageDeleted(imageType string) {
	r.deletions = append(r.deletions, imageType)
}

func newTestService(t *testing.T) (*Service, *store.Store, *cache.Cache, *recordingBroadcaster) {
	t.Helper()

	st := store.New(t.TempDir())
	if err := st.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	imageCache := cache.New()
	hub := &recordingBroadcaster{}
	log := logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})

	return NewService(st, imageCache, hub, stats.New(), log), st, imageCache, hub
}

func writeImage(t *testing.T, st *store.Store, imageType, name string) string {
	t.Helper()
	path := filepath.Join(st.Dir(imageType), name)
	if err := os.WriteFile(path, []byte("img"), 0644); err != nil {
		t.Fatalf("Failed to write image fixture: %v", err)
	}
	return path
}

func TestScanExisting_PopulatesCacheWithoutBroadcast(t *testing.T) {
	svc, st, imageCache, hub := newTestService(t)

	writeImage(t, st, "original", "C1_1715000000000_original.jpg")
	writeImage(t, st, "original", "C2_1715000002000_original.jpg")

	svc.scanExisting("original")

	got, ok := imageCache.Get("original")
	if !ok || got.CoilNumber != "C2" {
		t.Errorf("Expected newest image C2 under type key, got %+v", got)
	}
	if _, ok := imageCache.Get(models.CacheKey("original", "C1")); !ok {
		t.Error("Expected per-coil key for C1")
	}
	if len(hub.updates) != 0 {
		t.Errorf("Initial scan must not broadcast, got %d updates", len(hub.updates))
	}
}

func TestApply_AddUpdatesCacheAndBroadcasts(t *testing.T) {
	svc, st, imageCache, hub := newTestService(t)

	path := writeImage(t, st, "original", "C1_1715000000000_original.jpg")
	svc.apply(Event{Op: OpAdd, Path: path, ImageType: "original"})

	got, ok := imageCache.Get("original")
	if !ok || got.Filename != "C1_1715000000000_original.jpg" {
		t.Fatalf("Expected cache entry for added file, got %+v", got)
	}
	if got.Size != 3 {
		t.Errorf("Expected stat'd size 3, got %d", got.Size)
	}
	if len(hub.updates) != 1 {
		t.Fatalf("Expected 1 broadcast, got %d", len(hub.updates))
	}

	// A change event for the same file must not double-count.
	svc.apply(Event{Op: OpAdd, Path: path, ImageType: "original"})
	if len(hub.updates) != 1 {
		t.Errorf("Duplicate event broadcast again: %d updates", len(hub.updates))
	}
}

func TestApply_OlderFileDoesNotSupersede(t *testing.T) {
	svc, st, imageCache, hub := newTestService(t)

	newer := writeImage(t, st, "original", "C1_1715000002000_original.jpg")
	older := writeImage(t, st, "original", "C1_1715000000000_original.jpg")

	svc.apply(Event{Op: OpAdd, Path: newer, ImageType: "original"})
	svc.apply(Event{Op: OpAdd, Path: older, ImageType: "original"})

	got, _ := imageCache.Get("original")
	if got.Timestamp != 1715000002000 {
		t.Errorf("Expected newest timestamp to survive, got %d", got.Timestamp)
	}
	if len(hub.updates) != 1 {
		t.Errorf("Older file should not broadcast, got %d updates", len(hub.updates))
	}
}

func TestApply_RemovePromotesSurvivor(t *testing.T) {
	svc, st, imageCache, hub := newTestService(t)

	survivor := writeImage(t, st, "original", "C1_1715000000000_original.jpg")
	newest := writeImage(t, st, "original", "C2_1715000002000_original.jpg")

	svc.apply(Event{Op: OpAdd, Path: survivor, ImageType: "original"})
	svc.apply(Event{Op: OpAdd, Path: newest, ImageType: "original"})

	if err := os.Remove(newest); err != nil {
		t.Fatalf("Failed to remove fixture: %v", err)
	}
	svc.apply(Event{Op: OpRemove, Path: newest, ImageType: "original"})

	got, ok := imageCache.Get("original")
	if !ok || got.CoilNumber != "C1" {
		t.Errorf("Expected survivor C1 promoted, got %+v", got)
	}
	if _, ok := imageCache.Get(models.CacheKey("original", "C2")); ok {
		t.Error("Removed coil key should be gone")
	}

	last := hub.updates[len(hub.updates)-1]
	if last.CoilNumber != "C1" {
		t.Errorf("Expected survivor broadcast, got %+v", last)
	}
}

func TestApply_RemoveLastImageClearsKey(t *testing.T) {
	svc, st, imageCache, hub := newTestService(t)

	only := writeImage(t, st, "original", "C1_1715000000000_original.jpg")
	svc.apply(Event{Op: OpAdd, Path: only, ImageType: "original"})

	if err := os.Remove(only); err != nil {
		t.Fatalf("Failed to remove fixture: %v", err)
	}
	svc.apply(Event{Op: OpRemove, Path: only, ImageType: "original"})

	if _, ok := imageCache.Get("original"); ok {
		t.Error("Type key should be cleared when no images remain")
	}
	if len(hub.deletions) != 1 || hub.deletions[0] != "original" {
		t.Errorf("Expected one deletion broadcast for original, got %v", hub.deletions)
	}
}

func TestApply_IgnoresNonImageFiles(t *testing.T) {
	svc, st, imageCache, hub := newTestService(t)

	path := filepath.Join(st.Dir("original"), "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	svc.apply(Event{Op: OpAdd, Path: path, ImageType: "original"})

	if _, ok := imageCache.Get("original"); ok {
		t.Error("Non-image file must not populate the cache")
	}
	if len(hub.updates) != 0 {
		t.Error("Non-image file must not broadcast")
	}
}
