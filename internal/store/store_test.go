package store

import (
	"os"
	"path/filepath"
	"testing"

	"imagereceiver/internal/models"
)

func TestEnsureDirectories(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "images"))

	if err := s.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{s.Dir("original"), s.Dir("labeled"), s.TempDir()} {
		fi, err := os.Stat(dir)
		if err != nil {
			t.Errorf("Expected directory %s to exist: %v", dir, err)
			continue
		}
		if !fi.IsDir() {
			t.Errorf("Expected %s to be a directory", dir)
		}
	}
}

func TestListImages_NewestFirst(t *testing.T) {
	s := New(t.TempDir())
	if err := s.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	names := []string{
		"C1_1715000000000_original.jpg",
		"C2_1715000002000_original.jpg",
		"C1_1715000001000_original.png",
		"notes.txt",
		".hidden.jpg",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(s.Dir("original"), name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}
	}

	images, err := s.ListImages("original")
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}

	if len(images) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(images))
	}

	expected := []int64{1715000002000, 1715000001000, 1715000000000}
	for i, img := range images {
		if img.Timestamp != expected[i] {
			t.Errorf("Position %d: timestamp = %d, expected %d", i, img.Timestamp, expected[i])
		}
	}

	if images[0].CoilNumber != "C2" {
		t.Errorf("Expected newest coil C2, got %s", images[0].CoilNumber)
	}
	if images[0].URL != "/image/original/C2_1715000002000_original.jpg" {
		t.Errorf("Unexpected URL: %s", images[0].URL)
	}
	if images[0].Size != 1 {
		t.Errorf("Expected stat'd size 1, got %d", images[0].Size)
	}
}

func TestListImages_MissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nowhere"))

	if _, err := s.ListImages(models.ImageTypeOriginal); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestImagePath_RejectsTraversal(t *testing.T) {
	s := New(t.TempDir())

	valid := []string{"a.jpg", "C1_1_original.png"}
	for _, name := range valid {
		if _, err := s.ImagePath("original", name); err != nil {
			t.Errorf("Expected %q to be accepted: %v", name, err)
		}
	}

	invalid := []string{"../secret.jpg", "a/b.jpg", "..", "."}
	for _, name := range invalid {
		if _, err := s.ImagePath("original", name); err == nil {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}
