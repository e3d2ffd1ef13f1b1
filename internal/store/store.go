package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"imagereceiver/internal/filename"
	"imagereceiver/internal/models"
)

// TempDirName holds in-flight uploads before they are renamed into a type
// directory.
const TempDirName = "temp"

// Store manages the on-disk image layout: <base>/original, <base>/labeled
// and <base>/temp.
type Store struct {
	basePath string
}

func New(basePath string) *Store {
	return &Store{basePath: basePath}
}

// BasePath returns the configured image root.
func (s *Store) BasePath() string {
	return s.basePath
}

// Dir returns the directory holding images of the given type.
func (s *Store) Dir(imageType string) string {
	return filepath.Join(s.basePath, imageType)
}

// TempDir returns the staging directory for uploads.
func (s *Store) TempDir() string {
	return filepath.Join(s.basePath, TempDirName)
}

// EnsureDirectories creates the full layout if any part of it is missing.
func (s *Store) EnsureDirectories() error {
	dirs := make([]string, 0, len(models.ImageTypes)+1)
	for _, t := range models.ImageTypes {
		dirs = append(dirs, s.Dir(t))
	}
	dirs = append(dirs, s.TempDir())

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ImagePath returns the on-disk path of a named image, rejecting names that
// escape the type directory.
func (s *Store) ImagePath(imageType, name string) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid image filename: %s", name)
	}
	return filepath.Join(s.Dir(imageType), name), nil
}

// ListImages returns every image file of the given type, newest first by the
// timestamp derived from its filename.
func (s *Store) ListImages(imageType string) ([]models.ImageInfo, error) {
	entries, err := os.ReadDir(s.Dir(imageType))
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var images []models.ImageInfo
	for _, e := range entries {
		if e.IsDir() || !filename.IsImageFile(e.Name()) {
			continue
		}

		ts, coil := filename.Parse(e.Name())
		info := models.ImageInfo{
			Filename:   e.Name(),
			URL:        "/image/" + imageType + "/" + e.Name(),
			Timestamp:  ts,
			Type:       imageType,
			CoilNumber: coil,
		}
		if fi, err := e.Info(); err == nil {
			info.Size = fi.Size()
			mod := fi.ModTime()
			info.CreatedAt = &mod
		}
		images = append(images, info)
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Timestamp > images[j].Timestamp
	})

	return images, nil
}
