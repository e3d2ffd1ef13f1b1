package models

import "time"

// Image type directories watched under the base path.
const (
	ImageTypeOriginal = "original"
	ImageTypeLabeled  = "labeled"
)

// ImageTypes lists every watched image type.
var ImageTypes = []string{ImageTypeOriginal, ImageTypeLabeled}

// ImageInfo describes one observed image file. Values are copied into the
// cache whole, never mutated in place.
type ImageInfo struct {
	Filename   string     `json:"filename"`
	URL        string     `json:"url"`
	Timestamp  int64      `json:"timestamp"` // epoch milliseconds derived from the filename
	Type       string     `json:"type"`
	CoilNumber string     `json:"coil_number"`
	Size       int64      `json:"size,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// CacheKey returns the composite key for per-coil lookups.
func CacheKey(imageType, coilNumber string) string {
	return imageType + "_" + coilNumber
}
