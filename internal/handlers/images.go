package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"imagereceiver/internal/logger"
	"imagereceiver/internal/models"
	"imagereceiver/internal/services"
)

// Pagination mirrors the listing envelope the dashboard expects.
type Pagination struct {
	CurrentPage   int `json:"current_page"`
	TotalPages    int `json:"total_pages"`
	TotalImages   int `json:"total_images"`
	ImagesPerPage int `json:"images_per_page"`
}

// LatestImageHandler serves the newest image for a type, optionally narrowed
// to one coil. Falls back from type+coil to the bare type, then to the mock
// sequence.
func LatestImageHandler(manager *services.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageType := r.PathValue("type")
		coilNumber := r.URL.Query().Get("coil_number")

		imageCache := manager.GetCache()

		var info models.ImageInfo
		var ok bool
		if coilNumber != "" {
			info, ok = imageCache.Get(models.CacheKey(imageType, coilNumber))
		}
		if !ok {
			info, ok = imageCache.Get(imageType)
		}

		if !ok {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success":      true,
				"image":        mockLatestImage(time.Now().UnixMilli()),
				"total_images": len(mockImages),
				"is_mock":      true,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"image":           info,
			"total_images":    imageCache.CountForType(imageType),
			"is_file_watcher": true,
		})
	}
}

// ListImagesHandler lists stored images for a type with coil and date
// filters, newest first, paginated. Missing or empty directories degrade to
// the mock sequence instead of erroring.
func ListImagesHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageType := r.PathValue("type")

		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 20)
		coilNumber := q.Get("coil_number")
		fromDate := parseDateMillis(q.Get("from_date"))
		toDate := parseDateMillis(q.Get("to_date"))

		images, err := manager.GetStore().ListImages(imageType)
		if err != nil {
			logger.Warning("Image directory unavailable (%s): %v", imageType, err)
			writeMockList(w, page, limit)
			return
		}
		if len(images) == 0 {
			writeMockList(w, page, limit)
			return
		}

		// Always an array in the response, even when every file is filtered out.
		filtered := []models.ImageInfo{}
		for _, img := range images {
			if coilNumber != "" && !strings.Contains(img.Filename, coilNumber) {
				continue
			}
			if fromDate > 0 && img.Timestamp < fromDate {
				continue
			}
			if toDate > 0 && img.Timestamp > toDate {
				continue
			}
			filtered = append(filtered, img)
		}

		start := (page - 1) * limit
		if start > len(filtered) {
			start = len(filtered)
		}
		end := start + limit
		if end > len(filtered) {
			end = len(filtered)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"images":  filtered[start:end],
			"pagination": Pagination{
				CurrentPage:   page,
				TotalPages:    (len(filtered) + limit - 1) / limit,
				TotalImages:   len(filtered),
				ImagesPerPage: limit,
			},
		})
	}
}

func writeMockList(w http.ResponseWriter, page, limit int) {
	images, total := mockImageList(page, limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"images":  images,
		"pagination": Pagination{
			CurrentPage:   page,
			TotalPages:    (total + limit - 1) / limit,
			TotalImages:   total,
			ImagesPerPage: limit,
		},
		"is_mock": true,
	})
}

// ViewImageHandler streams raw image bytes.
func ViewImageHandler(manager *services.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageType := r.PathValue("type")
		name := r.PathValue("filename")

		path, err := manager.GetStore().ImagePath(imageType, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid image filename")
			return
		}

		if _, err := os.Stat(path); err != nil {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}

		http.ServeFile(w, r, path)
	}
}

// StatsHandler returns the running service counters.
func StatsHandler(manager *services.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.GetStats().Snapshot())
	}
}

// HealthHandler is the liveness probe.
func HealthHandler(manager *services.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"service":   "Image Receiver Service",
			"timestamp": time.Now().Format(time.RFC3339),
			"stats":     manager.GetStats().Snapshot(),
		})
	}
}

// parseDateMillis accepts either an RFC3339 timestamp or a bare date
// ("2006-01-02") and returns epoch milliseconds, 0 when absent or invalid.
func parseDateMillis(v string) int64 {
	if v == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UnixMilli()
	}
	if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
		return t.UnixMilli()
	}
	return 0
}
