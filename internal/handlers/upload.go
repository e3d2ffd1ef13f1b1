package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"imagereceiver/internal/config"
	"imagereceiver/internal/filename"
	"imagereceiver/internal/logger"
	"imagereceiver/internal/models"
	"imagereceiver/internal/services"
)

var allowedImageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/bmp":  true,
}

// uploadedFileInfo echoes one stored file back to the producer.
type uploadedFileInfo struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// UploadPairHandler accepts one original + one labeled image for a coil.
// Both files are renamed onto a shared epoch-millis timestamp so the pair
// can be correlated from filenames alone; the rename into the watched
// directories is what feeds the cache, never this handler.
func UploadPairHandler(manager *services.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSizeBytes())
		if err := r.ParseMultipartForm(cfg.MaxUploadSizeBytes()); err != nil {
			logger.Error("Could not parse multipart form: %v", err)
			writeError(w, http.StatusBadRequest, "could not parse multipart form")
			return
		}

		originalFile, originalHeader, err := r.FormFile("original_image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "original and labeled images are both required")
			return
		}
		defer originalFile.Close()

		labeledFile, labeledHeader, err := r.FormFile("labeled_image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "original and labeled images are both required")
			return
		}
		defer labeledFile.Close()

		coilNumber := r.FormValue("coil_number")
		if coilNumber == "" {
			writeError(w, http.StatusBadRequest, "coil_number is required")
			return
		}

		for _, header := range []*multipart.FileHeader{originalHeader, labeledHeader} {
			if !allowedImageMIMETypes[header.Header.Get("Content-Type")] {
				writeError(w, http.StatusBadRequest, "unsupported image format")
				return
			}
		}

		stats := manager.GetStats()
		st := manager.GetStore()
		timestamp := time.Now().UnixMilli()

		originalName := filename.Format(coilNumber, timestamp, models.ImageTypeOriginal, uploadExt(originalHeader))
		labeledName := filename.Format(coilNumber, timestamp, models.ImageTypeLabeled, uploadExt(labeledHeader))
		originalPath := filepath.Join(st.Dir(models.ImageTypeOriginal), originalName)
		labeledPath := filepath.Join(st.Dir(models.ImageTypeLabeled), labeledName)

		if err := storeUpload(originalFile, st.TempDir(), originalPath); err != nil {
			logger.Error("Failed to store original image: %v", err)
			stats.RecordError()
			writeError(w, http.StatusInternalServerError, "failed to store image pair")
			return
		}
		if err := storeUpload(labeledFile, st.TempDir(), labeledPath); err != nil {
			logger.Error("Failed to store labeled image: %v", err)
			stats.RecordError()
			writeError(w, http.StatusInternalServerError, "failed to store image pair")
			return
		}

		if raw := r.FormValue("defect_data"); raw != "" {
			detections, err := parseDefectData(raw, coilNumber, originalPath, labeledPath)
			if err != nil {
				logger.Error("Invalid defect data for coil %s: %v", coilNumber, err)
				stats.RecordError()
				writeError(w, http.StatusBadRequest, "invalid defect_data")
				return
			}
			// Stored files are intentionally left in place when persistence
			// fails; the watcher has already observed them.
			if err := manager.GetDefectRepository().InsertBatch(detections); err != nil {
				logger.Error("Failed to persist defect data for coil %s: %v", coilNumber, err)
				stats.RecordError()
				writeError(w, http.StatusInternalServerError, "failed to persist defect data")
				return
			}
		}

		stats.RecordImage(models.ImageTypeOriginal, originalHeader.Size)
		stats.RecordImage(models.ImageTypeLabeled, labeledHeader.Size)

		logger.Info("Image pair received: %s", coilNumber)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "image pair upload complete",
			"data": map[string]interface{}{
				"coil_number": coilNumber,
				"original_image": uploadedFileInfo{
					Filename: originalName,
					Path:     originalPath,
					Size:     originalHeader.Size,
				},
				"labeled_image": uploadedFileInfo{
					Filename: labeledName,
					Path:     labeledPath,
					Size:     labeledHeader.Size,
				},
				"upload_time": time.Now().Format(time.RFC3339),
			},
		})
	}
}

// uploadExt picks the stored extension from the uploaded filename.
func uploadExt(header *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	return ext
}

// storeUpload writes the part into the temp directory first and renames it
// into place, so the watcher only ever sees complete files.
func storeUpload(src multipart.File, tempDir, finalPath string) error {
	tmp, err := os.CreateTemp(tempDir, "upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// parseDefectData decodes a single detection object or an array of them,
// coercing loosely typed numeric fields the way producers actually send
// them (numbers or numeric strings, absent fields default to zero).
func parseDefectData(raw, coilNumber, originalPath, labeledPath string) ([]models.DefectDetection, error) {
	var objects []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &objects); err != nil {
		var single map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &single); err != nil {
			return nil, fmt.Errorf("defect_data is neither object nor array: %w", err)
		}
		objects = []map[string]interface{}{single}
	}

	now := time.Now()
	detections := make([]models.DefectDetection, 0, len(objects))
	for _, obj := range objects {
		detections = append(detections, models.DefectDetection{
			CoilNumber:        coilNumber,
			DefectType:        asString(obj["defect_type"], "unknown"),
			PositionX:         asInt(obj["defect_position_x"]),
			PositionY:         asInt(obj["defect_position_y"]),
			PositionMeter:     asFloat(obj["defect_position_meter"]),
			SizeWidth:         asInt(obj["defect_size_width"]),
			SizeHeight:        asInt(obj["defect_size_height"]),
			Confidence:        asFloat(obj["confidence_score"]),
			DetectionTime:     now,
			OriginalImagePath: originalPath,
			LabeledImagePath:  labeledPath,
			ModelID:           asIntDefault(obj["model_id"], 1),
		})
	}
	return detections, nil
}

func asString(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func asInt(v interface{}) int {
	return asIntDefault(v, 0)
}

func asIntDefault(v interface{}, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return int(f)
		}
	}
	return def
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}
