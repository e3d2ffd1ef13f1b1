package handlers

import (
	"time"

	"imagereceiver/internal/filename"
	"imagereceiver/internal/models"
)

// Fixed placeholder sequence served while no real images exist, so UIs never
// render an empty panel during demos or cold start.
var mockImages = []string{
	"20250409135914_2891_crop_5.jpg",
	"20250409135914_2891_crop_4.jpg",
	"20250409135914_2891_crop_3.jpg",
	"20250409135914_2890_crop_5.jpg",
	"20250409135914_2890_crop_4.jpg",
	"20250409135914_2890_crop_3.jpg",
	"20250409135914_2889_crop_5.jpg",
	"20250409135914_2889_crop_4.jpg",
	"20250409135914_2889_crop_3.jpg",
	"20250409135914_2888_crop_5.jpg",
}

// mockRotationMillis controls how long one mock image stays "latest".
const mockRotationMillis = 3000

// mockLatestImage rotates through the sequence deterministically with time,
// index = floor(now/3s) mod N.
func mockLatestImage(nowMillis int64) models.ImageInfo {
	index := (nowMillis / mockRotationMillis) % int64(len(mockImages))
	name := mockImages[index]

	return models.ImageInfo{
		Filename:   name,
		URL:        "/images/" + name,
		Timestamp:  nowMillis,
		Type:       "mock",
		CoilNumber: filename.ParseCoilNumber(name),
	}
}

// mockImageList returns the placeholder sequence as a listing page.
func mockImageList(page, limit int) ([]models.ImageInfo, int) {
	now := time.Now().UnixMilli()

	start := (page - 1) * limit
	if start > len(mockImages) {
		start = len(mockImages)
	}
	end := start + limit
	if end > len(mockImages) {
		end = len(mockImages)
	}

	images := make([]models.ImageInfo, 0, end-start)
	for i, name := range mockImages[start:end] {
		images = append(images, models.ImageInfo{
			Filename:   name,
			URL:        "/images/" + name,
			Timestamp:  now - int64(start+i)*3600000,
			Type:       "mock",
			CoilNumber: filename.ParseCoilNumber(name),
		})
	}

	return images, len(mockImages)
}
