package repository

import (
	"imagereceiver/internal/models"
)

// DefectRepository defines the interface for defect detection persistence.
type DefectRepository interface {
	// Create operations
	Insert(det *models.DefectDetection) (int64, error)
	InsertBatch(detections []models.DefectDetection) error

	// Read operations
	GetByCoilNumber(coilNumber string) ([]models.DefectDetection, error)
	CountByCoilNumber(coilNumber string) (int, error)
}
