package sqlite

import (
	"fmt"

	"imagereceiver/internal/models"
)

// DefectRepository implements repository.DefectRepository for SQLite.
type DefectRepository struct {
	db *DB
}

// NewDefectRepository creates a new SQLite defect repository.
func NewDefectRepository(db *DB) *DefectRepository {
	return &DefectRepository{db: db}
}

// Insert adds a new defect detection record to the database.
func (r *DefectRepository) Insert(det *models.DefectDetection) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO defect_detections (
			coil_number, defect_type, defect_position_x, defect_position_y, defect_position_meter,
			defect_size_width, defect_size_height, confidence_score, detection_time,
			original_image_path, labeled_image_path, model_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, det.CoilNumber, det.DefectType, det.PositionX, det.PositionY, det.PositionMeter,
		det.SizeWidth, det.SizeHeight, det.Confidence, det.DetectionTime,
		det.OriginalImagePath, det.LabeledImagePath, det.ModelID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert defect detection: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple defect detections in a single transaction.
func (r *DefectRepository) InsertBatch(detections []models.DefectDetection) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO defect_detections (
			coil_number, defect_type, defect_position_x, defect_position_y, defect_position_meter,
			defect_size_width, defect_size_height, confidence_score, detection_time,
			original_image_path, labeled_image_path, model_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, det := range detections {
		if _, err := stmt.Exec(det.CoilNumber, det.DefectType, det.PositionX, det.PositionY,
			det.PositionMeter, det.SizeWidth, det.SizeHeight, det.Confidence, det.DetectionTime,
			det.OriginalImagePath, det.LabeledImagePath, det.ModelID); err != nil {
			return fmt.Errorf("failed to insert defect detection: %w", err)
		}
	}

	return tx.Commit()
}

// GetByCoilNumber retrieves all defect detections for a coil, newest first.
func (r *DefectRepository) GetByCoilNumber(coilNumber string) ([]models.DefectDetection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, coil_number, defect_type, defect_position_x, defect_position_y,
			defect_position_meter, defect_size_width, defect_size_height, confidence_score,
			detection_time, original_image_path, labeled_image_path, model_id
		FROM defect_detections WHERE coil_number = ?
		ORDER BY detection_time DESC
	`, coilNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query defect detections: %w", err)
	}
	defer rows.Close()

	var detections []models.DefectDetection
	for rows.Next() {
		var det models.DefectDetection
		if err := rows.Scan(&det.ID, &det.CoilNumber, &det.DefectType, &det.PositionX, &det.PositionY,
			&det.PositionMeter, &det.SizeWidth, &det.SizeHeight, &det.Confidence,
			&det.DetectionTime, &det.OriginalImagePath, &det.LabeledImagePath, &det.ModelID); err != nil {
			return nil, fmt.Errorf("failed to scan defect detection: %w", err)
		}
		detections = append(detections, det)
	}

	return detections, nil
}

// CountByCoilNumber returns the number of defect detections stored for a coil.
func (r *DefectRepository) CountByCoilNumber(coilNumber string) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM defect_detections WHERE coil_number = ?`, coilNumber).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count defect detections: %w", err)
	}
	return count, nil
}
