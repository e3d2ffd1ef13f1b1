package models

import "time"

// DefectDetection is one detected defect attached to an uploaded image pair.
type DefectDetection struct {
	ID                int64     `json:"id"`
	CoilNumber        string    `json:"coil_number"`
	DefectType        string    `json:"defect_type"`
	PositionX         int       `json:"defect_position_x"`
	PositionY         int       `json:"defect_position_y"`
	PositionMeter     float64   `json:"defect_position_meter"`
	SizeWidth         int       `json:"defect_size_width"`
	SizeHeight        int       `json:"defect_size_height"`
	Confidence        float64   `json:"confidence_score"`
	DetectionTime     time.Time `json:"detection_time"`
	OriginalImagePath string    `json:"original_image_path"`
	LabeledImagePath  string    `json:"labeled_image_path"`
	ModelID           int       `json:"model_id"`
}
