package dto

import (
	"time"

	"chemviz-client/internal/model"
)

// UploadRequest is validated before a file is sent.
type UploadRequest struct {
	Filename string `validate:"required"`
}

type UploadResponse struct {
	Message  string          `json:"message,omitempty"`
	UploadId *int64          `json:"upload_id"`
	Summary  SummaryResponse `json:"summary"`
}

type SummaryResponse struct {
	UploadId         *int64                 `json:"upload_id,omitempty"`
	Filename         string                 `json:"filename,omitempty"`
	UploadedAt       *time.Time             `json:"uploaded_at,omitempty"`
	TotalCount       int                    `json:"total_count"`
	AvgFlowrate      float64                `json:"avg_flowrate"`
	AvgPressure      float64                `json:"avg_pressure"`
	AvgTemperature   float64                `json:"avg_temperature"`
	TypeDistribution model.TypeDistribution `json:"type_distribution"`
}

type HistoryItemResponse struct {
	Id             int64     `json:"id"`
	UploadedAt     time.Time `json:"uploaded_at"`
	Filename       string    `json:"filename"`
	TotalCount     int       `json:"total_count"`
	AvgFlowrate    float64   `json:"avg_flowrate"`
	AvgPressure    float64   `json:"avg_pressure"`
	AvgTemperature float64   `json:"avg_temperature"`
	EquipmentCount int       `json:"equipment_count"`
}

type EquipmentResponse struct {
	Id            int64   `json:"id"`
	EquipmentName string  `json:"equipment_name"`
	EquipmentType string  `json:"equipment_type"`
	Flowrate      float64 `json:"flowrate"`
	Pressure      float64 `json:"pressure"`
	Temperature   float64 `json:"temperature"`
}

type ExportRequest struct {
	UploadId int64 `json:"upload_id"`
}
