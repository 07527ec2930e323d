package model

import "time"

// UploadRecord is one entry of the upload history as returned by the server.
type UploadRecord struct {
	Id             int64     `json:"id"`
	Filename       string    `json:"filename"`
	UploadedAt     time.Time `json:"uploaded_at"`
	TotalCount     int       `json:"total_count"`
	AvgFlowrate    float64   `json:"avg_flowrate"`
	AvgPressure    float64   `json:"avg_pressure"`
	AvgTemperature float64   `json:"avg_temperature"`
	EquipmentCount int       `json:"equipment_count"`
}

// ActiveDataset points at the upload currently displayed.
type ActiveDataset struct {
	UploadId  int64
	HasActive bool
}

func NoActiveDataset() ActiveDataset {
	return ActiveDataset{}
}

func ActiveUpload(id int64) ActiveDataset {
	return ActiveDataset{UploadId: id, HasActive: true}
}
