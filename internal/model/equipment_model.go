package model

type EquipmentRecord struct {
	Id          int64   `json:"id"`
	Name        string  `json:"equipment_name"`
	Type        string  `json:"equipment_type"`
	Flowrate    float64 `json:"flowrate"`
	Pressure    float64 `json:"pressure"`
	Temperature float64 `json:"temperature"`
}
