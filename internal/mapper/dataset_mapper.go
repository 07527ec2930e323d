package mapper

import (
	"chemviz-client/internal/dto"
	"chemviz-client/internal/model"
)

// DatasetMapper converts API payloads into client-side models.
type DatasetMapper struct{}

func NewDatasetMapper() *DatasetMapper {
	return &DatasetMapper{}
}

func (m *DatasetMapper) ToSummary(r *dto.SummaryResponse) *model.Summary {
	if r == nil {
		return nil
	}
	return &model.Summary{
		TotalCount:       r.TotalCount,
		AvgFlowrate:      r.AvgFlowrate,
		AvgPressure:      r.AvgPressure,
		AvgTemperature:   r.AvgTemperature,
		TypeDistribution: r.TypeDistribution.Clone(),
	}
}

func (m *DatasetMapper) ToUploadRecords(items []dto.HistoryItemResponse) []model.UploadRecord {
	records := make([]model.UploadRecord, 0, len(items))
	for _, it := range items {
		records = append(records, model.UploadRecord{
			Id:             it.Id,
			Filename:       it.Filename,
			UploadedAt:     it.UploadedAt,
			TotalCount:     it.TotalCount,
			AvgFlowrate:    it.AvgFlowrate,
			AvgPressure:    it.AvgPressure,
			AvgTemperature: it.AvgTemperature,
			EquipmentCount: it.EquipmentCount,
		})
	}
	return records
}

func (m *DatasetMapper) ToEquipmentRecords(items []dto.EquipmentResponse) []model.EquipmentRecord {
	records := make([]model.EquipmentRecord, 0, len(items))
	for _, it := range items {
		records = append(records, model.EquipmentRecord{
			Id:          it.Id,
			Name:        it.EquipmentName,
			Type:        it.EquipmentType,
			Flowrate:    it.Flowrate,
			Pressure:    it.Pressure,
			Temperature: it.Temperature,
		})
	}
	return records
}

