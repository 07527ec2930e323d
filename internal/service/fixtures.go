package service

import "chemviz-client/internal/model"

// DefaultFixtureName is used for every upload whose filename has no fixture.
const DefaultFixtureName = "sample_equipment_data.csv"

// DefaultFixture mirrors the sample dataset shipped with the visualizer.
func DefaultFixture() []model.EquipmentRecord {
	return []model.EquipmentRecord{
		{Name: "Pump-1", Type: "Pump", Flowrate: 120, Pressure: 5.2, Temperature: 110},
		{Name: "Compressor-1", Type: "Compressor", Flowrate: 95, Pressure: 8.4, Temperature: 95},
		{Name: "Valve-1", Type: "Valve", Flowrate: 60, Pressure: 4.1, Temperature: 105},
		{Name: "HeatExchanger-1", Type: "HeatExchanger", Flowrate: 150, Pressure: 6.2, Temperature: 130},
		{Name: "Pump-2", Type: "Pump", Flowrate: 132, Pressure: 5.6, Temperature: 118},
		{Name: "Reactor-1", Type: "Reactor", Flowrate: 140, Pressure: 7.5, Temperature: 140},
		{Name: "Condenser-1", Type: "Condenser", Flowrate: 80, Pressure: 3.8, Temperature: 92},
		{Name: "Valve-2", Type: "Valve", Flowrate: 64, Pressure: 4.3, Temperature: 101},
		{Name: "Compressor-2", Type: "Compressor", Flowrate: 101, Pressure: 8.9, Temperature: 98},
		{Name: "Pump-3", Type: "Pump", Flowrate: 126, Pressure: 5.4, Temperature: 114},
	}
}
