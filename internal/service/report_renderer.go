package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"chemviz-client/internal/entity"

	"github.com/xuri/excelize/v2"
)

const (
	ContentTypePDF   = "application/pdf"
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	ExcelSheet = "Sheet1"
	// pdfEquipmentLimit caps the detail table of the report.
	pdfEquipmentLimit = 50
)

var ExcelHeader = []string{"Equipment Name", "Type", "Flowrate", "Pressure", "Temperature"}

func (s *datasetService) ReportPDF(ctx context.Context, owner, uploadId *int64) (*Document, error) {
	upload, err := s.resolve(ctx, owner, uploadId)
	if err != nil {
		return nil, err
	}
	return &Document{
		Filename:    fmt.Sprintf("equipment_report_%d.pdf", upload.Id),
		ContentType: ContentTypePDF,
		Data:        renderPDF(upload, s.now()),
	}, nil
}

func (s *datasetService) ExportExcel(ctx context.Context, owner, uploadId *int64) (*Document, error) {
	upload, err := s.resolve(ctx, owner, uploadId)
	if err != nil {
		return nil, err
	}
	data, err := renderWorkbook(upload)
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return &Document{
		Filename:    fmt.Sprintf("equipment_data_%d.xlsx", upload.Id),
		ContentType: ContentTypeExcel,
		Data:        data,
	}, nil
}

// renderPDF produces a placeholder document with the report's text content.
// Layout is not reproduced.
func renderPDF(u *entity.Upload, generatedAt time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	fmt.Fprintf(&buf, "%% Chemical Equipment Analysis Report\n")
	fmt.Fprintf(&buf, "%% Report Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "%% Dataset: %s\n", u.Filename)
	fmt.Fprintf(&buf, "%% Upload Date: %s\n", u.UploadedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "%% Total Equipment: %d\n", u.TotalCount)
	fmt.Fprintf(&buf, "%% Flowrate %.2f Pressure %.2f Temperature %.2f\n", u.AvgFlowrate, u.AvgPressure, u.AvgTemperature)
	for i, eq := range u.Equipment {
		if i == pdfEquipmentLimit {
			break
		}
		fmt.Fprintf(&buf, "%% %s %s %.2f %.2f %.2f\n", eq.Name, eq.Type, eq.Flowrate, eq.Pressure, eq.Temperature)
	}
	buf.WriteString("%%EOF\n")
	return buf.Bytes()
}

func renderWorkbook(u *entity.Upload) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(ExcelHeader))
	for i, h := range ExcelHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ExcelSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, eq := range u.Equipment {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{eq.Name, eq.Type, eq.Flowrate, eq.Pressure, eq.Temperature}
		if err := f.SetSheetRow(ExcelSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
