package export

import (
	"bytes"
	"context"
	"fmt"

	"chemviz-client/internal/apperr"
	"chemviz-client/internal/gateway"
	"chemviz-client/internal/model"
	"chemviz-client/internal/pkg/logger"

	"github.com/xuri/excelize/v2"
)

const logModule = "EXPORT"

const (
	MsgNoDataset  = "No data loaded"
	MsgPDFFailed  = "Error generating PDF"
	MsgXLSXFailed = "Error generating Excel file"
)

// Requester fetches a server-rendered document.
type Requester interface {
	RequestExport(ctx context.Context, kind gateway.ExportKind, uploadId int64) ([]byte, error)
}

// ActiveSource exposes the dataset currently displayed.
type ActiveSource interface {
	Active() model.ActiveDataset
}

type Result struct {
	Kind     gateway.ExportKind
	Filename string
	Path     string
	Bytes    int
	// Sheet and Rows are set for Excel exports: the first sheet and its
	// number of data rows below the header.
	Sheet string
	Rows  int
}

type Trigger struct {
	gateway Requester
	saver   Saver
	logger  logger.ILogger
}

func NewTrigger(gw Requester, saver Saver, log logger.ILogger) *Trigger {
	return &Trigger{gateway: gw, saver: saver, logger: log}
}

func Filename(kind gateway.ExportKind, uploadId int64) string {
	if kind == gateway.ExportExcel {
		return fmt.Sprintf("equipment_data_%d.xlsx", uploadId)
	}
	return fmt.Sprintf("equipment_report_%d.pdf", uploadId)
}

func failureMessage(kind gateway.ExportKind) string {
	if kind == gateway.ExportExcel {
		return MsgXLSXFailed
	}
	return MsgPDFFailed
}

// ExportActive exports whatever src currently shows.
func (t *Trigger) ExportActive(ctx context.Context, kind gateway.ExportKind, src ActiveSource) (*Result, error) {
	active := src.Active()
	return t.ExportReport(ctx, kind, active.UploadId, active.HasActive)
}

// ExportReport downloads the report of uploadId and hands it to the saver.
// Without an active dataset nothing is requested.
func (t *Trigger) ExportReport(ctx context.Context, kind gateway.ExportKind, uploadId int64, hasActive bool) (*Result, error) {
	if !hasActive {
		return nil, &apperr.ExportError{Kind: string(kind), Message: MsgNoDataset}
	}

	fail := func(err error) error {
		t.logger.Error(logModule, "Export failed", map[string]interface{}{
			"kind":      string(kind),
			"upload_id": uploadId,
			"error":     err.Error(),
		})
		return &apperr.ExportError{Kind: string(kind), Message: failureMessage(kind), Err: err}
	}

	data, err := t.gateway.RequestExport(ctx, kind, uploadId)
	if err != nil {
		return nil, fail(err)
	}

	res := &Result{Kind: kind, Filename: Filename(kind, uploadId), Bytes: len(data)}
	if kind == gateway.ExportExcel {
		if res.Sheet, res.Rows, err = inspectWorkbook(data); err != nil {
			return nil, fail(err)
		}
	}

	if res.Path, err = t.saver.Save(ctx, res.Filename, data); err != nil {
		return nil, fail(err)
	}

	t.logger.Info(logModule, "Export saved", map[string]interface{}{
		"kind":  string(kind),
		"path":  res.Path,
		"bytes": res.Bytes,
	})
	return res, nil
}

func inspectWorkbook(data []byte) (string, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", 0, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", 0, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	count := len(rows) - 1
	if count < 0 {
		count = 0
	}
	return sheets[0], count, nil
}
