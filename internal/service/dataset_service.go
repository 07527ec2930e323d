package service

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"chemviz-client/internal/dto"
	"chemviz-client/internal/entity"
	"chemviz-client/internal/model"
	"chemviz-client/internal/repository/contract"
)

// HistoryLimit is how many uploads each owner keeps.
const HistoryLimit = 5

type IDatasetService interface {
	// AddFixture registers the records an upload named filename resolves to.
	AddFixture(filename string, records []model.EquipmentRecord)
	Upload(ctx context.Context, owner *int64, filename string) (*dto.UploadResponse, error)
	History(ctx context.Context, owner *int64) ([]dto.HistoryItemResponse, error)
	Summary(ctx context.Context, owner, uploadId *int64) (*dto.SummaryResponse, error)
	Equipment(ctx context.Context, owner, uploadId *int64) ([]dto.EquipmentResponse, error)
	ReportPDF(ctx context.Context, owner, uploadId *int64) (*Document, error)
	ExportExcel(ctx context.Context, owner, uploadId *int64) (*Document, error)
}

// Document is a rendered download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

type datasetService struct {
	uploads contract.UploadRepository
	now     func() time.Time

	mu       sync.RWMutex
	fixtures map[string][]model.EquipmentRecord
}

func NewDatasetService(uploads contract.UploadRepository) IDatasetService {
	return &datasetService{
		uploads:  uploads,
		now:      func() time.Time { return time.Now().UTC() },
		fixtures: map[string][]model.EquipmentRecord{DefaultFixtureName: DefaultFixture()},
	}
}

func (s *datasetService) AddFixture(filename string, records []model.EquipmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures[filepath.Base(filename)] = append([]model.EquipmentRecord(nil), records...)
}

func (s *datasetService) fixture(filename string) []model.EquipmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if records, ok := s.fixtures[filepath.Base(filename)]; ok {
		return records
	}
	return s.fixtures[DefaultFixtureName]
}

func (s *datasetService) Upload(ctx context.Context, owner *int64, filename string) (*dto.UploadResponse, error) {
	if filename == "" {
		return nil, ErrNoFile
	}
	if !strings.HasSuffix(filename, ".csv") {
		return nil, ErrNotCSV
	}

	records := s.fixture(filename)
	upload := &entity.Upload{
		UserId:     owner,
		Filename:   filename,
		UploadedAt: s.now(),
		TotalCount: len(records),
	}
	for _, r := range records {
		upload.AvgFlowrate += r.Flowrate
		upload.AvgPressure += r.Pressure
		upload.AvgTemperature += r.Temperature
		upload.Equipment = append(upload.Equipment, entity.Equipment{
			Name:        r.Name,
			Type:        r.Type,
			Flowrate:    r.Flowrate,
			Pressure:    r.Pressure,
			Temperature: r.Temperature,
		})
	}
	if n := float64(len(records)); n > 0 {
		upload.AvgFlowrate /= n
		upload.AvgPressure /= n
		upload.AvgTemperature /= n
	}

	if err := s.uploads.Create(ctx, upload); err != nil {
		return nil, err
	}
	if err := s.trim(ctx, owner); err != nil {
		return nil, err
	}

	id := upload.Id
	summary := toSummaryResponse(upload)
	summary.UploadId, summary.Filename, summary.UploadedAt = nil, "", nil
	return &dto.UploadResponse{
		Message:  "File uploaded successfully",
		UploadId: &id,
		Summary:  summary,
	}, nil
}

// trim drops everything past the newest HistoryLimit uploads of owner.
func (s *datasetService) trim(ctx context.Context, owner *int64) error {
	uploads, err := s.uploads.FindByOwner(ctx, owner)
	if err != nil {
		return err
	}
	for i := HistoryLimit; i < len(uploads); i++ {
		if err := s.uploads.Delete(ctx, uploads[i].Id); err != nil && !errors.Is(err, contract.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *datasetService) History(ctx context.Context, owner *int64) ([]dto.HistoryItemResponse, error) {
	uploads, err := s.uploads.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(uploads) > HistoryLimit {
		uploads = uploads[:HistoryLimit]
	}

	items := make([]dto.HistoryItemResponse, 0, len(uploads))
	for _, u := range uploads {
		items = append(items, dto.HistoryItemResponse{
			Id:             u.Id,
			UploadedAt:     u.UploadedAt,
			Filename:       u.Filename,
			TotalCount:     u.TotalCount,
			AvgFlowrate:    u.AvgFlowrate,
			AvgPressure:    u.AvgPressure,
			AvgTemperature: u.AvgTemperature,
			EquipmentCount: len(u.Equipment),
		})
	}
	return items, nil
}

func (s *datasetService) Summary(ctx context.Context, owner, uploadId *int64) (*dto.SummaryResponse, error) {
	upload, err := s.resolve(ctx, owner, uploadId)
	if err != nil {
		return nil, err
	}
	summary := toSummaryResponse(upload)
	return &summary, nil
}

func (s *datasetService) Equipment(ctx context.Context, owner, uploadId *int64) ([]dto.EquipmentResponse, error) {
	upload, err := s.resolve(ctx, owner, uploadId)
	if err != nil {
		return nil, err
	}

	items := make([]dto.EquipmentResponse, 0, len(upload.Equipment))
	for _, eq := range upload.Equipment {
		items = append(items, dto.EquipmentResponse{
			Id:            eq.Id,
			EquipmentName: eq.Name,
			EquipmentType: eq.Type,
			Flowrate:      eq.Flowrate,
			Pressure:      eq.Pressure,
			Temperature:   eq.Temperature,
		})
	}
	return items, nil
}

// resolve finds the requested upload, or the newest one of owner when
// uploadId is nil, and checks that owner may read it.
func (s *datasetService) resolve(ctx context.Context, owner, uploadId *int64) (*entity.Upload, error) {
	if uploadId == nil {
		uploads, err := s.uploads.FindByOwner(ctx, owner)
		if err != nil {
			return nil, err
		}
		if len(uploads) == 0 {
			return nil, ErrNoData
		}
		return uploads[0], nil
	}

	upload, err := s.uploads.FindById(ctx, *uploadId)
	if err != nil {
		if errors.Is(err, contract.ErrNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	if !upload.OwnedBy(owner) {
		return nil, ErrPermissionDenied
	}
	return upload, nil
}

func toSummaryResponse(u *entity.Upload) dto.SummaryResponse {
	id := u.Id
	uploadedAt := u.UploadedAt

	var dist model.TypeDistribution
	index := make(map[string]int)
	for _, eq := range u.Equipment {
		if i, ok := index[eq.Type]; ok {
			dist[i].Count++
			continue
		}
		index[eq.Type] = len(dist)
		dist = append(dist, model.TypeCount{Type: eq.Type, Count: 1})
	}
	if dist == nil {
		dist = model.TypeDistribution{}
	}

	return dto.SummaryResponse{
		UploadId:         &id,
		Filename:         u.Filename,
		UploadedAt:       &uploadedAt,
		TotalCount:       u.TotalCount,
		AvgFlowrate:      round2(u.AvgFlowrate),
		AvgPressure:      round2(u.AvgPressure),
		AvgTemperature:   round2(u.AvgTemperature),
		TypeDistribution: dist,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
