package memory

import (
	"context"
	"sort"
	"sync"

	"chemviz-client/internal/entity"
	"chemviz-client/internal/repository/contract"
)

type UploadRepository struct {
	mu              sync.RWMutex
	nextId          int64
	nextEquipmentId int64
	uploads         map[int64]*entity.Upload
}

var _ contract.UploadRepository = (*UploadRepository)(nil)

func NewUploadRepository() *UploadRepository {
	return &UploadRepository{uploads: make(map[int64]*entity.Upload)}
}

func (r *UploadRepository) Create(ctx context.Context, upload *entity.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextId++
	upload.Id = r.nextId
	for i := range upload.Equipment {
		r.nextEquipmentId++
		upload.Equipment[i].Id = r.nextEquipmentId
		upload.Equipment[i].UploadId = upload.Id
	}
	r.uploads[upload.Id] = cloneUpload(upload)
	return nil
}

func (r *UploadRepository) FindById(ctx context.Context, id int64) (*entity.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.uploads[id]
	if !ok {
		return nil, contract.ErrNotFound
	}
	return cloneUpload(u), nil
}

func (r *UploadRepository) FindByOwner(ctx context.Context, userId *int64) ([]*entity.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Upload
	for _, u := range r.uploads {
		if u.OwnedBy(userId) {
			out = append(out, cloneUpload(u))
		}
	}
	// Ids grow with time, so they break ties between equal timestamps.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].Id > out[j].Id
	})
	return out, nil
}

func (r *UploadRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.uploads[id]; !ok {
		return contract.ErrNotFound
	}
	delete(r.uploads, id)
	return nil
}

func cloneUpload(u *entity.Upload) *entity.Upload {
	out := *u
	if u.UserId != nil {
		id := *u.UserId
		out.UserId = &id
	}
	out.Equipment = append([]entity.Equipment(nil), u.Equipment...)
	return &out
}
