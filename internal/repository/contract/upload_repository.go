package contract

import (
	"context"

	"chemviz-client/internal/entity"
)

type UploadRepository interface {
	// Create assigns ids to the upload and its equipment rows.
	Create(ctx context.Context, upload *entity.Upload) error
	FindById(ctx context.Context, id int64) (*entity.Upload, error)
	// FindByOwner returns the uploads of userId (nil for guests), newest first.
	FindByOwner(ctx context.Context, userId *int64) ([]*entity.Upload, error)
	Delete(ctx context.Context, id int64) error
}
