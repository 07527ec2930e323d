package contract

import (
	"context"
	"errors"

	"chemviz-client/internal/entity"
)

var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindById(ctx context.Context, id int64) (*entity.User, error)
}
