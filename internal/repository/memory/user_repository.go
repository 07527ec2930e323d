package memory

import (
	"context"
	"sync"

	"chemviz-client/internal/entity"
	"chemviz-client/internal/repository/contract"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextId int64
	byName map[string]*entity.User
	byId   map[int64]*entity.User
}

var _ contract.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byName: make(map[string]*entity.User),
		byId:   make(map[int64]*entity.User),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextId++
	user.Id = r.nextId
	stored := *user
	r.byName[user.Username] = &stored
	r.byId[user.Id] = &stored
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[username]
	if !ok {
		return nil, contract.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) FindById(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byId[id]
	if !ok {
		return nil, contract.ErrNotFound
	}
	out := *u
	return &out, nil
}
