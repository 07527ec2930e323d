package session

import (
	"context"
	"sync"
)

// TokenKey is the fixed name the token is persisted under.
const TokenKey = "token"

// TokenStorage is the durable home of the session token. Load returns an
// empty string when no token is stored.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// MemoryStorage keeps the token for the lifetime of the process only.
type MemoryStorage struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStorage(initial string) *MemoryStorage {
	return &MemoryStorage{token: initial}
}

func (m *MemoryStorage) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStorage) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStorage) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
