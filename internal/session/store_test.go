package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"chemviz-client/internal/apperr"
	"chemviz-client/internal/dto"
	"chemviz-client/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	resp  *dto.AuthResponse
	err   error
	calls int
	last  dto.CredentialsRequest
}

func (f *fakeAuth) Login(_ context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

func (f *fakeAuth) Register(ctx context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error) {
	return f.Login(ctx, req)
}

type failingStorage struct {
	MemoryStorage
	saveErr   error
	deleteErr error
}

func (f *failingStorage) Save(ctx context.Context, token string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStorage.Save(ctx, token)
}

func (f *failingStorage) Delete(ctx context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryStorage.Delete(ctx)
}

func newTestStore(storage TokenStorage, auth *fakeAuth) *Store {
	return NewStore(storage, auth, nil, logger.NewNopLogger())
}

func TestStore_LoginPersistsTokenBeforeReturning(t *testing.T) {
	ctx := context.Background()
	storage := NewFileStorage(filepath.Join(t.TempDir(), "cfg", "session.json"))
	auth := &fakeAuth{resp: &dto.AuthResponse{Token: "abc123"}}
	store := newTestStore(storage, auth)
	require.NoError(t, store.Init(ctx))
	assert.False(t, store.IsAuthenticated())

	sess, err := store.Login(ctx, "ana", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sess.Token)
	assert.Equal(t, dto.CredentialsRequest{Username: "ana", Password: "secret"}, auth.last)

	persisted, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", persisted)

	// A new process reads the same storage and is authenticated.
	restarted := newTestStore(NewFileStorage(storage.Path()), &fakeAuth{})
	require.NoError(t, restarted.Init(ctx))
	token, ok := restarted.CurrentToken()
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}

func TestStore_AuthErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		resp *dto.AuthResponse
		want string
	}{
		{"server message", &apperr.ServerError{Op: "login", Status: 401, Message: "Invalid credentials"}, nil, "Invalid credentials"},
		{"server without message", &apperr.ServerError{Op: "login", Status: 500}, nil, apperr.DefaultAuthMessage},
		{"network", &apperr.NetworkError{Op: "login", Err: errors.New("refused")}, nil, apperr.DefaultAuthMessage},
		{"empty token", nil, &dto.AuthResponse{}, apperr.DefaultAuthMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage("")
			store := newTestStore(storage, &fakeAuth{resp: tt.resp, err: tt.err})

			_, err := store.Login(context.Background(), "ana", "pw")
			var authErr *apperr.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.want, authErr.Message)
			assert.False(t, store.IsAuthenticated())

			persisted, _ := storage.Load(context.Background())
			assert.Empty(t, persisted)
		})
	}
}

func TestStore_MissingCredentialsNeverCallServer(t *testing.T) {
	auth := &fakeAuth{resp: &dto.AuthResponse{Token: "t"}}
	store := newTestStore(NewMemoryStorage(""), auth)

	_, err := store.Register(context.Background(), "", "pw")
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Username", verr.Field)

	_, err = store.Login(context.Background(), "ana", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Password", verr.Field)

	assert.Zero(t, auth.calls)
}

func TestStore_SaveFailureLeavesLoggedOut(t *testing.T) {
	storage := &failingStorage{saveErr: errors.New("disk full")}
	store := newTestStore(storage, &fakeAuth{resp: &dto.AuthResponse{Token: "t"}})

	_, err := store.Login(context.Background(), "ana", "pw")
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_LogoutClearsAndRunsHooks(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage("")
	store := newTestStore(storage, &fakeAuth{resp: &dto.AuthResponse{Token: "t"}})

	var cleared int
	store.OnClear(func() { cleared++ })

	_, err := store.Login(ctx, "ana", "pw")
	require.NoError(t, err)
	require.True(t, store.IsAuthenticated())

	require.NoError(t, store.Logout(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "", store.Token())
	assert.False(t, store.Session().Authenticated())
	assert.Equal(t, 1, cleared)

	persisted, _ := storage.Load(ctx)
	assert.Empty(t, persisted)
}

func TestStore_ClearStillClearsMemoryOnStorageError(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{deleteErr: errors.New("read-only")}
	store := newTestStore(storage, &fakeAuth{resp: &dto.AuthResponse{Token: "t"}})
	_, err := store.Login(ctx, "ana", "pw")
	require.NoError(t, err)

	var cleared bool
	store.OnClear(func() { cleared = true })

	assert.Error(t, store.Clear(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.True(t, cleared)
}
