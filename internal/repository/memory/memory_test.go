package memory

import (
	"context"
	"testing"
	"time"

	"chemviz-client/internal/entity"
	"chemviz-client/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository(t *testing.T) {
	r := NewTokenRepository()
	r.Save("abc", 7)

	id, ok := r.Get("abc")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	token, ok := r.TokenFor(7)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	r.Delete("abc")
	_, ok = r.Get("abc")
	assert.False(t, ok)
	_, ok = r.TokenFor(7)
	assert.False(t, ok)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	u := &entity.User{Username: "ana", PasswordHash: "x"}
	require.NoError(t, r.Create(ctx, u))
	assert.Equal(t, int64(1), u.Id)

	found, err := r.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, u.Id, found.Id)

	_, err = r.FindById(ctx, 99)
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestUploadRepository_OwnerOrdering(t *testing.T) {
	ctx := context.Background()
	r := NewUploadRepository()
	owner := int64(3)
	now := time.Now()

	first := &entity.Upload{UserId: &owner, Filename: "a.csv", UploadedAt: now, Equipment: []entity.Equipment{{Name: "P-1"}}}
	second := &entity.Upload{UserId: &owner, Filename: "b.csv", UploadedAt: now}
	guest := &entity.Upload{Filename: "g.csv", UploadedAt: now.Add(time.Hour)}
	for _, u := range []*entity.Upload{first, second, guest} {
		require.NoError(t, r.Create(ctx, u))
	}
	assert.Equal(t, first.Id, first.Equipment[0].UploadId)

	mine, err := r.FindByOwner(ctx, &owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b.csv", mine[0].Filename, "equal timestamps fall back to id order")

	guests, err := r.FindByOwner(ctx, nil)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "g.csv", guests[0].Filename)

	require.NoError(t, r.Delete(ctx, first.Id))
	assert.ErrorIs(t, r.Delete(ctx, first.Id), contract.ErrNotFound)
}
