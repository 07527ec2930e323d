package memory

import (
	"strconv"

	"chemviz-client/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type TokenRepository struct {
	cache *cache.Cache
}

var _ contract.TokenRepository = (*TokenRepository)(nil)

func NewTokenRepository() *TokenRepository {
	// Tokens never expire, like the API's own tokens.
	return &TokenRepository{cache: cache.New(cache.NoExpiration, 0)}
}

func (r *TokenRepository) Save(token string, userId int64) {
	r.cache.Set(tokenKey(token), userId, cache.NoExpiration)
	r.cache.Set(userKey(userId), token, cache.NoExpiration)
}

func (r *TokenRepository) Get(token string) (int64, bool) {
	if x, found := r.cache.Get(tokenKey(token)); found {
		return x.(int64), true
	}
	return 0, false
}

func (r *TokenRepository) TokenFor(userId int64) (string, bool) {
	if x, found := r.cache.Get(userKey(userId)); found {
		return x.(string), true
	}
	return "", false
}

func (r *TokenRepository) Delete(token string) {
	if userId, ok := r.Get(token); ok {
		r.cache.Delete(userKey(userId))
	}
	r.cache.Delete(tokenKey(token))
}

func tokenKey(token string) string { return "token:" + token }

func userKey(id int64) string { return "user:" + strconv.FormatInt(id, 10) }
