package contract

// TokenRepository maps opaque auth tokens to user ids.
type TokenRepository interface {
	Save(token string, userId int64)
	Get(token string) (int64, bool)
	// TokenFor returns the existing token of a user, if any.
	TokenFor(userId int64) (string, bool)
	Delete(token string)
}
