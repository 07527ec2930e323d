// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"chemviz-client/internal/dto"
	"chemviz-client/internal/entity"
	"chemviz-client/internal/repository/contract"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.CredentialsRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.CredentialsRequest) (*dto.AuthResponse, error)
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

type authService struct {
	users    contract.UserRepository
	tokens   contract.TokenRepository
	validate *validator.Validate
}

func NewAuthService(users contract.UserRepository, tokens contract.TokenRepository) IAuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// generateToken returns 40 hex characters, the shape of the real API's keys.
func generateToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *authService) Register(ctx context.Context, req *dto.CredentialsRequest) (*dto.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrMissingCredentials
	}

	// 1. Check for existing user
	if existing, _ := s.users.FindByUsername(ctx, req.Username); existing != nil {
		return nil, ErrUsernameTaken
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// 3. Save user
	user := &entity.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// 4. Issue token
	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req *dto.CredentialsRequest) (*dto.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, contract.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Existing tokens are reused, one per user.
	if token, ok := s.tokens.TokenFor(user.Id); ok {
		return &dto.AuthResponse{Token: token, UserId: user.Id, Username: user.Username}, nil
	}
	return s.issueToken(user)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	userId, ok := s.tokens.Get(token)
	if !ok {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindById(ctx, userId)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *authService) issueToken(user *entity.User) (*dto.AuthResponse, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	s.tokens.Save(token, user.Id)
	return &dto.AuthResponse{Token: token, UserId: user.Id, Username: user.Username}, nil
}
